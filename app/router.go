// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Shared collaborators. Handlers go through these so tests can substitute
// fakes without a running Postgres or Gemini account.
var (
	ledger Ledger        = postgresLedger{}
	roles  RoleDirectory = postgresRoles{}
	nowFn                = time.Now
	zlog                 = zap.NewNop()
)

// SetLogger installs the process logger built in main.
func SetLogger(l *zap.Logger) {
	if l != nil {
		zlog = l
	}
}

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter() (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	protected := router.Group("/api")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{}))

	protected.POST("/analyze", Analyze)
	protected.GET("/me/quota", MyQuota)

	protected.POST("/cover-letter", GenerateCoverLetter)
	protected.POST("/cover-letter/explain", ExplainCoverLetter)

	protected.GET("/letters", ListLetters)
	protected.POST("/letters", SaveLetter)
	protected.DELETE("/letters/:id", DeleteLetter)

	protected.POST("/feedback", SubmitFeedback)

	protected.POST("/batch", SubmitBatch)
	protected.GET("/batch/:jobid", GetBatchStatus)
	protected.GET("/batch/:jobid/results", GetBatchResults)

	admin := protected.Group("/admin")
	admin.GET("/feedback", AdminListFeedback)
	admin.PATCH("/feedback/:id", AdminUpdateFeedback)
	admin.GET("/roles", AdminListRoles)

	return router, nil
}
