// Public health check, quota reporting and feedback submission endpoints.

package app

import (
	"net/http"
	"strings"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
	"github.com/Mohamadaloreibi/matchai-talent-finder/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// MyQuota returns the rolling-window allowance for the authenticated user,
// mirroring what the admission check would decide right now. Ledger failures
// report a full allowance, consistent with the fail-open admission policy.
func MyQuota(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}
	limit := cfg.Quota.DailyLimit
	now := nowFn()

	isAdmin, err := roles.HasRole(c.Request.Context(), claims.Subject, models.RoleAdmin)
	if err != nil {
		zlog.Warn("role lookup failed in quota report",
			zap.String("user_id", claims.Subject), zap.Error(err))
		isAdmin = false
	}
	if isAdmin {
		c.JSON(http.StatusOK, gin.H{
			"limit":     nil,
			"used":      nil,
			"remaining": nil,
			"unlimited": true,
		})
		return
	}

	events, err := ledger.CountRecent(c.Request.Context(), claims.Subject, now.Add(-QuotaWindow))
	if err != nil {
		zlog.Warn("quota ledger unavailable in quota report",
			zap.String("user_id", claims.Subject), zap.Error(err))
		events = nil
	}

	used := len(events)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	body := gin.H{
		"limit":     limit,
		"used":      used,
		"remaining": remaining,
		"unlimited": false,
	}
	if used > 0 {
		body["last_analysis_at"] = events[0].UTC()
	}
	if used >= limit {
		// Next slot opens when the limit-th most recent event leaves the window.
		body["resets_at"] = events[limit-1].Add(QuotaWindow).UTC()
	}

	c.JSON(http.StatusOK, body)
}

// SubmitFeedback handles POST /api/feedback.
func SubmitFeedback(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	var req struct {
		Category string `json:"category"`
		Message  string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}

	id, err := insertFeedback(c.Request.Context(), claims.Subject, req.Category, req.Message)
	if err != nil {
		zlog.Error("failed to save feedback", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
