// CV/job match analysis: admission check, assistant call, usage recording.

package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
	"github.com/Mohamadaloreibi/matchai-talent-finder/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Analyze handles POST /api/analyze. The admission check is the only gate:
// denied requests never reach the assistant, and failed assistant calls never
// consume the caller's daily slot.
func Analyze(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.CVText) == "" || strings.TrimSpace(req.JobDescription) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cv_text and job_description are required"})
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}

	now := nowFn()
	decision := CheckQuota(c.Request.Context(), ledger, roles, claims.Subject, cfg.Quota.DailyLimit, now)
	if !decision.Allowed {
		respondRateLimited(c, decision)
		return
	}

	ctx, cancel := timeoutContext(c, cfg.AI.TimeoutSeconds)
	defer cancel()

	analysis, err := assistant.MatchCV(ctx, req)
	if err != nil {
		zlog.Error("match analysis upstream failure",
			zap.String("user_id", claims.Subject),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "analysis_failed",
			"message": "The analysis service is unavailable. Please try again.",
		})
		return
	}

	// Quota is consumed only on a completed, usable analysis. The append is
	// best-effort: a failure here under-counts usage, never blocks the result.
	if err := ledger.Append(c.Request.Context(), claims.Subject); err != nil {
		zlog.Warn("failed to record usage event",
			zap.String("user_id", claims.Subject),
			zap.Error(err))
	}

	candidateName := req.CandidateName
	if candidateName == "" {
		candidateName = "Candidate"
	}

	c.JSON(http.StatusOK, models.MatchResult{
		MatchAnalysis: *analysis,
		CandidateName: candidateName,
		JobTitle:      req.JobTitle,
		Company:       req.Company,
		CreatedAtISO:  now.UTC().Format(time.RFC3339),
		Language:      normalizeLanguage(req.Language),
	})
}

func respondRateLimited(c *gin.Context, decision Decision) {
	body := gin.H{
		"error":             "daily_limit_reached",
		"message":           "You have reached your analysis allowance for the last 24 hours. Please try again later.",
		"hours_until_reset": hoursUntilReset(decision.RetryAfter),
	}
	if !decision.LastAnalysisAt.IsZero() {
		body["last_analysis_at"] = decision.LastAnalysisAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusTooManyRequests, body)
}

func respondAuthRequired(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "authentication_required",
		"message": "Please log in to use the analysis feature.",
	})
}
