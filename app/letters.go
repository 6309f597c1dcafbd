// Cover letter generation, explanation, and the user's saved-letter storage.

package app

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
	"github.com/Mohamadaloreibi/matchai-talent-finder/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateCoverLetter handles POST /api/cover-letter. Letters are not quota
// gated; only the match analysis consumes the daily allowance.
func GenerateCoverLetter(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	var req models.CoverLetterRequest
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

	targetLanguage := req.LanguagePref
	if targetLanguage == "" || targetLanguage == "auto" {
		targetLanguage = detectLanguage(req.JobDescription, req.CVText)
	}

	ctx, cancel := timeoutContext(c, cfg.AI.TimeoutSeconds)
	defer cancel()

	letter, err := assistant.GenerateCoverLetter(ctx, req)
	if err != nil {
		zlog.Error("cover letter upstream failure",
			zap.String("user_id", claims.Subject),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "generation_failed",
			"message": "Failed to generate cover letter. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, models.CoverLetterResult{
		Language:        targetLanguage,
		Tone:            req.Tone,
		CoverLetterText: letter,
	})
}

// ExplainCoverLetter handles POST /api/cover-letter/explain.
func ExplainCoverLetter(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	var req models.ExplainLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.CurrentLetter) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_letter is required"})
		return
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = detectLanguage(req.JobDescription, req.CVText)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}

	ctx, cancel := timeoutContext(c, cfg.AI.TimeoutSeconds)
	defer cancel()

	explanation, err := assistant.ExplainCoverLetter(ctx, req)
	if err != nil {
		zlog.Error("explain letter upstream failure",
			zap.String("user_id", claims.Subject),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "explanation_failed",
			"message": "Failed to explain cover letter. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, models.ExplainLetterResult{
		Explanation: explanation,
		Language:    req.TargetLanguage,
	})
}

// SaveLetter handles POST /api/letters.
func SaveLetter(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	var letter models.SavedLetter
	if err := c.ShouldBindJSON(&letter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(letter.LetterText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "letter_text is required"})
		return
	}
	letter.UserID = claims.Subject

	id, err := insertSavedLetter(c.Request.Context(), letter)
	if err != nil {
		zlog.Error("failed to save letter", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save letter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListLetters handles GET /api/letters, returning only the caller's letters.
func ListLetters(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	letters, err := listSavedLetters(c.Request.Context(), claims.Subject)
	if err != nil {
		zlog.Error("failed to list letters", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load letters"})
		return
	}
	if letters == nil {
		letters = []models.SavedLetter{}
	}

	c.JSON(http.StatusOK, gin.H{"letters": letters})
}

// DeleteLetter handles DELETE /api/letters/:id, owner-scoped.
func DeleteLetter(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	letterID := c.Param("id")
	if letterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing letter id"})
		return
	}

	if err := deleteSavedLetter(c.Request.Context(), claims.Subject, letterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "letter not found"})
			return
		}
		zlog.Error("failed to delete letter", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete letter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": letterID})
}
