// Admin panel endpoints: feedback triage and role inspection. Role membership
// is checked per request; a promotion takes effect on the next call.

package app

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
	"github.com/Mohamadaloreibi/matchai-talent-finder/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requireAdmin resolves the caller and verifies the admin role. Unlike the
// quota bypass, a failed role lookup here denies access.
func requireAdmin(c *gin.Context) (string, bool) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return "", false
	}

	isAdmin, err := roles.HasRole(c.Request.Context(), claims.Subject, models.RoleAdmin)
	if err != nil {
		zlog.Error("admin role lookup failed",
			zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify admin access"})
		return "", false
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return "", false
	}
	return claims.Subject, true
}

// AdminListFeedback handles GET /api/admin/feedback.
func AdminListFeedback(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	items, err := listFeedback(c.Request.Context())
	if err != nil {
		zlog.Error("failed to list feedback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feedback"})
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}

	c.JSON(http.StatusOK, gin.H{"feedback": items})
}

// AdminUpdateFeedback handles PATCH /api/admin/feedback/:id.
func AdminUpdateFeedback(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	feedbackID := c.Param("id")
	if feedbackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing feedback id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !models.ValidFeedbackStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := updateFeedbackStatus(c.Request.Context(), feedbackID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		}
		zlog.Error("failed to update feedback", zap.String("feedback_id", feedbackID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": feedbackID, "status": req.Status})
}

// AdminListRoles handles GET /api/admin/roles.
func AdminListRoles(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	userRoles, err := listUserRoles(c.Request.Context())
	if err != nil {
		zlog.Error("failed to list roles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load roles"})
		return
	}
	if userRoles == nil {
		userRoles = []models.UserRole{}
	}

	c.JSON(http.StatusOK, gin.H{"roles": userRoles})
}
