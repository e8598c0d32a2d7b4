package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"popi-backend/internal/auth"
	"popi-backend/internal/models"
	"popi-backend/internal/services"
)

// AdminHandler handles moderation endpoints
type AdminHandler struct {
	db                 *gorm.DB
	applicationService *services.ApplicationService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(db *gorm.DB, applicationService *services.ApplicationService) *AdminHandler {
	return &AdminHandler{
		db:                 db,
		applicationService: applicationService,
	}
}

// AdminMiddleware rejects callers without the staff flag
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil || !user.IsStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetOverview returns the moderation dashboard payload.
// GET /api/admin/overview
func (h *AdminHandler) GetOverview(c *gin.Context) {
	overview, err := h.applicationService.GetOverview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build overview"})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// DecideApplication approves or rejects a collaborator application.
// POST /api/admin/collaborators/:id/decision
func (h *AdminHandler) DecideApplication(c *gin.Context) {
	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.applicationService.Decide(uint(applicationID), req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply decision"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": app.Status})
}
