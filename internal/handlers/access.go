package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"popi-backend/internal/auth"
	"popi-backend/internal/models"
	"popi-backend/internal/services"
)

// AccessHandler handles access-code issuance and verification endpoints
type AccessHandler struct {
	accessService *services.AccessService
	authService   *services.AuthService
}

// NewAccessHandler creates a new AccessHandler
func NewAccessHandler(accessService *services.AccessService, authService *services.AuthService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		authService:   authService,
	}
}

// IssueCode issues a fresh access code for a business. Authenticated owners
// and staff can issue directly; anonymous callers must opt in with guest.
// POST /api/access-codes
func (h *AccessHandler) IssueCode(c *gin.Context) {
	var req struct {
		ApplicationID uint  `json:"application_id"`
		TTLMinutes    int   `json:"ttl_minutes"`
		Guest         bool  `json:"guest"`
		UserID        *uint `json:"user_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ApplicationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application_id is required"})
		return
	}

	caller := h.currentUser(c)
	result, err := h.accessService.Issue(c.Request.Context(), services.IssueRequest{
		ApplicationID:  req.ApplicationID,
		Caller:         caller,
		TTLMinutes:     req.TTLMinutes,
		Guest:          req.Guest,
		SuppliedUserID: req.UserID,
		CallerIP:       c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrBusinessNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue access code"})
		}
		return
	}

	// The payload is returned both discretely and as a JSON string ready to
	// drop into a QR code verbatim.
	text, err := json.Marshal(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode payload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":           result.Code,
		"token":          result.Token,
		"expires_at":     result.ExpiresAt,
		"application_id": result.ApplicationID,
		"text":           string(text),
		"payload":        result,
	})
}

// VerifyCode redeems a code or token against a business.
// POST /api/access-codes/verify
func (h *AccessHandler) VerifyCode(c *gin.Context) {
	var req struct {
		ApplicationID uint   `json:"application_id"`
		Code          string `json:"code"`
		Token         string `json:"token"`
		UserID        *uint  `json:"user_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ApplicationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application_id is required"})
		return
	}

	caller := h.currentUser(c)
	place, err := h.accessService.Verify(c.Request.Context(), services.VerifyRequest{
		ApplicationID:  req.ApplicationID,
		Code:           req.Code,
		Token:          req.Token,
		SuppliedUserID: req.UserID,
		Caller:         caller,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeOrTokenRequired):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "detail": err.Error()})
		case errors.Is(err, services.ErrBusinessNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "detail": err.Error()})
		case errors.Is(err, services.ErrInvalidCode),
			errors.Is(err, services.ErrCodeUsed),
			errors.Is(err, services.ErrCodeExpired),
			errors.Is(err, services.ErrUserMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "detail": "verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"place": place,
	})
}

// currentUser loads the caller when the optional auth middleware resolved an
// identity; returns nil for anonymous requests.
func (h *AccessHandler) currentUser(c *gin.Context) *models.User {
	userID, exists := auth.GetUserID(c)
	if !exists {
		return nil
	}
	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}
