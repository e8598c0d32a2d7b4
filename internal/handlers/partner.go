package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"popi-backend/internal/auth"
	"popi-backend/internal/services"
)

// PartnerHandler handles collaborator-facing endpoints
type PartnerHandler struct {
	applicationService *services.ApplicationService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(applicationService *services.ApplicationService) *PartnerHandler {
	return &PartnerHandler{
		applicationService: applicationService,
	}
}

// Apply submits the current user's business for collaborator review.
// POST /api/collaborator/apply
func (h *PartnerHandler) Apply(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		BusinessName     string           `json:"business_name" binding:"required"`
		Address          string           `json:"address" binding:"required"`
		Latitude         decimal.Decimal  `json:"latitude" binding:"required"`
		Longitude        decimal.Decimal  `json:"longitude" binding:"required"`
		BusinessPhone    string           `json:"business_phone"`
		Website          string           `json:"website"`
		Schedule         string           `json:"schedule"`
		Rating           *decimal.Decimal `json:"rating"`
		ReviewCount      uint             `json:"review_count"`
		PhotoURL         string           `json:"photo_url"`
		PlaceTypes       string           `json:"place_types"`
		PlaceID          string           `json:"place_id"`
		AddressProofText string           `json:"address_proof_text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.applicationService.Apply(userID, services.ApplyRequest{
		BusinessName:     req.BusinessName,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		BusinessPhone:    req.BusinessPhone,
		Website:          req.Website,
		Schedule:         req.Schedule,
		Rating:           req.Rating,
		ReviewCount:      req.ReviewCount,
		PhotoURL:         req.PhotoURL,
		PlaceTypes:       req.PlaceTypes,
		PlaceID:          req.PlaceID,
		AddressProofText: req.AddressProofText,
	})
	if err != nil {
		if errors.Is(err, services.ErrPlaceAlreadyListed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Application submitted. You will be notified once it is reviewed.",
		"application_id": app.ID,
		"status":         app.Status,
	})
}

// GetApplications lists the current user's applications.
// GET /api/partner/applications
func (h *PartnerHandler) GetApplications(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	apps, hasBathroom, err := h.applicationService.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list applications"})
		return
	}

	payload := make([]gin.H, 0, len(apps))
	for _, app := range apps {
		lat, _ := app.Latitude.Float64()
		lng, _ := app.Longitude.Float64()
		payload = append(payload, gin.H{
			"id":            app.ID,
			"business_name": app.BusinessName,
			"address":       app.Address,
			"lat":           lat,
			"lng":           lng,
			"status":        app.Status,
			"place_id":      app.PlaceID,
			"has_bathroom":  hasBathroom[app.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"applications": payload})
}

// CreateBathroom registers the bathroom for one of the user's approved
// businesses.
// POST /api/partner/applications/:id/bathroom
func (h *PartnerHandler) CreateBathroom(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	bathroom, err := h.applicationService.CreateBathroom(userID, uint(applicationID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotApprovedYet), errors.Is(err, services.ErrBathroomExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register bathroom"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bathroom": bathroom})
}
