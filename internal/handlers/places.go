package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"popi-backend/internal/services"
)

// PlacesHandler handles the public discovery endpoint
type PlacesHandler struct {
	placeService *services.PlaceService
}

// NewPlacesHandler creates a new PlacesHandler
func NewPlacesHandler(placeService *services.PlaceService) *PlacesHandler {
	return &PlacesHandler{
		placeService: placeService,
	}
}

// GetPublicPlaces lists approved places with a bathroom, optionally filtered
// to a radius (km) around lat/lng.
// GET /api/places/public
func (h *PlacesHandler) GetPublicPlaces(c *gin.Context) {
	lat, err := parseFloatQuery(c, "lat")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	lng, err := parseFloatQuery(c, "lng")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng must be a number"})
		return
	}
	radius, err := parseFloatQuery(c, "radius_km")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be a number"})
		return
	}

	places, err := h.placeService.ListPublic(lat, lng, radius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list places"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

func parseFloatQuery(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
