package services

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"popi-backend/internal/models"
)

const (
	earthRadiusKm   = 6371.0
	defaultRadiusKm = 5.0
	maxPlaceResults = 200
)

// PublicPlace is the compact marker payload for the public map.
type PublicPlace struct {
	ID            uint     `json:"id"`
	BusinessName  string   `json:"business_name"`
	Address       string   `json:"address"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	Rating        *float64 `json:"rating"`
	ReviewCount   uint     `json:"review_count"`
	Website       string   `json:"website"`
	BusinessPhone string   `json:"business_phone"`
	PlaceID       string   `json:"place_id"`
	PhotoURL      string   `json:"photo_url"`
	DistanceKm    *float64 `json:"distance_km"`
}

// PlaceService serves the public discovery listing.
type PlaceService struct {
	db *gorm.DB
}

// NewPlaceService creates a new PlaceService
func NewPlaceService(db *gorm.DB) *PlaceService {
	return &PlaceService{db: db}
}

// ListPublic returns approved businesses that have an active bathroom,
// optionally filtered to a radius around a center point. RadiusKm defaults
// to 5 when a center is given.
func (s *PlaceService) ListPublic(centerLat, centerLng, radiusKm *float64) ([]PublicPlace, error) {
	var apps []models.CollaboratorApplication
	err := s.db.
		Joins("JOIN bathrooms ON bathrooms.application_id = collaborator_applications.id AND bathrooms.is_active = ?", true).
		Where("collaborator_applications.status = ?", models.StatusApproved).
		Order("collaborator_applications.created_at DESC").
		Limit(maxPlaceResults).
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	radius := defaultRadiusKm
	if radiusKm != nil {
		radius = *radiusKm
	}

	results := make([]PublicPlace, 0, len(apps))
	for _, app := range apps {
		lat, _ := app.Latitude.Float64()
		lng, _ := app.Longitude.Float64()

		var distance *float64
		if centerLat != nil && centerLng != nil {
			d := haversineKm(*centerLat, *centerLng, lat, lng)
			if d > radius {
				continue
			}
			d = math.Round(d*1000) / 1000
			distance = &d
		}

		var rating *float64
		if app.Rating != nil {
			r, _ := app.Rating.Float64()
			rating = &r
		}

		results = append(results, PublicPlace{
			ID:            app.ID,
			BusinessName:  app.BusinessName,
			Address:       app.Address,
			Lat:           lat,
			Lng:           lng,
			Rating:        rating,
			ReviewCount:   app.ReviewCount,
			Website:       app.Website,
			BusinessPhone: app.BusinessPhone,
			PlaceID:       app.PlaceID,
			PhotoURL:      app.PhotoURL,
			DistanceKm:    distance,
		})
	}

	return results, nil
}

// haversineKm computes the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
