package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"popi-backend/internal/models"
)

func createPlaceAt(t *testing.T, db *gorm.DB, ownerID uint, lat, lng float64, status string, withBathroom bool) *models.CollaboratorApplication {
	placeSeq++
	app := models.CollaboratorApplication{
		UserID:       ownerID,
		BusinessName: fmt.Sprintf("Place %d", placeSeq),
		Address:      "Somewhere",
		Latitude:     decimal.NewFromFloat(lat),
		Longitude:    decimal.NewFromFloat(lng),
		PlaceID:      fmt.Sprintf("place-geo-%d", placeSeq),
		Status:       status,
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	if withBathroom {
		bathroom := models.Bathroom{ApplicationID: app.ID, IsActive: true}
		if err := db.Create(&bathroom).Error; err != nil {
			t.Fatalf("failed to create bathroom: %v", err)
		}
	}
	return &app
}

func TestListPublicFilters(t *testing.T) {
	db := setupTestDB(t)
	service := NewPlaceService(db)

	owner := createTestUser(t, db, "owner@example.com", false)

	listed := createPlaceAt(t, db, owner.ID, 19.4326, -99.1332, models.StatusApproved, true)
	createPlaceAt(t, db, owner.ID, 19.4300, -99.1300, models.StatusPending, true)
	createPlaceAt(t, db, owner.ID, 19.4310, -99.1310, models.StatusApproved, false)

	places, err := service.ListPublic(nil, nil, nil)
	if err != nil {
		t.Fatalf("ListPublic failed: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected only the approved place with a bathroom, got %d", len(places))
	}
	if places[0].ID != listed.ID {
		t.Errorf("unexpected place listed: %d", places[0].ID)
	}
	if places[0].DistanceKm != nil {
		t.Errorf("distance should be nil without a center point")
	}
}

func TestListPublicRadius(t *testing.T) {
	db := setupTestDB(t)
	service := NewPlaceService(db)

	owner := createTestUser(t, db, "owner@example.com", false)

	near := createPlaceAt(t, db, owner.ID, 19.4326, -99.1332, models.StatusApproved, true)
	// ~0.9 degrees of latitude is ~100 km, far outside the default radius.
	createPlaceAt(t, db, owner.ID, 20.3326, -99.1332, models.StatusApproved, true)

	lat, lng := 19.4326, -99.1332
	places, err := service.ListPublic(&lat, &lng, nil)
	if err != nil {
		t.Fatalf("ListPublic failed: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place within 5km, got %d", len(places))
	}
	if places[0].ID != near.ID {
		t.Errorf("wrong place survived the radius filter")
	}
	if places[0].DistanceKm == nil || *places[0].DistanceKm > 0.01 {
		t.Errorf("expected ~0 distance, got %v", places[0].DistanceKm)
	}

	// Widening the radius brings in the far place.
	wide := 200.0
	places, err = service.ListPublic(&lat, &lng, &wide)
	if err != nil {
		t.Fatalf("ListPublic failed: %v", err)
	}
	if len(places) != 2 {
		t.Errorf("expected 2 places within 200km, got %d", len(places))
	}
}
