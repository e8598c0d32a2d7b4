package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"popi-backend/internal/models"
)

func TestApplyStartsPending(t *testing.T) {
	db := setupTestDB(t)
	service := NewApplicationService(db)

	owner := createTestUser(t, db, "owner@example.com", false)

	app, err := service.Apply(owner.ID, ApplyRequest{
		BusinessName: "Cafe Centro",
		Address:      "Av. Reforma 100",
		Latitude:     decimal.NewFromFloat(19.4326),
		Longitude:    decimal.NewFromFloat(-99.1332),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if app.Status != models.StatusPending {
		t.Errorf("expected pending status, got %q", app.Status)
	}
	if app.PlaceID == "" {
		t.Errorf("expected a generated place id")
	}

	// Re-submitting the same place is rejected.
	_, err = service.Apply(owner.ID, ApplyRequest{
		BusinessName: "Cafe Centro",
		Address:      "Av. Reforma 100",
		Latitude:     decimal.NewFromFloat(19.4326),
		Longitude:    decimal.NewFromFloat(-99.1332),
		PlaceID:      app.PlaceID,
	})
	if !errors.Is(err, ErrPlaceAlreadyListed) {
		t.Errorf("expected ErrPlaceAlreadyListed, got %v", err)
	}
}

func TestDecisionFlipsRole(t *testing.T) {
	db := setupTestDB(t)
	service := NewApplicationService(db)

	owner := createTestUser(t, db, "owner@example.com", false)
	app := createTestApplication(t, db, owner.ID, models.StatusPending)

	decided, err := service.Decide(app.ID, "approve")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if decided.Status != models.StatusApproved {
		t.Errorf("expected approved, got %q", decided.Status)
	}

	var user models.User
	if err := db.First(&user, owner.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Role != models.RoleCollaborator {
		t.Errorf("expected collaborator role after approval, got %q", user.Role)
	}

	if _, err := service.Decide(app.ID, "reject"); err != nil {
		t.Fatalf("Decide reject failed: %v", err)
	}
	if err := db.First(&user, owner.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("expected customer role after rejection, got %q", user.Role)
	}

	if _, err := service.Decide(app.ID, "escalate"); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("expected ErrInvalidDecision, got %v", err)
	}
	if _, err := service.Decide(99999, "approve"); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestCreateBathroomRules(t *testing.T) {
	db := setupTestDB(t)
	service := NewApplicationService(db)

	owner := createTestUser(t, db, "owner@example.com", false)
	other := createTestUser(t, db, "other@example.com", false)
	pending := createTestApplication(t, db, owner.ID, models.StatusPending)
	approved := createTestApplication(t, db, owner.ID, models.StatusApproved)

	if _, err := service.CreateBathroom(owner.ID, pending.ID); !errors.Is(err, ErrNotApprovedYet) {
		t.Errorf("expected ErrNotApprovedYet, got %v", err)
	}

	if _, err := service.CreateBathroom(other.ID, approved.ID); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("expected ErrApplicationNotFound for non-owner, got %v", err)
	}

	bathroom, err := service.CreateBathroom(owner.ID, approved.ID)
	if err != nil {
		t.Fatalf("CreateBathroom failed: %v", err)
	}
	if !bathroom.IsActive {
		t.Errorf("expected bathroom to start active")
	}

	if _, err := service.CreateBathroom(owner.ID, approved.ID); !errors.Is(err, ErrBathroomExists) {
		t.Errorf("expected ErrBathroomExists, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewApplicationService(db)

	owner := createTestUser(t, db, "owner@example.com", false)
	withBathroom := createTestApplication(t, db, owner.ID, models.StatusApproved)
	createTestApplication(t, db, owner.ID, models.StatusPending)

	if _, err := service.CreateBathroom(owner.ID, withBathroom.ID); err != nil {
		t.Fatalf("CreateBathroom failed: %v", err)
	}

	apps, hasBathroom, err := service.ListByUser(owner.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(apps))
	}
	if !hasBathroom[withBathroom.ID] {
		t.Errorf("expected bathroom flag for application %d", withBathroom.ID)
	}
}

func TestGetOverview(t *testing.T) {
	db := setupTestDB(t)
	service := NewApplicationService(db)

	owner := createTestUser(t, db, "owner@example.com", false)
	createTestUser(t, db, "staff@example.com", true)
	createTestApplication(t, db, owner.ID, models.StatusApproved)
	createTestApplication(t, db, owner.ID, models.StatusPending)
	createTestApplication(t, db, owner.ID, models.StatusRejected)

	o, err := service.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview failed: %v", err)
	}
	if o.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", o.TotalUsers)
	}
	if o.TotalStaff != 1 {
		t.Errorf("expected 1 staff, got %d", o.TotalStaff)
	}
	if o.TotalCollaborators != 1 || o.PendingApplications != 1 || o.RejectedApplications != 1 {
		t.Errorf("unexpected application counts: %+v", o)
	}
	if len(o.RecentApplications) != 3 {
		t.Errorf("expected 3 recent applications, got %d", len(o.RecentApplications))
	}
}
