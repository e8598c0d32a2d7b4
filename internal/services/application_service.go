package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"popi-backend/internal/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrPlaceAlreadyListed  = errors.New("this place already has an application")
	ErrNotApprovedYet      = errors.New("the business must be approved before registering a bathroom")
	ErrBathroomExists      = errors.New("this business already has a bathroom registered")
	ErrInvalidDecision     = errors.New("invalid decision action")
)

// ApplicationService handles collaborator applications, bathrooms and the
// admin moderation workflow.
type ApplicationService struct {
	db *gorm.DB
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// ApplyRequest carries the business fields submitted for review
type ApplyRequest struct {
	BusinessName     string
	Address          string
	Latitude         decimal.Decimal
	Longitude        decimal.Decimal
	BusinessPhone    string
	Website          string
	Schedule         string
	Rating           *decimal.Decimal
	ReviewCount      uint
	PhotoURL         string
	PlaceTypes       string
	PlaceID          string
	AddressProofText string
}

// Apply submits a business for collaborator review, linked to the current
// user. The application starts pending.
func (s *ApplicationService) Apply(userID uint, req ApplyRequest) (*models.CollaboratorApplication, error) {
	placeID := req.PlaceID
	if placeID == "" {
		// Manually-entered places have no provider place id; mint one so the
		// uniqueness constraint still holds.
		placeID = "manual-" + uuid.NewString()
	}

	var existing models.CollaboratorApplication
	if err := s.db.Where("place_id = ?", placeID).First(&existing).Error; err == nil {
		return nil, ErrPlaceAlreadyListed
	}

	app := models.CollaboratorApplication{
		UserID:           userID,
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
		PlaceID:          placeID,
		AddressProofText: req.AddressProofText,
		CoverageValid:    true,
		Status:           models.StatusPending,
	}

	if err := s.db.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	log.Printf("Collaborator application %d submitted by user %d (%s)", app.ID, userID, app.BusinessName)
	return &app, nil
}

// ListByUser returns a user's applications, newest first, with a flag for
// whether each one has a registered bathroom.
func (s *ApplicationService) ListByUser(userID uint) ([]models.CollaboratorApplication, map[uint]bool, error) {
	var apps []models.CollaboratorApplication
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list applications: %w", err)
	}

	hasBathroom := make(map[uint]bool, len(apps))
	if len(apps) > 0 {
		ids := make([]uint, 0, len(apps))
		for _, app := range apps {
			ids = append(ids, app.ID)
		}
		var bathrooms []models.Bathroom
		if err := s.db.Where("application_id IN ?", ids).Find(&bathrooms).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to load bathrooms: %w", err)
		}
		for _, b := range bathrooms {
			hasBathroom[b.ApplicationID] = true
		}
	}

	return apps, hasBathroom, nil
}

// CreateBathroom registers the single bathroom for one of the user's
// approved businesses.
func (s *ApplicationService) CreateBathroom(userID, applicationID uint) (*models.Bathroom, error) {
	var app models.CollaboratorApplication
	err := s.db.Where("id = ? AND user_id = ?", applicationID, userID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	if app.Status != models.StatusApproved {
		return nil, ErrNotApprovedYet
	}

	var existing models.Bathroom
	if err := s.db.Where("application_id = ?", app.ID).First(&existing).Error; err == nil {
		return nil, ErrBathroomExists
	}

	bathroom := models.Bathroom{
		ApplicationID: app.ID,
		IsActive:      true,
	}
	if err := s.db.Create(&bathroom).Error; err != nil {
		return nil, fmt.Errorf("failed to create bathroom: %w", err)
	}

	log.Printf("Bathroom registered for application %d", app.ID)
	return &bathroom, nil
}

// Decide applies an admin approve/reject decision and keeps the owner's
// role in sync: approved owners become collaborators, rejected ones fall
// back to customer.
func (s *ApplicationService) Decide(applicationID uint, action string) (*models.CollaboratorApplication, error) {
	if action != "approve" && action != "reject" {
		return nil, ErrInvalidDecision
	}

	var app models.CollaboratorApplication
	err := s.db.Where("id = ?", applicationID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	status := models.StatusRejected
	role := models.RoleCustomer
	if action == "approve" {
		status = models.StatusApproved
		role = models.RoleCollaborator
	}

	if err := s.db.Model(&app).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	if err := s.db.Model(&models.User{}).Where("id = ? AND is_staff = ?", app.UserID, false).
		Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update owner role: %w", err)
	}

	app.Status = status
	log.Printf("Application %d %sd by admin", app.ID, action)
	return &app, nil
}

// Overview aggregates the counters shown on the admin dashboard.
type Overview struct {
	TotalUsers           int64                            `json:"users"`
	TotalCustomers       int64                            `json:"customers"`
	TotalCollaborators   int64                            `json:"collaborators"`
	TotalStaff           int64                            `json:"staff"`
	NewUsersWeek         int64                            `json:"new_users_week"`
	NewApplicationsWeek  int64                            `json:"new_collaborators_week"`
	PendingApplications  int64                            `json:"pending_collaborators"`
	RejectedApplications int64                            `json:"rejected_collaborators"`
	RecentUsers          []models.User                    `json:"recent_users"`
	RecentApplications   []models.CollaboratorApplication `json:"recent_applications"`
}

// GetOverview computes dashboard totals plus the most recent users and
// applications.
func (s *ApplicationService) GetOverview() (*Overview, error) {
	var o Overview
	lastWeek := time.Now().AddDate(0, 0, -7)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&o.TotalUsers, s.db.Model(&models.User{})},
		{&o.TotalCustomers, s.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer)},
		{&o.TotalCollaborators, s.db.Model(&models.CollaboratorApplication{}).Where("status = ?", models.StatusApproved)},
		{&o.TotalStaff, s.db.Model(&models.User{}).Where("is_staff = ?", true)},
		{&o.NewUsersWeek, s.db.Model(&models.User{}).Where("created_at >= ?", lastWeek)},
		{&o.NewApplicationsWeek, s.db.Model(&models.CollaboratorApplication{}).Where("created_at >= ?", lastWeek)},
		{&o.PendingApplications, s.db.Model(&models.CollaboratorApplication{}).Where("status = ?", models.StatusPending)},
		{&o.RejectedApplications, s.db.Model(&models.CollaboratorApplication{}).Where("status = ?", models.StatusRejected)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	if err := s.db.Order("created_at DESC").Limit(25).Find(&o.RecentUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}
	if err := s.db.Preload("User").Order("created_at DESC").Limit(25).Find(&o.RecentApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent applications: %w", err)
	}

	return &o, nil
}
