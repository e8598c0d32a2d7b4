package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application status values
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// CollaboratorApplication represents a business submitted for collaborator review.
// A user can submit multiple businesses over time.
type CollaboratorApplication struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	UserID           uint             `gorm:"not null;index" json:"user_id"`
	User             User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BusinessName     string           `gorm:"size:255;not null" json:"business_name"`
	Address          string           `gorm:"not null" json:"address"`
	Latitude         decimal.Decimal  `gorm:"type:decimal(9,6);not null" json:"latitude"`
	Longitude        decimal.Decimal  `gorm:"type:decimal(9,6);not null" json:"longitude"`
	BusinessPhone    string           `gorm:"size:30" json:"business_phone"`
	Website          string           `json:"website"`
	Schedule         string           `json:"schedule"`
	Rating           *decimal.Decimal `gorm:"type:decimal(3,2)" json:"rating,omitempty"`
	ReviewCount      uint             `gorm:"default:0" json:"review_count"`
	PhotoURL         string           `json:"photo_url"`
	PlaceTypes       string           `json:"place_types"`
	PlaceID          string           `gorm:"uniqueIndex;size:128;not null" json:"place_id"`
	AddressProofText string           `json:"address_proof_text"`
	CoverageValid    bool             `gorm:"default:true" json:"coverage_valid"`
	Status           string           `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// TableName specifies the table name for CollaboratorApplication model
func (CollaboratorApplication) TableName() string {
	return "collaborator_applications"
}

// Bathroom represents the single restroom registered for an approved business.
type Bathroom struct {
	ID            uint                    `gorm:"primaryKey" json:"id"`
	ApplicationID uint                    `gorm:"uniqueIndex;not null" json:"application_id"`
	Application   CollaboratorApplication `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	IsActive      bool                    `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time               `json:"created_at"`
}

// TableName specifies the table name for Bathroom model
func (Bathroom) TableName() string {
	return "bathrooms"
}
