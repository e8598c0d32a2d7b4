package models

import (
	"time"
)

// AccessCode represents a short-lived, single-use credential issued for a
// business. The raw token is never stored; only its keyed digest survives
// issuance. Records are append-only except for the one-time redemption
// transition (used/used_by/used_at).
type AccessCode struct {
	ID            uint                    `gorm:"primaryKey" json:"id"`
	ApplicationID uint                    `gorm:"not null;index" json:"application_id"`
	Application   CollaboratorApplication `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Code          string                  `gorm:"size:16;index;not null" json:"code"`
	TokenHash     *string                 `gorm:"size:128;index" json:"-"`
	UserID        *uint                   `json:"user_id,omitempty"`
	CreatedByID   *uint                   `json:"created_by_id,omitempty"`
	CreatedBy     *User                   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	ExpiresAt     *time.Time              `json:"expires_at,omitempty"`
	Used          bool                    `gorm:"default:false" json:"used"`
	UsedByID      *uint                   `json:"used_by_id,omitempty"`
	UsedBy        *User                   `gorm:"foreignKey:UsedByID" json:"used_by,omitempty"`
	UsedAt        *time.Time              `json:"used_at,omitempty"`
}

// TableName specifies the table name for AccessCode model
func (AccessCode) TableName() string {
	return "access_codes"
}

// Expired reports whether the code's deadline has passed. A nil ExpiresAt
// means the code never expires.
func (a *AccessCode) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}
