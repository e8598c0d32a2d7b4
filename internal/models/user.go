package models

import (
	"time"
)

// Role values stored on User.Role
const (
	RoleCustomer     = "customer"
	RoleCollaborator = "collaborator"
)

// User represents a registered account in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber  string    `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;default:customer" json:"role"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// EffectiveRole resolves the role shown to clients, where staff wins over
// whatever the profile says.
func (u *User) EffectiveRole() string {
	if u.IsStaff {
		return "admin"
	}
	if u.Role == "" {
		return RoleCustomer
	}
	return u.Role
}
