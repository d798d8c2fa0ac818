package models

import (
	"time"
)

// Directory user roles, matching the dashboard's role set.
const (
	RoleAdmin  = "ADMIN"
	RoleOwner  = "OWNER"
	RoleTenant = "TENANT"
)

// UserSourceUnitAssignment tags directory accounts that were auto-provisioned
// when an owner or tenant was first bound to a unit. Only these accounts are
// garbage-collected when no unit references their email anymore.
const UserSourceUnitAssignment = "UNIT_ASSIGNMENT"

// DirectoryUser is a login account in the user directory. Accounts are either
// registered directly or auto-provisioned for unit assignment.
type DirectoryUser struct {
	UserID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName       string    `gorm:"size:255;not null" json:"fullName"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Mobile         string    `gorm:"size:32" json:"mobile"`
	Role           string    `gorm:"size:16;not null" json:"role"`
	Password       string    `gorm:"size:255" json:"-"`
	Source         string    `gorm:"size:32" json:"source,omitempty"`
	Age            int       `json:"age,omitempty"`
	DocumentType   string    `gorm:"size:16" json:"documentType,omitempty"`
	DocumentNumber string    `gorm:"size:64" json:"documentNumber,omitempty"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TableName overrides the table name for DirectoryUser
func (DirectoryUser) TableName() string {
	return "directory_users"
}
