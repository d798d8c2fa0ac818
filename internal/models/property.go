package models

import (
	"time"
)

// Property types known to the inventory.
const (
	PropertyTypeApartment  = "Apartment"
	PropertyTypeBuilding   = "Building"
	PropertyTypePG         = "PG"
	PropertyTypeCommercial = "Commercial"
	PropertyTypeStudio     = "Studio"
)

// Property statuses.
const (
	PropertyStatusActive   = "ACTIVE"
	PropertyStatusInactive = "INACTIVE"
)

// Property represents a managed property that owns a fixed batch of units.
// The unit count is set at creation time and never adjusted afterwards.
type Property struct {
	PropertyID uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	City       string    `gorm:"size:255;not null" json:"city"`
	Type       string    `gorm:"size:32;not null;default:Apartment" json:"type"`
	Status     string    `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	Units      int       `gorm:"not null" json:"units"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// TableName overrides the table name for Property
func (Property) TableName() string {
	return "properties"
}

// ValidPropertyType reports whether t is one of the known property types.
func ValidPropertyType(t string) bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeBuilding, PropertyTypePG,
		PropertyTypeCommercial, PropertyTypeStudio:
		return true
	}
	return false
}
