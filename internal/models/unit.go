package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Unit statuses. Status is always derived from occupancy: a PG unit is
// OCCUPIED when the tenant count reaches the sharing capacity, a standard
// unit when it has a tenant. Owner assignment never affects status.
const (
	UnitStatusAvailable = "AVAILABLE"
	UnitStatusOccupied  = "OCCUPIED"
)

// Default sharing capacities per unit kind.
const (
	DefaultSharingCapacityPG       = 3
	DefaultSharingCapacityStandard = 1
)

// Unit represents a single rentable unit inside a property. The persisted
// record keeps the legacy browser-store field layout (owner/tenant display
// names alongside the full profile payloads) so demo snapshots stay
// compatible with the SPA's localStorage collections.
type Unit struct {
	UnitID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID      uint64    `gorm:"index;not null" json:"propertyId"`
	UnitNo          string    `gorm:"size:32;not null" json:"unitNo"`
	Property        string    `gorm:"size:255;not null" json:"property"`
	PropertyType    string    `gorm:"size:32;not null;default:Apartment" json:"propertyType"`
	Floor           int       `gorm:"not null;default:1" json:"floor"`
	Status          string    `gorm:"size:16;not null;default:AVAILABLE" json:"status"`
	Owner           string    `gorm:"size:255" json:"owner"`
	OwnerProfile    JSON      `gorm:"type:json" json:"ownerProfile"`
	Tenant          string    `gorm:"size:1024" json:"tenant"`
	TenantProfile   JSON      `gorm:"type:json" json:"tenantProfile"`
	TenantProfiles  JSON      `gorm:"type:json" json:"tenantProfiles"`
	SharingCapacity int       `gorm:"not null;default:1" json:"sharingCapacity"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// TableName overrides the table name for Unit
func (Unit) TableName() string {
	return "units"
}

// IsPG reports whether the unit belongs to a shared-occupancy (paying guest)
// property.
func (u *Unit) IsPG() bool {
	return strings.EqualFold(strings.TrimSpace(u.PropertyType), PropertyTypePG)
}

// OwnerAssignee decodes the stored owner profile, or nil when no owner is
// assigned.
func (u *Unit) OwnerAssignee() *Assignee {
	return decodeAssignee(u.OwnerProfile)
}

// SetOwner replaces the owner slot. Owner assignment is a single slot with
// no capacity semantics and never changes the unit status.
func (u *Unit) SetOwner(a Assignee) error {
	encoded, err := json.Marshal(a)
	if err != nil {
		return err
	}
	u.Owner = a.FullName
	u.OwnerProfile = jsonColumn(encoded)
	return nil
}

// decodeAssignee unmarshals a profile column, tolerating null/empty values.
func decodeAssignee(col JSON) *Assignee {
	raw := []byte(col.JSON)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var a Assignee
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil
	}
	if a.FullName == "" && a.Email == "" {
		return nil
	}
	return &a
}
