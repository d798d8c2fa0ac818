package models

import (
	"time"
)

// Allocation event kinds recorded in the audit ledger.
const (
	AllocationOwner         = "OWNER"
	AllocationTenant        = "TENANT"
	AllocationTenantRemoved = "TENANT_REMOVED"
)

// UnitAuditEntry is one immutable allocation or removal event. The ledger is
// append-only: entries are never mutated, and deleting a unit does not purge
// its history, so entries can reference units that no longer exist.
type UnitAuditEntry struct {
	AuditID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UnitID           uint64    `gorm:"index;not null" json:"unitId"`
	UnitNo           string    `gorm:"size:32" json:"unitNo"`
	Property         string    `gorm:"size:255" json:"property"`
	AllocationType   string    `gorm:"size:16;not null" json:"allocationType"`
	AssigneeName     string    `gorm:"size:255" json:"assigneeName"`
	AssigneeEmail    string    `gorm:"size:255" json:"assigneeEmail"`
	AssignedByUserID *uint64   `json:"assignedByUserId"`
	AssignedByName   string    `gorm:"size:255" json:"assignedByName"`
	AssignedByEmail  string    `gorm:"size:255" json:"assignedByEmail"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName overrides the table name for UnitAuditEntry
func (UnitAuditEntry) TableName() string {
	return "unit_audit_entries"
}
