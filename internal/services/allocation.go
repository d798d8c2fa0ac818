package services

import (
	"regexp"
	"strings"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AssigneeInput is the allocation payload for binding an owner or tenant to
// a unit. SharingCapacity, when present, is validation-only: stored capacity
// changes go through UpdateSharingCapacity.
type AssigneeInput struct {
	FullName        string        `json:"fullName"`
	Email           string        `json:"email"`
	Age             types.FlexInt `json:"age"`
	Mobile          string        `json:"mobile"`
	DocumentType    string        `json:"documentType"`
	DocumentNumber  string        `json:"documentNumber"`
	Photo           string        `json:"photo"`
	DocumentFile    string        `json:"documentFile"`
	SharingCapacity types.FlexInt `json:"sharingCapacity"`
}

// AllocationMeta identifies the acting user recorded on audit entries.
type AllocationMeta struct {
	AssignedByUserID *uint64
	AssignedByName   string
	AssignedByEmail  string
}

// AllocationResult is the outcome of a successful allocation. TempPassword
// is set only when a directory account was auto-provisioned for the
// assignee, and is the caller's one chance to see it.
type AllocationResult struct {
	Unit         *models.Unit `json:"unit"`
	TempPassword string       `json:"tempPassword,omitempty"`
}

// AllocateUnit binds an owner or tenant to a unit and appends one audit
// entry. Owner assignment replaces the single owner slot and never changes
// unit status. Tenant assignment on a PG unit appends to the shared tenant
// list, rejecting duplicates and capacity overruns; on a standard unit it
// replaces the sole tenant. A directory account is auto-provisioned for the
// assignee when none exists for the email.
//
// Mutations run under a row lock, but the engine assumes a single writer
// per unit: concurrent allocations against one unit are serialized by the
// transaction, not reordered.
func AllocateUnit(db *gorm.DB, unitID uint64, allocationType string, input AssigneeInput, meta AllocationMeta) (*AllocationResult, error) {
	assignee, err := validateAssignee(input)
	if err != nil {
		return nil, err
	}

	role := models.RoleTenant
	if allocationType == models.AllocationOwner {
		role = models.RoleOwner
	} else if allocationType != models.AllocationTenant {
		return nil, types.NewValidationError("Unknown allocation type: %s", allocationType)
	}

	result := &AllocationResult{}

	err = db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&unit, unitID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewNotFoundError("Unit not found")
			}
			return err
		}

		tempPassword, err := ensureDirectoryUser(tx, assignee, role)
		if err != nil {
			return err
		}
		result.TempPassword = tempPassword

		if allocationType == models.AllocationOwner {
			if err := unit.SetOwner(*assignee); err != nil {
				return err
			}
		} else {
			switch occ := unit.Occupancy().(type) {
			case models.SharedOccupancy:
				if occ.HasTenant(assignee.NormalizedEmail()) {
					return types.NewConflictError("Tenant already added to this PG unit.")
				}
				// A capacity passed with the allocation bounds this request
				// but is never written back to the unit.
				checkCapacity := input.SharingCapacity.IntOr(occ.EffectiveCapacity())
				if occ.TenantCount() >= checkCapacity {
					return types.NewConflictError("Sharing limit reached for this unit (%d).", checkCapacity)
				}
				occ.Profiles = append(occ.Profiles, *assignee)
				if err := unit.SetOccupancy(occ); err != nil {
					return err
				}
				if err := unit.SetTenantProfile(*assignee); err != nil {
					return err
				}
			case models.SingleOccupancy:
				occ.Tenant = assignee
				if err := unit.SetOccupancy(occ); err != nil {
					return err
				}
			}
		}

		if err := tx.Save(&unit).Error; err != nil {
			return err
		}
		result.Unit = &unit

		return tx.Create(&models.UnitAuditEntry{
			UnitID:           unit.UnitID,
			UnitNo:           unit.UnitNo,
			Property:         unit.Property,
			AllocationType:   allocationType,
			AssigneeName:     assignee.FullName,
			AssigneeEmail:    assignee.Email,
			AssignedByUserID: meta.AssignedByUserID,
			AssignedByName:   meta.AssignedByName,
			AssignedByEmail:  meta.AssignedByEmail,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateSharingCapacity sets a PG unit's sharing capacity and re-derives its
// status. Non-PG units are returned unchanged. Reducing capacity below the
// current tenant count is rejected with the count in the message. Capacity
// changes are not allocation events and append no audit entry.
func UpdateSharingCapacity(db *gorm.DB, unitID uint64, capacity types.FlexInt) (*models.Unit, error) {
	var unit models.Unit

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&unit, unitID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewNotFoundError("Unit not found")
			}
			return err
		}

		occ, ok := unit.Occupancy().(models.SharedOccupancy)
		if !ok {
			return nil
		}

		next := capacity.IntOr(1)
		if occ.TenantCount() > next {
			return types.NewConflictError("Capacity cannot be less than assigned tenants (%d).", occ.TenantCount())
		}

		occ.Capacity = next
		if err := unit.SetOccupancy(occ); err != nil {
			return err
		}
		return tx.Save(&unit).Error
	})
	if err != nil {
		return nil, err
	}

	return &unit, nil
}

// RemoveTenantFromUnit unbinds the tenant with the given email, re-derives
// the unit status, appends a TENANT_REMOVED audit entry carrying the
// pre-removal tenant label, and garbage-collects the tenant's directory
// account when it was auto-provisioned and no unit references it anymore.
func RemoveTenantFromUnit(db *gorm.DB, unitID uint64, tenantEmail string, meta AllocationMeta) (*models.Unit, error) {
	emailKey := models.NormalizeEmail(tenantEmail)
	if emailKey == "" {
		return nil, types.NewValidationError("Tenant email is required")
	}

	var unit models.Unit

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&unit, unitID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewNotFoundError("Unit not found")
			}
			return err
		}

		// The audit entry records who was bound before the removal.
		priorLabel := unit.Tenant

		switch occ := unit.Occupancy().(type) {
		case models.SharedOccupancy:
			remaining := make([]models.Assignee, 0, len(occ.Profiles))
			for _, p := range occ.Profiles {
				if p.NormalizedEmail() != emailKey {
					remaining = append(remaining, p)
				}
			}
			if len(remaining) == len(occ.Profiles) {
				return types.NewNotFoundError("Tenant not found in this PG unit")
			}
			occ.Profiles = remaining
			if err := unit.SetOccupancy(occ); err != nil {
				return err
			}
		case models.SingleOccupancy:
			if occ.Tenant == nil || occ.Tenant.NormalizedEmail() != emailKey {
				return types.NewNotFoundError("Tenant not found in this unit")
			}
			occ.Tenant = nil
			if err := unit.SetOccupancy(occ); err != nil {
				return err
			}
		}

		if err := tx.Save(&unit).Error; err != nil {
			return err
		}

		if err := removeAssignmentUserIfOrphaned(tx, emailKey); err != nil {
			return err
		}

		return tx.Create(&models.UnitAuditEntry{
			UnitID:           unit.UnitID,
			UnitNo:           unit.UnitNo,
			Property:         unit.Property,
			AllocationType:   models.AllocationTenantRemoved,
			AssigneeName:     priorLabel,
			AssigneeEmail:    strings.TrimSpace(tenantEmail),
			AssignedByUserID: meta.AssignedByUserID,
			AssignedByName:   meta.AssignedByName,
			AssignedByEmail:  meta.AssignedByEmail,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &unit, nil
}

// UnitAudit returns audit entries newest first, optionally scoped to one
// unit. Entries survive the units they reference.
func UnitAudit(db *gorm.DB, unitID *uint64) ([]models.UnitAuditEntry, error) {
	query := db.Order("created_at desc, audit_id desc")
	if unitID != nil {
		query = query.Where("unit_id = ?", *unitID)
	}

	var entries []models.UnitAuditEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// validateAssignee normalizes and validates the allocation payload, applying
// the same rules the assignment form enforced.
func validateAssignee(input AssigneeInput) (*models.Assignee, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, types.NewValidationError("Name is required.")
	}

	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return nil, types.NewValidationError("Email is required.")
	}
	if !emailShape.MatchString(email) {
		return nil, types.NewValidationError("Enter a valid email.")
	}

	age := input.Age.Int()
	if age < 18 {
		return nil, types.NewValidationError("Age must be 18 or above.")
	}

	mobile := strings.TrimSpace(input.Mobile)
	if len(mobile) < 8 {
		return nil, types.NewValidationError("Enter a valid mobile number.")
	}

	documentNumber := strings.TrimSpace(input.DocumentNumber)
	if documentNumber == "" {
		return nil, types.NewValidationError("Document number is required.")
	}

	return &models.Assignee{
		FullName:       fullName,
		Email:          email,
		Age:            age,
		Mobile:         mobile,
		DocumentType:   strings.TrimSpace(input.DocumentType),
		DocumentNumber: documentNumber,
		Photo:          input.Photo,
		DocumentFile:   input.DocumentFile,
	}, nil
}
