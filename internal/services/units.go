package services

import (
	"strconv"
	"strings"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Allocation filter chips. OWNER_PENDING and TENANT_PENDING select units
// with open slots on that axis; OCCUPIED and AVAILABLE select on derived
// occupancy, with PG units judged by live tenant count against capacity.
const (
	FilterAll           = "ALL"
	FilterOwnerPending  = "OWNER_PENDING"
	FilterTenantPending = "TENANT_PENDING"
	FilterOccupied      = "OCCUPIED"
	FilterAvailable     = "AVAILABLE"
)

// UnitQuery selects units by free-text search, property and allocation chip.
// All active criteria must match.
type UnitQuery struct {
	Search     string
	PropertyID uint64
	Allocation string
}

// ParseUnitQuery builds a UnitQuery from raw request parameters.
func ParseUnitQuery(search, propertyID, allocation string) UnitQuery {
	query := UnitQuery{
		Search:     strings.TrimSpace(search),
		Allocation: strings.ToUpper(strings.TrimSpace(allocation)),
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(propertyID), 10, 64); err == nil {
		query.PropertyID = id
	}
	return query
}

// ListUnits returns units matching the query, normalized and in unit number
// order. Search and allocation predicates need the decoded occupancy, so
// they are applied after the scan rather than pushed into SQL.
func ListUnits(db *gorm.DB, query UnitQuery) ([]models.Unit, error) {
	scan := db.Clauses(hints.CommentBefore("select", "inventory units list")).
		Order("unit_id asc")
	if query.PropertyID != 0 {
		scan = scan.Where("property_id = ?", query.PropertyID)
	}

	var units []models.Unit
	if err := scan.Find(&units).Error; err != nil {
		return nil, err
	}

	for i := range units {
		if err := NormalizeUnit(&units[i]); err != nil {
			return nil, err
		}
	}

	return FilterUnits(units, query), nil
}

// GetUnit returns a single normalized unit by id.
func GetUnit(db *gorm.DB, unitID uint64) (*models.Unit, error) {
	var unit models.Unit
	if err := db.First(&unit, unitID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, types.NewNotFoundError("Unit not found")
		}
		return nil, err
	}
	if err := NormalizeUnit(&unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// NormalizeUnit recomputes the derived unit fields from the stored occupancy:
// tenant label, sharing capacity and status. Records written by older
// revisions (single tenantProfile, zero capacity) come out in the current
// shape. Normalization happens on read and is idempotent; it never writes.
func NormalizeUnit(unit *models.Unit) error {
	prior := unit.TenantProfile
	if err := unit.SetOccupancy(unit.Occupancy()); err != nil {
		return err
	}
	// The legacy single-profile column keeps whatever value was stored;
	// SetOccupancy only repairs it when it was missing.
	if len(prior.JSON) > 0 && string(prior.JSON) != "null" {
		unit.TenantProfile = prior
	}
	return nil
}

// FilterUnits applies the query predicates to normalized units. The search
// term matches unit number, property name, owner name and tenant names,
// case-insensitively.
func FilterUnits(units []models.Unit, query UnitQuery) []models.Unit {
	matched := make([]models.Unit, 0, len(units))
	for i := range units {
		if matchesQuery(&units[i], query) {
			matched = append(matched, units[i])
		}
	}
	return matched
}

func matchesQuery(unit *models.Unit, query UnitQuery) bool {
	if query.PropertyID != 0 && unit.PropertyID != query.PropertyID {
		return false
	}

	if query.Search != "" {
		text := strings.ToLower(strings.Join([]string{
			unit.UnitNo, unit.Property, unit.Owner, unit.Tenant,
		}, " "))
		if !strings.Contains(text, strings.ToLower(query.Search)) {
			return false
		}
	}

	switch query.Allocation {
	case "", FilterAll:
		return true
	case FilterOwnerPending:
		return unit.Owner == ""
	case FilterTenantPending:
		return hasTenantSlot(unit)
	case FilterOccupied:
		return !hasTenantSlot(unit)
	case FilterAvailable:
		return hasTenantSlot(unit)
	default:
		return true
	}
}

// hasTenantSlot reports whether the unit can take another tenant: a PG unit
// below capacity, or a standard unit with no tenant.
func hasTenantSlot(unit *models.Unit) bool {
	switch occ := unit.Occupancy().(type) {
	case models.SharedOccupancy:
		return occ.TenantCount() < occ.EffectiveCapacity()
	default:
		return occ.TenantCount() == 0
	}
}
