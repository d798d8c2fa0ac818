// registry.go
//
// A scalable, high performance drop-in replacement for the renterz browser inventory service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of renterz-unitsdb.
// renterz-unitsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// renterz-unitsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with renterz-unitsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"fmt"
	"strings"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/gorm"
)

// Units generated per floor when a property's batch is created.
const unitsPerFloor = 4

// PropertyInput is the payload for creating or updating a property.
type PropertyInput struct {
	Name   string        `json:"name"`
	City   string        `json:"city"`
	Type   string        `json:"type"`
	Status string        `json:"status"`
	Units  types.FlexInt `json:"units"`
}

// ListProperties returns all registered properties, newest first.
func ListProperties(db *gorm.DB) ([]models.Property, error) {
	var properties []models.Property
	if err := db.Order("property_id desc").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty returns a single property by id.
func GetProperty(db *gorm.DB, propertyID uint64) (*models.Property, error) {
	var property models.Property
	if err := db.First(&property, propertyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, types.NewNotFoundError("Property not found")
		}
		return nil, err
	}
	return &property, nil
}

// CreateProperty registers a property and generates its unit batch in one
// transaction. The batch is fixed at creation: unit numbers, floors and
// sharing capacities are derived here and never regenerated.
func CreateProperty(db *gorm.DB, input PropertyInput) (*models.Property, error) {
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	if name == "" {
		return nil, types.NewValidationError("Property name is required")
	}
	if city == "" {
		return nil, types.NewValidationError("Property city is required")
	}

	propertyType := strings.TrimSpace(input.Type)
	if propertyType == "" {
		propertyType = models.PropertyTypeApartment
	}
	if !models.ValidPropertyType(propertyType) {
		return nil, types.NewValidationError("Unknown property type: %s", propertyType)
	}

	status := strings.ToUpper(strings.TrimSpace(input.Status))
	if status == "" {
		status = models.PropertyStatusActive
	}
	if status != models.PropertyStatusActive && status != models.PropertyStatusInactive {
		return nil, types.NewValidationError("Unknown property status: %s", status)
	}

	unitCount := input.Units.IntOr(0)
	if unitCount < 1 {
		return nil, types.NewValidationError("Property must have at least one unit")
	}

	property := models.Property{
		Name:   name,
		City:   city,
		Type:   propertyType,
		Status: status,
		Units:  unitCount,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		return createUnitsForProperty(tx, &property)
	})
	if err != nil {
		return nil, err
	}

	return &property, nil
}

// UpdateProperty changes a property's descriptive fields. Name and type
// changes propagate to the property's units; the unit count does not change
// after creation.
func UpdateProperty(db *gorm.DB, propertyID uint64, input PropertyInput) (*models.Property, error) {
	var property models.Property

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&property, propertyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewNotFoundError("Property not found")
			}
			return err
		}

		if name := strings.TrimSpace(input.Name); name != "" {
			property.Name = name
		}
		if city := strings.TrimSpace(input.City); city != "" {
			property.City = city
		}
		if propertyType := strings.TrimSpace(input.Type); propertyType != "" {
			if !models.ValidPropertyType(propertyType) {
				return types.NewValidationError("Unknown property type: %s", propertyType)
			}
			property.Type = propertyType
		}
		if status := strings.ToUpper(strings.TrimSpace(input.Status)); status != "" {
			if status != models.PropertyStatusActive && status != models.PropertyStatusInactive {
				return types.NewValidationError("Unknown property status: %s", status)
			}
			property.Status = status
		}

		if err := tx.Save(&property).Error; err != nil {
			return err
		}

		// Units carry denormalized property name and type for display and
		// filtering; keep them in sync.
		return tx.Model(&models.Unit{}).
			Where("property_id = ?", property.PropertyID).
			Updates(map[string]interface{}{
				"property":      property.Name,
				"property_type": property.Type,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &property, nil
}

// DeleteProperty removes a property and its units. Audit entries for those
// units are retained: the ledger is append-only and survives its subjects.
// Auto-provisioned directory users orphaned by the removal are cleaned up.
func DeleteProperty(db *gorm.DB, propertyID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, propertyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewNotFoundError("Property not found")
			}
			return err
		}

		if err := tx.Where("property_id = ?", propertyID).Delete(&models.Unit{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&property).Error; err != nil {
			return err
		}

		return removeOrphanedAssignmentUsers(tx)
	})
}

// createUnitsForProperty generates the unit batch for a newly created
// property: sequential numbers under the property prefix, four units per
// floor, and the sharing capacity default for the property kind.
func createUnitsForProperty(tx *gorm.DB, property *models.Property) error {
	prefix := propertyPrefix(property.Name)
	capacity := models.DefaultSharingCapacityStandard
	if strings.EqualFold(property.Type, models.PropertyTypePG) {
		capacity = models.DefaultSharingCapacityPG
	}

	units := make([]models.Unit, 0, property.Units)
	for i := 0; i < property.Units; i++ {
		units = append(units, models.Unit{
			PropertyID:      property.PropertyID,
			UnitNo:          unitNumber(prefix, i+1),
			Property:        property.Name,
			PropertyType:    property.Type,
			Floor:           i/unitsPerFloor + 1,
			Status:          models.UnitStatusAvailable,
			SharingCapacity: capacity,
		})
	}

	return tx.Create(&units).Error
}

// propertyPrefix derives the unit number prefix from a property name: the
// uppercased initials of its words, capped at three characters. Names that
// yield no letters fall back to "UNT".
func propertyPrefix(name string) string {
	var initials []byte
	for _, word := range strings.Fields(name) {
		r := word[0]
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r >= 'A' && r <= 'Z' {
			initials = append(initials, r)
		}
		if len(initials) == 3 {
			break
		}
	}
	if len(initials) == 0 {
		return "UNT"
	}
	return string(initials)
}

// unitNumber formats a sequential unit number under a prefix, e.g. "PC-001".
func unitNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}
