// data.go
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

package helpers

import (
	"testing"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/gorm"
)

// CreateTestProperty creates a property with its generated units
func CreateTestProperty(t *testing.T, db *gorm.DB, name, propertyType string, unitCount int) *models.Property {
	t.Helper()
	property, err := services.CreateProperty(db, services.PropertyInput{
		Name:   name,
		City:   "Springfield",
		Type:   propertyType,
		Status: "ACTIVE",
		Units:  types.FlexInt(unitCount),
	})
	if err != nil {
		t.Fatalf("Failed to create property %s: %v", name, err)
	}
	return property
}

// PropertyUnits returns the generated units of a property in unit number order
func PropertyUnits(t *testing.T, db *gorm.DB, propertyID uint64) []models.Unit {
	t.Helper()
	units, err := services.ListUnits(db, services.UnitQuery{PropertyID: propertyID})
	if err != nil {
		t.Fatalf("Failed to list units for property %d: %v", propertyID, err)
	}
	return units
}

// TestAssignee builds a valid allocation payload for a tenant or owner
func TestAssignee(name, email string) services.AssigneeInput {
	return services.AssigneeInput{
		FullName:       name,
		Email:          email,
		Age:            types.FlexInt(30),
		Mobile:         "5551234567",
		DocumentType:   "Passport",
		DocumentNumber: "P1234567",
	}
}

// AllocateTestTenant assigns a tenant to a unit
func AllocateTestTenant(t *testing.T, db *gorm.DB, unitID uint64, name, email string) *models.Unit {
	t.Helper()
	result, err := services.AllocateUnit(db, unitID, models.AllocationTenant, TestAssignee(name, email), services.AllocationMeta{})
	if err != nil {
		t.Fatalf("Failed to allocate tenant %s to unit %d: %v", email, unitID, err)
	}
	return result.Unit
}

// CreateTestUser registers a directory user
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, role string) *models.DirectoryUser {
	t.Helper()
	user, err := services.AddDirectoryUser(db, services.DirectoryUserInput{
		FullName: name,
		Email:    email,
		Role:     role,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}
