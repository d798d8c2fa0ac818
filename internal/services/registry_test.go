package services

import (
	"testing"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Property{},
		&models.Unit{},
		&models.UnitAuditEntry{},
		&models.DirectoryUser{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestProperty(t *testing.T, db *gorm.DB, name, propertyType string, units int) *models.Property {
	t.Helper()
	property, err := CreateProperty(db, PropertyInput{
		Name:  name,
		City:  "Miami",
		Type:  propertyType,
		Units: types.FlexInt(units),
	})
	if err != nil {
		t.Fatalf("Failed to create property: %v", err)
	}
	return property
}

func TestPropertyPrefix(t *testing.T) {
	cases := []struct {
		name   string
		expect string
	}{
		{"Palm Crest", "PC"},
		{"Palm Crest Residency", "PCR"},
		{"Skyline", "S"},
		{"Rivera Studio Park West", "RSP"},
		{"   ", "UNT"},
		{"123 456", "UNT"},
	}

	for _, tc := range cases {
		if got := propertyPrefix(tc.name); got != tc.expect {
			t.Errorf("propertyPrefix(%q) = %q, expected %q", tc.name, got, tc.expect)
		}
	}
}

func TestUnitNumberFormat(t *testing.T) {
	if got := unitNumber("PC", 1); got != "PC-001" {
		t.Errorf("Expected PC-001, got %s", got)
	}
	if got := unitNumber("PC", 12); got != "PC-012" {
		t.Errorf("Expected PC-012, got %s", got)
	}
	if got := unitNumber("MBH", 123); got != "MBH-123" {
		t.Errorf("Expected MBH-123, got %s", got)
	}
}

func TestCreatePropertyGeneratesUnitBatch(t *testing.T) {
	db := setupTestDB(t)

	property := createTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 5)

	units, err := ListUnits(db, UnitQuery{PropertyID: property.PropertyID})
	if err != nil {
		t.Fatalf("ListUnits failed: %v", err)
	}
	if len(units) != 5 {
		t.Fatalf("Expected 5 units, got %d", len(units))
	}

	if units[0].UnitNo != "PC-001" || units[1].UnitNo != "PC-002" {
		t.Errorf("Unexpected unit numbers: %s, %s", units[0].UnitNo, units[1].UnitNo)
	}

	// Four units per floor
	for i, unit := range units {
		expectFloor := i/4 + 1
		if unit.Floor != expectFloor {
			t.Errorf("Unit %s floor = %d, expected %d", unit.UnitNo, unit.Floor, expectFloor)
		}
		if unit.Status != models.UnitStatusAvailable {
			t.Errorf("New unit %s status = %s", unit.UnitNo, unit.Status)
		}
		if unit.SharingCapacity != models.DefaultSharingCapacityStandard {
			t.Errorf("Standard unit capacity = %d", unit.SharingCapacity)
		}
	}
}

func TestCreatePGPropertyUsesSharedCapacityDefault(t *testing.T) {
	db := setupTestDB(t)

	property := createTestProperty(t, db, "Maple Business Hub", models.PropertyTypePG, 2)

	units, err := ListUnits(db, UnitQuery{PropertyID: property.PropertyID})
	if err != nil {
		t.Fatalf("ListUnits failed: %v", err)
	}
	for _, unit := range units {
		if unit.SharingCapacity != models.DefaultSharingCapacityPG {
			t.Errorf("PG unit capacity = %d, expected %d", unit.SharingCapacity, models.DefaultSharingCapacityPG)
		}
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	db := setupTestDB(t)

	cases := []struct {
		name  string
		input PropertyInput
	}{
		{"missing name", PropertyInput{City: "Miami", Units: 1}},
		{"missing city", PropertyInput{Name: "Palm Crest", Units: 1}},
		{"zero units", PropertyInput{Name: "Palm Crest", City: "Miami"}},
		{"unknown type", PropertyInput{Name: "Palm Crest", City: "Miami", Type: "Castle", Units: 1}},
	}

	for _, tc := range cases {
		_, err := CreateProperty(db, tc.input)
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if _, ok := err.(*types.ValidationError); !ok {
			t.Errorf("%s: expected ValidationError, got %T", tc.name, err)
		}
	}
}

func TestUpdatePropertyPropagatesToUnits(t *testing.T) {
	db := setupTestDB(t)

	property := createTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 2)

	_, err := UpdateProperty(db, property.PropertyID, PropertyInput{
		Name: "Palm Crest Residency",
		Type: models.PropertyTypeBuilding,
	})
	if err != nil {
		t.Fatalf("UpdateProperty failed: %v", err)
	}

	units, err := ListUnits(db, UnitQuery{PropertyID: property.PropertyID})
	if err != nil {
		t.Fatalf("ListUnits failed: %v", err)
	}
	for _, unit := range units {
		if unit.Property != "Palm Crest Residency" {
			t.Errorf("Unit %s property name not propagated: %s", unit.UnitNo, unit.Property)
		}
		if unit.PropertyType != models.PropertyTypeBuilding {
			t.Errorf("Unit %s property type not propagated: %s", unit.UnitNo, unit.PropertyType)
		}
		// Existing unit numbers are not regenerated
		if unit.UnitNo[:3] != "PC-" {
			t.Errorf("Unit number regenerated: %s", unit.UnitNo)
		}
	}
}

func TestUpdatePropertyNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := UpdateProperty(db, 999, PropertyInput{Name: "Ghost"})
	if _, ok := err.(*types.NotFoundError); !ok {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestDeletePropertyCascadesUnitsKeepsAudit(t *testing.T) {
	db := setupTestDB(t)

	property := createTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 1)

	units, _ := ListUnits(db, UnitQuery{PropertyID: property.PropertyID})
	if len(units) != 1 {
		t.Fatal("Expected one unit")
	}

	_, err := AllocateUnit(db, units[0].UnitID, models.AllocationTenant,
		testAssignee("Ava Brooks", "ava@example.com"), AllocationMeta{})
	if err != nil {
		t.Fatalf("AllocateUnit failed: %v", err)
	}

	if err := DeleteProperty(db, property.PropertyID); err != nil {
		t.Fatalf("DeleteProperty failed: %v", err)
	}

	var unitCount int64
	db.Model(&models.Unit{}).Count(&unitCount)
	if unitCount != 0 {
		t.Errorf("Expected units removed, found %d", unitCount)
	}

	// The ledger survives its subjects
	entries, err := UnitAudit(db, nil)
	if err != nil {
		t.Fatalf("UnitAudit failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected audit history retained, got %d entries", len(entries))
	}

	// The auto-provisioned account is orphaned and collected
	user, err := FindUserByEmail(db, "ava@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Error("Expected orphaned assignment user to be removed")
	}
}

func TestDeletePropertyRetainsUsersStillReferenced(t *testing.T) {
	db := setupTestDB(t)

	first := createTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 1)
	second := createTestProperty(t, db, "Skyline Heights", models.PropertyTypeApartment, 1)

	firstUnits, _ := ListUnits(db, UnitQuery{PropertyID: first.PropertyID})
	secondUnits, _ := ListUnits(db, UnitQuery{PropertyID: second.PropertyID})

	// The same tenant occupies a unit in both properties
	for _, unitID := range []uint64{firstUnits[0].UnitID, secondUnits[0].UnitID} {
		_, err := AllocateUnit(db, unitID, models.AllocationTenant,
			testAssignee("Ava Brooks", "ava@example.com"), AllocationMeta{})
		if err != nil {
			t.Fatalf("AllocateUnit failed: %v", err)
		}
	}

	if err := DeleteProperty(db, first.PropertyID); err != nil {
		t.Fatalf("DeleteProperty failed: %v", err)
	}

	user, err := FindUserByEmail(db, "ava@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil {
		t.Error("User still referenced by another unit must be retained")
	}
}
