package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/store"
)

func TestSnapshotInventoryMirrorsCollections(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()

	s, err := store.New(dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	property := createTestProperty(t, db, "Palm Crest", models.PropertyTypePG, 1)
	units, _ := ListUnits(db, UnitQuery{PropertyID: property.PropertyID})
	if _, err := AllocateUnit(db, units[0].UnitID, models.AllocationTenant,
		testAssignee("Ava Brooks", "ava@example.com"), AllocationMeta{}); err != nil {
		t.Fatal(err)
	}

	if err := SnapshotInventory(db, s); err != nil {
		t.Fatalf("SnapshotInventory failed: %v", err)
	}

	for _, key := range []string{"properties", "units", "unit_audit", "users"} {
		raw, err := os.ReadFile(filepath.Join(dir, key+".json"))
		if err != nil {
			t.Fatalf("Collection %s not written: %v", key, err)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			t.Fatalf("Collection %s is not a JSON array: %v", key, err)
		}
		if len(items) != 1 {
			t.Errorf("Collection %s: expected 1 record, got %d", key, len(items))
		}
	}

	// Passwords never reach the mirror
	raw, _ := os.ReadFile(filepath.Join(dir, "users.json"))
	var users []map[string]interface{}
	if err := json.Unmarshal(raw, &users); err != nil {
		t.Fatal(err)
	}
	if _, found := users[0]["password"]; found {
		t.Error("Snapshot must not serialize passwords")
	}
}

func TestSnapshotSurfacesStorageLimit(t *testing.T) {
	db := setupTestDB(t)

	s, err := store.New(t.TempDir(), 8)
	if err != nil {
		t.Fatal(err)
	}

	createTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 1)

	err = SnapshotInventory(db, s)
	if err == nil {
		t.Fatal("Expected storage limit error")
	}
	if _, ok := err.(*store.StorageLimitError); !ok {
		t.Errorf("Expected StorageLimitError, got %T", err)
	}
}

func TestSeedDemoRestoresAuditLedger(t *testing.T) {
	source := setupTestDB(t)
	s, err := store.New(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	property := createTestProperty(t, source, "Maple Business Hub", models.PropertyTypePG, 1)
	units, _ := ListUnits(source, UnitQuery{PropertyID: property.PropertyID})
	if _, err := AllocateUnit(source, units[0].UnitID, models.AllocationTenant,
		testAssignee("Ava Brooks", "ava@example.com"), AllocationMeta{}); err != nil {
		t.Fatal(err)
	}
	if _, err := RemoveTenantFromUnit(source, units[0].UnitID, "ava@example.com", AllocationMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := SnapshotInventory(source, s); err != nil {
		t.Fatal(err)
	}

	// The database file is recreated while the snapshot files survive
	restored := setupTestDB(t)
	if err := SeedDemo(restored, s); err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}

	entries, err := UnitAudit(restored, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected the full ledger restored, got %d entries", len(entries))
	}
	if entries[0].AllocationType != models.AllocationTenantRemoved {
		t.Errorf("Ledger order lost: %s first", entries[0].AllocationType)
	}
	if entries[1].AssigneeEmail != "ava@example.com" {
		t.Errorf("Ledger content lost: %+v", entries[1])
	}
}

func TestSeedDemoFromEmbeddedCollections(t *testing.T) {
	db := setupTestDB(t)

	s, err := store.New(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := SeedDemo(db, s); err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}

	properties, err := ListProperties(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(properties) != 4 {
		t.Fatalf("Expected 4 seeded properties, got %d", len(properties))
	}
	// Seed ids stay clear of the retired legacy range
	for _, property := range properties {
		if property.PropertyID <= 4 {
			t.Errorf("Seed property id %d collides with the legacy range", property.PropertyID)
		}
	}

	units, err := ListUnits(db, UnitQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 24 {
		t.Errorf("Expected 24 seeded units, got %d", len(units))
	}

	user, err := FindUserByEmail(db, "admin@renterz.com")
	if err != nil || user == nil {
		t.Fatalf("Seed admin not found: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("Unexpected seed admin role: %s", user.Role)
	}

	// A second call against a populated database is a no-op
	if err := SeedDemo(db, s); err != nil {
		t.Fatalf("Second SeedDemo failed: %v", err)
	}
	properties, _ = ListProperties(db)
	if len(properties) != 4 {
		t.Errorf("Reseed duplicated records: %d properties", len(properties))
	}
}
