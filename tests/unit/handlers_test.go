package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/renterz-unitsdb/internal/handlers"
	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/tests/helpers"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Auto-migrate models
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

// setupApp wires the inventory routes the way the server does, without auth
func setupApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	handler := &handlers.InventoryHandler{DB: db}

	inventory := app.Group("/api/inventory")
	inventory.Get("/properties", handler.GetProperties)
	inventory.Post("/properties", handler.CreateProperty)
	inventory.Get("/properties/:propertyId", handler.GetProperty)
	inventory.Put("/properties/:propertyId", handler.UpdateProperty)
	inventory.Delete("/properties/:propertyId", handler.DeleteProperty)
	inventory.Get("/units", handler.GetUnits)
	inventory.Get("/units/:unitId", handler.GetUnit)
	inventory.Post("/units/:unitId/allocate", handler.AllocateUnit)
	inventory.Put("/units/:unitId/capacity", handler.UpdateSharingCapacity)
	inventory.Delete("/units/:unitId/tenants", handler.RemoveTenant)
	inventory.Get("/audit", handler.GetUnitAudit)
	inventory.Get("/users", handler.GetUsers)
	inventory.Get("/users/lookup", handler.LookupUser)
	inventory.Post("/users", handler.CreateUser)
	inventory.Delete("/users/:userId", handler.DeleteUser)

	return app
}

// send executes a request against the app, encoding body as JSON when present
func send(t *testing.T, app *fiber.App, method, target string, body interface{}) (status int, parsed map[string]interface{}) {
	t.Helper()

	var req = httptest.NewRequest(method, target, nil)
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(encoded))
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	helpers.ParseJSON(t, resp, &parsed)
	return resp.StatusCode, parsed
}

func sendForList(t *testing.T, app *fiber.App, target string) (int, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("GET", target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	var parsed []map[string]interface{}
	helpers.ParseJSON(t, resp, &parsed)
	return resp.StatusCode, parsed
}

// TestCreatePropertyGeneratesUnits tests POST /api/inventory/properties
func TestCreatePropertyGeneratesUnits(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	status, result := send(t, app, "POST", "/api/inventory/properties", map[string]interface{}{
		"name":   "Palm Crest",
		"city":   "Miami",
		"type":   "Apartment",
		"status": "ACTIVE",
		"units":  "2", // the dashboard sends counts as strings
	})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d: %v", status, result)
	}
	if result["ok"] != true {
		t.Errorf("Expected ok envelope, got %v", result)
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected property in data, got %v", result)
	}
	propertyID := uint64(data["id"].(float64))

	status, units := sendForList(t, app, fmt.Sprintf("/api/inventory/units?propertyId=%d", propertyID))
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(units) != 2 {
		t.Fatalf("Expected 2 generated units, got %d", len(units))
	}
	if units[0]["unitNo"] != "PC-001" || units[1]["unitNo"] != "PC-002" {
		t.Errorf("Unexpected unit numbers: %v, %v", units[0]["unitNo"], units[1]["unitNo"])
	}
	for _, unit := range units {
		if unit["status"] != models.UnitStatusAvailable {
			t.Errorf("New unit not AVAILABLE: %v", unit["status"])
		}
		if unit["floor"] != float64(1) {
			t.Errorf("Unexpected floor: %v", unit["floor"])
		}
	}
}

// TestCreatePropertyValidation tests the 400 envelope
func TestCreatePropertyValidation(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	status, result := send(t, app, "POST", "/api/inventory/properties", map[string]interface{}{
		"city":   "Miami",
		"type":   "Apartment",
		"status": "ACTIVE",
		"units":  2,
	})
	if status != 400 {
		t.Fatalf("Expected status 400, got %d", status)
	}
	if result["message"] != "Property name is required" {
		t.Errorf("Unexpected message: %v", result["message"])
	}
	if result["ok"] != false || result["type"] != "createProperty" {
		t.Errorf("Malformed error envelope: %v", result)
	}
	if result["url"] != "/api/inventory/properties" {
		t.Errorf("Envelope missing request url: %v", result["url"])
	}
}

// TestAllocatePGUnitOverHTTP walks a PG unit to capacity through the API
func TestAllocatePGUnitOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	property := helpers.CreateTestProperty(t, db, "Maple Business Hub", models.PropertyTypePG, 1)
	unit := helpers.PropertyUnits(t, db, property.PropertyID)[0]
	target := fmt.Sprintf("/api/inventory/units/%d/allocate", unit.UnitID)

	for i, name := range []string{"Tenant A", "Tenant B", "Tenant C"} {
		status, result := send(t, app, "POST", target, map[string]interface{}{
			"allocationType": "TENANT",
			"assignee":       helpers.TestAssignee(name, fmt.Sprintf("t%d@example.com", i)),
		})
		if status != 200 {
			t.Fatalf("Allocation %d failed with %d: %v", i, status, result)
		}
	}

	// Unit is now at capacity
	status, result := send(t, app, "GET", fmt.Sprintf("/api/inventory/units/%d", unit.UnitID), nil)
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if result["status"] != models.UnitStatusOccupied {
		t.Errorf("Expected OCCUPIED, got %v", result["status"])
	}

	// A fourth tenant is rejected
	status, result = send(t, app, "POST", target, map[string]interface{}{
		"allocationType": "TENANT",
		"assignee":       helpers.TestAssignee("Tenant D", "t9@example.com"),
	})
	if status != 409 {
		t.Fatalf("Expected status 409, got %d", status)
	}
	if result["message"] != "Sharing limit reached for this unit (3)." {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	// Duplicate membership is rejected regardless of remaining capacity
	status, result = send(t, app, "POST", target, map[string]interface{}{
		"allocationType": "TENANT",
		"assignee":       helpers.TestAssignee("Tenant A", "T0@EXAMPLE.COM"),
	})
	if status != 409 {
		t.Fatalf("Expected status 409, got %d", status)
	}
	if result["message"] != "Tenant already added to this PG unit." {
		t.Errorf("Unexpected message: %v", result["message"])
	}
}

// TestAllocateValidationOverHTTP tests assignee validation via the API
func TestAllocateValidationOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	property := helpers.CreateTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 1)
	unit := helpers.PropertyUnits(t, db, property.PropertyID)[0]
	target := fmt.Sprintf("/api/inventory/units/%d/allocate", unit.UnitID)

	assignee := helpers.TestAssignee("Ava Brooks", "not-an-email")
	status, result := send(t, app, "POST", target, map[string]interface{}{
		"allocationType": "TENANT",
		"assignee":       assignee,
	})
	if status != 400 {
		t.Fatalf("Expected status 400, got %d", status)
	}
	if result["message"] != "Enter a valid email." {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	// Missing assignee entirely
	status, result = send(t, app, "POST", target, map[string]interface{}{
		"allocationType": "TENANT",
	})
	if status != 400 {
		t.Fatalf("Expected status 400, got %d", status)
	}
	if result["message"] != "Assignee is required" {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	// Unknown unit
	status, result = send(t, app, "POST", "/api/inventory/units/424242/allocate", map[string]interface{}{
		"allocationType": "TENANT",
		"assignee":       helpers.TestAssignee("Ava Brooks", "ava@example.com"),
	})
	if status != 404 {
		t.Fatalf("Expected status 404, got %d", status)
	}
	if result["message"] != "Unit not found" {
		t.Errorf("Unexpected message: %v", result["message"])
	}
}

// TestUpdateSharingCapacityOverHTTP tests PUT /api/inventory/units/:unitId/capacity
func TestUpdateSharingCapacityOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	property := helpers.CreateTestProperty(t, db, "Maple Business Hub", models.PropertyTypePG, 1)
	unit := helpers.PropertyUnits(t, db, property.PropertyID)[0]
	helpers.AllocateTestTenant(t, db, unit.UnitID, "Tenant A", "a@example.com")
	helpers.AllocateTestTenant(t, db, unit.UnitID, "Tenant B", "b@example.com")

	target := fmt.Sprintf("/api/inventory/units/%d/capacity", unit.UnitID)

	// Below current occupancy is rejected
	status, result := send(t, app, "PUT", target, map[string]interface{}{"sharingCapacity": 1})
	if status != 409 {
		t.Fatalf("Expected status 409, got %d", status)
	}
	if result["message"] != "Capacity cannot be less than assigned tenants (2)." {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	// Down to the occupant count closes the unit
	status, result = send(t, app, "PUT", target, map[string]interface{}{"sharingCapacity": "2"})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d: %v", status, result)
	}
	data := result["data"].(map[string]interface{})
	if data["sharingCapacity"] != float64(2) {
		t.Errorf("Capacity not updated: %v", data["sharingCapacity"])
	}
	if data["status"] != models.UnitStatusOccupied {
		t.Errorf("Expected OCCUPIED at capacity, got %v", data["status"])
	}
}

// TestRemoveTenantOverHTTP tests DELETE /api/inventory/units/:unitId/tenants
func TestRemoveTenantOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	property := helpers.CreateTestProperty(t, db, "Maple Business Hub", models.PropertyTypePG, 1)
	unit := helpers.PropertyUnits(t, db, property.PropertyID)[0]
	helpers.AllocateTestTenant(t, db, unit.UnitID, "Tenant A", "a@example.com")
	helpers.AllocateTestTenant(t, db, unit.UnitID, "Tenant B", "b@example.com")

	target := fmt.Sprintf("/api/inventory/units/%d/tenants", unit.UnitID)

	status, result := send(t, app, "DELETE", target, map[string]interface{}{"email": "a@example.com"})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d: %v", status, result)
	}
	data := result["data"].(map[string]interface{})
	if data["tenant"] != "Tenant B" {
		t.Errorf("Unexpected tenant label after removal: %v", data["tenant"])
	}

	// The removal lands at the head of the audit trail
	status, entries := sendForList(t, app, fmt.Sprintf("/api/inventory/audit?unitId=%d", unit.UnitID))
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 audit entries, got %d", len(entries))
	}
	if entries[0]["allocationType"] != models.AllocationTenantRemoved {
		t.Errorf("Expected TENANT_REMOVED first, got %v", entries[0]["allocationType"])
	}
	if entries[0]["assigneeEmail"] != "a@example.com" {
		t.Errorf("Unexpected audit email: %v", entries[0]["assigneeEmail"])
	}

	// Unknown tenant
	status, result = send(t, app, "DELETE", target, map[string]interface{}{"email": "nobody@example.com"})
	if status != 404 {
		t.Fatalf("Expected status 404, got %d", status)
	}
	if result["message"] != "Tenant not found in this PG unit" {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	// Missing email
	status, result = send(t, app, "DELETE", target, map[string]interface{}{})
	if status != 400 {
		t.Fatalf("Expected status 400, got %d", status)
	}
	if result["message"] != "Tenant email is required" {
		t.Errorf("Unexpected message: %v", result["message"])
	}
}

// TestUsersOverHTTP tests the directory endpoints
func TestUsersOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	status, result := send(t, app, "POST", "/api/inventory/users", map[string]interface{}{
		"fullName": "Ava Brooks",
		"email":    "ava@example.com",
		"mobile":   "5551234567",
		"role":     "TENANT",
		"password": "password123",
	})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d: %v", status, result)
	}
	userID := uint64(result["data"].(map[string]interface{})["id"].(float64))

	// Duplicate email
	status, result = send(t, app, "POST", "/api/inventory/users", map[string]interface{}{
		"fullName": "Other",
		"email":    "AVA@example.com",
		"role":     "OWNER",
	})
	if status != 409 {
		t.Fatalf("Expected status 409, got %d", status)
	}
	if result["message"] != "Email or mobile already used" {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	// Passwords never serialize
	status, users := sendForList(t, app, "/api/inventory/users")
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(users) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(users))
	}
	if _, found := users[0]["password"]; found {
		t.Error("Password must not serialize")
	}

	// Lookup is case-insensitive and trims
	status, result = send(t, app, "GET", "/api/inventory/users/lookup?email=AVA%40example.com", nil)
	if status != 200 {
		t.Fatalf("Expected status 200, got %d: %v", status, result)
	}
	if result["email"] != "ava@example.com" {
		t.Errorf("Unexpected lookup result: %v", result)
	}
	status, result = send(t, app, "GET", "/api/inventory/users/lookup?email=nobody%40example.com", nil)
	if status != 404 {
		t.Fatalf("Expected status 404, got %d", status)
	}

	status, _ = send(t, app, "DELETE", fmt.Sprintf("/api/inventory/users/%d", userID), nil)
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	status, result = send(t, app, "DELETE", fmt.Sprintf("/api/inventory/users/%d", userID), nil)
	if status != 404 {
		t.Fatalf("Expected status 404, got %d", status)
	}
	if result["message"] != "User not found" {
		t.Errorf("Unexpected message: %v", result["message"])
	}
}

// TestAuditAttributionFromSessionActor verifies the acting user stored by the
// auth middleware lands on audit entries
func TestAuditAttributionFromSessionActor(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.InventoryHandler{DB: db}
	// Stand-in for the auth middleware: a validated session stores the
	// flattened user map in locals
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"given_name": "Site Admin",
			"email":      "site-admin@renterz.com",
			"id":         "7",
		})
		return c.Next()
	})
	app.Post("/api/inventory/units/:unitId/allocate", handler.AllocateUnit)
	app.Get("/api/inventory/audit", handler.GetUnitAudit)

	property := helpers.CreateTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 1)
	unit := helpers.PropertyUnits(t, db, property.PropertyID)[0]

	status, result := send(t, app, "POST", fmt.Sprintf("/api/inventory/units/%d/allocate", unit.UnitID), map[string]interface{}{
		"allocationType": "TENANT",
		"assignee":       helpers.TestAssignee("Ava Brooks", "ava@example.com"),
	})
	if status != 200 {
		t.Fatalf("Allocation failed with %d: %v", status, result)
	}

	status, entries := sendForList(t, app, "/api/inventory/audit")
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["assignedByName"] != "Site Admin" {
		t.Errorf("Actor name not recorded: %v", entry["assignedByName"])
	}
	if entry["assignedByEmail"] != "site-admin@renterz.com" {
		t.Errorf("Actor email not recorded: %v", entry["assignedByEmail"])
	}
	if entry["assignedByUserId"] != float64(7) {
		t.Errorf("Actor id not recorded: %v", entry["assignedByUserId"])
	}
}

// TestDeletePropertyOverHTTP verifies units go with the property but audit stays
func TestDeletePropertyOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	property := helpers.CreateTestProperty(t, db, "Palm Crest", models.PropertyTypeApartment, 2)
	unit := helpers.PropertyUnits(t, db, property.PropertyID)[0]
	helpers.AllocateTestTenant(t, db, unit.UnitID, "Ava Brooks", "ava@example.com")

	status, result := send(t, app, "DELETE", fmt.Sprintf("/api/inventory/properties/%d", property.PropertyID), nil)
	if status != 200 {
		t.Fatalf("Expected status 200, got %d: %v", status, result)
	}

	status, units := sendForList(t, app, "/api/inventory/units")
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(units) != 0 {
		t.Errorf("Expected no units after delete, got %d", len(units))
	}

	status, entries := sendForList(t, app, "/api/inventory/audit")
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(entries) != 1 {
		t.Errorf("Audit history must survive the delete, got %d entries", len(entries))
	}
}

// TestUnitFiltersOverHTTP tests the search and allocation chips end to end
func TestUnitFiltersOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(db)

	standard := helpers.CreateTestProperty(t, db, "Skyline Heights", models.PropertyTypeApartment, 2)
	pg := helpers.CreateTestProperty(t, db, "Maple Business Hub", models.PropertyTypePG, 1)

	standardUnits := helpers.PropertyUnits(t, db, standard.PropertyID)
	helpers.AllocateTestTenant(t, db, standardUnits[0].UnitID, "Ava Brooks", "ava@example.com")
	pgUnit := helpers.PropertyUnits(t, db, pg.PropertyID)[0]
	helpers.AllocateTestTenant(t, db, pgUnit.UnitID, "Liam Ray", "liam@example.com")

	// Occupied: the tenant-bearing standard unit only; the PG unit has open slots
	status, units := sendForList(t, app, "/api/inventory/units?allocation=OCCUPIED")
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(units) != 1 || units[0]["unitNo"] != "SH-001" {
		t.Errorf("Unexpected OCCUPIED result: %v", units)
	}

	// Tenant search spans standard and PG occupants
	status, units = sendForList(t, app, "/api/inventory/units?search=liam")
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(units) != 1 || units[0]["unitNo"] != "MBH-001" {
		t.Errorf("Unexpected search result: %v", units)
	}
}
