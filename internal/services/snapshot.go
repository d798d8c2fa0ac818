package services

import (
	"log"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/store"
	"gorm.io/gorm"
)

// SnapshotInventory mirrors the four inventory collections into the JSON
// collection store after a mutation, keeping the on-disk layout the browser
// client kept in localStorage. A StorageLimitError propagates to the caller;
// the database mutation that triggered the snapshot has already committed.
func SnapshotInventory(db *gorm.DB, s *store.Store) error {
	var properties []models.Property
	if err := db.Order("property_id asc").Find(&properties).Error; err != nil {
		return err
	}
	if err := store.WriteCollection(s, store.KeyProperties, properties); err != nil {
		return err
	}

	var units []models.Unit
	if err := db.Order("unit_id asc").Find(&units).Error; err != nil {
		return err
	}
	for i := range units {
		if err := NormalizeUnit(&units[i]); err != nil {
			return err
		}
	}
	if err := store.WriteCollection(s, store.KeyUnits, units); err != nil {
		return err
	}

	// Audit mirrors newest first, matching the ledger read order.
	audit, err := UnitAudit(db, nil)
	if err != nil {
		return err
	}
	if err := store.WriteCollection(s, store.KeyUnitAudit, audit); err != nil {
		return err
	}

	users, err := ListDirectoryUsers(db)
	if err != nil {
		return err
	}
	if err := store.WriteCollection(s, store.KeyUsers, users); err != nil {
		return err
	}

	log.Printf("Snapshot written: %d properties, %d units, %d audit entries, %d users",
		len(properties), len(units), len(audit), len(users))
	return nil
}
