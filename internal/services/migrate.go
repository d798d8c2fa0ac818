package services

import (
	"log"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"gorm.io/gorm"
)

// legacySeedPropertyIDs are the ids of the demo records an early data
// revision shipped with. They were retired but can still be present in
// stores seeded by that revision.
var legacySeedPropertyIDs = []uint64{1, 2, 3, 4}

// PruneLegacySeeds removes retired demo seed records as an explicit startup
// migration: the legacy properties, units carrying those legacy ids, and
// units orphaned by the property removal. Read paths never prune; a store
// with no legacy records passes through untouched. Audit history is kept.
func PruneLegacySeeds(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		properties := tx.Where("property_id IN ?", legacySeedPropertyIDs).
			Delete(&models.Property{})
		if properties.Error != nil {
			return properties.Error
		}

		units := tx.
			Where("unit_id IN ?", legacySeedPropertyIDs).
			Or("property_id IN ?", legacySeedPropertyIDs).
			Delete(&models.Unit{})
		if units.Error != nil {
			return units.Error
		}

		// Units whose property no longer exists at all.
		orphans := tx.
			Where("property_id NOT IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Property{}).Select("property_id")).
			Delete(&models.Unit{})
		if orphans.Error != nil {
			return orphans.Error
		}

		removed := properties.RowsAffected + units.RowsAffected + orphans.RowsAffected
		if removed > 0 {
			log.Printf("Pruned legacy seed records: %d properties, %d units (%d orphaned)",
				properties.RowsAffected, units.RowsAffected, orphans.RowsAffected)
		}
		return nil
	})
}
