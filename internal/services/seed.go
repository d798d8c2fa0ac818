package services

import (
	"encoding/json"
	"log"

	"github.com/localnerve/renterz-unitsdb/data"
	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/store"
	"gorm.io/gorm"
)

// seedUser is the on-disk user shape. The persisted model never serializes
// passwords, so the seed decodes through this instead.
type seedUser struct {
	UserID   uint64 `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// SeedDemo populates an empty demo database from the JSON collection store,
// which in turn falls back to the embedded seed collections. A store already
// carrying data (an earlier run's snapshot, or operator-edited files) wins
// over the embedded seeds. A non-empty database is left untouched.
func SeedDemo(db *gorm.DB, s *store.Store) error {
	var count int64
	if err := db.Model(&models.Property{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rawProperties, err := s.Read(store.KeyProperties, data.PropertiesSeed)
	if err != nil {
		return err
	}
	var properties []models.Property
	if err := json.Unmarshal(rawProperties, &properties); err != nil {
		return err
	}

	rawUnits, err := s.Read(store.KeyUnits, data.UnitsSeed)
	if err != nil {
		return err
	}
	var units []models.Unit
	if err := json.Unmarshal(rawUnits, &units); err != nil {
		return err
	}

	rawUsers, err := s.Read(store.KeyUsers, data.UsersSeed)
	if err != nil {
		return err
	}
	var seedUsers []seedUser
	if err := json.Unmarshal(rawUsers, &seedUsers); err != nil {
		return err
	}

	// The audit ledger is append-only and must survive a recreated demo
	// database when its snapshot does. The embedded seeds ship no history.
	rawAudit, err := s.Read(store.KeyUnitAudit, []byte(`[]`))
	if err != nil {
		return err
	}
	var audit []models.UnitAuditEntry
	if err := json.Unmarshal(rawAudit, &audit); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(properties) > 0 {
			if err := tx.Create(&properties).Error; err != nil {
				return err
			}
		}
		if len(units) > 0 {
			for i := range units {
				if err := NormalizeUnit(&units[i]); err != nil {
					return err
				}
			}
			if err := tx.Create(&units).Error; err != nil {
				return err
			}
		}
		for _, su := range seedUsers {
			user := models.DirectoryUser{
				UserID:   su.UserID,
				FullName: su.FullName,
				Email:    models.NormalizeEmail(su.Email),
				Mobile:   su.Mobile,
				Role:     su.Role,
				Password: su.Password,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		}
		if len(audit) > 0 {
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
		}

		log.Printf("Seeded demo database: %d properties, %d units, %d users, %d audit entries",
			len(properties), len(units), len(seedUsers), len(audit))
		return nil
	})
}
