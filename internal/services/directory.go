package services

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/localnerve/renterz-unitsdb/internal/models"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/gorm"
)

// DirectoryUserInput is the payload for registering a directory user.
type DirectoryUserInput struct {
	FullName       string        `json:"fullName"`
	Email          string        `json:"email"`
	Mobile         string        `json:"mobile"`
	Role           string        `json:"role"`
	Password       string        `json:"password"`
	Source         string        `json:"source"`
	Age            types.FlexInt `json:"age"`
	DocumentType   string        `json:"documentType"`
	DocumentNumber string        `json:"documentNumber"`
}

// ListDirectoryUsers returns all directory accounts. Passwords are never
// serialized.
func ListDirectoryUsers(db *gorm.DB) ([]models.DirectoryUser, error) {
	var users []models.DirectoryUser
	if err := db.Order("user_id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindUserByEmail looks up a directory account by normalized email, returning
// nil when none exists.
func FindUserByEmail(db *gorm.DB, email string) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	err := db.Where("lower(email) = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// AddDirectoryUser registers an account, rejecting duplicate emails and
// duplicate non-empty mobiles with a single shared message.
func AddDirectoryUser(db *gorm.DB, input DirectoryUserInput) (*models.DirectoryUser, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, types.NewValidationError("Name is required.")
	}
	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return nil, types.NewValidationError("Email is required.")
	}
	role := strings.ToUpper(strings.TrimSpace(input.Role))
	switch role {
	case models.RoleAdmin, models.RoleOwner, models.RoleTenant:
	default:
		return nil, types.NewValidationError("Unknown role: %s", input.Role)
	}

	mobile := strings.TrimSpace(input.Mobile)

	var count int64
	query := db.Model(&models.DirectoryUser{}).Where("lower(email) = ?", email)
	if mobile != "" {
		query = query.Or("mobile = ?", mobile)
	}
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.NewConflictError("Email or mobile already used")
	}

	user := models.DirectoryUser{
		FullName:       fullName,
		Email:          email,
		Mobile:         mobile,
		Role:           role,
		Password:       input.Password,
		Source:         strings.TrimSpace(input.Source),
		Age:            input.Age.Int(),
		DocumentType:   strings.TrimSpace(input.DocumentType),
		DocumentNumber: strings.TrimSpace(input.DocumentNumber),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RemoveDirectoryUser deletes an account by id.
func RemoveDirectoryUser(db *gorm.DB, userID uint64) error {
	result := db.Delete(&models.DirectoryUser{}, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NewNotFoundError("User not found")
	}
	return nil
}

// ensureDirectoryUser guarantees the assignee has a directory account with
// the role the allocation implies. A missing account is auto-provisioned
// with a temporary password, which is returned exactly once. An existing
// account with a different role rejects the allocation.
func ensureDirectoryUser(tx *gorm.DB, assignee *models.Assignee, role string) (string, error) {
	existing, err := FindUserByEmail(tx, assignee.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if existing.Role != role {
			return "", types.NewConflictError(
				"This email already belongs to %s. Use a %s account email.", existing.Role, role)
		}
		return "", nil
	}

	tempPassword, err := newTempPassword()
	if err != nil {
		return "", err
	}

	_, err = AddDirectoryUser(tx, DirectoryUserInput{
		FullName:       assignee.FullName,
		Email:          assignee.Email,
		Mobile:         assignee.Mobile,
		Role:           role,
		Password:       tempPassword,
		Source:         models.UserSourceUnitAssignment,
		Age:            types.FlexInt(assignee.Age),
		DocumentType:   assignee.DocumentType,
		DocumentNumber: assignee.DocumentNumber,
	})
	if err != nil {
		return "", err
	}
	return tempPassword, nil
}

// removeAssignmentUserIfOrphaned deletes the auto-provisioned account for
// emailKey when no unit references that email anymore. Directly registered
// accounts are never touched.
func removeAssignmentUserIfOrphaned(tx *gorm.DB, emailKey string) error {
	user, err := FindUserByEmail(tx, emailKey)
	if err != nil || user == nil {
		return err
	}
	if user.Source != models.UserSourceUnitAssignment {
		return nil
	}

	referenced, err := unitEmails(tx)
	if err != nil {
		return err
	}
	if referenced[emailKey] {
		return nil
	}

	return tx.Delete(user).Error
}

// removeOrphanedAssignmentUsers sweeps every auto-provisioned account whose
// email no longer appears on any unit. Used after bulk removals such as a
// property delete.
func removeOrphanedAssignmentUsers(tx *gorm.DB) error {
	referenced, err := unitEmails(tx)
	if err != nil {
		return err
	}

	var users []models.DirectoryUser
	if err := tx.Where("source = ?", models.UserSourceUnitAssignment).Find(&users).Error; err != nil {
		return err
	}

	for _, user := range users {
		if referenced[models.NormalizeEmail(user.Email)] {
			continue
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
	}
	return nil
}

// unitEmails collects every normalized owner and tenant email referenced by
// any unit.
func unitEmails(tx *gorm.DB) (map[string]bool, error) {
	var units []models.Unit
	if err := tx.Find(&units).Error; err != nil {
		return nil, err
	}

	emails := make(map[string]bool)
	for i := range units {
		if owner := units[i].OwnerAssignee(); owner != nil && owner.NormalizedEmail() != "" {
			emails[owner.NormalizedEmail()] = true
		}
		for _, tenant := range units[i].Occupancy().Tenants() {
			if tenant.NormalizedEmail() != "" {
				emails[tenant.NormalizedEmail()] = true
			}
		}
	}
	return emails, nil
}

// newTempPassword generates a temporary credential for auto-provisioned
// accounts, in the Temp@xxxxxxxx shape the dashboard surfaces to admins.
func newTempPassword() (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	suffix := make([]byte, 8)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return "Temp@" + string(suffix), nil
}
