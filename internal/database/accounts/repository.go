// Package accounts provides database operations for local account management.
//
// # Usage
//
//	repo := accounts.NewRepository(db)
//	account, err := repo.GetByUsername("ana")
package accounts

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateAccount creates a new account with its default profile fields.
func (r *Repository) CreateAccount(username, passwordHash, displayName, language string) (*entities.Account, error) {
	account := &entities.Account{
		Username:          username,
		PasswordHash:      passwordHash,
		DisplayName:       displayName,
		PreferredLanguage: language,
	}

	if err := r.db.Create(account).Error; err != nil {
		return nil, err
	}

	return account, nil
}

// GetByUsername retrieves an account by its username (case-sensitive).
func (r *Repository) GetByUsername(username string) (*entities.Account, error) {
	var account entities.Account
	err := r.db.Where("username = ?", username).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by ID.
func (r *Repository) GetByID(id uint) (*entities.Account, error) {
	var account entities.Account
	err := r.db.First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateProfile overwrites the profile fields of an account.
func (r *Repository) UpdateProfile(accountID uint, displayName, language string) error {
	return r.db.Model(&entities.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"display_name":       displayName,
			"preferred_language": language,
		}).Error
}
