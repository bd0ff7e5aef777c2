// Package favorites provides database operations for per-account favorite books.
//
// # Usage
//
//	repo := favorites.NewRepository(db)
//	favs, err := repo.ListForAccount(accountID)
package favorites

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favorites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a favorite for an account. The (account, key) pair is unique;
// callers are expected to check HasKey first.
func (r *Repository) Add(fav *entities.Favorite) error {
	return r.db.Create(fav).Error
}

// HasKey reports whether the account already saved a favorite with this key.
func (r *Repository) HasKey(accountID uint, key string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("account_id = ? AND key = ?", accountID, key).
		Count(&count).Error
	return count > 0, err
}

// RemoveByKey deletes any favorite with the given key for the account.
// Removing an absent key is a no-op.
func (r *Repository) RemoveByKey(accountID uint, key string) error {
	return r.db.Where("account_id = ? AND key = ?", accountID, key).
		Delete(&entities.Favorite{}).Error
}

// ListForAccount returns the account's favorites, most recently added first.
func (r *Repository) ListForAccount(accountID uint) ([]entities.Favorite, error) {
	var favs []entities.Favorite
	err := r.db.Where("account_id = ?", accountID).
		Order("id DESC").
		Find(&favs).Error
	return favs, err
}

// CountForAccount returns the number of favorites the account saved.
func (r *Repository) CountForAccount(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
