package entities

import (
	"time"
)

// Account is a locally registered user. Accounts are never deleted; they are
// created by registration and mutated through the session manager.
type Account struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash      string     `gorm:"size:100" json:"-"`
	DisplayName       string     `gorm:"size:100" json:"display_name"`
	PreferredLanguage string     `gorm:"size:8" json:"preferred_language"`
	Favorites         []Favorite `gorm:"foreignKey:AccountID" json:"favorites,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Favorite is a saved book reference owned by one account. The key is derived
// from the catalog work key, falling back to the edition key, then the title.
// At most one favorite per (account, key) pair.
type Favorite struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AccountID    uint      `gorm:"index;uniqueIndex:idx_favorites_account_key" json:"account_id"`
	Key          string    `gorm:"size:512;uniqueIndex:idx_favorites_account_key" json:"key"`
	Title        string    `gorm:"size:512" json:"title"`
	AuthorNames  []string  `gorm:"serializer:json" json:"author_names,omitempty"`
	CoverImageID *int      `json:"cover_image_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
