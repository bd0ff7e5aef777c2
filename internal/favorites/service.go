// Package favorites implements the per-user favorite book list. All
// operations are scoped to the account signed in through the session
// service, and every mutation is written through to the store immediately,
// so switching users never shows another account's list.
package favorites

import (
	"fmt"

	"github.com/mrlokans/bookfinder/internal/catalog"
	favoritesdb "github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/session"
)

// Service manages the signed-in account's favorites.
type Service struct {
	repo     *favoritesdb.Repository
	sessions *session.Service
}

// NewService creates a favorites service scoped by the given session service.
func NewService(repo *favoritesdb.Repository, sessions *session.Service) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Key resolves the identity of a book for the favorites list: the work key,
// falling back to the edition key, falling back to the title.
func Key(book catalog.BookSummary) string {
	if book.WorkKey != "" {
		return book.WorkKey
	}
	if book.EditionKey != "" {
		return book.EditionKey
	}
	return book.Title
}

// Add saves a book to the front of the current account's favorites.
// Adding a book whose key is already saved is a no-op.
func (s *Service) Add(book catalog.BookSummary) error {
	accountID, ok := s.sessions.CurrentAccountID()
	if !ok {
		return session.ErrNotSignedIn
	}

	key := Key(book)
	exists, err := s.repo.HasKey(accountID, key)
	if err != nil {
		return fmt.Errorf("failed to check favorite: %w", err)
	}
	if exists {
		return nil
	}

	fav := &entities.Favorite{
		AccountID:   accountID,
		Key:         key,
		Title:       book.Title,
		AuthorNames: book.AuthorNames,
	}
	if book.CoverImageID != 0 {
		coverID := book.CoverImageID
		fav.CoverImageID = &coverID
	}

	if err := s.repo.Add(fav); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// RemoveByKey removes any favorite with the given key. Removing an absent
// key is a no-op.
func (s *Service) RemoveByKey(key string) error {
	accountID, ok := s.sessions.CurrentAccountID()
	if !ok {
		return session.ErrNotSignedIn
	}
	return s.repo.RemoveByKey(accountID, key)
}

// List returns the current account's favorites, most recently added first,
// or an empty list when nobody is signed in. The store is queried on every
// call so the result always reflects the latest mutation and the active
// session.
func (s *Service) List() ([]entities.Favorite, error) {
	accountID, ok := s.sessions.CurrentAccountID()
	if !ok {
		return []entities.Favorite{}, nil
	}
	return s.repo.ListForAccount(accountID)
}
