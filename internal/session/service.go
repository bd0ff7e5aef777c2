package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"github.com/mrlokans/bookfinder/internal/config"
	"github.com/mrlokans/bookfinder/internal/database/accounts"
	"github.com/mrlokans/bookfinder/internal/database/settings"
)

var (
	ErrInvalidInput      = errors.New("username and password are required")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrNotSignedIn       = errors.New("not signed in")
)

// View is the derived read-only view of the signed-in account, recomputed
// from the account store on login and profile updates.
type View struct {
	Username          string
	DisplayName       string
	PreferredLanguage string
}

// ProfileUpdate is a shallow profile merge: nil fields are retained,
// non-nil fields overwrite.
type ProfileUpdate struct {
	DisplayName       *string
	PreferredLanguage *string
}

// Service tracks at most one current user and handles registration, login,
// logout and profile updates. The current username is persisted through the
// settings repository so a session survives process restarts.
type Service struct {
	mu        sync.Mutex
	accounts  *accounts.Repository
	settings  *settings.Repository
	cfg       config.Auth
	current   *View
	currentID uint
}

// NewService creates a session service and restores any persisted session.
// A missing or dangling session pointer restores to "nobody signed in"
// rather than failing.
func NewService(accountRepo *accounts.Repository, settingRepo *settings.Repository, cfg config.Auth) *Service {
	s := &Service{
		accounts: accountRepo,
		settings: settingRepo,
		cfg:      cfg,
	}
	s.restore()
	return s
}

func (s *Service) restore() {
	username, err := s.settings.CurrentUsername()
	if err != nil || username == "" {
		return
	}
	account, err := s.accounts.GetByUsername(username)
	if err != nil {
		// Pointer names an account that no longer exists; treat as absent.
		log.Printf("Ignoring stale session pointer for %q", username)
		return
	}
	s.currentID = account.ID
	s.current = &View{
		Username:          account.Username,
		DisplayName:       account.DisplayName,
		PreferredLanguage: account.PreferredLanguage,
	}
}

// Register creates a new account with a default profile. It does not sign
// the new account in.
func (s *Service) Register(username, password, displayName string) error {
	if username == "" || password == "" {
		return ErrInvalidInput
	}

	_, err := s.accounts.GetByUsername(username)
	if err == nil {
		return ErrDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if displayName == "" {
		displayName = username
	}
	language := s.cfg.DefaultLanguage
	if language == "" {
		language = "eng"
	}

	if _, err := s.accounts.CreateAccount(username, hash, displayName, language); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Login validates credentials and establishes the session. The persisted
// session pointer is updated so the session survives a restart.
func (s *Service) Login(username, password string) (*View, error) {
	account, err := s.accounts.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := CheckPassword(password, account.PasswordHash); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = account.ID
	s.current = &View{
		Username:          account.Username,
		DisplayName:       account.DisplayName,
		PreferredLanguage: account.PreferredLanguage,
	}
	if err := s.settings.SetCurrentUsername(account.Username); err != nil {
		// Session still works for this process; it just won't survive a restart.
		log.Printf("Failed to persist session pointer: %v", err)
	}
	view := *s.current
	return &view, nil
}

// Logout clears the session unconditionally. Idempotent.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.currentID = 0
	if err := s.settings.ClearCurrentUsername(); err != nil {
		log.Printf("Failed to clear session pointer: %v", err)
	}
}

// Current returns a copy of the active session view, or nil if nobody is
// signed in.
func (s *Service) Current() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	view := *s.current
	return &view
}

// CurrentAccountID returns the signed-in account's ID, if any.
func (s *Service) CurrentAccountID() (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID, s.current != nil
}

// UpdateProfile merges the update into the current account's profile and
// refreshes the session view.
func (s *Service) UpdateProfile(update ProfileUpdate) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNotSignedIn
	}

	account, err := s.accounts.GetByID(s.currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	displayName := account.DisplayName
	if update.DisplayName != nil {
		displayName = *update.DisplayName
	}
	language := account.PreferredLanguage
	if update.PreferredLanguage != nil {
		language = *update.PreferredLanguage
	}

	if err := s.accounts.UpdateProfile(account.ID, displayName, language); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.current = &View{
		Username:          account.Username,
		DisplayName:       displayName,
		PreferredLanguage: language,
	}
	view := *s.current
	return &view, nil
}
