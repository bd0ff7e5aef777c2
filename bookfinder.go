// Package bookfinder wires the book search core together: a local account
// store on sqlite, session and favorites management scoped to it, an Open
// Library client and the search controller driving it. The presentation
// layer renders App state; nothing here exposes a server or CLI.
package bookfinder

import (
	"fmt"

	"github.com/mrlokans/bookfinder/internal/catalog"
	"github.com/mrlokans/bookfinder/internal/config"
	"github.com/mrlokans/bookfinder/internal/database"
	"github.com/mrlokans/bookfinder/internal/database/accounts"
	favoritesdb "github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/database/settings"
	"github.com/mrlokans/bookfinder/internal/favorites"
	"github.com/mrlokans/bookfinder/internal/search"
	"github.com/mrlokans/bookfinder/internal/session"
)

// App is the assembled application core.
type App struct {
	Config    *config.Config
	DB        *database.Database
	Catalog   *catalog.Client
	Sessions  *session.Service
	Favorites *favorites.Service
	Search    *search.Controller
}

// New opens the local store and wires all services. A nil config uses the
// environment-backed defaults.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	accountRepo := accounts.NewRepository(db.DB)
	favoriteRepo := favoritesdb.NewRepository(db.DB)
	settingRepo := settings.NewRepository(db.DB)

	sessions := session.NewService(accountRepo, settingRepo, cfg.Auth)
	favs := favorites.NewService(favoriteRepo, sessions)

	client := catalog.NewClient(cfg.Catalog, cfg.Search.PageSize)
	controller := search.NewController(client, cfg.Search.PageSize, cfg.Search.DebounceWindow)

	// A restored session seeds the search language from the profile.
	if view := sessions.Current(); view != nil && view.PreferredLanguage != "" {
		controller.SetLanguage(view.PreferredLanguage)
	}

	return &App{
		Config:    cfg,
		DB:        db,
		Catalog:   client,
		Sessions:  sessions,
		Favorites: favs,
		Search:    controller,
	}, nil
}

// Close releases the underlying store.
func (a *App) Close() error {
	return a.DB.Close()
}
