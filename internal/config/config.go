package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Catalog
		Search
		Auth
	}

	Database struct {
		Path string
	}
	Catalog struct {
		BaseURL           string
		CoversBaseURL     string
		UserAgent         string
		Timeout           time.Duration
		RateLimitInterval time.Duration
	}
	Search struct {
		PageSize       int
		DebounceWindow time.Duration
	}
	Auth struct {
		BcryptCost      int
		DefaultLanguage string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)

	// Catalog defaults
	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog_covers_base_url", DefaultCoversBaseURL)
	v.SetDefault("catalog_user_agent", DefaultUserAgent)
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("catalog_rate_limit_interval", "1s")

	// Search defaults
	v.SetDefault("search_page_size", 20)
	v.SetDefault("search_debounce_window", "450ms")

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 10) // bcrypt cost factor
	v.SetDefault("auth_default_language", "eng")

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Catalog: Catalog{
			BaseURL:           v.GetString("CATALOG_BASE_URL"),
			CoversBaseURL:     v.GetString("CATALOG_COVERS_BASE_URL"),
			UserAgent:         v.GetString("CATALOG_USER_AGENT"),
			Timeout:           v.GetDuration("CATALOG_TIMEOUT"),
			RateLimitInterval: v.GetDuration("CATALOG_RATE_LIMIT_INTERVAL"),
		},
		Search: Search{
			PageSize:       v.GetInt("SEARCH_PAGE_SIZE"),
			DebounceWindow: v.GetDuration("SEARCH_DEBOUNCE_WINDOW"),
		},
		Auth: Auth{
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			DefaultLanguage: v.GetString("AUTH_DEFAULT_LANGUAGE"),
		},
	}
}
