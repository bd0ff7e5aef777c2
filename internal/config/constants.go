package config

const (
	// DefaultDatabasePath is the default path for the local account database
	DefaultDatabasePath = "./bookfinder.db"

	// DefaultCatalogBaseURL is the Open Library API root
	DefaultCatalogBaseURL = "https://openlibrary.org"

	// DefaultCoversBaseURL is the Open Library covers CDN root
	DefaultCoversBaseURL = "https://covers.openlibrary.org"

	// DefaultUserAgent identifies this client to the Open Library API
	DefaultUserAgent = "BookFinder/1.0 (https://github.com/mrlokans/bookfinder)"
)
