package favorites

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookfinder/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_favorites_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Favorite{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_AddAndHasKey(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Add(&entities.Favorite{AccountID: 1, Key: "/works/OL1W", Title: "Dune"}))

	exists, err := repo.HasKey(1, "/works/OL1W")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.HasKey(2, "/works/OL1W")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_ListForAccount_Ordering(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Add(&entities.Favorite{AccountID: 1, Key: "a", Title: "Dune"}))
	require.NoError(t, repo.Add(&entities.Favorite{AccountID: 1, Key: "b", Title: "Foundation"}))
	require.NoError(t, repo.Add(&entities.Favorite{AccountID: 2, Key: "c", Title: "Hyperion"}))

	favs, err := repo.ListForAccount(1)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "Foundation", favs[0].Title) // most recently added first
	assert.Equal(t, "Dune", favs[1].Title)
}

func TestRepository_RemoveByKey(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Add(&entities.Favorite{AccountID: 1, Key: "a", Title: "Dune"}))
	require.NoError(t, repo.Add(&entities.Favorite{AccountID: 2, Key: "a", Title: "Dune"}))

	require.NoError(t, repo.RemoveByKey(1, "a"))

	count, err := repo.CountForAccount(1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other accounts keep their copy.
	count, err = repo.CountForAccount(2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	assert.NoError(t, repo.RemoveByKey(1, "a")) // absent key is a no-op
}
