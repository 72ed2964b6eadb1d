package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMemoryDBAppliesMigrations(t *testing.T) {
	database, err := InitMemoryDB()
	require.NoError(t, err)
	defer database.Close()

	var tables []string
	err = database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)

	for _, name := range []string{"brackets", "operators", "sessions", "teams"} {
		assert.Contains(t, tables, name)
	}
}

func TestRunMigrationsTwice(t *testing.T) {
	database, err := InitDB(filepath.Join(t.TempDir(), "brackets.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database.DB))
	require.NoError(t, RunMigrations(database.DB), "second run is a no-op")

	var fk int
	require.NoError(t, database.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}
