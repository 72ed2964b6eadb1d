package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/db"
	"github.com/AdamBeresnev/bracket-engine/internal/metrics"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitMemoryDB()
	require.NoError(t, err, "Failed to set up in-memory DB")
	t.Cleanup(func() { database.Close() })
	return database
}

type testServices struct {
	db        *sqlx.DB
	brackets  *BracketService
	teams     *TeamService
	operators *OperatorService
	metrics   *metrics.Metrics
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	database := setupTestDB(t)
	m := metrics.New()
	teamStore := store.NewTeamStore(database)
	return &testServices{
		db:        database,
		brackets:  NewBracketService(database, store.NewBracketStore(database), teamStore, m),
		teams:     NewTeamService(database, teamStore),
		operators: NewOperatorService(database, store.NewOperatorStore(database)),
		metrics:   m,
	}
}

func importTeams(t *testing.T, s *TeamService, names ...string) []team.Team {
	t.Helper()
	input := ""
	for _, n := range names {
		input += n + "\n"
	}
	teams, err := s.ImportRoster(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, teams, len(names))
	return teams
}
