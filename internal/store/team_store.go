package store

import (
	"context"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/jmoiron/sqlx"
)

type TeamStore struct {
	db *sqlx.DB
}

const (
	getTeamQuery   = "SELECT id, name FROM teams WHERE id = ?"
	listTeamsQuery = "SELECT id, name FROM teams ORDER BY id ASC"
	// Names are unique ignoring case; re-importing a name returns the stored team
	upsertTeamQuery = `
		INSERT INTO teams (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = teams.name
		RETURNING id, name
	`
	renameTeamQuery = "UPDATE teams SET name = ? WHERE id = ?"
)

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

// CreateTeams stores every non-blank name and returns the teams in input
// order. Names already present are returned as stored.
func (s *TeamStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, names []string) ([]team.Team, error) {
	teams := make([]team.Team, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var t team.Team
		if err := tx.GetContext(ctx, &t, upsertTeamQuery, name); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (s *TeamStore) GetTeam(ctx context.Context, id int) (*team.Team, error) {
	var t team.Team
	err := s.db.GetContext(ctx, &t, getTeamQuery, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TeamStore) ListTeams(ctx context.Context) ([]team.Team, error) {
	teams := []team.Team{}
	err := s.db.SelectContext(ctx, &teams, listTeamsQuery)
	return teams, err
}

func (s *TeamStore) RenameTeam(ctx context.Context, id int, name string) error {
	_, err := s.db.ExecContext(ctx, renameTeamQuery, strings.TrimSpace(name), id)
	return err
}

// Directory snapshots every stored team for bracket id resolution.
func (s *TeamStore) Directory(ctx context.Context) (team.Roster, error) {
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	return team.NewRoster(teams), nil
}

func (s *TeamStore) DirectoryTx(ctx context.Context, tx *sqlx.Tx) (team.Roster, error) {
	teams := []team.Team{}
	if err := tx.SelectContext(ctx, &teams, listTeamsQuery); err != nil {
		return nil, err
	}
	return team.NewRoster(teams), nil
}
