package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/jmoiron/sqlx"
)

const maxTeamNameLength = 50

var ErrTeamNameTooLong = errors.New("team name too long")

type TeamService struct {
	db    *sqlx.DB
	store *store.TeamStore
}

func NewTeamService(db *sqlx.DB, store *store.TeamStore) *TeamService {
	return &TeamService{db: db, store: store}
}

// ImportRoster stores one team per non-blank line of input and returns them
// in input order.
func (s *TeamService) ImportRoster(ctx context.Context, input string) ([]team.Team, error) {
	names := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	for _, name := range names {
		if len(strings.TrimSpace(name)) > maxTeamNameLength {
			return nil, fmt.Errorf("%w: '%s' exceeds %d characters", ErrTeamNameTooLong, strings.TrimSpace(name), maxTeamNameLength)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	teams, err := s.store.CreateTeams(ctx, tx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to create teams: %w", err)
	}

	return teams, tx.Commit()
}

// SearchTeams returns every team for an empty query, otherwise fuzzy name
// matches best first.
func (s *TeamService) SearchTeams(ctx context.Context, query string) ([]team.Team, error) {
	roster, err := s.store.Directory(ctx)
	if err != nil {
		return nil, err
	}
	return roster.Search(query), nil
}
