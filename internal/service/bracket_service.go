package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/metrics"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTargetNotFound   = errors.New("round, group or match not found")
	ErrRoundNotAdded    = errors.New("round cannot be added yet")
	ErrNotSeedable      = errors.New("format does not support automatic seeding")
	ErrDocumentMismatch = errors.New("document id does not match bracket id")
)

// Mirror receives a copy of every saved bracket. Failures are logged and
// never undo the local save.
type Mirror interface {
	Save(ctx context.Context, b *bracket.Bracket) error
}

type BracketService struct {
	db      *sqlx.DB
	store   *store.BracketStore
	teams   *store.TeamStore
	metrics *metrics.Metrics
	mirror  Mirror
}

func NewBracketService(db *sqlx.DB, store *store.BracketStore, teams *store.TeamStore, m *metrics.Metrics) *BracketService {
	return &BracketService{db: db, store: store, teams: teams, metrics: m}
}

func (s *BracketService) WithMirror(mirror Mirror) *BracketService {
	s.mirror = mirror
	return s
}

type CreateBracketInput struct {
	Name            string         `json:"name"`
	Format          bracket.Format `json:"format"`
	TeamCount       int            `json:"total_teams"`
	BestOf          int            `json:"best_of"`
	Public          bool           `json:"is_public"`
	ThirdPlace      bool           `json:"third_place"`
	GrandFinalReset bool           `json:"grand_final_reset"`
}

// CreateBracket stores a new bracket. When a format is given the structure is
// generated straight away, otherwise it is left empty for Initialize.
func (s *BracketService) CreateBracket(ctx context.Context, in CreateBracketInput) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	roster, err := s.teams.DirectoryTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	b := bracket.New(in.Name, roster)
	b.Public = in.Public
	b.Settings.ThirdPlace = in.ThirdPlace
	b.Settings.GrandFinalReset = in.GrandFinalReset
	if in.Format != "" {
		teamCount, bestOf := in.TeamCount, in.BestOf
		if teamCount == 0 {
			teamCount = bracket.DefaultTeamCount
		}
		if bestOf == 0 {
			bestOf = bracket.DefaultBestOf
		}
		if err := b.Initialize(in.Format, teamCount, bestOf); err != nil {
			return nil, err
		}
	}

	record := &store.BracketRecord{ID: b.ID}
	if ownerID, ok := middleware.GetOperatorIDFromContext(ctx); ok {
		record.OwnerID = &ownerID
	}
	if err := s.save(ctx, tx, record, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.metrics.BracketCreated(string(b.Format))
	slog.Info("bracket created", "id", b.ID, "format", b.Format, "teams", b.Settings.TeamCount)
	s.pushMirror(ctx, b)
	return b, nil
}

// GetBracket loads a bracket with its teams resolved against the current
// team list.
func (s *BracketService) GetBracket(ctx context.Context, id string) (*bracket.Bracket, error) {
	record, err := s.store.GetBracket(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.teams.Directory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	return bracket.Unmarshal(record.Document, roster)
}

func (s *BracketService) ListBrackets(ctx context.Context, filter store.BracketFilter) ([]store.BracketRecord, error) {
	return s.store.ListBrackets(ctx, filter)
}

func (s *BracketService) DeleteBracket(ctx context.Context, id string) error {
	if err := s.store.DeleteBracket(ctx, id); err != nil {
		return err
	}
	slog.Info("bracket deleted", "id", id)
	return nil
}

func (s *BracketService) Initialize(ctx context.Context, id string, format bracket.Format, teamCount, bestOf int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		return b.Initialize(format, teamCount, bestOf)
	})
}

func (s *BracketService) Clear(ctx context.Context, id string) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		b.Clear()
		return nil
	})
}

func (s *BracketService) AddRound(ctx context.Context, id string, matchCount int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		r, ok := b.AddRound(matchCount)
		if !ok {
			return ErrRoundNotAdded
		}
		s.roundCreated(b, r)
		return nil
	})
}

func (s *BracketService) SelectTeam(ctx context.Context, id string, roundID int, matchID string, slot int, teamID *int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		if !b.SelectTeam(roundID, matchID, slot, teamID) {
			return fmt.Errorf("%w: %s in %d", ErrTargetNotFound, matchID, roundID)
		}
		return nil
	})
}

func (s *BracketService) SetScore(ctx context.Context, id string, roundID int, matchID string, score1, score2 int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		m := b.Match(roundID, matchID)
		if m == nil {
			return fmt.Errorf("%w: %s in %d", ErrTargetNotFound, matchID, roundID)
		}
		wasCompleted := m.Status == bracket.MatchCompleted
		rounds := len(b.Rounds)
		b.SetScore(roundID, matchID, score1, score2)
		if len(b.Rounds) > rounds {
			s.roundCreated(b, b.Rounds[len(b.Rounds)-1])
		}
		if !wasCompleted && m.Status == bracket.MatchCompleted {
			s.metrics.MatchCompleted(string(b.Format))
			slog.Debug("match completed", "bracket", b.ID, "match", matchID, "winner", m.Winner.ID)
		}
		if champion := b.Champion(); champion != nil {
			slog.Info("bracket decided", "bracket", b.ID, "champion", champion.Name)
		}
		return nil
	})
}

func (s *BracketService) SetMatchLength(ctx context.Context, id string, roundID int, matchID string, bestOf int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		if bestOf < 1 || bestOf%2 == 0 {
			return fmt.Errorf("%w: got %d", bracket.ErrInvalidBestOf, bestOf)
		}
		if !b.SetMatchLength(roundID, matchID, bestOf) {
			return fmt.Errorf("%w: %s in %d", ErrTargetNotFound, matchID, roundID)
		}
		return nil
	})
}

func (s *BracketService) SelectGroupTeam(ctx context.Context, id string, groupID, position int, teamID *int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		if !b.SelectGroupTeam(groupID, position, teamID) {
			return fmt.Errorf("%w: group %d position %d", ErrTargetNotFound, groupID, position)
		}
		return nil
	})
}

// SeedTeams fills the opening round of an elimination bracket from a seed
// list (best first) so that top seeds meet as late as possible. Missing seeds
// leave their slot empty. Opening rounds that are not a power of two have no
// seeding order and are refused.
func (s *BracketService) SeedTeams(ctx context.Context, id string, teamIDs []int) (*bracket.Bracket, error) {
	return s.edit(ctx, id, func(b *bracket.Bracket) error {
		if b.Format != bracket.SingleElimination && b.Format != bracket.DoubleElimination {
			return fmt.Errorf("%w: %s", ErrNotSeedable, b.Format)
		}
		first := b.Round(1)
		if first == nil {
			return fmt.Errorf("%w: round 1", ErrTargetNotFound)
		}

		slots := len(first.Matches) * 2
		if slots != calcBracketSize(slots) {
			return fmt.Errorf("%w: %d slots in round 1", ErrNotSeedable, slots)
		}

		seed := func(i int) *int {
			if i < len(teamIDs) {
				return &teamIDs[i]
			}
			return nil
		}
		pairs := generateRound1Pairs(slots)
		for i, m := range first.Matches {
			b.SelectTeam(first.ID, m.ID, 1, seed(pairs[i][0]))
			b.SelectTeam(first.ID, m.ID, 2, seed(pairs[i][1]))
		}
		return nil
	})
}

// GetDocument returns the stored document exactly as saved.
func (s *BracketService) GetDocument(ctx context.Context, id string) ([]byte, error) {
	record, err := s.store.GetBracket(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Document, nil
}

// PutDocument stores a whole document after checking that it decodes. There
// is no version check: whatever is saved last wins, and overwriting a newer
// copy is only logged.
func (s *BracketService) PutDocument(ctx context.Context, id string, data []byte) (*bracket.Bracket, error) {
	bracketID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bracket.ErrInvalidDocument, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	roster, err := s.teams.DirectoryTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	b, err := bracket.Unmarshal(data, roster)
	if err != nil {
		return nil, err
	}
	if b.ID != bracketID {
		return nil, fmt.Errorf("%w: %s", ErrDocumentMismatch, b.ID)
	}

	record, err := s.store.GetBracketTx(ctx, tx, id)
	switch {
	case err == nil:
		if record.UpdatedAt.After(b.UpdatedAt) {
			slog.Warn("overwriting a newer bracket document, last write wins",
				"id", id, "stored", record.UpdatedAt, "incoming", b.UpdatedAt)
		}
	case errors.Is(err, sql.ErrNoRows):
		record = &store.BracketRecord{ID: b.ID}
		if ownerID, ok := middleware.GetOperatorIDFromContext(ctx); ok {
			record.OwnerID = &ownerID
		}
	default:
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}

	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	record.Name = b.Name
	record.Format = b.Format
	record.Public = b.Public
	record.Document = data
	record.UpdatedAt = b.UpdatedAt

	err = s.store.SaveBracket(ctx, tx, record)
	s.metrics.DocumentSaved("sqlite", err)
	if err != nil {
		return nil, fmt.Errorf("failed to save bracket: %w", err)
	}
	return b, tx.Commit()
}

// edit runs fn against a freshly loaded bracket and saves the result, all in
// one transaction. Concurrent editors are not reconciled.
func (s *BracketService) edit(ctx context.Context, id string, fn func(b *bracket.Bracket) error) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	record, err := s.store.GetBracketTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.teams.DirectoryTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	b, err := bracket.Unmarshal(record.Document, roster)
	if err != nil {
		return nil, err
	}

	if err := fn(b); err != nil {
		return nil, err
	}

	if err := s.save(ctx, tx, record, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.pushMirror(ctx, b)
	return b, nil
}

func (s *BracketService) save(ctx context.Context, tx *sqlx.Tx, record *store.BracketRecord, b *bracket.Bracket) error {
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	data, err := bracket.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bracket: %w", err)
	}
	record.Name = b.Name
	record.Format = b.Format
	record.Public = b.Public
	record.Document = data
	record.UpdatedAt = b.UpdatedAt

	err = s.store.SaveBracket(ctx, tx, record)
	s.metrics.DocumentSaved("sqlite", err)
	if err != nil {
		return fmt.Errorf("failed to save bracket: %w", err)
	}
	return nil
}

func (s *BracketService) roundCreated(b *bracket.Bracket, r *bracket.Round) {
	s.metrics.RoundCreated(string(b.Format), 1)
	slog.Info("round created", "bracket", b.ID, "round", r.ID, "name", r.Name, "matches", len(r.Matches))
}

func (s *BracketService) pushMirror(ctx context.Context, b *bracket.Bracket) {
	if s.mirror == nil {
		return
	}
	err := s.mirror.Save(ctx, b)
	s.metrics.DocumentSaved("remote", err)
	if err != nil {
		slog.Warn("failed to mirror bracket", "id", b.ID, "error", err)
	}
}
