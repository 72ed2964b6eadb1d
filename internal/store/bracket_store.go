package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BracketRecord is one stored bracket document plus the columns it is
// listed by.
type BracketRecord struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	OwnerID   *uuid.UUID     `db:"owner_id" json:"owner_id"`
	Name      string         `db:"name" json:"name"`
	Format    bracket.Format `db:"format" json:"format"`
	Public    bool           `db:"is_public" json:"is_public"`
	Document  []byte         `db:"document" json:"-"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

type BracketFilter struct {
	OwnerID    *uuid.UUID
	Format     *bracket.Format
	PublicOnly bool
	Limit      uint64
	Offset     uint64
}

type BracketStore struct {
	db *sqlx.DB
}

const (
	getBracketQuery  = "SELECT * FROM brackets WHERE id = ?"
	saveBracketQuery = `
		INSERT INTO brackets (id, owner_id, name, format, is_public, document, updated_at, created_at)
		VALUES (:id, :owner_id, :name, :format, :is_public, :document, :updated_at, :created_at)
		ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		format = excluded.format,
		is_public = excluded.is_public,
		document = excluded.document,
		updated_at = excluded.updated_at
	`
	deleteBracketQuery = "DELETE FROM brackets WHERE id = ?"
)

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

// SaveBracket inserts or overwrites a record. The owner and creation time of
// an existing row are kept.
func (s *BracketStore) SaveBracket(ctx context.Context, tx *sqlx.Tx, record *BracketRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := tx.NamedExecContext(ctx, saveBracketQuery, record)
	return err
}

func (s *BracketStore) GetBracket(ctx context.Context, id string) (*BracketRecord, error) {
	var record BracketRecord
	err := s.db.GetContext(ctx, &record, getBracketQuery, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *BracketStore) GetBracketTx(ctx context.Context, tx *sqlx.Tx, id string) (*BracketRecord, error) {
	var record BracketRecord
	err := tx.GetContext(ctx, &record, getBracketQuery, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBrackets returns records matching filter, most recently updated first.
// Documents are not loaded.
func (s *BracketStore) ListBrackets(ctx context.Context, filter BracketFilter) ([]BracketRecord, error) {
	query := sq.Select("id", "owner_id", "name", "format", "is_public", "x'' AS document", "updated_at", "created_at").
		From("brackets").
		OrderBy("updated_at DESC")

	if filter.OwnerID != nil {
		query = query.Where(sq.Eq{"owner_id": filter.OwnerID.String()})
	}
	if filter.Format != nil {
		query = query.Where(sq.Eq{"format": string(*filter.Format)})
	}
	if filter.PublicOnly {
		query = query.Where(sq.Eq{"is_public": true})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bracket list query: %w", err)
	}

	records := []BracketRecord{}
	err = s.db.SelectContext(ctx, &records, sqlStr, args...)
	return records, err
}

func (s *BracketStore) DeleteBracket(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteBracketQuery, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
