package store

import (
	"context"

	"github.com/AdamBeresnev/bracket-engine/internal/operator"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type OperatorStore struct {
	db *sqlx.DB
}

const (
	getOperatorQuery           = "SELECT * FROM operators WHERE id = ?"
	getOperatorByProviderQuery = `
        SELECT * FROM operators
        WHERE provider = ?
        AND provider_id = ?
    `
	createOperatorQuery = `
		INSERT INTO operators (id, email, username, role, provider, provider_id, avatar_url) VALUES
		(:id, :email, :username, :role, :provider, :provider_id, :avatar_url)
	`
	updateOperatorProfileQuery = `
		UPDATE operators SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
	setOperatorRoleQuery = "UPDATE operators SET role = ? WHERE id = ?"
	countAdminsQuery     = "SELECT COUNT(*) FROM operators WHERE role = 'admin'"
)

func NewOperatorStore(db *sqlx.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

func (s *OperatorStore) GetOperatorByProvider(ctx context.Context, provider string, providerID string) (*operator.Operator, error) {
	var op operator.Operator
	err := s.db.GetContext(ctx, &op, getOperatorByProviderQuery, provider, providerID)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *OperatorStore) GetOperator(ctx context.Context, id uuid.UUID) (*operator.Operator, error) {
	var op operator.Operator
	err := s.db.GetContext(ctx, &op, getOperatorQuery, id)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *OperatorStore) CreateOperator(ctx context.Context, op *operator.Operator) error {
	if op.Role == "" {
		op.Role = operator.RoleViewer
	}
	_, err := s.db.NamedExecContext(ctx, createOperatorQuery, op)
	return err
}

func (s *OperatorStore) UpdateOperatorProfile(ctx context.Context, op *operator.Operator) error {
	_, err := s.db.NamedExecContext(ctx, updateOperatorProfileQuery, op)
	return err
}

func (s *OperatorStore) SetRole(ctx context.Context, id uuid.UUID, role operator.Role) error {
	_, err := s.db.ExecContext(ctx, setOperatorRoleQuery, role, id)
	return err
}

func (s *OperatorStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, countAdminsQuery)
	return n, err
}
