package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/operator"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
)

var GuestOperatorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type OperatorService struct {
	db    *sqlx.DB
	store *store.OperatorStore
}

func NewOperatorService(db *sqlx.DB, store *store.OperatorStore) *OperatorService {
	return &OperatorService{db: db, store: store}
}

// FindOrCreateOperatorByProvider signs in an OAuth user. The first operator
// to ever sign in becomes an admin; later ones start as viewers.
func (s *OperatorService) FindOrCreateOperatorByProvider(ctx context.Context, gothUser goth.User) (*operator.Operator, error) {
	op, err := s.store.GetOperatorByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		username := displayName(gothUser)
		if utils.OrZero(op.AvatarURL) != gothUser.AvatarURL || op.Username != username {
			op.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			op.Username = username
			if err := s.store.UpdateOperatorProfile(ctx, op); err != nil {
				return nil, fmt.Errorf("failed to update operator profile: %w", err)
			}
		}
		return op, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		admins, err := s.store.CountAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		role := operator.RoleViewer
		if admins == 0 {
			role = operator.RoleAdmin
		}

		newOp := &operator.Operator{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   displayName(gothUser),
			Role:       role,
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		}
		err = s.store.CreateOperator(ctx, newOp)
		return newOp, err
	}

	return nil, err
}

// EnsureGuestOperator returns the shared guest account, creating it as a
// moderator on first use.
func (s *OperatorService) EnsureGuestOperator(ctx context.Context) (*operator.Operator, error) {
	op, err := s.store.GetOperator(ctx, GuestOperatorID)
	if err == nil {
		return op, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guest := &operator.Operator{
			ID:       GuestOperatorID,
			Email:    "guest@bracket.local",
			Username: "Guest Operator",
			Role:     operator.RoleModerator,
		}
		err := s.store.CreateOperator(ctx, guest)
		return guest, err
	}
	return nil, err
}

func (s *OperatorService) SetRole(ctx context.Context, id uuid.UUID, role operator.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.store.SetRole(ctx, id, role)
}

func displayName(u goth.User) string {
	switch {
	case u.NickName != "":
		return u.NickName
	case u.Name != "":
		return u.Name
	}
	return u.Email
}
