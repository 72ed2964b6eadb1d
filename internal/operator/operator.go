package operator

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const OperatorKey ContextKey = "operator"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleViewer    Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleViewer:
		return true
	}
	return false
}

// Operator is someone signed in to manage brackets.
type Operator struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Username   string    `db:"username" json:"username"`
	Role       Role      `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Provider   *string   `db:"provider" json:"provider,omitempty"`
	ProviderID *string   `db:"provider_id" json:"-"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
}

// CanEdit reports whether the operator may change bracket state.
func (o *Operator) CanEdit() bool {
	return o != nil && (o.Role == RoleAdmin || o.Role == RoleModerator)
}
