package middleware

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/operator"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

type ContextKey string

const OperatorIDKey ContextKey = "operatorID"

// SessionOperatorKey is the session entry holding the signed in operator id.
const SessionOperatorKey = "operatorID"

// OperatorGetter loads operators by id.
type OperatorGetter interface {
	GetOperator(ctx context.Context, id uuid.UUID) (*operator.Operator, error)
}

// InitAuth registers the OAuth providers that have credentials configured.
func InitAuth(cfg *config.Config) []string {
	var providers []goth.Provider
	var names []string

	if cfg.Discord.Enabled() {
		providers = append(providers, discord.New(cfg.Discord.Key, cfg.Discord.Secret, cfg.Discord.CallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
		names = append(names, "discord")
	}
	if cfg.Google.Enabled() {
		providers = append(providers, google.New(cfg.Google.Key, cfg.Google.Secret, cfg.Google.CallbackURL, "email", "profile"))
		names = append(names, "google")
	}

	goth.UseProviders(providers...)
	return names
}

// LoadOperator puts the signed in operator, if any, into the request context.
// Requests without a session pass through untouched.
func LoadOperator(sessionManager *scs.SessionManager, operators OperatorGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idStr := sessionManager.GetString(r.Context(), SessionOperatorKey)
			if idStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(idStr)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionOperatorKey)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), OperatorIDKey, id)
			if op, err := operators.GetOperator(ctx, id); err == nil {
				ctx = context.WithValue(ctx, operator.OperatorKey, op)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a signed in operator.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedOperator(r.Context()) == nil {
			httputil.Unauthorized(w, "Sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireEditor rejects operators that may not change brackets.
func RequireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := GetAuthenticatedOperator(r.Context())
		if op == nil {
			httputil.Unauthorized(w, "Sign in required")
			return
		}
		if !op.CanEdit() {
			httputil.Forbidden(w, "Only admins and moderators can edit brackets")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetOperatorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(OperatorIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedOperator(ctx context.Context) *operator.Operator {
	val := ctx.Value(operator.OperatorKey)
	if val == nil {
		return nil
	}
	op, ok := val.(*operator.Operator)
	if !ok {
		return nil
	}
	return op
}

// WithOperator returns ctx carrying op as the signed in operator.
func WithOperator(ctx context.Context, op *operator.Operator) context.Context {
	ctx = context.WithValue(ctx, OperatorIDKey, op.ID)
	return context.WithValue(ctx, operator.OperatorKey, op)
}
