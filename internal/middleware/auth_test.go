package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/operator"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOperators map[uuid.UUID]*operator.Operator

func (f fakeOperators) GetOperator(_ context.Context, id uuid.UUID) (*operator.Operator, error) {
	if op, ok := f[id]; ok {
		return op, nil
	}
	return nil, sql.ErrNoRows
}

// sessionServer signs a request in as sessionValue, then replays it against
// the protected handler and reports what that handler saw.
func sessionServer(t *testing.T, operators OperatorGetter, sessionValue string, protected http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	sessionManager := scs.New()

	mux := http.NewServeMux()
	mux.HandleFunc("/signin", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Put(r.Context(), SessionOperatorKey, sessionValue)
	})
	mux.Handle("/protected", LoadOperator(sessionManager, operators)(protected))
	handler := sessionManager.LoadAndSave(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signin", nil))
	cookies := rec.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoadOperator(t *testing.T) {
	admin := &operator.Operator{ID: uuid.New(), Username: "admin", Role: operator.RoleAdmin}
	operators := fakeOperators{admin.ID: admin}

	testCases := []struct {
		name         string
		sessionValue string
		expectedID   bool
		expectedOp   *operator.Operator
	}{
		{"known operator", admin.ID.String(), true, admin},
		{"deleted operator", uuid.NewString(), true, nil},
		{"garbage session", "not-a-uuid", false, nil},
		{"no session", "", false, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotOp *operator.Operator
			var gotID bool
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, gotID = GetOperatorIDFromContext(r.Context())
				gotOp = GetAuthenticatedOperator(r.Context())
			})

			rec := sessionServer(t, operators, tc.sessionValue, handler)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.expectedID, gotID)
			assert.Equal(t, tc.expectedOp, gotOp)
		})
	}
}

func TestRequireEditor(t *testing.T) {
	testCases := []struct {
		name     string
		op       *operator.Operator
		expected int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"viewer", &operator.Operator{ID: uuid.New(), Role: operator.RoleViewer}, http.StatusForbidden},
		{"moderator", &operator.Operator{ID: uuid.New(), Role: operator.RoleModerator}, http.StatusNoContent},
		{"admin", &operator.Operator{ID: uuid.New(), Role: operator.RoleAdmin}, http.StatusNoContent},
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/brackets", nil)
			if tc.op != nil {
				req = req.WithContext(WithOperator(req.Context(), tc.op))
			}
			rec := httptest.NewRecorder()
			RequireEditor(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	viewer := &operator.Operator{ID: uuid.New(), Role: operator.RoleViewer}
	req = req.WithContext(WithOperator(req.Context(), viewer))
	rec = httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	id, found := GetOperatorIDFromContext(req.Context())
	assert.True(t, found)
	assert.Equal(t, viewer.ID, id)
}
