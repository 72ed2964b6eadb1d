package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

const documentTokenKey ContextKey = "documentToken"

// LoadDocumentToken marks requests carrying token as a bearer credential.
// Another instance mirroring its brackets here signs in this way. An empty
// token accepts nobody.
func LoadDocumentToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && bearerMatches(r, token) {
				r = r.WithContext(context.WithValue(r.Context(), documentTokenKey, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerMatches(r *http.Request, token string) bool {
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) == 1
}

func HasDocumentToken(ctx context.Context) bool {
	ok, _ := ctx.Value(documentTokenKey).(bool)
	return ok
}

// RequireEditorOrToken accepts the document token in place of an editor
// session.
func RequireEditorOrToken(next http.Handler) http.Handler {
	editor := RequireEditor(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if HasDocumentToken(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}
		editor.ServeHTTP(w, r)
	})
}
