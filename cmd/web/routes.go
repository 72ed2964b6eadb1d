package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/metrics"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth/gothic"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	metrics        *metrics.Metrics
	limiter        *middleware.RateLimiter

	operatorStore *store.OperatorStore
	brackets      *service.BracketService
	teams         *service.TeamService
	operators     *service.OperatorService
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, m *metrics.Metrics) *application {
	teamStore := store.NewTeamStore(database)
	operatorStore := store.NewOperatorStore(database)

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		metrics:        m,
		limiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		operatorStore:  operatorStore,
		brackets:       service.NewBracketService(database, store.NewBracketStore(database), teamStore, m),
		teams:          service.NewTeamService(database, teamStore),
		operators:      service.NewOperatorService(database, operatorStore),
	}
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(app.metrics.Middleware)

	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(app.limiter.Middleware)
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(middleware.LoadOperator(app.sessionManager, app.operatorStore))
		r.Use(middleware.LoadDocumentToken(app.cfg.DocumentToken))

		r.Get("/teams", app.handleSearchTeams)
		r.Get("/brackets", app.handleListBrackets)
		r.Get("/brackets/{id}", app.handleGetBracket)
		r.Get("/brackets/{id}/layout", app.handleGetLayout)
		r.Get("/brackets/{id}/document", app.handleGetDocument)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditor)

			r.Post("/teams", app.handleImportTeams)
			r.Post("/brackets", app.handleCreateBracket)
			r.Delete("/brackets/{id}", app.handleDeleteBracket)

			r.Post("/brackets/{id}/initialize", app.handleInitialize)
			r.Post("/brackets/{id}/clear", app.handleClear)
			r.Post("/brackets/{id}/seed", app.handleSeed)
			r.Post("/brackets/{id}/rounds", app.handleAddRound)
			r.Post("/brackets/{id}/rounds/{round}/matches/{match}/team", app.handleSelectTeam)
			r.Post("/brackets/{id}/rounds/{round}/matches/{match}/score", app.handleSetScore)
			r.Post("/brackets/{id}/rounds/{round}/matches/{match}/length", app.handleSetMatchLength)
			r.Post("/brackets/{id}/groups/{group}/teams", app.handleSelectGroupTeam)
		})

		r.With(middleware.RequireEditorOrToken).Put("/brackets/{id}/document", app.handlePutDocument)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				httputil.WriteJSON(w, http.StatusOK, middleware.GetAuthenticatedOperator(r.Context()))
			})
			r.Post("/operators/{id}/role", app.handleSetRole)
		})

		r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothic.BeginAuthHandler(w, r)
		})

		r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothUser, err := gothic.CompleteUserAuth(w, r)
			if err != nil {
				httputil.BadRequest(w, "Authentication failure", err)
				return
			}

			op, err := app.operators.FindOrCreateOperatorByProvider(r.Context(), gothUser)
			if err != nil {
				httputil.InternalServerError(w, "Failed to find or create operator", err)
				return
			}

			if !app.signIn(w, r, op.ID.String()) {
				return
			}
			http.Redirect(w, r, "/me", http.StatusFound)
		})

		if app.cfg.AllowGuest {
			r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
				op, err := app.operators.EnsureGuestOperator(r.Context())
				if err != nil {
					httputil.InternalServerError(w, "Failed to login as guest", err)
					return
				}

				if !app.signIn(w, r, op.ID.String()) {
					return
				}
				httputil.WriteJSON(w, http.StatusOK, op)
			})
		}

		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			if err := app.sessionManager.Destroy(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to end session", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

// signIn stores the operator in a fresh session token.
func (app *application) signIn(w http.ResponseWriter, r *http.Request, operatorID string) bool {
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return false
	}
	app.sessionManager.Put(r.Context(), middleware.SessionOperatorKey, operatorID)
	return true
}
