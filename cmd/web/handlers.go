package main

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/operator"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// writeServiceError maps service and engine errors onto a response.
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		httputil.NotFound(w, "Bracket not found", err)
	case errors.Is(err, service.ErrTargetNotFound):
		httputil.NotFound(w, err.Error(), err)
	case errors.Is(err, bracket.ErrUnknownFormat),
		errors.Is(err, bracket.ErrTooFewTeams),
		errors.Is(err, bracket.ErrInvalidBestOf),
		errors.Is(err, bracket.ErrInvalidDocument),
		errors.Is(err, service.ErrRoundNotAdded),
		errors.Is(err, service.ErrNotSeedable),
		errors.Is(err, service.ErrDocumentMismatch),
		errors.Is(err, service.ErrTeamNameTooLong):
		httputil.BadRequest(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}

func writeBracket(w http.ResponseWriter, status int, b *bracket.Bracket) {
	httputil.WriteJSON(w, status, bracket.Encode(b))
}

func intParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func (app *application) handleSearchTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := app.teams.SearchTeams(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.InternalServerError(w, "Failed to search teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

func (app *application) handleImportTeams(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Roster string `json:"roster"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid roster", err)
		return
	}

	teams, err := app.teams.ImportRoster(r.Context(), input.Roster)
	if err != nil {
		writeServiceError(w, "Failed to import teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, teams)
}

// handleListBrackets lists brackets newest first. Anonymous callers only see
// public ones.
func (app *application) handleListBrackets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.BracketFilter{
		PublicOnly: middleware.GetAuthenticatedOperator(r.Context()) == nil,
	}

	if query.Get("owner") == "me" {
		id, ok := middleware.GetOperatorIDFromContext(r.Context())
		if !ok {
			httputil.Unauthorized(w, "Sign in required")
			return
		}
		filter.OwnerID = &id
	}
	if f := query.Get("format"); f != "" {
		format, err := bracket.ParseFormat(f)
		if err != nil {
			httputil.BadRequest(w, err.Error(), err)
			return
		}
		filter.Format = &format
	}
	for key, dst := range map[string]*uint64{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := query.Get(key); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				httputil.BadRequest(w, "Invalid "+key, err)
				return
			}
			*dst = n
		}
	}

	records, err := app.brackets.ListBrackets(r.Context(), filter)
	if err != nil {
		httputil.InternalServerError(w, "Failed to list brackets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// visibleBracket loads the bracket named in the URL, hiding private ones
// from anonymous callers.
func (app *application) visibleBracket(w http.ResponseWriter, r *http.Request) (*bracket.Bracket, bool) {
	b, err := app.brackets.GetBracket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get bracket", err)
		return nil, false
	}
	if !b.Public && middleware.GetAuthenticatedOperator(r.Context()) == nil && !middleware.HasDocumentToken(r.Context()) {
		httputil.NotFound(w, "Bracket not found", nil)
		return nil, false
	}
	return b, true
}

func (app *application) handleGetBracket(w http.ResponseWriter, r *http.Request) {
	b, ok := app.visibleBracket(w, r)
	if !ok {
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	b, ok := app.visibleBracket(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b.Layout())
}

func (app *application) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.visibleBracket(w, r); !ok {
		return
	}
	doc, err := app.brackets.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get bracket document", err)
		return
	}
	httputil.WriteRawJSON(w, http.StatusOK, doc)
}

func (app *application) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.ReadBody(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid document", err)
		return
	}
	b, err := app.brackets.PutDocument(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeServiceError(w, "Failed to store bracket document", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleCreateBracket(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBracketInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid bracket", err)
		return
	}
	if input.Name == "" {
		httputil.BadRequest(w, "Bracket name is required", nil)
		return
	}

	b, err := app.brackets.CreateBracket(r.Context(), input)
	if err != nil {
		writeServiceError(w, "Failed to create bracket", err)
		return
	}
	writeBracket(w, http.StatusCreated, b)
}

func (app *application) handleDeleteBracket(w http.ResponseWriter, r *http.Request) {
	if err := app.brackets.DeleteBracket(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Failed to delete bracket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Format    bracket.Format `json:"format"`
		TeamCount int            `json:"total_teams"`
		BestOf    int            `json:"best_of"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid settings", err)
		return
	}

	b, err := app.brackets.Initialize(r.Context(), chi.URLParam(r, "id"), input.Format, input.TeamCount, input.BestOf)
	if err != nil {
		writeServiceError(w, "Failed to initialize bracket", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleClear(w http.ResponseWriter, r *http.Request) {
	b, err := app.brackets.Clear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to clear bracket", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleSeed(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TeamIDs []int `json:"team_ids"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid seeds", err)
		return
	}

	b, err := app.brackets.SeedTeams(r.Context(), chi.URLParam(r, "id"), input.TeamIDs)
	if err != nil {
		writeServiceError(w, "Failed to seed bracket", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleAddRound(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MatchCount int `json:"match_count"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid round", err)
		return
	}

	b, err := app.brackets.AddRound(r.Context(), chi.URLParam(r, "id"), input.MatchCount)
	if err != nil {
		writeServiceError(w, "Failed to add round", err)
		return
	}
	writeBracket(w, http.StatusCreated, b)
}

func (app *application) handleSelectTeam(w http.ResponseWriter, r *http.Request) {
	roundID, err := intParam(r, "round")
	if err != nil {
		httputil.BadRequest(w, "Invalid round ID", err)
		return
	}
	var input struct {
		Slot   int  `json:"slot"`
		TeamID *int `json:"team_id"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid team selection", err)
		return
	}

	b, err := app.brackets.SelectTeam(r.Context(), chi.URLParam(r, "id"), roundID, chi.URLParam(r, "match"), input.Slot, input.TeamID)
	if err != nil {
		writeServiceError(w, "Failed to select team", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleSetScore(w http.ResponseWriter, r *http.Request) {
	roundID, err := intParam(r, "round")
	if err != nil {
		httputil.BadRequest(w, "Invalid round ID", err)
		return
	}
	var input struct {
		Score1 int `json:"score1"`
		Score2 int `json:"score2"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid score", err)
		return
	}
	if input.Score1 < 0 || input.Score2 < 0 {
		httputil.BadRequest(w, "Scores cannot be negative", nil)
		return
	}

	b, err := app.brackets.SetScore(r.Context(), chi.URLParam(r, "id"), roundID, chi.URLParam(r, "match"), input.Score1, input.Score2)
	if err != nil {
		writeServiceError(w, "Failed to set score", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleSetMatchLength(w http.ResponseWriter, r *http.Request) {
	roundID, err := intParam(r, "round")
	if err != nil {
		httputil.BadRequest(w, "Invalid round ID", err)
		return
	}
	var input struct {
		BestOf int `json:"best_of"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid match length", err)
		return
	}

	b, err := app.brackets.SetMatchLength(r.Context(), chi.URLParam(r, "id"), roundID, chi.URLParam(r, "match"), input.BestOf)
	if err != nil {
		writeServiceError(w, "Failed to set match length", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

func (app *application) handleSelectGroupTeam(w http.ResponseWriter, r *http.Request) {
	groupID, err := intParam(r, "group")
	if err != nil {
		httputil.BadRequest(w, "Invalid group ID", err)
		return
	}
	var input struct {
		Position int  `json:"position"`
		TeamID   *int `json:"team_id"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid team selection", err)
		return
	}

	b, err := app.brackets.SelectGroupTeam(r.Context(), chi.URLParam(r, "id"), groupID, input.Position, input.TeamID)
	if err != nil {
		writeServiceError(w, "Failed to select group team", err)
		return
	}
	writeBracket(w, http.StatusOK, b)
}

// handleSetRole lets an admin change another operator's role.
func (app *application) handleSetRole(w http.ResponseWriter, r *http.Request) {
	if op := middleware.GetAuthenticatedOperator(r.Context()); op.Role != operator.RoleAdmin {
		httputil.Forbidden(w, "Only admins can change roles")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid operator ID", err)
		return
	}
	var input struct {
		Role operator.Role `json:"role"`
	}
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid role", err)
		return
	}
	if !input.Role.Valid() {
		httputil.BadRequest(w, "Unknown role", nil)
		return
	}

	if err := app.operators.SetRole(r.Context(), id, input.Role); err != nil {
		httputil.InternalServerError(w, "Failed to set role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
