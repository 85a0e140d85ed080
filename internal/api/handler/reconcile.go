package handler

import (
	"net/http"
	"strings"

	"github.com/vflfantasy/vfl-data/internal/api/respond"
	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/reconcile"
)

// MismatchesResponse is the body of GET /reconcile/mismatches.
type MismatchesResponse struct {
	Count      int                  `json:"count"`
	Mismatches []reconcile.Mismatch `json:"mismatches"`
}

// GetMismatches scans the store for records without a valid canonical link.
// @Summary List link mismatches
// @Description Loads every registry, fantasy and stat record and returns the ones whose canonical id is missing, a legacy placeholder, or unknown, each with its best match and suggestions.
// @Tags reconcile
// @Produce json
// @Param kind query string false "Filter by source kind" Enums(fantasy, stat)
// @Success 200 {object} MismatchesResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /reconcile/mismatches [get]
func (h *Handler) GetMismatches(w http.ResponseWriter, r *http.Request) {
	kind := reconcile.SourceKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != reconcile.SourceFantasy && kind != reconcile.SourceStat {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_KIND", "kind must be fantasy or stat")
		return
	}

	snap, err := reconcile.Load(r.Context(), h.store)
	if err != nil {
		h.logger.Error("Load snapshot failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load records")
		return
	}

	out := []reconcile.Mismatch{}
	for _, m := range h.scanner.Scan(snap) {
		if kind == "" || m.Kind == kind {
			out = append(out, m)
		}
	}
	respond.WriteJSONObject(w, http.StatusOK, MismatchesResponse{Count: len(out), Mismatches: out})
}

// SuggestionsResponse is the body of GET /reconcile/suggestions.
type SuggestionsResponse struct {
	Source      match.Source  `json:"source"`
	Best        *match.Match  `json:"best"`
	Suggestions []match.Match `json:"suggestions"`
}

// GetSuggestions resolves a free-text name against the registry.
// @Summary Suggest canonical players
// @Description Returns the best match (confidence 70 or more) and up to five suggestions (confidence 60 or more) for a name, optionally boosted by team.
// @Tags reconcile
// @Produce json
// @Param name query string true "Player name as written in the source"
// @Param team query string false "Team name"
// @Success 200 {object} SuggestionsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /reconcile/suggestions [get]
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src := match.Source{Name: strings.TrimSpace(q.Get("name")), Team: strings.TrimSpace(q.Get("team"))}
	if src.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_NAME", "name query parameter is required")
		return
	}

	players, err := h.store.ListCanonicalPlayers(r.Context())
	if err != nil {
		h.logger.Error("List players failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load registry")
		return
	}

	resp := SuggestionsResponse{Source: src, Suggestions: h.resolver.Suggest(src, players)}
	if resp.Suggestions == nil {
		resp.Suggestions = []match.Match{}
	}
	if best, ok := h.resolver.Best(src, players); ok {
		resp.Best = &best
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// ApplyRequest is the body of POST /reconcile/apply.
type ApplyRequest struct {
	Assignments []reconcile.Assignment `json:"assignments"`
	// Auto applies every mismatch's best match instead of Assignments.
	Auto bool `json:"auto"`
	// DryRun returns the assignments without writing.
	DryRun bool `json:"dryRun"`
}

// ApplyResponse is the body of a successful apply.
type ApplyResponse struct {
	Assignments []reconcile.Assignment `json:"assignments"`
	DryRun      bool                   `json:"dryRun"`
	Result      *reconcile.Result      `json:"result,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
}

// PostApply writes assignments back in chunked batches.
// @Summary Apply reconciliation assignments
// @Description Sets registryId on fantasy players and playerId on matching stat rows. Failed batches are counted and the run continues.
// @Tags reconcile
// @Accept json
// @Produce json
// @Param body body ApplyRequest true "Assignments to apply"
// @Success 200 {object} ApplyResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /reconcile/apply [post]
func (h *Handler) PostApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be an apply request", err.Error())
		return
	}
	if req.Auto && len(req.Assignments) > 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "auto and assignments are mutually exclusive")
		return
	}
	if !req.Auto && len(req.Assignments) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "NO_ASSIGNMENTS", "at least one assignment is required")
		return
	}

	snap, err := reconcile.Load(r.Context(), h.store)
	if err != nil {
		h.logger.Error("Load snapshot failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load records")
		return
	}

	assignments := req.Assignments
	if req.Auto {
		assignments = reconcile.AutoAssignments(h.scanner.Scan(snap))
	}
	if assignments == nil {
		assignments = []reconcile.Assignment{}
	}
	if req.DryRun {
		respond.WriteJSONObject(w, http.StatusOK, ApplyResponse{Assignments: assignments, DryRun: true})
		return
	}

	result := h.applier.ApplySnapshot(r.Context(), snap, assignments)
	h.logger.Info("Reconciliation applied", "auto", req.Auto, "summary", result.Summary())
	respond.WriteJSONObject(w, http.StatusOK, ApplyResponse{
		Assignments: assignments,
		Result:      &result,
		Summary:     result.Summary(),
	})
}
