package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vflfantasy/vfl-data/internal/api/respond"
	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/statsimport"
)

// PostStatsImport imports a per-quarter box-score CSV for one match.
// @Summary Import match stats
// @Description Parses an 11-column CSV (playerName, team, quarter, kicks, handballs, marks, tackles, hitOuts, goals, behinds, fantasyPoints) and upserts the rows. Bad rows are skipped and reported.
// @Tags stats
// @Accept text/csv
// @Produce json
// @Param matchId query string true "Match id"
// @Param season query int false "Season year"
// @Param round query string false "Round label"
// @Param deriveTotals query bool false "Add computed All rows for players with only quarter rows"
// @Success 200 {object} statsimport.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /stats/import [post]
func (h *Handler) PostStatsImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := statsimport.Options{
		Match: statsimport.MatchContext{
			MatchID: strings.TrimSpace(q.Get("matchId")),
			Season:  config.CurrentSeason,
			Round:   strings.TrimSpace(q.Get("round")),
		},
	}
	if opts.Match.MatchID == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_MATCH", "matchId query parameter is required")
		return
	}
	if s := q.Get("season"); s != "" {
		season, err := strconv.Atoi(s)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "season must be a year")
			return
		}
		opts.Match.Season = season
	}
	if s := q.Get("deriveTotals"); s != "" {
		derive, err := strconv.ParseBool(s)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_FLAG", "deriveTotals must be true or false")
			return
		}
		opts.DeriveTotals = derive
	}

	body := http.MaxBytesReader(w, r.Body, respond.MaxBodyBytes)
	result, err := h.importer.Import(r.Context(), body, opts)
	switch {
	case errors.Is(err, statsimport.ErrMissingColumn),
		errors.Is(err, statsimport.ErrColumnOrder),
		errors.Is(err, statsimport.ErrNoRows):
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "INVALID_CSV", "CSV rejected", err.Error())
		return
	case err != nil:
		h.logger.Error("Stats import failed", "match_id", opts.Match.MatchID, "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "IMPORT_FAILED", "Stats import failed", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, result)
}
