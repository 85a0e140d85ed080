package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vflfantasy/vfl-data/internal/api/respond"
	"github.com/vflfantasy/vfl-data/internal/cache"
	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/registry"
	"github.com/vflfantasy/vfl-data/internal/store"
)

const maxSearchLimit = 100

// SearchPlayers searches the canonical registry by name or alias.
// @Summary Search registry
// @Description Case- and accent-insensitive search over names and aliases, closest first. Cached with ETag.
// @Tags players
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Maximum results (default 20, max 100)"
// @Success 200 {array} registry.Hit
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/search [get]
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_QUERY", "q query parameter is required")
		return
	}
	limit := registry.DefaultSearchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxSearchLimit {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", fmt.Sprintf("limit must be between 1 and %d", maxSearchLimit))
			return
		}
		limit = n
	}

	key := fmt.Sprintf("%ssearch:%s:%d", cache.PrefixRegistry, match.Normalize(q), limit)
	h.writeCached(w, r, key, cache.TTLRegistry, func() (interface{}, error) {
		return h.registry.Search(r.Context(), q, limit)
	})
}

// GetPlayer returns one canonical player.
// @Summary Get registry player
// @Tags players
// @Produce json
// @Param id path string true "Canonical player id"
// @Success 200 {object} model.CanonicalPlayer
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{id} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.GetCanonicalPlayer(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No player with id "+id)
		return
	}
	if err != nil {
		h.logger.Error("Get player failed", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load player")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

// CreatePlayer registers a new canonical player.
// @Summary Create registry player
// @Description Registers a player under a new opaque id. An exact name match on the same team is rejected unless force=true.
// @Tags players
// @Accept json
// @Produce json
// @Param body body registry.NewPlayer true "Player"
// @Param force query bool false "Skip the duplicate check"
// @Success 201 {object} model.CanonicalPlayer
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /players [post]
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var in registry.NewPlayer
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a player", err.Error())
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	p, err := h.registry.Create(r.Context(), in, force)
	switch {
	case errors.Is(err, registry.ErrInvalidPlayer):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PLAYER", "Player rejected", err.Error())
		return
	case errors.Is(err, registry.ErrDuplicate), errors.Is(err, store.ErrConflict):
		respond.WriteErrorDetail(w, http.StatusConflict, "DUPLICATE_PLAYER", "Player already registered", err.Error())
		return
	case err != nil:
		h.logger.Error("Create player failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create player")
		return
	}

	h.cache.PurgePrefix(cache.PrefixRegistry)
	w.Header().Set("Location", "/api/v1/players/"+p.ID)
	respond.WriteJSONObject(w, http.StatusCreated, p)
}
