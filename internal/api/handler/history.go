package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/vflfantasy/vfl-data/internal/api/respond"
	"github.com/vflfantasy/vfl-data/internal/cache"
	"github.com/vflfantasy/vfl-data/internal/model"
)

// GetHistory returns archived match results.
// @Summary Historical results
// @Description Archived results for one year, or every year when year is omitted. Cached with ETag.
// @Tags history
// @Produce json
// @Param year query int false "Season year"
// @Success 200 {array} model.HistoricalMatch
// @Failure 400 {object} respond.ErrorResponse
// @Router /history [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	year := 0
	if s := r.URL.Query().Get("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_YEAR", "year must be a positive integer")
			return
		}
		year = n
	}

	key := fmt.Sprintf("%s%d", cache.PrefixHistory, year)
	h.writeCached(w, r, key, cache.TTLHistorical, func() (interface{}, error) {
		ms, err := h.store.ListHistoricalMatches(r.Context(), year)
		if ms == nil {
			ms = []model.HistoricalMatch{}
		}
		return ms, err
	})
}
