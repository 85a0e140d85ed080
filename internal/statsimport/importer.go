package statsimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vflfantasy/vfl-data/internal/store"
)

// Result tracks counts and errors from one import.
type Result struct {
	Parsed       int      `json:"parsed"`
	Derived      int      `json:"derived"`
	Saved        int      `json:"saved"`
	Skipped      int      `json:"skipped"`
	MatchFlagged bool     `json:"matchFlagged"`
	Errors       []string `json:"errors"`
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the import.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"parsed=%d derived=%d saved=%d skipped=%d match_flagged=%v errors=%d",
		r.Parsed, r.Derived, r.Saved, r.Skipped, r.MatchFlagged, len(r.Errors),
	)
}

// Options controls an import.
type Options struct {
	Match MatchContext
	// DeriveTotals adds computed "All" rows for players without one.
	DeriveTotals bool
}

// Importer parses CSV exports and writes them to a store.
type Importer struct {
	store  store.Store
	logger *slog.Logger
}

// NewImporter returns an Importer writing to st.
func NewImporter(st store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, logger: logger}
}

// Import parses r and saves the rows. Header validation failures and store
// write failures abort the import and are returned; per-row problems are
// recorded in the Result.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	var result Result
	if opts.Match.MatchID == "" {
		return result, fmt.Errorf("match id is required")
	}

	parsed, err := Parse(r, opts.Match)
	if err != nil {
		return result, fmt.Errorf("parse stats csv: %w", err)
	}
	result.Parsed = len(parsed.Rows)
	result.Skipped = len(parsed.Skipped)
	for _, s := range parsed.Skipped {
		result.AddErrorf("%s", s)
	}

	rows := parsed.Rows
	if opts.DeriveTotals {
		rows = DeriveTotals(rows)
		result.Derived = len(rows) - len(parsed.Rows)
	}
	if len(rows) == 0 {
		im.logger.Warn("Stats import had no valid rows", "match_id", opts.Match.MatchID, "skipped", result.Skipped)
		return result, nil
	}

	saved, err := im.store.SavePlayerStats(ctx, rows)
	if err != nil {
		return result, fmt.Errorf("save stats: %w", err)
	}
	result.Saved = saved

	if err := im.store.MarkMatchHasStats(ctx, opts.Match.MatchID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			im.logger.Warn("Imported stats for unknown match", "match_id", opts.Match.MatchID)
		}
		result.AddErrorf("flag match %s: %v", opts.Match.MatchID, err)
	} else {
		result.MatchFlagged = true
	}

	im.logger.Info("Stats import finished",
		"match_id", opts.Match.MatchID,
		"season", opts.Match.Season,
		"round", opts.Match.Round,
		"summary", result.Summary())
	return result, nil
}
