// Package statsimport parses per-quarter box-score CSV exports and writes
// them as PlayerStat rows.
//
// The format is plain comma-separated text with no quoting: literal double
// quotes are stripped and the eleven columns come in a fixed order. Numbers
// that do not parse count as zero.
package statsimport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vflfantasy/vfl-data/internal/model"
)

// Columns is the required column order.
var Columns = []string{
	"playerName", "team", "quarter",
	"kicks", "handballs", "marks", "tackles", "hitOuts", "goals", "behinds",
	"fantasyPoints",
}

var (
	// ErrMissingColumn rejects a header that lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrColumnOrder rejects a header whose columns are out of order.
	ErrColumnOrder = errors.New("columns out of order")
	// ErrNoRows is returned when the input has no data rows.
	ErrNoRows = errors.New("no data rows")
)

// MatchContext is stamped onto every parsed row.
type MatchContext struct {
	MatchID string
	Season  int
	Round   string
}

// RowError describes a data row that was not imported.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Parsed holds the rows that parsed and the ones that did not.
type Parsed struct {
	Rows    []model.PlayerStat
	Skipped []RowError
}

// Parse reads every line of r. A first line that looks like a header is
// validated against Columns; a header that does not match aborts the parse.
func Parse(r io.Reader, mc MatchContext) (*Parsed, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var out Parsed
	line := 0
	first := true
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		fields := SplitLine(raw)

		if first {
			first = false
			if isHeader(fields) {
				if err := checkHeader(fields); err != nil {
					return nil, err
				}
				continue
			}
		}

		row, reason := parseRow(fields, mc)
		if reason != "" {
			out.Skipped = append(out.Skipped, RowError{Line: line, Reason: reason})
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(out.Rows) == 0 && len(out.Skipped) == 0 {
		return nil, ErrNoRows
	}
	return &out, nil
}

// SplitLine splits on commas, strips literal double quotes and trims each
// field.
func SplitLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.ReplaceAll(p, `"`, ""))
	}
	return parts
}

func columnKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, " ", "")
}

var columnKeys = func() map[string]bool {
	m := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		m[columnKey(c)] = true
	}
	return m
}()

// isHeader reports whether a first line is a header. Data rows always carry
// a valid quarter, so only a line without one qualifies, and then only when
// it names a known column or has no numeric counters at all.
func isHeader(fields []string) bool {
	if len(fields) > 2 {
		if _, ok := NormalizeQuarter(fields[2]); ok {
			return false
		}
	}
	for _, f := range fields {
		if columnKeys[columnKey(f)] {
			return true
		}
	}
	if len(fields) <= 3 {
		return false
	}
	for _, f := range fields[3:] {
		if f == "" || isNumber(f) {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func checkHeader(fields []string) error {
	pos := make(map[string]int, len(fields))
	for i, f := range fields {
		pos[columnKey(f)] = i
	}
	for i, col := range Columns {
		at, ok := pos[columnKey(col)]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		if at != i {
			return fmt.Errorf("%w: %s is column %d, want %d", ErrColumnOrder, col, at+1, i+1)
		}
	}
	return nil
}

func parseRow(fields []string, mc MatchContext) (model.PlayerStat, string) {
	if len(fields) < len(Columns) {
		return model.PlayerStat{}, fmt.Sprintf("expected %d columns, got %d", len(Columns), len(fields))
	}
	if fields[0] == "" {
		return model.PlayerStat{}, "empty player name"
	}
	quarter, ok := NormalizeQuarter(fields[2])
	if !ok {
		return model.PlayerStat{}, fmt.Sprintf("invalid quarter %q", fields[2])
	}
	return model.PlayerStat{
		MatchID:       mc.MatchID,
		Season:        mc.Season,
		Round:         mc.Round,
		Quarter:       quarter,
		PlayerName:    fields[0],
		Team:          fields[1],
		Kicks:         parseCount(fields[3]),
		Handballs:     parseCount(fields[4]),
		Marks:         parseCount(fields[5]),
		Tackles:       parseCount(fields[6]),
		HitOuts:       parseCount(fields[7]),
		Goals:         parseCount(fields[8]),
		Behinds:       parseCount(fields[9]),
		FantasyPoints: parseCount(fields[10]),
	}, ""
}

// NormalizeQuarter maps "1".."4", "Q1".."Q4" and "all"/"total" to the stored
// quarter labels.
func NormalizeQuarter(q string) (string, bool) {
	q = strings.TrimSpace(q)
	switch strings.ToLower(q) {
	case "all", "total":
		return model.QuarterAll, true
	}
	q = strings.TrimPrefix(strings.TrimPrefix(q, "Q"), "q")
	if model.IsValidQuarter(q) {
		return q, true
	}
	return "", false
}

// parseCount reads an integer counter, falling back to 0. Decimal input is
// truncated.
func parseCount(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
