package reconcile

import "fmt"

// Result tallies a reconciliation run the way the admin screens reported it.
type Result struct {
	Fixed          int      `json:"fixed"`
	Skipped        int      `json:"skipped"`
	Errors         int      `json:"errors"`
	PlayersUpdated int      `json:"playersUpdated"`
	StatsUpdated   int      `json:"statsUpdated"`
	Batches        int      `json:"batches"`
	Log            []string `json:"log"`
}

// Logf appends a formatted line to the run log.
func (r *Result) Logf(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"fixed=%d skipped=%d errors=%d players=%d stats=%d batches=%d",
		r.Fixed, r.Skipped, r.Errors,
		r.PlayersUpdated, r.StatsUpdated, r.Batches,
	)
}
