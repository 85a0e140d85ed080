package reconcile

import (
	"sort"

	"github.com/vflfantasy/vfl-data/internal/match"
)

// Mismatch is one source whose canonical link is missing or wrong.
type Mismatch struct {
	Kind        SourceKind    `json:"kind"`
	Source      match.Source  `json:"source"`
	CurrentID   string        `json:"currentId,omitempty"`
	Reason      Reason        `json:"reason"`
	Rows        int           `json:"rows"`
	Best        *match.Match  `json:"best,omitempty"`
	Suggestions []match.Match `json:"suggestions"`
}

// Scanner finds mismatches in a snapshot.
type Scanner struct {
	resolver *match.Resolver
}

// NewScanner returns a Scanner using r, or the standard resolver when r is
// nil.
func NewScanner(r *match.Resolver) *Scanner {
	if r == nil {
		r = match.NewResolver()
	}
	return &Scanner{resolver: r}
}

// Scan lists fantasy players first, then stat groups in first-seen order.
func (s *Scanner) Scan(snap *Snapshot) []Mismatch {
	var out []Mismatch

	for _, f := range snap.Fantasy {
		reason := snap.linkProblem(f.RegistryID)
		if reason == "" {
			continue
		}
		src := match.Source{ID: f.ID, Name: f.Name, Team: f.Team}
		out = append(out, s.describe(SourceFantasy, src, f.RegistryID, reason, 1, snap))
	}

	type group struct {
		src     match.Source
		ids     map[string]struct{}
		reasons map[Reason]int
		rows    int
	}
	groups := make(map[string]*group)
	var order []string
	for _, st := range snap.Stats {
		reason := snap.linkProblem(st.PlayerID)
		if reason == "" {
			continue
		}
		key := StatSourceID(st.PlayerName, st.Team)
		g, ok := groups[key]
		if !ok {
			g = &group{
				src:     match.Source{ID: key, Name: st.PlayerName, Team: st.Team},
				ids:     make(map[string]struct{}),
				reasons: make(map[Reason]int),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.ids[st.PlayerID] = struct{}{}
		g.reasons[reason]++
		g.rows++
	}

	for _, key := range order {
		g := groups[key]
		current := ""
		if len(g.ids) == 1 {
			for id := range g.ids {
				current = id
			}
		}
		out = append(out, s.describe(SourceStat, g.src, current, dominant(g.reasons), g.rows, snap))
	}
	return out
}

func (s *Scanner) describe(kind SourceKind, src match.Source, current string, reason Reason, rows int, snap *Snapshot) Mismatch {
	m := Mismatch{
		Kind:        kind,
		Source:      src,
		CurrentID:   current,
		Reason:      reason,
		Rows:        rows,
		Suggestions: s.resolver.Suggest(src, snap.Players),
	}
	if best, ok := s.resolver.Best(src, snap.Players); ok {
		m.Best = &best
	}
	return m
}

// dominant picks the most frequent reason, ties going to the more specific
// one (stale, then placeholder, then missing).
func dominant(counts map[Reason]int) Reason {
	reasons := []Reason{ReasonStale, ReasonPlaceholder, ReasonMissing}
	sort.SliceStable(reasons, func(i, j int) bool { return counts[reasons[i]] > counts[reasons[j]] })
	return reasons[0]
}

// AutoAssignments returns an assignment for every mismatch with a best match.
func AutoAssignments(ms []Mismatch) []Assignment {
	var out []Assignment
	for _, m := range ms {
		if m.Best == nil {
			continue
		}
		out = append(out, Assignment{SourceID: m.Source.ID, CanonicalID: m.Best.Player.ID})
	}
	return out
}
