// Package reconcile detects records that do not point at a canonical player
// and rewrites their ids in store batches.
//
// A run is linear: load a Snapshot, Scan it for mismatches, let an operator
// (or AutoAssignments) choose canonical ids, then Apply them. Nothing is
// persisted between steps.
package reconcile

import (
	"context"
	"fmt"

	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// SourceKind says which collection a reconciliation source lives in.
type SourceKind string

const (
	SourceFantasy SourceKind = "fantasy"
	SourceStat    SourceKind = "stat"
)

const statKeyPrefix = "stat:"

// StatSourceID is the source id of the stat rows sharing name and team.
func StatSourceID(name, team string) string {
	return statKeyPrefix + match.Normalize(name) + "|" + match.Normalize(team)
}

// IsPlaceholderID reports whether id is a legacy all-digit id.
func IsPlaceholderID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Snapshot is everything a run reads, fetched once up front.
type Snapshot struct {
	Players []model.CanonicalPlayer
	Fantasy []model.FantasyPlayer
	Stats   []model.PlayerStat

	canonical map[string]struct{}
}

// Load fetches all three collections.
func Load(ctx context.Context, st store.Store) (*Snapshot, error) {
	players, err := st.ListCanonicalPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	fantasy, err := st.ListFantasyPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fantasy players: %w", err)
	}
	stats, err := st.ListPlayerStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load player stats: %w", err)
	}
	return NewSnapshot(players, fantasy, stats), nil
}

// NewSnapshot indexes already-loaded records.
func NewSnapshot(players []model.CanonicalPlayer, fantasy []model.FantasyPlayer, stats []model.PlayerStat) *Snapshot {
	s := &Snapshot{
		Players:   players,
		Fantasy:   fantasy,
		Stats:     stats,
		canonical: make(map[string]struct{}, len(players)),
	}
	for _, p := range players {
		s.canonical[p.ID] = struct{}{}
	}
	return s
}

// IsCanonical reports whether id names a registry player.
func (s *Snapshot) IsCanonical(id string) bool {
	_, ok := s.canonical[id]
	return ok
}

// Reason classifies why a record's link is wrong.
type Reason string

const (
	ReasonMissing     Reason = "missing"
	ReasonPlaceholder Reason = "placeholder"
	ReasonStale       Reason = "stale"
)

// linkProblem returns the reason id is not a valid canonical link, or "" when
// it is fine.
func (s *Snapshot) linkProblem(id string) Reason {
	switch {
	case id == "":
		return ReasonMissing
	case s.IsCanonical(id):
		return ""
	case IsPlaceholderID(id):
		return ReasonPlaceholder
	default:
		return ReasonStale
	}
}

// sameStatOwner reports whether a stat row belongs to the named player.
func sameStatOwner(st model.PlayerStat, normName, normTeam string) bool {
	return match.Normalize(st.PlayerName) == normName && match.Normalize(st.Team) == normTeam
}
