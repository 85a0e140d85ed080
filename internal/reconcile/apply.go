package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// Assignment links a source record to a canonical player.
type Assignment struct {
	SourceID    string `json:"sourceId"`
	CanonicalID string `json:"canonicalId"`
}

// Applier writes assignments back to the store.
type Applier struct {
	store      store.Store
	batchLimit int
	logger     *slog.Logger
}

// NewApplier returns an Applier that commits at most batchLimit operations
// per batch.
func NewApplier(st store.Store, batchLimit int, logger *slog.Logger) *Applier {
	if batchLimit < 1 {
		batchLimit = store.DefaultBatchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{store: st, batchLimit: batchLimit, logger: logger}
}

type opKind int

const (
	opFantasy opKind = iota
	opStat
)

type write struct {
	kind opKind
	id   string
}

// Apply loads a fresh snapshot and applies assignments in order. The error is
// non-nil only when the snapshot cannot be loaded; commit failures are
// counted in the Result and the run carries on.
func (a *Applier) Apply(ctx context.Context, assignments []Assignment) (Result, error) {
	snap, err := Load(ctx, a.store)
	if err != nil {
		return Result{}, err
	}
	return a.ApplySnapshot(ctx, snap, assignments), nil
}

// ApplySnapshot applies assignments against an already-loaded snapshot. The
// snapshot is updated in place as writes are queued.
func (a *Applier) ApplySnapshot(ctx context.Context, snap *Snapshot, assignments []Assignment) Result {
	var result Result

	fantasyIdx := make(map[string]int, len(snap.Fantasy))
	for i, f := range snap.Fantasy {
		fantasyIdx[f.ID] = i
	}

	const (
		stateNone = iota
		stateQueued
		stateFailed
	)
	states := make([]int, len(assignments))

	b := a.store.NewBatch()
	// Assignment index of every queued op, per kind and in queue order.
	var pendingPlayers, pendingStats []int

	failFrom := func(idx []int, n int) {
		if n > len(idx) {
			n = len(idx)
		}
		for _, i := range idx[n:] {
			states[i] = stateFailed
		}
	}

	flush := func() {
		if b.Len() == 0 {
			return
		}
		result.Batches++
		ops := b.Len()
		var partial *store.PartialCommitError
		switch err := b.Commit(ctx); {
		case err == nil:
			result.PlayersUpdated += len(pendingPlayers)
			result.StatsUpdated += len(pendingStats)
			a.logger.Info("Reconcile batch committed",
				"batch", result.Batches, "players", len(pendingPlayers), "stats", len(pendingStats))
		case errors.As(err, &partial):
			result.PlayersUpdated += partial.Fantasy
			result.StatsUpdated += partial.Stats
			a.logger.Error("Reconcile batch partially committed",
				"batch", result.Batches, "ops", ops,
				"players", partial.Fantasy, "stats", partial.Stats, "error", err)
			result.Logf("batch %d: partial commit (players %d/%d, stats %d/%d): %v",
				result.Batches, partial.Fantasy, len(pendingPlayers), partial.Stats, len(pendingStats), partial.Err)
			failFrom(pendingPlayers, partial.Fantasy)
			failFrom(pendingStats, partial.Stats)
		default:
			a.logger.Error("Reconcile batch commit failed",
				"batch", result.Batches, "ops", ops, "error", err)
			result.Logf("batch %d: commit failed (%d ops): %v", result.Batches, ops, err)
			failFrom(pendingPlayers, 0)
			failFrom(pendingStats, 0)
		}
		b = a.store.NewBatch()
		pendingPlayers, pendingStats = pendingPlayers[:0], pendingStats[:0]
	}

	for i, asg := range assignments {
		writes, skip := a.plan(snap, fantasyIdx, asg)
		if skip != "" {
			result.Skipped++
			result.Logf("skip %s: %s", asg.SourceID, skip)
			continue
		}

		for _, w := range writes {
			if b.Len() >= a.batchLimit {
				flush()
			}
			switch w.kind {
			case opFantasy:
				b.SetFantasyRegistryID(w.id, asg.CanonicalID)
				pendingPlayers = append(pendingPlayers, i)
			case opStat:
				b.SetStatPlayerID(w.id, asg.CanonicalID)
				pendingStats = append(pendingStats, i)
			}
		}
		if states[i] != stateFailed {
			states[i] = stateQueued
		}
		result.Logf("queue %s -> %s (%d writes)", asg.SourceID, asg.CanonicalID, len(writes))
	}
	flush()

	for i, st := range states {
		switch st {
		case stateQueued:
			result.Fixed++
		case stateFailed:
			result.Errors++
			result.Logf("error %s: not applied", assignments[i].SourceID)
		}
	}

	a.logger.Info("Reconcile apply finished", "summary", result.Summary())
	return result
}

// plan works out the writes for one assignment and marks them done in the
// snapshot. A non-empty reason means the assignment is skipped.
func (a *Applier) plan(snap *Snapshot, fantasyIdx map[string]int, asg Assignment) ([]write, string) {
	if strings.TrimSpace(asg.CanonicalID) == "" {
		return nil, "no canonical id"
	}
	if !snap.IsCanonical(asg.CanonicalID) {
		return nil, "unknown canonical id " + asg.CanonicalID
	}

	var writes []write
	var owns func(st model.PlayerStat) bool

	if fi, ok := fantasyIdx[asg.SourceID]; ok {
		f := &snap.Fantasy[fi]
		if f.RegistryID != asg.CanonicalID {
			writes = append(writes, write{kind: opFantasy, id: f.ID})
			f.RegistryID = asg.CanonicalID
		}
		normName, normTeam := match.Normalize(f.Name), match.Normalize(f.Team)
		oldID := f.ID
		// Rows still carrying the old id belong to it under any spelling.
		owns = func(st model.PlayerStat) bool {
			if st.PlayerID == oldID {
				return true
			}
			return st.PlayerID == "" && normName != "" && sameStatOwner(st, normName, normTeam)
		}
	} else if strings.HasPrefix(asg.SourceID, statKeyPrefix) {
		normName, normTeam, _ := strings.Cut(strings.TrimPrefix(asg.SourceID, statKeyPrefix), "|")
		owns = func(st model.PlayerStat) bool {
			return normName != "" && !snap.IsCanonical(st.PlayerID) && sameStatOwner(st, normName, normTeam)
		}
	} else {
		return nil, "unknown source"
	}

	for si := range snap.Stats {
		st := &snap.Stats[si]
		if st.PlayerID == asg.CanonicalID || !owns(*st) {
			continue
		}
		writes = append(writes, write{kind: opStat, id: st.ID})
		st.PlayerID = asg.CanonicalID
	}

	if len(writes) == 0 {
		return nil, "already linked"
	}
	return writes, ""
}
