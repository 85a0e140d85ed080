// Package store defines the persistence contract shared by the Postgres,
// Mongo and in-memory backends.
//
// Reads are fetch-all: reconciliation filters in memory. Writes that
// reconcile ids go through a Batch, which the backend commits atomically
// where it can.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/vflfantasy/vfl-data/internal/model"
)

// DefaultBatchLimit mirrors the per-batch operation cap of the document
// database the data was first kept in.
const DefaultBatchLimit = 500

var (
	// ErrNotFound is returned when a single-record lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a create collides with an existing id.
	ErrConflict = errors.New("already exists")
)

// Store is the full persistence surface used by the services.
type Store interface {
	ListCanonicalPlayers(ctx context.Context) ([]model.CanonicalPlayer, error)
	GetCanonicalPlayer(ctx context.Context, id string) (model.CanonicalPlayer, error)
	CreateCanonicalPlayer(ctx context.Context, p model.CanonicalPlayer) error

	ListFantasyPlayers(ctx context.Context) ([]model.FantasyPlayer, error)
	ListPlayerStats(ctx context.Context) ([]model.PlayerStat, error)

	// SavePlayerStats upserts rows keyed by (matchId, playerName, team, quarter).
	SavePlayerStats(ctx context.Context, rows []model.PlayerStat) (int, error)
	// MarkMatchHasStats flags a match as having imported stats.
	MarkMatchHasStats(ctx context.Context, matchID string) error

	ListHistoricalMatches(ctx context.Context, year int) ([]model.HistoricalMatch, error)

	// NewBatch starts an empty write batch.
	NewBatch() Batch

	Ping(ctx context.Context) error
	Close()
}

// Batch groups id rewrites into one commit.
type Batch interface {
	SetFantasyRegistryID(fantasyID, canonicalID string)
	SetStatPlayerID(statID, canonicalID string)
	// Len is the number of queued operations.
	Len() int
	// Commit applies every queued operation. Postgres and memory commits are
	// all-or-nothing. Mongo is all-or-nothing on replica sets and sharded
	// clusters; on a standalone server a failure part way returns a
	// *PartialCommitError naming how many operations of each kind landed.
	// Any other error means nothing was applied.
	Commit(ctx context.Context) error
}

// PartialCommitError reports a commit that stopped part way. Operations are
// applied in queue order per kind, so the first Fantasy fantasy rewrites and
// the first Stats stat rewrites are durable and the rest were not written.
type PartialCommitError struct {
	Fantasy int
	Stats   int
	Err     error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit (fantasy=%d stats=%d): %v", e.Fantasy, e.Stats, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }
