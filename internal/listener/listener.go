// Package listener provides a Postgres LISTEN/NOTIFY consumer for registry
// changes. It holds a dedicated pgx connection (not from the pool) listening
// on the `registry_changed` channel.
//
// A trigger on the players table fires pg_notify for every insert, update
// and delete, so writes from the admin CLI or another API instance evict
// this process's cached registry searches.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	// Channel matches the trigger in schema.sql.
	Channel          = "registry_changed"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// RegistryEvent is the JSON payload from pg_notify('registry_changed', ...).
type RegistryEvent struct {
	Op        string `json:"op"`
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// Purger drops cached entries by key prefix.
type Purger interface {
	PurgePrefix(prefix string) int
}

// Start opens a dedicated connection and listens on the registry_changed
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, cache Purger, prefix string, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, cache, prefix, logger)
		if ctx.Err() != nil {
			logger.Info("Registry listener stopped (context cancelled)")
			return
		}

		logger.Error("Registry listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, cache Purger, prefix string, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", Channel, err)
	}
	logger.Info("Registry listener connected", "channel", Channel)

	// Anything cached while disconnected may be stale.
	cache.PurgePrefix(prefix)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		handle(notification.Payload, cache, prefix, logger)
	}
}

// handle purges on every notification, including ones whose payload does not
// parse, since the channel itself means the registry moved.
func handle(payload string, cache Purger, prefix string, logger *slog.Logger) {
	var event RegistryEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn("Failed to parse registry event", "payload", payload, "error", err)
	}
	n := cache.PurgePrefix(prefix)
	logger.Debug("Registry changed",
		"op", event.Op,
		"id", event.ID,
		"purged", n)
}
