// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vflfantasy/vfl-data/internal/config"
)

// Prepared statement names used by the Postgres store.
const (
	StmtHealthCheck           = "health_check"
	StmtListPlayers           = "list_players"
	StmtGetPlayer             = "get_player"
	StmtInsertPlayer          = "insert_player"
	StmtListFantasyPlayers    = "list_fantasy_players"
	StmtListPlayerStats       = "list_player_stats"
	StmtUpsertPlayerStat      = "upsert_player_stat"
	StmtMarkMatchHasStats     = "mark_match_has_stats"
	StmtListHistoricalMatches = "list_historical_matches"
	StmtSetFantasyRegistryID  = "set_fantasy_registry_id"
	StmtSetStatPlayerID       = "set_stat_player_id"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	return open(ctx, cfg, true)
}

// NewUnprepared opens a pool without registering prepared statements. Used
// by the schema migration, which runs before the tables exist.
func NewUnprepared(ctx context.Context, cfg *config.Config) (*Pool, error) {
	return open(ctx, cfg, false)
}

func open(ctx context.Context, cfg *config.Config, prepare bool) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	if prepare {
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return registerPreparedStatements(ctx, conn)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, StmtHealthCheck).Scan(&n)
}

// statements returns every prepared statement keyed by name.
func statements() map[string]string {
	return map[string]string{
		// Health
		StmtHealthCheck: "SELECT 1",

		// Registry
		StmtListPlayers: `SELECT id, full_name, first_name, last_name, team, position, aliases, created_at
			FROM ` + config.PlayersTable + ` ORDER BY id`,
		StmtGetPlayer: `SELECT id, full_name, first_name, last_name, team, position, aliases, created_at
			FROM ` + config.PlayersTable + ` WHERE id = $1`,
		StmtInsertPlayer: `INSERT INTO ` + config.PlayersTable + `
			(id, full_name, first_name, last_name, team, position, aliases)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,

		// Fantasy players
		StmtListFantasyPlayers: `SELECT id, name, team, position, price, avg_score, breakeven, COALESCE(registry_id, '')
			FROM ` + config.FantasyPlayersTable + ` ORDER BY id`,

		// Player stats
		StmtListPlayerStats: `SELECT id, match_id, season, round, quarter, player_name, team, COALESCE(player_id, ''),
			kicks, handballs, marks, tackles, hit_outs, goals, behinds, fantasy_points
			FROM ` + config.PlayerStatsTable + ` ORDER BY id`,
		StmtUpsertPlayerStat: `INSERT INTO ` + config.PlayerStatsTable + ` (
				id, match_id, season, round, quarter, player_name, team, player_id,
				kicks, handballs, marks, tackles, hit_outs, goals, behinds, fantasy_points
			) VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8, ''),$9,$10,$11,$12,$13,$14,$15,$16)
			ON CONFLICT (match_id, player_name, team, quarter) DO UPDATE SET
				season = EXCLUDED.season,
				round = EXCLUDED.round,
				player_id = COALESCE(EXCLUDED.player_id, ` + config.PlayerStatsTable + `.player_id),
				kicks = EXCLUDED.kicks,
				handballs = EXCLUDED.handballs,
				marks = EXCLUDED.marks,
				tackles = EXCLUDED.tackles,
				hit_outs = EXCLUDED.hit_outs,
				goals = EXCLUDED.goals,
				behinds = EXCLUDED.behinds,
				fantasy_points = EXCLUDED.fantasy_points,
				updated_at = NOW()`,

		// Matches
		StmtMarkMatchHasStats: `UPDATE ` + config.MatchesTable + ` SET has_stats = true, updated_at = NOW() WHERE id = $1`,

		// Seasons browser
		StmtListHistoricalMatches: `SELECT id, year, home_team, away_team, home_score, away_score, ground
			FROM ` + config.HistoricalMatchesTable + `
			WHERE $1::int = 0 OR year = $1::int
			ORDER BY year DESC, id`,

		// Reconciliation writes
		StmtSetFantasyRegistryID: `UPDATE ` + config.FantasyPlayersTable + ` SET registry_id = $2, updated_at = NOW() WHERE id = $1`,
		StmtSetStatPlayerID:      `UPDATE ` + config.PlayerStatsTable + ` SET player_id = $2, updated_at = NOW() WHERE id = $1`,
	}
}

// registerPreparedStatements registers all statements the API and admin
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range statements() {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
