// Package postgres implements store.Store on pgxpool using the prepared
// statements registered by package db.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vflfantasy/vfl-data/internal/db"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is the Postgres-backed store.
type Store struct {
	pool *db.Pool
}

// New wraps an open pool.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies the embedded schema. It uses plain SQL so it can run on a
// pool opened without prepared statements.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) ListCanonicalPlayers(ctx context.Context) ([]model.CanonicalPlayer, error) {
	rows, err := s.pool.Query(ctx, db.StmtListPlayers)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.CanonicalPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) GetCanonicalPlayer(ctx context.Context, id string) (model.CanonicalPlayer, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx, db.StmtGetPlayer, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CanonicalPlayer{}, fmt.Errorf("canonical player %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return model.CanonicalPlayer{}, fmt.Errorf("get player %q: %w", id, err)
	}
	return p, nil
}

func scanPlayer(row pgx.Row) (model.CanonicalPlayer, error) {
	var p model.CanonicalPlayer
	err := row.Scan(&p.ID, &p.FullName, &p.FirstName, &p.LastName, &p.Team, &p.Position, &p.Aliases, &p.CreatedAt)
	return p, err
}

func (s *Store) CreateCanonicalPlayer(ctx context.Context, p model.CanonicalPlayer) error {
	aliases := p.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	_, err := s.pool.Exec(ctx, db.StmtInsertPlayer,
		p.ID, p.FullName, p.FirstName, p.LastName, p.Team, p.Position, aliases)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("canonical player %q: %w", p.ID, store.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert player %q: %w", p.ID, err)
	}
	return nil
}

func (s *Store) ListFantasyPlayers(ctx context.Context) ([]model.FantasyPlayer, error) {
	rows, err := s.pool.Query(ctx, db.StmtListFantasyPlayers)
	if err != nil {
		return nil, fmt.Errorf("list fantasy players: %w", err)
	}
	defer rows.Close()

	var players []model.FantasyPlayer
	for rows.Next() {
		var f model.FantasyPlayer
		if err := rows.Scan(&f.ID, &f.Name, &f.Team, &f.Position, &f.Price, &f.AvgScore, &f.Breakeven, &f.RegistryID); err != nil {
			return nil, fmt.Errorf("scan fantasy player: %w", err)
		}
		players = append(players, f)
	}
	return players, rows.Err()
}

func (s *Store) ListPlayerStats(ctx context.Context) ([]model.PlayerStat, error) {
	rows, err := s.pool.Query(ctx, db.StmtListPlayerStats)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}
	defer rows.Close()

	var stats []model.PlayerStat
	for rows.Next() {
		var st model.PlayerStat
		if err := rows.Scan(
			&st.ID, &st.MatchID, &st.Season, &st.Round, &st.Quarter, &st.PlayerName, &st.Team, &st.PlayerID,
			&st.Kicks, &st.Handballs, &st.Marks, &st.Tackles, &st.HitOuts, &st.Goals, &st.Behinds, &st.FantasyPoints,
		); err != nil {
			return nil, fmt.Errorf("scan player stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// SavePlayerStats upserts every row in one transaction.
func (s *Store) SavePlayerStats(ctx context.Context, rows []model.PlayerStat) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	b := &pgx.Batch{}
	for _, st := range rows {
		id := st.ID
		if id == "" {
			id = uuid.NewString()
		}
		b.Queue(db.StmtUpsertPlayerStat,
			id, st.MatchID, st.Season, st.Round, st.Quarter, st.PlayerName, st.Team, st.PlayerID,
			st.Kicks, st.Handballs, st.Marks, st.Tackles, st.HitOuts, st.Goals, st.Behinds, st.FantasyPoints,
		)
	}
	if err := sendInTx(ctx, s.pool.Pool, b); err != nil {
		return 0, fmt.Errorf("save player stats: %w", err)
	}
	return len(rows), nil
}

func (s *Store) MarkMatchHasStats(ctx context.Context, matchID string) error {
	tag, err := s.pool.Exec(ctx, db.StmtMarkMatchHasStats, matchID)
	if err != nil {
		return fmt.Errorf("mark match %q: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %q: %w", matchID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListHistoricalMatches(ctx context.Context, year int) ([]model.HistoricalMatch, error) {
	rows, err := s.pool.Query(ctx, db.StmtListHistoricalMatches, year)
	if err != nil {
		return nil, fmt.Errorf("list historical matches: %w", err)
	}
	defer rows.Close()

	var out []model.HistoricalMatch
	for rows.Next() {
		var m model.HistoricalMatch
		if err := rows.Scan(&m.ID, &m.Year, &m.HomeTeam, &m.AwayTeam, &m.HomeScore, &m.AwayScore, &m.Ground); err != nil {
			return nil, fmt.Errorf("scan historical match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) NewBatch() store.Batch {
	return &batch{pool: s.pool.Pool, b: &pgx.Batch{}}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.HealthCheck(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// batch queues id rewrites on a pgx.Batch and sends them inside one
// transaction, so a commit is all-or-nothing.
type batch struct {
	pool *pgxpool.Pool
	b    *pgx.Batch
}

func (b *batch) SetFantasyRegistryID(fantasyID, canonicalID string) {
	b.b.Queue(db.StmtSetFantasyRegistryID, fantasyID, canonicalID)
}

func (b *batch) SetStatPlayerID(statID, canonicalID string) {
	b.b.Queue(db.StmtSetStatPlayerID, statID, canonicalID)
}

func (b *batch) Len() int { return b.b.Len() }

func (b *batch) Commit(ctx context.Context) error {
	if b.b.Len() == 0 {
		return nil
	}
	if err := sendInTx(ctx, b.pool, b.b); err != nil {
		return err
	}
	b.b = &pgx.Batch{}
	return nil
}

func sendInTx(ctx context.Context, pool *pgxpool.Pool, b *pgx.Batch) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, b)
		for i := 0; i < b.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch op %d: %w", i, err)
			}
		}
		return br.Close()
	})
}
