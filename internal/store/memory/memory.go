// Package memory is an in-process Store used by tests and dry runs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// ErrInjected is returned by commits failed through FailCommits.
var ErrInjected = errors.New("injected commit failure")

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu         sync.RWMutex
	players    map[string]model.CanonicalPlayer
	fantasy    map[string]model.FantasyPlayer
	stats      map[string]model.PlayerStat
	statOrder  []string
	matches    map[string]model.Match
	historical []model.HistoricalMatch

	failCommits int
	commits     int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		players: make(map[string]model.CanonicalPlayer),
		fantasy: make(map[string]model.FantasyPlayer),
		stats:   make(map[string]model.PlayerStat),
		matches: make(map[string]model.Match),
	}
}

// Seed loads fixtures directly, bypassing validation.
func (s *Store) Seed(players []model.CanonicalPlayer, fantasy []model.FantasyPlayer, stats []model.PlayerStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range players {
		s.players[p.ID] = p
	}
	for _, f := range fantasy {
		s.fantasy[f.ID] = f
	}
	for _, st := range stats {
		if _, ok := s.stats[st.ID]; !ok {
			s.statOrder = append(s.statOrder, st.ID)
		}
		s.stats[st.ID] = st
	}
}

// PutMatch stores or replaces a match.
func (s *Store) PutMatch(m model.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m
}

// Match returns a stored match.
func (s *Store) Match(id string) (model.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	return m, ok
}

// PutHistorical appends archived results.
func (s *Store) PutHistorical(ms ...model.HistoricalMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historical = append(s.historical, ms...)
}

// FailCommits makes the next n batch commits fail with ErrInjected.
func (s *Store) FailCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommits = n
}

// Commits returns how many batch commits were attempted.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// FantasyPlayer returns one fantasy player.
func (s *Store) FantasyPlayer(id string) (model.FantasyPlayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fantasy[id]
	return f, ok
}

// PlayerStat returns one stat row.
func (s *Store) PlayerStat(id string) (model.PlayerStat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[id]
	return st, ok
}

func (s *Store) ListCanonicalPlayers(ctx context.Context) ([]model.CanonicalPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CanonicalPlayer, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetCanonicalPlayer(ctx context.Context, id string) (model.CanonicalPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.CanonicalPlayer{}, fmt.Errorf("canonical player %q: %w", id, store.ErrNotFound)
	}
	return p, nil
}

func (s *Store) CreateCanonicalPlayer(ctx context.Context, p model.CanonicalPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("canonical player %q: %w", p.ID, store.ErrConflict)
	}
	s.players[p.ID] = p
	return nil
}

func (s *Store) ListFantasyPlayers(ctx context.Context) ([]model.FantasyPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FantasyPlayer, 0, len(s.fantasy))
	for _, f := range s.fantasy {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListPlayerStats(ctx context.Context) ([]model.PlayerStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlayerStat, 0, len(s.statOrder))
	for _, id := range s.statOrder {
		out = append(out, s.stats[id])
	}
	return out, nil
}

func (s *Store) SavePlayerStats(ctx context.Context, rows []model.PlayerStat) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := make(map[string]string, len(s.stats))
	for id, st := range s.stats {
		byKey[statKey(st)] = id
	}

	for _, row := range rows {
		if id, ok := byKey[statKey(row)]; ok {
			row.ID = id
			if row.PlayerID == "" {
				row.PlayerID = s.stats[id].PlayerID
			}
		} else {
			if row.ID == "" {
				row.ID = uuid.NewString()
			}
			s.statOrder = append(s.statOrder, row.ID)
			byKey[statKey(row)] = row.ID
		}
		s.stats[row.ID] = row
	}
	return len(rows), nil
}

func statKey(st model.PlayerStat) string {
	return st.MatchID + "\x00" + st.PlayerName + "\x00" + st.Team + "\x00" + st.Quarter
}

func (s *Store) MarkMatchHasStats(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return fmt.Errorf("match %q: %w", matchID, store.ErrNotFound)
	}
	m.HasStats = true
	s.matches[matchID] = m
	return nil
}

func (s *Store) ListHistoricalMatches(ctx context.Context, year int) ([]model.HistoricalMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.HistoricalMatch
	for _, m := range s.historical {
		if year == 0 || m.Year == year {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) NewBatch() store.Batch {
	return &batch{s: s}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

type op struct {
	fantasyID string
	statID    string
	value     string
}

type batch struct {
	s   *Store
	ops []op
}

func (b *batch) SetFantasyRegistryID(fantasyID, canonicalID string) {
	b.ops = append(b.ops, op{fantasyID: fantasyID, value: canonicalID})
}

func (b *batch) SetStatPlayerID(statID, canonicalID string) {
	b.ops = append(b.ops, op{statID: statID, value: canonicalID})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit validates every target before touching any, so a failed commit
// leaves the store unchanged.
func (b *batch) Commit(ctx context.Context) error {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commits++
	if s.failCommits > 0 {
		s.failCommits--
		return ErrInjected
	}

	for _, o := range b.ops {
		if o.fantasyID != "" {
			if _, ok := s.fantasy[o.fantasyID]; !ok {
				return fmt.Errorf("fantasy player %q: %w", o.fantasyID, store.ErrNotFound)
			}
		} else if _, ok := s.stats[o.statID]; !ok {
			return fmt.Errorf("player stat %q: %w", o.statID, store.ErrNotFound)
		}
	}
	for _, o := range b.ops {
		if o.fantasyID != "" {
			f := s.fantasy[o.fantasyID]
			f.RegistryID = o.value
			s.fantasy[o.fantasyID] = f
		} else {
			st := s.stats[o.statID]
			st.PlayerID = o.value
			s.stats[o.statID] = st
		}
	}
	b.ops = nil
	return nil
}
