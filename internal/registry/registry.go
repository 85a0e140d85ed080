// Package registry searches and extends the canonical player registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// DefaultSearchLimit caps Search results when the caller passes 0.
const DefaultSearchLimit = 20

var (
	// ErrInvalidPlayer rejects a new player without a usable name.
	ErrInvalidPlayer = errors.New("invalid player")
	// ErrDuplicate is returned by Create when the registry already holds an
	// exact name match on the same team.
	ErrDuplicate = errors.New("player already registered")
)

// Hit is one search result.
type Hit struct {
	Player model.CanonicalPlayer `json:"player"`
	// Matched is the name or alias the query hit.
	Matched string `json:"matched"`
	// Distance is the Levenshtein distance between query and Matched, or -1
	// for hits found by token scoring.
	Distance int `json:"distance"`
}

// NewPlayer is the input to Create.
type NewPlayer struct {
	FullName  string   `json:"fullName"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Team      string   `json:"team"`
	Position  string   `json:"position"`
	Aliases   []string `json:"aliases"`
}

// Service wraps the registry collection.
type Service struct {
	store    store.Store
	resolver *match.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a Service over st.
func New(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, resolver: match.NewResolver(), logger: logger, now: time.Now}
}

// Search finds players whose name or alias contains the query's characters in
// order, case- and accent-insensitively, closest first. When nothing matches
// that way the resolver's scored suggestions are returned instead, so typos
// still find someone.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	players, err := s.store.ListCanonicalPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	var targets []string
	var owner []int
	for i, p := range players {
		targets = append(targets, p.DisplayName())
		owner = append(owner, i)
		for _, a := range p.Aliases {
			targets = append(targets, a)
			owner = append(owner, i)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Stable(ranks)

	hits := []Hit{}
	seen := make(map[string]bool)
	for _, r := range ranks {
		p := players[owner[r.OriginalIndex]]
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		hits = append(hits, Hit{Player: p, Matched: r.Target, Distance: r.Distance})
		if len(hits) == limit {
			return hits, nil
		}
	}
	if len(hits) > 0 {
		return hits, nil
	}

	for _, m := range s.resolver.Suggest(match.Source{Name: query}, players) {
		hits = append(hits, Hit{Player: m.Player, Matched: m.Player.DisplayName(), Distance: -1})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

// Create registers a new canonical player with a fresh opaque id. Unless
// force is set, an exact normalized name or alias match on the same team is
// rejected with ErrDuplicate.
func (s *Service) Create(ctx context.Context, in NewPlayer, force bool) (model.CanonicalPlayer, error) {
	p := model.CanonicalPlayer{
		FullName:  strings.TrimSpace(in.FullName),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Team:      strings.TrimSpace(in.Team),
		Position:  strings.TrimSpace(in.Position),
		Aliases:   cleanAliases(in.Aliases),
	}
	if p.FullName == "" {
		p.FullName = p.DisplayName()
	}
	if match.Normalize(p.FullName) == "" {
		return model.CanonicalPlayer{}, fmt.Errorf("%w: a name with at least one letter or digit is required", ErrInvalidPlayer)
	}

	if !force {
		players, err := s.store.ListCanonicalPlayers(ctx)
		if err != nil {
			return model.CanonicalPlayer{}, fmt.Errorf("list players: %w", err)
		}
		src := match.Source{Name: p.FullName, Team: p.Team}
		if best, ok := s.resolver.Best(src, players); ok && best.Confidence == match.ExactScore && match.SameTeam(best.Player.Team, p.Team) {
			return best.Player, fmt.Errorf("%w: %s (%s)", ErrDuplicate, best.Player.DisplayName(), best.Player.ID)
		}
	}

	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	if err := s.store.CreateCanonicalPlayer(ctx, p); err != nil {
		return model.CanonicalPlayer{}, fmt.Errorf("create player: %w", err)
	}
	s.logger.Info("Registered player", "id", p.ID, "name", p.FullName, "team", p.Team)
	return p, nil
}

func cleanAliases(in []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, a := range in {
		a = strings.TrimSpace(a)
		key := match.Normalize(a)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
