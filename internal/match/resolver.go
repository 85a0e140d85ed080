package match

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/vflfantasy/vfl-data/internal/model"
)

// Thresholds used by the resolver.
const (
	MinConfidence     = 70
	SuggestConfidence = 60
	SuggestLimit      = 5
)

// Source is the record being reconciled: a fantasy player, or a group of
// stat rows sharing a name and team.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
}

// Match is a scored candidate.
type Match struct {
	Player     model.CanonicalPlayer `json:"player"`
	Confidence int                   `json:"confidence"`
	// Via is "name" or "alias".
	Via string `json:"via"`
}

// Resolver picks canonical candidates for a source record.
type Resolver struct {
	// Score rates a pair of names; defaults to ScoreWithTeams.
	Score ScoreFunc
	// CheckAliases lets exact alias hits short-circuit Best.
	CheckAliases bool
	// MinConfidence is the inclusive floor for Best. Zero means the package
	// MinConfidence.
	MinConfidence int
	// SuggestConfidence is the inclusive floor for Suggest. Zero means the
	// package SuggestConfidence.
	SuggestConfidence int
	// SuggestLimit caps the length of Suggest's result. Zero means the package
	// SuggestLimit.
	SuggestLimit int
}

// NewResolver returns a Resolver with the standard thresholds and alias
// checking enabled.
func NewResolver() *Resolver {
	return &Resolver{
		Score:             ScoreWithTeams,
		CheckAliases:      true,
		MinConfidence:     MinConfidence,
		SuggestConfidence: SuggestConfidence,
		SuggestLimit:      SuggestLimit,
	}
}

func (r *Resolver) minConfidence() int {
	if r.MinConfidence <= 0 {
		return MinConfidence
	}
	return r.MinConfidence
}

func (r *Resolver) suggestConfidence() int {
	if r.SuggestConfidence <= 0 {
		return SuggestConfidence
	}
	return r.SuggestConfidence
}

func (r *Resolver) score(nameA, nameB, teamA, teamB string) int {
	if r.Score == nil {
		return ScoreWithTeams(nameA, nameB, teamA, teamB)
	}
	return r.Score(nameA, nameB, teamA, teamB)
}

// Best returns the single most likely canonical player for src, or false when
// nothing reaches MinConfidence.
func (r *Resolver) Best(src Source, pool []model.CanonicalPlayer) (Match, bool) {
	if m, ok := r.exact(src, pool); ok {
		return m, true
	}

	var sameTeam, others []int
	for i := range pool {
		if SameTeam(src.Team, pool[i].Team) {
			sameTeam = append(sameTeam, i)
		} else {
			others = append(others, i)
		}
	}

	best := Match{Confidence: -1}
	scan := func(idx []int) {
		for _, i := range idx {
			c := pool[i]
			s := r.score(src.Name, c.DisplayName(), src.Team, c.Team)
			if s > best.Confidence {
				best = Match{Player: c, Confidence: s, Via: "name"}
			}
		}
	}

	floor := r.minConfidence()
	scan(sameTeam)
	if best.Confidence < floor {
		scan(others)
	}

	if best.Confidence < floor {
		return Match{}, false
	}
	return best, true
}

// exact finds a candidate whose normalized name (or alias, when enabled)
// equals the source's. A same-team hit wins over an earlier cross-team hit.
func (r *Resolver) exact(src Source, pool []model.CanonicalPlayer) (Match, bool) {
	key := Normalize(src.Name)
	if key == "" {
		return Match{}, false
	}

	var found *Match
	for _, c := range pool {
		via := ""
		if Normalize(c.DisplayName()) == key {
			via = "name"
		} else if r.CheckAliases {
			for _, a := range c.Aliases {
				if Normalize(a) == key {
					via = "alias"
					break
				}
			}
		}
		if via == "" {
			continue
		}
		m := Match{Player: c, Confidence: ExactScore, Via: via}
		if SameTeam(src.Team, c.Team) {
			return m, true
		}
		if found == nil {
			found = &m
		}
	}
	if found != nil {
		return *found, true
	}
	return Match{}, false
}

// Suggest scores every candidate, including its aliases, and returns up to
// SuggestLimit matches at or above SuggestConfidence, best first.
func (r *Resolver) Suggest(src Source, pool []model.CanonicalPlayer) []Match {
	type ranked struct {
		Match
		distance int
	}

	lowered := strings.ToLower(src.Name)
	var scored []ranked
	for _, c := range pool {
		m := Match{Player: c, Confidence: r.score(src.Name, c.DisplayName(), src.Team, c.Team), Via: "name"}
		for _, a := range c.Aliases {
			if s := r.score(src.Name, a, src.Team, c.Team); s > m.Confidence {
				m.Confidence = s
				m.Via = "alias"
			}
		}
		if m.Confidence < r.suggestConfidence() {
			continue
		}
		scored = append(scored, ranked{
			Match:    m,
			distance: fuzzy.LevenshteinDistance(lowered, strings.ToLower(c.DisplayName())),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Confidence != scored[j].Confidence {
			return scored[i].Confidence > scored[j].Confidence
		}
		if scored[i].distance != scored[j].distance {
			return scored[i].distance < scored[j].distance
		}
		return scored[i].Player.DisplayName() < scored[j].Player.DisplayName()
	})

	limit := r.SuggestLimit
	if limit <= 0 {
		limit = SuggestLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]Match, len(scored))
	for i, s := range scored {
		out[i] = s.Match
	}
	return out
}
