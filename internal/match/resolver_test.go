package match

import (
	"fmt"
	"testing"

	"github.com/vflfantasy/vfl-data/internal/model"
)

// fixedScores returns a ScoreFunc that looks the candidate name up in table.
func fixedScores(table map[string]int) ScoreFunc {
	return func(_, candidate, _, _ string) int {
		return table[candidate]
	}
}

func TestBestThresholdIsInclusive(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "a", FullName: "Candidate A", Team: "Keilor"},
		{ID: "b", FullName: "Candidate B", Team: "Essendon"},
	}

	r := NewResolver()
	r.Score = fixedScores(map[string]int{"Candidate A": 69, "Candidate B": 12})
	if m, ok := r.Best(Source{Name: "Someone", Team: "Keilor"}, pool); ok {
		t.Fatalf("top score 69 should not match, got %+v", m)
	}

	r.Score = fixedScores(map[string]int{"Candidate A": 70, "Candidate B": 12})
	m, ok := r.Best(Source{Name: "Someone", Team: "Keilor"}, pool)
	if !ok {
		t.Fatal("top score 70 should match")
	}
	if m.Player.ID != "a" || m.Confidence != 70 {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestBestFallsBackToCrossTeam(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "same", FullName: "Same Team", Team: "Keilor"},
		{ID: "other", FullName: "Other Team", Team: "Essendon"},
	}
	r := NewResolver()
	r.Score = fixedScores(map[string]int{"Same Team": 60, "Other Team": 85})

	m, ok := r.Best(Source{Name: "x", Team: "Keilor"}, pool)
	if !ok || m.Player.ID != "other" {
		t.Fatalf("expected cross-team fallback, got %+v ok=%v", m, ok)
	}
}

func TestBestPrefersSameTeamWhenGoodEnough(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "other", FullName: "Other Team", Team: "Essendon"},
		{ID: "same", FullName: "Same Team", Team: "Keilor"},
	}
	r := NewResolver()
	r.Score = fixedScores(map[string]int{"Same Team": 75, "Other Team": 95})

	m, ok := r.Best(Source{Name: "x", Team: "Keilor"}, pool)
	if !ok || m.Player.ID != "same" {
		t.Fatalf("expected same-team match, got %+v ok=%v", m, ok)
	}
}

func TestBestExactAndAlias(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "elsewhere", FullName: "Jack OKearney", Team: "Essendon"},
		{ID: "abc123XYZ0", FullName: "Jack O'Kearney", Team: "Keilor"},
		{ID: "alias", FullName: "Robert Tables", Team: "Keilor", Aliases: []string{"Bobby Tables"}},
	}
	r := NewResolver()

	m, ok := r.Best(Source{Name: "jack okearney", Team: "Keilor"}, pool)
	if !ok || m.Player.ID != "abc123XYZ0" || m.Confidence != 100 {
		t.Fatalf("expected same-team exact hit, got %+v ok=%v", m, ok)
	}

	m, ok = r.Best(Source{Name: "Bobby Tables", Team: "Keilor"}, pool)
	if !ok || m.Player.ID != "alias" || m.Via != "alias" || m.Confidence != 100 {
		t.Fatalf("expected alias hit, got %+v ok=%v", m, ok)
	}

	r.CheckAliases = false
	m, ok = r.Best(Source{Name: "Bobby Tables", Team: "Keilor"}, pool)
	if ok && m.Via == "alias" {
		t.Fatalf("alias check disabled but got %+v", m)
	}
}

func TestBestStatRowScenario(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "abc123XYZ0", FullName: "Jack O'Kearney", Team: "Keilor"},
		{ID: "zzz", FullName: "Jack Kearns", Team: "Keilor"},
	}
	m, ok := NewResolver().Best(Source{Name: "Jack OKearney", Team: "Keilor"}, pool)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Player.ID != "abc123XYZ0" || m.Confidence < 90 {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestBestEmptyPool(t *testing.T) {
	if m, ok := NewResolver().Best(Source{Name: "Anyone"}, nil); ok {
		t.Fatalf("expected no match, got %+v", m)
	}
}

func TestSuggestLimitsAndFloor(t *testing.T) {
	var pool []model.CanonicalPlayer
	table := map[string]int{}
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("Player %02d", i)
		pool = append(pool, model.CanonicalPlayer{ID: name, FullName: name})
		table[name] = 55 + i*5 // 55..100
	}
	r := NewResolver()
	r.Score = fixedScores(table)

	got := r.Suggest(Source{Name: "whoever"}, pool)
	if len(got) != SuggestLimit {
		t.Fatalf("len = %d, want %d", len(got), SuggestLimit)
	}
	for i, m := range got {
		if m.Confidence < SuggestConfidence {
			t.Errorf("suggestion %d below floor: %+v", i, m)
		}
		if i > 0 && got[i-1].Confidence < m.Confidence {
			t.Errorf("suggestions not sorted at %d", i)
		}
	}
	if got[0].Player.ID != "Player 09" {
		t.Fatalf("first suggestion = %s, want Player 09", got[0].Player.ID)
	}
}

func TestSuggestExcludesBelowFloor(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "a", FullName: "A"}, {ID: "b", FullName: "B"},
	}
	r := NewResolver()
	r.Score = fixedScores(map[string]int{"A": 59, "B": 60})
	got := r.Suggest(Source{Name: "x"}, pool)
	if len(got) != 1 || got[0].Player.ID != "b" {
		t.Fatalf("unexpected suggestions %+v", got)
	}
}

func TestSuggestUsesAliases(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "p1", FullName: "Robert Tables", Team: "Keilor", Aliases: []string{"Bobby Tables"}},
		{ID: "p2", FullName: "Roberta Chairs", Team: "Keilor"},
	}
	got := NewResolver().Suggest(Source{Name: "Bobby Tables", Team: "Keilor"}, pool)
	if len(got) == 0 || got[0].Player.ID != "p1" || got[0].Via != "alias" || got[0].Confidence != 100 {
		t.Fatalf("unexpected suggestions %+v", got)
	}
}

func TestSuggestTieBreakByDistance(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "far", FullName: "Zachary Smithsonian"},
		{ID: "near", FullName: "Jon Smith"},
	}
	r := NewResolver()
	r.Score = fixedScores(map[string]int{"Zachary Smithsonian": 80, "Jon Smith": 80})
	got := r.Suggest(Source{Name: "John Smith"}, pool)
	if len(got) != 2 || got[0].Player.ID != "near" {
		t.Fatalf("expected closer name first, got %+v", got)
	}
}

func TestZeroValueResolverUsesDefaults(t *testing.T) {
	pool := []model.CanonicalPlayer{
		{ID: "a", FullName: "Candidate A", Team: "Keilor"},
		{ID: "b", FullName: "Candidate B", Team: "Keilor"},
	}
	r := &Resolver{Score: fixedScores(map[string]int{"Candidate A": 0, "Candidate B": 59})}

	if m, ok := r.Best(Source{Name: "Someone", Team: "Keilor"}, pool); ok {
		t.Fatalf("zero-value resolver matched below MinConfidence: %+v", m)
	}
	if got := r.Suggest(Source{Name: "Someone", Team: "Keilor"}, pool); len(got) != 0 {
		t.Fatalf("zero-value resolver suggested below SuggestConfidence: %+v", got)
	}

	r.Score = fixedScores(map[string]int{"Candidate A": 0, "Candidate B": 70})
	m, ok := r.Best(Source{Name: "Someone", Team: "Keilor"}, pool)
	if !ok || m.Player.ID != "b" {
		t.Fatalf("unexpected best %+v, %v", m, ok)
	}
}
