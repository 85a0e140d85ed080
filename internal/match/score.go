package match

import (
	"math"
	"strings"
)

// Confidence levels produced by the scorer.
const (
	ExactScore     = 100
	SubstringScore = 90
	TeamBonus      = 10
	MaxScore       = 100
)

// ScoreFunc rates two names (with optional teams) on a 0-100 scale.
type ScoreFunc func(nameA, nameB, teamA, teamB string) int

// Score rates two display names without team context.
func Score(nameA, nameB string) int {
	return ScoreWithTeams(nameA, nameB, "", "")
}

// ScoreWithTeams rates two display names on a 0-100 scale. Rules apply in
// order: exact normalized match, substring containment, token overlap. A
// shared team adds TeamBonus, capped at MaxScore. Blank names score 0.
func ScoreWithTeams(nameA, nameB, teamA, teamB string) int {
	return withTeamBonus(nameScore(nameA, nameB), teamA, teamB)
}

func nameScore(nameA, nameB string) int {
	na, nb := Normalize(nameA), Normalize(nameB)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return ExactScore
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return SubstringScore
	}
	return tokenOverlap(tokens(nameA), tokens(nameB))
}

// tokenOverlap counts source tokens that equal or contain (or are contained
// by) some target token. Each source token counts once.
func tokenOverlap(ta, tb []string) int {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	matched := 0
	for _, a := range ta {
		for _, b := range tb {
			if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
				matched++
				break
			}
		}
	}
	denom := max(len(ta), len(tb))
	return int(math.Round(float64(matched) / float64(denom) * 100))
}

func withTeamBonus(score int, teamA, teamB string) int {
	if score > 0 && SameTeam(teamA, teamB) {
		score += TeamBonus
	}
	return min(score, MaxScore)
}
