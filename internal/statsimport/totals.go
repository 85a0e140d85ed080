package statsimport

import "github.com/vflfantasy/vfl-data/internal/model"

// Fantasy scoring weights.
const (
	pointsKick     = 3
	pointsHandball = 2
	pointsMark     = 3
	pointsTackle   = 4
	pointsHitOut   = 1
	pointsGoal     = 6
	pointsBehind   = 1
)

// FantasyPoints scores a stat line from its raw counters.
func FantasyPoints(s model.PlayerStat) int {
	return s.Kicks*pointsKick +
		s.Handballs*pointsHandball +
		s.Marks*pointsMark +
		s.Tackles*pointsTackle +
		s.HitOuts*pointsHitOut +
		s.Goals*pointsGoal +
		s.Behinds*pointsBehind
}

// DeriveTotals appends an "All" row for every player in a match that has
// quarter rows but no "All" row. Derived rows are scored with FantasyPoints;
// input rows are returned unchanged.
func DeriveTotals(rows []model.PlayerStat) []model.PlayerStat {
	type key struct{ match, name, team string }

	hasTotal := make(map[key]bool)
	sums := make(map[key]*model.PlayerStat)
	var order []key

	for _, r := range rows {
		k := key{r.MatchID, r.PlayerName, r.Team}
		if r.Quarter == model.QuarterAll {
			hasTotal[k] = true
			continue
		}
		sum, ok := sums[k]
		if !ok {
			sum = &model.PlayerStat{
				MatchID:    r.MatchID,
				Season:     r.Season,
				Round:      r.Round,
				Quarter:    model.QuarterAll,
				PlayerName: r.PlayerName,
				Team:       r.Team,
				PlayerID:   r.PlayerID,
			}
			sums[k] = sum
			order = append(order, k)
		}
		sum.Kicks += r.Kicks
		sum.Handballs += r.Handballs
		sum.Marks += r.Marks
		sum.Tackles += r.Tackles
		sum.HitOuts += r.HitOuts
		sum.Goals += r.Goals
		sum.Behinds += r.Behinds
	}

	out := append([]model.PlayerStat(nil), rows...)
	for _, k := range order {
		if hasTotal[k] {
			continue
		}
		sum := sums[k]
		sum.FantasyPoints = FantasyPoints(*sum)
		out = append(out, *sum)
	}
	return out
}
