// Package model defines the record shapes shared by every store backend and
// by the reconciliation, import and API layers. Field names follow the
// document collections (`players`, `fantasyPlayers`, `playerStats`,
// `matches`, `historicalMatches`); the Postgres backend maps them to
// snake_case columns.
package model

import (
	"strings"
	"time"
)

// Quarter values accepted on a PlayerStat row. QuarterAll is the full-match
// total.
const (
	QuarterAll = "All"
)

// ValidQuarters lists every quarter label a stat row may carry.
var ValidQuarters = []string{"1", "2", "3", "4", QuarterAll}

// IsValidQuarter reports whether q is one of ValidQuarters.
func IsValidQuarter(q string) bool {
	for _, v := range ValidQuarters {
		if q == v {
			return true
		}
	}
	return false
}

// CanonicalPlayer is a registry entry: the durable identity every other
// record should point at.
type CanonicalPlayer struct {
	ID        string    `json:"id" bson:"_id"`
	FullName  string    `json:"fullName" bson:"fullName"`
	FirstName string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Team      string    `json:"team" bson:"team"`
	Position  string    `json:"position,omitempty" bson:"position,omitempty"`
	Aliases   []string  `json:"aliases" bson:"aliases"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// DisplayName returns FullName, or first+last when FullName is blank.
func (p CanonicalPlayer) DisplayName() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// FantasyPlayer is a priced fantasy-game entry. RegistryID links it to a
// CanonicalPlayer; legacy rows carry numeric ids and no link.
type FantasyPlayer struct {
	ID         string  `json:"id" bson:"_id"`
	Name       string  `json:"name" bson:"name"`
	Team       string  `json:"team" bson:"team"`
	Position   string  `json:"position,omitempty" bson:"position,omitempty"`
	Price      int     `json:"price" bson:"price"`
	AvgScore   float64 `json:"avgScore" bson:"avgScore"`
	Breakeven  int     `json:"breakeven" bson:"breakeven"`
	RegistryID string  `json:"registryId,omitempty" bson:"registryId,omitempty"`
}

// PlayerStat is one box-score line for one player, one quarter, one match.
type PlayerStat struct {
	ID            string `json:"id" bson:"_id"`
	MatchID       string `json:"matchId" bson:"matchId"`
	Season        int    `json:"season" bson:"season"`
	Round         string `json:"round" bson:"round"`
	Quarter       string `json:"quarter" bson:"quarter"`
	PlayerName    string `json:"playerName" bson:"playerName"`
	Team          string `json:"team" bson:"team"`
	PlayerID      string `json:"playerId,omitempty" bson:"playerId,omitempty"`
	Kicks         int    `json:"kicks" bson:"kicks"`
	Handballs     int    `json:"handballs" bson:"handballs"`
	Marks         int    `json:"marks" bson:"marks"`
	Tackles       int    `json:"tackles" bson:"tackles"`
	HitOuts       int    `json:"hitOuts" bson:"hitOuts"`
	Goals         int    `json:"goals" bson:"goals"`
	Behinds       int    `json:"behinds" bson:"behinds"`
	FantasyPoints int    `json:"fantasyPoints" bson:"fantasyPoints"`
}

// Match is a fixture in the current competition.
type Match struct {
	ID       string    `json:"id" bson:"_id"`
	HomeTeam string    `json:"homeTeam" bson:"homeTeam"`
	AwayTeam string    `json:"awayTeam" bson:"awayTeam"`
	Season   int       `json:"season" bson:"season"`
	Round    string    `json:"round" bson:"round"`
	Date     time.Time `json:"date" bson:"date"`
	Venue    string    `json:"venue,omitempty" bson:"venue,omitempty"`
	HasStats bool      `json:"hasStats" bson:"hasStats"`
}

// HistoricalMatch is an archived result for the seasons browser. It is not
// linked to Match or PlayerStat.
type HistoricalMatch struct {
	ID        string `json:"id" bson:"_id"`
	Year      int    `json:"year" bson:"year"`
	HomeTeam  string `json:"homeTeam" bson:"homeTeam"`
	AwayTeam  string `json:"awayTeam" bson:"awayTeam"`
	HomeScore int    `json:"homeScore" bson:"homeScore"`
	AwayScore int    `json:"awayScore" bson:"awayScore"`
	Ground    string `json:"ground,omitempty" bson:"ground,omitempty"`
}
