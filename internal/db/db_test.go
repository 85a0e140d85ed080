package db

import (
	"strings"
	"testing"
)

func TestStatementsCoverEveryName(t *testing.T) {
	stmts := statements()
	names := []string{
		StmtHealthCheck, StmtListPlayers, StmtGetPlayer, StmtInsertPlayer,
		StmtListFantasyPlayers, StmtListPlayerStats, StmtUpsertPlayerStat,
		StmtMarkMatchHasStats, StmtListHistoricalMatches,
		StmtSetFantasyRegistryID, StmtSetStatPlayerID,
	}
	if len(stmts) != len(names) {
		t.Fatalf("statements() has %d entries, want %d", len(stmts), len(names))
	}
	for _, n := range names {
		sql, ok := stmts[n]
		if !ok || strings.TrimSpace(sql) == "" {
			t.Errorf("missing statement %q", n)
		}
	}
}

func TestUpsertKeepsExistingPlayerID(t *testing.T) {
	sql := statements()[StmtUpsertPlayerStat]
	if !strings.Contains(sql, "NULLIF($8, '')") {
		t.Error("blank player ids should be stored as NULL")
	}
	if !strings.Contains(sql, "COALESCE(EXCLUDED.player_id") {
		t.Error("re-import must not clear a reconciled player id")
	}
}
