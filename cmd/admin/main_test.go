package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
	"github.com/vflfantasy/vfl-data/internal/store/memory"
)

// useMemoryStore points every command at st for the rest of the test.
func useMemoryStore(t *testing.T, st *memory.Store) {
	t.Helper()
	t.Setenv("STORE_BACKEND", config.BackendMemory)
	prev := openStore
	openStore = func(ctx context.Context, cfg *config.Config, l *slog.Logger) (store.Store, error) {
		return st, nil
	}
	t.Cleanup(func() { openStore = prev })
}

func seededStore() *memory.Store {
	st := memory.New()
	st.Seed(
		[]model.CanonicalPlayer{
			{ID: "abc123XYZ0", FullName: "Jack O'Kearney", Team: "Keilor"},
			{ID: "def456UVW1", FullName: "Sam Doolan", Team: "Essendon"},
		},
		[]model.FantasyPlayer{{ID: "42", Name: "Jack O'Kearney", Team: "Keilor"}},
		[]model.PlayerStat{{ID: "s1", MatchID: "m1", Quarter: "All", PlayerName: "Jack OKearney", Team: "Keilor"}},
	)
	st.PutMatch(model.Match{ID: "m2", HomeTeam: "Keilor", AwayTeam: "Essendon"})
	return st
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScan(t *testing.T) {
	useMemoryStore(t, seededStore())
	out, err := run(t, "scan")
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2 mismatches, 2 with a confident match") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "abc123XYZ0") {
		t.Fatalf("best match missing:\n%s", out)
	}

	if _, err := run(t, "scan", "--kind", "teams"); err == nil {
		t.Fatal("expected error for bad kind")
	}
}

func TestSuggest(t *testing.T) {
	useMemoryStore(t, seededStore())
	out, err := run(t, "suggest", "Jack OKearney", "--team", "Keilor")
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if !strings.Contains(out, "abc123XYZ0") || !strings.Contains(out, "100") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestApplyFromFile(t *testing.T) {
	st := seededStore()
	useMemoryStore(t, st)

	path := filepath.Join(t.TempDir(), "assignments.json")
	if err := os.WriteFile(path, []byte(`[{"sourceId":"42","canonicalId":"abc123XYZ0"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "apply", "--file", path)
	if err != nil {
		t.Fatalf("apply failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "fixed=1") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if f, _ := st.FantasyPlayer("42"); f.RegistryID != "abc123XYZ0" {
		t.Fatalf("registryId = %q", f.RegistryID)
	}
}

func TestApplyAutoDryRun(t *testing.T) {
	st := seededStore()
	useMemoryStore(t, st)
	out, err := run(t, "apply", "--auto", "--dry-run")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if strings.Count(out, `"canonicalId": "abc123XYZ0"`) != 2 {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if f, _ := st.FantasyPlayer("42"); f.RegistryID != "" {
		t.Fatal("dry run wrote")
	}

	if _, err := run(t, "apply"); err == nil {
		t.Fatal("expected error without --file or --auto")
	}
}

func TestImportStats(t *testing.T) {
	st := seededStore()
	useMemoryStore(t, st)

	path := filepath.Join(t.TempDir(), "m2.csv")
	csv := "Sam Doolan,Essendon,1,2,2,0,1,0,0,0,14\nSam Doolan,Essendon,2,1,0,1,0,0,1,0,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "import-stats", path, "--match", "m2", "--round", "R4", "--derive-totals")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "parsed=2 derived=1 saved=3") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if m, _ := st.Match("m2"); !m.HasStats {
		t.Fatal("match not flagged")
	}

	if _, err := run(t, "import-stats", path); err == nil {
		t.Fatal("expected error without --match")
	}
}

func TestPlayersAddAndSearch(t *testing.T) {
	useMemoryStore(t, seededStore())

	out, err := run(t, "players", "add", "--name", "Tom Hickey", "--team", "Keilor", "--alias", "Tommy")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := strings.TrimSpace(out)
	if len(id) != 36 {
		t.Fatalf("expected a uuid, got %q", id)
	}

	if _, err := run(t, "players", "add", "--name", "Tom Hickey", "--team", "Keilor"); err == nil {
		t.Fatal("expected duplicate error")
	}

	out, err = run(t, "players", "search", "tommy")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Fatalf("search missing new player:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"x"}, {"y", "12"}}, 1)
	if !strings.Contains(out, "x") || !strings.Contains(out, "12") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("empty headers should render nothing")
	}
}
