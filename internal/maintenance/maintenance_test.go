package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/reconcile"
	"github.com/vflfantasy/vfl-data/internal/store/memory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seeded() *memory.Store {
	st := memory.New()
	st.Seed(
		[]model.CanonicalPlayer{{ID: "abc123XYZ0", FullName: "Jack O'Kearney", Team: "Keilor"}},
		[]model.FantasyPlayer{
			{ID: "42", Name: "Jack O'Kearney", Team: "Keilor"},
			{ID: "43", Name: "Nobody Known", Team: "Keilor", RegistryID: "17"},
		},
		[]model.PlayerStat{{ID: "s1", MatchID: "m1", Quarter: "All", PlayerName: "Jack OKearney", Team: "Keilor"}},
	)
	return st
}

func TestAuditorRun(t *testing.T) {
	a := NewAuditor(seeded(), quietLogger())
	if _, ok := a.Last(); ok {
		t.Fatal("no report expected before the first run")
	}

	report := a.Run(context.Background())
	if report.Error != "" {
		t.Fatalf("unexpected error %q", report.Error)
	}
	if report.Mismatches != 3 {
		t.Fatalf("Mismatches = %d, want 3", report.Mismatches)
	}
	if report.ByKind[reconcile.SourceFantasy] != 2 || report.ByKind[reconcile.SourceStat] != 1 {
		t.Fatalf("ByKind = %v", report.ByKind)
	}
	if report.ByReason[reconcile.ReasonPlaceholder] != 1 {
		t.Fatalf("ByReason = %v", report.ByReason)
	}
	if report.AutoFixable != 2 {
		t.Fatalf("AutoFixable = %d, want 2", report.AutoFixable)
	}

	last, ok := a.Last()
	if !ok || last.Mismatches != report.Mismatches {
		t.Fatalf("Last = %+v, %v", last, ok)
	}
}

func TestStartRunsAuditImmediately(t *testing.T) {
	a := NewAuditor(seeded(), quietLogger())
	s, err := Start(context.Background(), a, Config{AuditInterval: time.Hour}, quietLogger())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := a.Last(); ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("audit did not run after Start")
}
