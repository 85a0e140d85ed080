// Package maintenance runs periodic background tasks inside the API process.
// The only task today is the link audit: load a snapshot, scan it, and log
// how many records still point at no canonical player.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/vflfantasy/vfl-data/internal/reconcile"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	AuditInterval time.Duration
}

// AuditReport is the outcome of one audit run.
type AuditReport struct {
	RanAt       time.Time                    `json:"ranAt"`
	Duration    time.Duration                `json:"durationNs"`
	Mismatches  int                          `json:"mismatches"`
	ByKind      map[reconcile.SourceKind]int `json:"byKind"`
	ByReason    map[reconcile.Reason]int     `json:"byReason"`
	AutoFixable int                          `json:"autoFixable"`
	Error       string                       `json:"error,omitempty"`
}

// Auditor scans the store on a schedule and keeps the latest report.
type Auditor struct {
	store   store.Store
	scanner *reconcile.Scanner
	logger  *slog.Logger

	mu   sync.RWMutex
	last *AuditReport
}

// NewAuditor returns an Auditor over st.
func NewAuditor(st store.Store, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{store: st, scanner: reconcile.NewScanner(nil), logger: logger}
}

// Run performs one audit and records the report.
func (a *Auditor) Run(ctx context.Context) AuditReport {
	start := time.Now()
	report := AuditReport{
		RanAt:    start.UTC(),
		ByKind:   make(map[reconcile.SourceKind]int),
		ByReason: make(map[reconcile.Reason]int),
	}

	snap, err := reconcile.Load(ctx, a.store)
	if err != nil {
		report.Error = err.Error()
		a.logger.Error("Link audit failed", "error", err)
	} else {
		ms := a.scanner.Scan(snap)
		report.Mismatches = len(ms)
		for _, m := range ms {
			report.ByKind[m.Kind]++
			report.ByReason[m.Reason]++
		}
		report.AutoFixable = len(reconcile.AutoAssignments(ms))
		a.logger.Info("Link audit finished",
			"mismatches", report.Mismatches,
			"fantasy", report.ByKind[reconcile.SourceFantasy],
			"stat_groups", report.ByKind[reconcile.SourceStat],
			"auto_fixable", report.AutoFixable)
	}
	report.Duration = time.Since(start)

	a.mu.Lock()
	a.last = &report
	a.mu.Unlock()
	return report
}

// Last returns the most recent report, if any audit has run.
func (a *Auditor) Last() (AuditReport, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return AuditReport{}, false
	}
	return *a.last, true
}

// Scheduler wraps a gocron scheduler running the configured tasks.
type Scheduler struct {
	s gocron.Scheduler
}

// Start schedules every enabled task and starts the scheduler. The audit also
// runs once immediately. Stop must be called on shutdown.
func Start(ctx context.Context, auditor *Auditor, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	if cfg.AuditInterval > 0 {
		_, err = s.NewJob(
			gocron.DurationJob(cfg.AuditInterval),
			gocron.NewTask(func() { auditor.Run(ctx) }),
			gocron.WithName("link-audit"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("failed to create audit job: %w", err)
		}
	}

	s.Start()
	logger.Info("Maintenance scheduler started", "audit", cfg.AuditInterval)
	return &Scheduler{s: s}, nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}
