package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/db"
	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/reconcile"
	"github.com/vflfantasy/vfl-data/internal/registry"
	"github.com/vflfantasy/vfl-data/internal/statsimport"
	"github.com/vflfantasy/vfl-data/internal/store"
	"github.com/vflfantasy/vfl-data/internal/store/mongostore"
	"github.com/vflfantasy/vfl-data/internal/store/postgres"
)

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (Postgres) or indexes (MongoDB)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := cmd.Context()

			switch cfg.Backend {
			case config.BackendPostgres:
				// Prepared statements reference the tables, so connect without them.
				pool, err := db.NewUnprepared(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()
				if err := postgres.Migrate(ctx, pool.Pool); err != nil {
					return err
				}
			case config.BackendMongo:
				st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.EnsureIndexes(ctx); err != nil {
					return err
				}
			default:
				return fmt.Errorf("nothing to migrate for backend %q", cfg.Backend)
			}
			logger.Info("Migration complete", "backend", cfg.Backend)
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// scan command
// --------------------------------------------------------------------------

func scanCmd() *cobra.Command {
	var (
		kind   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List records without a valid canonical player link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" && kind != string(reconcile.SourceFantasy) && kind != string(reconcile.SourceStat) {
				return fmt.Errorf("--kind must be fantasy or stat")
			}
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				snap, err := reconcile.Load(ctx, st)
				if err != nil {
					return err
				}
				var ms []reconcile.Mismatch
				for _, m := range reconcile.NewScanner(nil).Scan(snap) {
					if kind == "" || string(m.Kind) == kind {
						ms = append(ms, m)
					}
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), ms)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMismatches(ms))
				fmt.Fprintf(cmd.OutOrStdout(), "%d mismatches, %d with a confident match\n", len(ms), len(reconcile.AutoAssignments(ms)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by source kind (fantasy, stat)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func renderMismatches(ms []reconcile.Mismatch) string {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		best, conf := "-", ""
		if m.Best != nil {
			best = fmt.Sprintf("%s (%s)", m.Best.Player.DisplayName(), m.Best.Player.ID)
			conf = strconv.Itoa(m.Best.Confidence)
		}
		rows = append(rows, []string{
			string(m.Kind), m.Source.ID, m.Source.Name, m.Source.Team,
			string(m.Reason), strconv.Itoa(m.Rows), best, conf,
		})
	}
	return renderTable(
		[]string{"Kind", "Source", "Name", "Team", "Reason", "Rows", "Best match", "Conf"},
		rows, 5, 7,
	)
}

// --------------------------------------------------------------------------
// suggest command
// --------------------------------------------------------------------------

func suggestCmd() *cobra.Command {
	var team string
	cmd := &cobra.Command{
		Use:   "suggest NAME",
		Short: "Show the best match and suggestions for a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				players, err := st.ListCanonicalPlayers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSuggestions(match.NewResolver(), match.Source{Name: args[0], Team: team}, players))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "Team name, for the same-team bonus")
	return cmd
}

func renderSuggestions(r *match.Resolver, src match.Source, players []model.CanonicalPlayer) string {
	best, ok := r.Best(src, players)
	rows := [][]string{}
	for _, m := range r.Suggest(src, players) {
		mark := ""
		if ok && m.Player.ID == best.Player.ID {
			mark = "*"
		}
		rows = append(rows, []string{mark, m.Player.ID, m.Player.DisplayName(), m.Player.Team, m.Via, strconv.Itoa(m.Confidence)})
	}
	return renderTable([]string{"", "ID", "Name", "Team", "Via", "Conf"}, rows, 5)
}

// --------------------------------------------------------------------------
// apply command
// --------------------------------------------------------------------------

func applyCmd() *cobra.Command {
	var (
		file   string
		auto   bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write canonical ids back to fantasy players and stat rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file != "") == auto {
				return fmt.Errorf("exactly one of --file or --auto is required")
			}
			var assignments []reconcile.Assignment
			if file != "" {
				var err error
				if assignments, err = readAssignments(file); err != nil {
					return err
				}
			}
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				snap, err := reconcile.Load(ctx, st)
				if err != nil {
					return err
				}
				if auto {
					assignments = reconcile.AutoAssignments(reconcile.NewScanner(nil).Scan(snap))
				}
				if dryRun {
					logger.Info("Dry run, nothing written", "assignments", len(assignments))
					return writeJSON(cmd.OutOrStdout(), assignments)
				}

				start := time.Now()
				result := reconcile.NewApplier(st, cfg.BatchLimit, logger).ApplySnapshot(ctx, snap, assignments)
				logger.Info("Apply finished", "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
				for _, line := range result.Log {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
				if result.Errors > 0 {
					return fmt.Errorf("%d assignments failed", result.Errors)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", `JSON file of [{"sourceId": ..., "canonicalId": ...}]`)
	cmd.Flags().BoolVar(&auto, "auto", false, "Apply every mismatch's confident best match")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the assignments without writing")
	return cmd
}

func readAssignments(path string) ([]reconcile.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assignments: %w", err)
	}
	var out []reconcile.Assignment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse assignments %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, errors.New("assignments file is empty")
	}
	return out, nil
}

// --------------------------------------------------------------------------
// import-stats command
// --------------------------------------------------------------------------

func importStatsCmd() *cobra.Command {
	var (
		matchID      string
		season       int
		round        string
		deriveTotals bool
	)
	cmd := &cobra.Command{
		Use:   "import-stats FILE",
		Short: "Import a per-quarter box-score CSV for one match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if matchID == "" {
				return fmt.Errorf("--match is required")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				start := time.Now()
				result, err := statsimport.NewImporter(st, logger).Import(ctx, f, statsimport.Options{
					Match:        statsimport.MatchContext{MatchID: matchID, Season: season, Round: round},
					DeriveTotals: deriveTotals,
				})
				if err != nil {
					return err
				}
				logger.Info("Import finished", "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Warn("import issue", "error", e)
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&matchID, "match", "", "Match id")
	cmd.Flags().IntVar(&season, "season", config.CurrentSeason, "Season year")
	cmd.Flags().StringVar(&round, "round", "", "Round label")
	cmd.Flags().BoolVar(&deriveTotals, "derive-totals", false, "Add computed All rows for players with only quarter rows")
	return cmd
}

// --------------------------------------------------------------------------
// players command
// --------------------------------------------------------------------------

func playersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Search and extend the canonical player registry",
	}
	cmd.AddCommand(playersAddCmd())
	cmd.AddCommand(playersSearchCmd())
	return cmd
}

func playersAddCmd() *cobra.Command {
	var (
		in    registry.NewPlayer
		force bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new canonical player",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				p, err := registry.New(st, logger).Create(ctx, in, force)
				if errors.Is(err, registry.ErrDuplicate) {
					return fmt.Errorf("%w (use --force to add anyway)", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&in.FirstName, "first", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last", "", "Last name")
	cmd.Flags().StringVar(&in.Team, "team", "", "Team")
	cmd.Flags().StringVar(&in.Position, "position", "", "Position")
	cmd.Flags().StringSliceVar(&in.Aliases, "alias", nil, "Alternate spelling (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the duplicate check")
	return cmd
}

func playersSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the registry by name or alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				hits, err := registry.New(st, logger).Search(ctx, args[0], limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderHits(hits))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", registry.DefaultSearchLimit, "Maximum results")
	return cmd
}

func renderHits(hits []registry.Hit) string {
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		dist := "~"
		if h.Distance >= 0 {
			dist = strconv.Itoa(h.Distance)
		}
		rows = append(rows, []string{h.Player.ID, h.Player.DisplayName(), h.Player.Team, h.Matched, dist})
	}
	return renderTable([]string{"ID", "Name", "Team", "Matched", "Dist"}, rows, 4)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
