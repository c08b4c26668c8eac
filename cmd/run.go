package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/neetprep/dedupe/internal/dedupe"
	"github.com/neetprep/dedupe/internal/model"
)

var (
	runDate      string
	runHoursBack int
	runDimension string
	runStrategy  string
	runDryRun    bool
	runYes       bool
	runManualCSV string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find and merge duplicate contacts in a creation window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine()
		if err != nil {
			return err
		}

		strategy := runStrategy
		if strategy == "" {
			strategy = cfg.Engine.Strategy
		}
		planner, rules, err := buildPlanner(strategy, env.Rules)
		if err != nil {
			return err
		}

		dims, err := parseDimensions(runDimension)
		if err != nil {
			return err
		}

		from, to, err := runWindow(runDate, runHoursBack, time.Now().UTC())
		if err != nil {
			return err
		}

		records, err := env.Searcher.ContactsCreatedBetween(ctx, from, to)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			zap.L().Info("no contacts in window", zap.Time("from", from), zap.Time("to", to))
			return nil
		}

		orch := dedupe.NewOrchestrator(env.Store, env.pacer())
		proc := dedupe.NewProcessor(planner, orch, rules)

		if runDryRun {
			for _, dim := range dims {
				plans := proc.Plans(records, dim)
				out, err := yaml.Marshal(plans)
				if err != nil {
					return eris.Wrap(err, "render plans")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# dimension: %s, duplicate groups: %d\n%s", dim, len(plans), out)
			}
			return nil
		}

		confirm := stdinConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
		if runYes {
			confirm = autoConfirm()
		}
		prompt := fmt.Sprintf("Merge duplicates among %d contacts (%s strategy)? Merges cannot be undone", len(records), strategy)
		if !confirm(prompt) {
			zap.L().Info("run cancelled by operator")
			return nil
		}

		var reports []*dedupe.RunReport
		for _, dim := range dims {
			report := proc.Process(ctx, records, dim)
			logReport(report)
			reports = append(reports, report)
			records = dropAbsorbed(records, report)
		}

		if runManualCSV != "" {
			if err := writeManualCSV(runManualCSV, reports); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runDate, "date", "", "process contacts created on this day (YYYY-MM-DD, UTC)")
	runCmd.Flags().IntVar(&runHoursBack, "hours-back", 24, "process contacts created in the last N hours (ignored when --date is set)")
	runCmd.Flags().StringVar(&runDimension, "dimension", "both", "identity axis to group on: phone, email or both")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "", "planning strategy: waterfall, recency or system (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print merge plans as YAML without touching the CRM")
	runCmd.Flags().BoolVar(&runYes, "yes", false, "skip the confirmation prompt")
	runCmd.Flags().StringVar(&runManualCSV, "manual-csv", "", "write manual-review groups to this CSV file")
	rootCmd.AddCommand(runCmd)
}

// runWindow resolves the --date / --hours-back flags into [from, to).
func runWindow(date string, hoursBack int, now time.Time) (time.Time, time.Time, error) {
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "parse --date %q", date)
		}
		return day, day.Add(24 * time.Hour), nil
	}
	if hoursBack <= 0 {
		return time.Time{}, time.Time{}, eris.New("--hours-back must be positive")
	}
	return now.Add(-time.Duration(hoursBack) * time.Hour), now, nil
}

// parseDimensions resolves the --dimension flag. Phone and email passes stay
// independent; "both" just runs them back to back.
func parseDimensions(s string) ([]dedupe.Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone":
		return []dedupe.Dimension{dedupe.ByPhone}, nil
	case "email":
		return []dedupe.Dimension{dedupe.ByEmail}, nil
	case "both", "":
		return []dedupe.Dimension{dedupe.ByPhone, dedupe.ByEmail}, nil
	}
	return nil, eris.Errorf("unknown dimension %q (want phone, email or both)", s)
}

// dropAbsorbed removes the contacts a finished pass merged away, so the next
// dimension never plans against records that no longer exist upstream. Only
// committed steps count; a failed step's Merge target is still live.
func dropAbsorbed(records []*model.ContactRecord, report *dedupe.RunReport) []*model.ContactRecord {
	absorbed := make(map[string]bool)
	for _, g := range report.Groups {
		for i, step := range g.Plan.Steps {
			if i >= g.StepsDone {
				break
			}
			absorbed[step.Merge] = true
		}
	}
	if len(absorbed) == 0 {
		return records
	}

	kept := make([]*model.ContactRecord, 0, len(records))
	for _, rec := range records {
		if !absorbed[rec.ID] {
			kept = append(kept, rec)
		}
	}
	return kept
}

func logReport(report *dedupe.RunReport) {
	zap.L().Info("run summary",
		zap.String("run_id", report.RunID),
		zap.String("dimension", string(report.Dimension)),
		zap.Int("groups", len(report.Groups)),
		zap.Int("merged", report.Merged),
		zap.Int("failed", report.Failed),
		zap.Int("transient_failures", report.Transient),
		zap.Int("manual_review", report.Manual),
		zap.Int("skipped", report.Skipped),
		zap.Int("no_anchor", report.NoAnchor),
		zap.Int("contacts_absorbed", report.Absorbed),
	)
}

// writeManualCSV exports groups that need a human to a CSV file.
func writeManualCSV(path string, reports []*dedupe.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"dimension", "group", "reason", "contact_ids"}); err != nil {
		return eris.Wrap(err, "write csv header")
	}

	rows := 0
	for _, report := range reports {
		for _, g := range report.Groups {
			var reason string
			switch g.Status {
			case dedupe.StatusManual:
				reason = string(g.Plan.Reason)
			case dedupe.StatusNoAnchor:
				reason = string(dedupe.PlanNoAnchor)
			default:
				continue
			}
			row := []string{
				string(g.Dimension),
				g.Key,
				reason,
				strings.Join(g.Plan.RecordIDs, " "),
			}
			if err := w.Write(row); err != nil {
				return eris.Wrap(err, "write csv row")
			}
			rows++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "flush csv")
	}
	zap.L().Info("manual-review export written", zap.String("path", path), zap.Int("rows", rows))
	return nil
}
