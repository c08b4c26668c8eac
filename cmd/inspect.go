package main

import (
	"fmt"
	"io"
	"os/signal"
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
	inspectStrategy string
	inspectExecute  bool
	inspectYes      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Diagnose duplicates for a single identity",
}

var inspectPhoneCmd = &cobra.Command{
	Use:   "phone <number>",
	Short: "Show classification and merge plan for one phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine()
		if err != nil {
			return err
		}

		strategy := inspectStrategy
		if strategy == "" {
			strategy = cfg.Engine.Strategy
		}
		planner, rules, err := buildPlanner(strategy, env.Rules)
		if err != nil {
			return err
		}

		// Inspection always validates against the strict policy; a number
		// that fails it has no business-rule duplicates to look at.
		phone, ok := dedupe.NormalizePhone(args[0], rules.CountryPrefix, dedupe.Strict)
		if !ok {
			return eris.Errorf("phone %q does not normalize to a valid 10-digit mobile number", args[0])
		}

		records, err := env.Searcher.ContactsByPhone(ctx, phone)
		if err != nil {
			return err
		}
		if len(records) < 2 {
			zap.L().Info("no duplicates for phone",
				zap.String("phone", phone),
				zap.Int("contacts", len(records)),
			)
			return nil
		}

		now := time.Now().UTC()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "phone %s: %d contacts\n", phone, len(records))
		for _, rec := range records {
			printContact(out, rec, now, rules)
		}

		group := dedupe.DuplicateGroup{Key: phone, Dimension: dedupe.ByPhone, Records: records}
		plan := planner.Plan(group, now)
		rendered, err := yaml.Marshal(plan)
		if err != nil {
			return eris.Wrap(err, "render plan")
		}
		fmt.Fprintf(out, "\nplan (%s strategy):\n%s", strategy, rendered)

		if !inspectExecute || plan.Status != dedupe.PlanAutomated {
			return nil
		}

		confirm := stdinConfirmer(cmd.InOrStdin(), out)
		if inspectYes {
			confirm = autoConfirm()
		}
		if !confirm(fmt.Sprintf("Execute %d merge step(s) for %s? Merges cannot be undone", len(plan.Steps), phone)) {
			zap.L().Info("inspect execution cancelled by operator")
			return nil
		}

		orch := dedupe.NewOrchestrator(env.Store, env.pacer())
		res := orch.Execute(ctx, plan)
		if res.Err != nil {
			zap.L().Error("merge failed",
				zap.String("phone", phone),
				zap.Int("steps_done", res.StepsDone),
				zap.Error(res.Err),
			)
			return res.Err
		}
		fmt.Fprintf(out, "\nmerged %d contact(s), final contact %s\n", res.StepsDone, res.FinalID)
		return nil
	},
}

func init() {
	inspectPhoneCmd.Flags().StringVar(&inspectStrategy, "strategy", "", "planning strategy: waterfall, recency or system (default from config)")
	inspectPhoneCmd.Flags().BoolVar(&inspectExecute, "execute", false, "execute the plan after showing it")
	inspectPhoneCmd.Flags().BoolVar(&inspectYes, "yes", false, "skip the confirmation prompt")
	inspectCmd.AddCommand(inspectPhoneCmd)
	rootCmd.AddCommand(inspectCmd)
}

func printContact(out io.Writer, rec *model.ContactRecord, now time.Time, rules dedupe.Rules) {
	tags := dedupe.Classify(rec, now, rules)

	age := "old"
	if tags.New {
		age = "new"
	}
	kind := "personal"
	if tags.SystemEmail {
		kind = "system"
	}
	last := "never"
	if !tags.LastActivity.IsZero() {
		last = tags.LastActivity.Format("2006-01-02 15:04")
	}

	fmt.Fprintf(out, "  %s  %-8s %-8s quality=%-2d owner=%-5t stage=%-12q email=%s created=%s last_activity=%s\n",
		rec.ID, age, kind, tags.Quality, tags.HasOwner, rec.LifecycleStage,
		rec.Email, rec.CreatedAt.Format("2006-01-02"), last)
}
