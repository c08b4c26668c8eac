package dedupe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/neetprep/dedupe/internal/model"
	"github.com/neetprep/dedupe/pkg/hubspot"
)

// GroupStatus is the terminal state of one duplicate group in a run.
type GroupStatus string

const (
	StatusMerged   GroupStatus = "merged"
	StatusFailed   GroupStatus = "failed"
	StatusManual   GroupStatus = "manual_review"
	StatusSkipped  GroupStatus = "skipped"
	StatusNoAnchor GroupStatus = "no_anchor"
)

// GroupResult is the structured per-group outcome. Failures are captured
// here; nothing escapes to abort the run.
type GroupResult struct {
	Key             string      `yaml:"group"`
	Dimension       Dimension   `yaml:"dimension"`
	Status          GroupStatus `yaml:"status"`
	Plan            Plan        `yaml:"plan"`
	FinalID         string      `yaml:"final_id,omitempty"`
	StepsDone       int         `yaml:"steps_done"`
	EmailsPreserved []string    `yaml:"emails_preserved,omitempty"`
	Error           string      `yaml:"error,omitempty"`

	// Transient marks a failure that would be safe to re-run (rate limit,
	// server error, network flake) as opposed to a permanent rejection.
	Transient bool `yaml:"transient,omitempty"`

	// Err is the underlying error for callers; Error is its rendering.
	Err error `yaml:"-"`
}

// RunReport aggregates one processing run over a single dimension.
type RunReport struct {
	RunID     string        `yaml:"run_id"`
	Dimension Dimension     `yaml:"dimension"`
	StartedAt time.Time     `yaml:"started_at"`
	Groups    []GroupResult `yaml:"groups"`

	Merged    int `yaml:"merged"`
	Failed    int `yaml:"failed"`
	Transient int `yaml:"transient_failures"`
	Manual    int `yaml:"manual_review"`
	Skipped   int `yaml:"skipped"`
	NoAnchor  int `yaml:"no_anchor"`
	Absorbed  int `yaml:"contacts_absorbed"`
}

// Processor runs the full pipeline for one record set and dimension:
// group, plan, execute, aggregate. Groups are processed strictly
// sequentially, in discovery order, so runs are reproducible.
type Processor struct {
	planner Planner
	orch    *Orchestrator
	rules   Rules
	now     func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorClock overrides the processor's time source (tests).
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// NewProcessor wires a planner and orchestrator under one rule set.
func NewProcessor(planner Planner, orch *Orchestrator, rules Rules, opts ...ProcessorOption) *Processor {
	p := &Processor{planner: planner, orch: orch, rules: rules, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plans groups the records along dim and returns the plan for every
// duplicate group without executing anything (dry runs, inspection).
func (p *Processor) Plans(records []*model.ContactRecord, dim Dimension) []Plan {
	now := p.now()
	groups := Group(records, dim, p.rules)
	plans := make([]Plan, len(groups))
	for i, g := range groups {
		plans[i] = p.planner.Plan(g, now)
	}
	return plans
}

// Process groups the records along dim and executes every automated plan.
// A failed group is reported and the run moves on to the next group.
func (p *Processor) Process(ctx context.Context, records []*model.ContactRecord, dim Dimension) *RunReport {
	report := &RunReport{
		RunID:     uuid.New().String(),
		Dimension: dim,
		StartedAt: p.now(),
	}

	groups := Group(records, dim, p.rules)
	zap.L().Info("processing duplicate groups",
		zap.String("run_id", report.RunID),
		zap.String("dimension", string(dim)),
		zap.Int("groups", len(groups)),
	)

	for _, g := range groups {
		res := p.processGroup(ctx, g)
		report.Groups = append(report.Groups, res)

		switch res.Status {
		case StatusMerged:
			report.Merged++
			report.Absorbed += res.StepsDone
		case StatusFailed:
			report.Failed++
			report.Absorbed += res.StepsDone
			if res.Transient {
				report.Transient++
			}
		case StatusManual:
			report.Manual++
		case StatusSkipped:
			report.Skipped++
		case StatusNoAnchor:
			report.NoAnchor++
		}

		if ctx.Err() != nil {
			break
		}
	}
	return report
}

func (p *Processor) processGroup(ctx context.Context, g DuplicateGroup) GroupResult {
	plan := p.planner.Plan(g, p.now())
	res := GroupResult{
		Key:       g.Key,
		Dimension: g.Dimension,
		Plan:      plan,
	}

	switch plan.Status {
	case PlanSkipped:
		res.Status = StatusSkipped
		return res
	case PlanNoAnchor:
		res.Status = StatusNoAnchor
		zap.L().Info("no anchor record in group, leaving untouched",
			zap.String("group", g.Key),
			zap.Strings("contacts", plan.RecordIDs),
		)
		return res
	case PlanManual:
		res.Status = StatusManual
		zap.L().Warn("group needs manual review",
			zap.String("group", g.Key),
			zap.String("reason", string(plan.Reason)),
			zap.Strings("contacts", plan.RecordIDs),
		)
		return res
	}

	exec := p.orch.Execute(ctx, plan)
	res.FinalID = exec.FinalID
	res.StepsDone = exec.StepsDone
	res.EmailsPreserved = exec.EmailsPreserved

	if exec.Err != nil {
		res.Status = StatusFailed
		res.Err = exec.Err
		res.Error = eris.ToString(exec.Err, false)
		res.Transient = hubspot.IsTransient(exec.Err)
		zap.L().Error("group merge failed",
			zap.String("group", g.Key),
			zap.Int("steps_done", exec.StepsDone),
			zap.Bool("transient", res.Transient),
			zap.Error(exec.Err),
		)
		return res
	}

	res.Status = StatusMerged
	return res
}
