package dedupe

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/neetprep/dedupe/internal/model"
)

// Store is the engine's view of the external record store. Every call is a
// blocking round trip; each merge/update is atomic at the remote service,
// which is the only locking the engine relies on.
type Store interface {
	// Fetch returns the current state of one contact.
	Fetch(ctx context.Context, id string) (*model.ContactRecord, error)
	// SaveAdditionalEmails replaces the contact's additional-emails set.
	SaveAdditionalEmails(ctx context.Context, id string, emails []string) error
	// SaveAuditLog replaces the contact's audit trail with the full new
	// text. The engine computes the appended string; the store just writes.
	SaveAuditLog(ctx context.Context, id string, log string) error
	// Merge absorbs mergeID into primaryID and returns the surviving
	// identifier.
	Merge(ctx context.Context, primaryID, mergeID string) (string, error)
}

// Pacer spaces external calls to respect the remote request-rate policy.
// A *rate.Limiter satisfies it; tests inject NopPacer.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NopPacer performs no pacing.
type NopPacer struct{}

func (NopPacer) Wait(context.Context) error { return nil }

// ExecResult reports the outcome of executing one plan. On a step failure
// StepsDone counts the steps that committed before it; prior merges stand
// (no rollback).
type ExecResult struct {
	FinalID         string
	StepsDone       int
	EmailsPreserved []string
	FailedStep      *Step
	Err             error
}

// Orchestrator executes merge plans sequentially against a Store.
type Orchestrator struct {
	store Store
	pacer Pacer
	now   func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock overrides the orchestrator's time source (tests).
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator returns an orchestrator writing through store, pacing every
// external call with pacer.
func NewOrchestrator(store Store, pacer Pacer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{store: store, pacer: pacer, now: time.Now}
	if o.pacer == nil {
		o.pacer = NopPacer{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs an automated plan step by step, in plan order. The first
// failing step stops the plan; the result carries the partial outcome and
// the error. Plans that are not automated are rejected outright.
func (o *Orchestrator) Execute(ctx context.Context, plan Plan) *ExecResult {
	res := &ExecResult{FinalID: plan.PrimaryID}
	if plan.Status != PlanAutomated {
		res.Err = eris.Errorf("dedupe: plan for group %s is %s, not executable", plan.GroupKey, plan.Status)
		return res
	}

	for i, step := range plan.Steps {
		if err := o.runStep(ctx, plan.PrimaryID, step, res); err != nil {
			failed := plan.Steps[i]
			res.FailedStep = &failed
			res.Err = err
			return res
		}
		res.StepsDone++
	}

	o.appendNote(ctx, plan.PrimaryID, summaryNote(res.StepsDone, res.EmailsPreserved))
	return res
}

func (o *Orchestrator) runStep(ctx context.Context, primaryID string, step Step, res *ExecResult) error {
	// Preserve the absorbed record's email before the merge call, so the
	// address survives even if the merge itself fails. Re-running the union
	// is a no-op when the email is already present.
	if step.PreserveEmail != "" {
		preserved, err := o.preserveEmail(ctx, step)
		if err != nil {
			return err
		}
		if preserved {
			res.EmailsPreserved = append(res.EmailsPreserved, step.PreserveEmail)
		}
	}

	if err := o.pacer.Wait(ctx); err != nil {
		return eris.Wrap(err, "dedupe: pacing")
	}
	surviving, err := o.store.Merge(ctx, step.Into, step.Merge)
	if err != nil {
		return eris.Wrapf(err, "dedupe: merge %s into %s", step.Merge, step.Into)
	}
	zap.L().Info("merged contact",
		zap.String("absorbed", step.Merge),
		zap.String("surviving", surviving),
	)

	// The trail lives on the plan's primary so the finished record carries
	// a reference to every absorbed identifier.
	o.appendNote(ctx, primaryID, stepNote(step))
	return nil
}

// preserveEmail unions step.PreserveEmail into the survivor's additional
// emails. Returns true when the write actually added the address.
func (o *Orchestrator) preserveEmail(ctx context.Context, step Step) (bool, error) {
	if err := o.pacer.Wait(ctx); err != nil {
		return false, eris.Wrap(err, "dedupe: pacing")
	}
	primary, err := o.store.Fetch(ctx, step.Into)
	if err != nil {
		return false, eris.Wrapf(err, "dedupe: fetch %s", step.Into)
	}

	for _, existing := range primary.AdditionalEmails {
		if equalEmail(existing, step.PreserveEmail) {
			return true, nil
		}
	}

	updated := append(append([]string{}, primary.AdditionalEmails...), step.PreserveEmail)
	if err := o.pacer.Wait(ctx); err != nil {
		return false, eris.Wrap(err, "dedupe: pacing")
	}
	if err := o.store.SaveAdditionalEmails(ctx, step.Into, updated); err != nil {
		return false, eris.Wrapf(err, "dedupe: preserve email on %s", step.Into)
	}
	return true, nil
}

// appendNote writes an audit line to the contact. Note writes are
// best-effort: a failure is logged but never fails the plan, since the merge
// it describes has already committed.
func (o *Orchestrator) appendNote(ctx context.Context, id, note string) {
	if err := o.pacer.Wait(ctx); err != nil {
		zap.L().Warn("audit note skipped", zap.String("contact", id), zap.Error(err))
		return
	}
	rec, err := o.store.Fetch(ctx, id)
	if err != nil {
		zap.L().Warn("audit note skipped", zap.String("contact", id), zap.Error(err))
		return
	}
	log := AppendNote(rec.AuditLog, o.now(), note)
	if err := o.store.SaveAuditLog(ctx, id, log); err != nil {
		zap.L().Warn("audit note write failed", zap.String("contact", id), zap.Error(err))
	}
}

func equalEmail(a, b string) bool {
	na, _ := NormalizeEmail(a)
	nb, _ := NormalizeEmail(b)
	return na == nb
}
