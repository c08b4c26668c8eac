package dedupe

import (
	"sort"
	"time"

	"github.com/neetprep/dedupe/internal/model"
)

// PlanStatus classifies a planning outcome.
type PlanStatus string

const (
	// PlanAutomated means the plan can be executed as-is.
	PlanAutomated PlanStatus = "automated"
	// PlanManual means the group needs a human; no merge calls are issued.
	PlanManual PlanStatus = "manual_review"
	// PlanSkipped means there is nothing to do for the group.
	PlanSkipped PlanStatus = "skipped"
	// PlanNoAnchor means the strategy requires an anchor record (system
	// email) and the group has none. The group is left untouched.
	PlanNoAnchor PlanStatus = "no_anchor"
)

// ManualReason explains a manual_review plan.
type ManualReason string

const (
	ReasonTooManyRecords  ManualReason = "too_many_records"
	ReasonMultipleAnchors ManualReason = "multiple_anchors"
)

// Step is one pairwise merge call: Merge is absorbed into Into, and Into's
// identifier survives. When PreserveEmail is set the orchestrator copies that
// address into the survivor's additional emails before merging.
type Step struct {
	Into          string `yaml:"into"`
	Merge         string `yaml:"merge"`
	PreserveEmail string `yaml:"preserve_email,omitempty"`
}

// Plan is the ordered merge sequence for one duplicate group. Every group
// member appears exactly once as a Merge except the eventual canonical
// record, which never does.
type Plan struct {
	GroupKey  string       `yaml:"group"`
	Dimension Dimension    `yaml:"dimension"`
	Status    PlanStatus   `yaml:"status"`
	Reason    ManualReason `yaml:"reason,omitempty"`
	PrimaryID string       `yaml:"primary,omitempty"`
	Steps     []Step       `yaml:"steps,omitempty"`
	RecordIDs []string     `yaml:"records"`
}

// Planner converts a duplicate group into a merge plan.
type Planner interface {
	Plan(group DuplicateGroup, now time.Time) Plan
}

// maxAutomatedGroup is the largest group the pairwise planner will sequence
// on its own. The CRM merges two records per call, and merge-order choices
// for larger groups are error-prone enough that they go to a human instead.
const maxAutomatedGroup = 3

// PairwisePlanner sequences merges for the generic strategies: a Selector
// picks the primary, the rest are absorbed pairwise.
type PairwisePlanner struct {
	selector Selector
}

// NewPairwisePlanner returns a planner that delegates primary selection to sel.
func NewPairwisePlanner(sel Selector) *PairwisePlanner {
	return &PairwisePlanner{selector: sel}
}

func (p *PairwisePlanner) Plan(group DuplicateGroup, now time.Time) Plan {
	plan := Plan{
		GroupKey:  group.Key,
		Dimension: group.Dimension,
		RecordIDs: recordIDs(group.Records),
	}

	if len(group.Records) < 2 {
		plan.Status = PlanSkipped
		return plan
	}
	if len(group.Records) > maxAutomatedGroup {
		plan.Status = PlanManual
		plan.Reason = ReasonTooManyRecords
		return plan
	}

	primary := p.selector.Select(group.Records, now)
	plan.Status = PlanAutomated
	plan.PrimaryID = primary.ID

	var others []*model.ContactRecord
	for _, rec := range group.Records {
		if rec.ID != primary.ID {
			others = append(others, rec)
		}
	}

	if len(others) == 1 {
		plan.Steps = []Step{{Into: primary.ID, Merge: others[0].ID}}
		return plan
	}

	// Three records: merge the least-recently-active non-primary into the
	// other non-primary first, then fold that survivor into the primary.
	// The true primary is never on the absorbed side of a call.
	sort.SliceStable(others, func(i, j int) bool {
		return others[i].LastActivity().Before(others[j].LastActivity())
	})
	plan.Steps = []Step{
		{Into: others[1].ID, Merge: others[0].ID},
		{Into: primary.ID, Merge: others[1].ID},
	}
	return plan
}

// SystemEmailPlanner implements the system-record strategy: when a group has
// exactly one system-generated-email record, that record is always primary
// and every personal-email record merges flat into it, with its address
// preserved. Group size does not matter; there is no intermediate survivor.
type SystemEmailPlanner struct {
	rules Rules
}

// NewSystemEmailPlanner returns the system-record planner.
func NewSystemEmailPlanner(rules Rules) *SystemEmailPlanner {
	return &SystemEmailPlanner{rules: rules}
}

func (p *SystemEmailPlanner) Plan(group DuplicateGroup, _ time.Time) Plan {
	plan := Plan{
		GroupKey:  group.Key,
		Dimension: group.Dimension,
		RecordIDs: recordIDs(group.Records),
	}

	if len(group.Records) < 2 {
		plan.Status = PlanSkipped
		return plan
	}

	var system, personal []*model.ContactRecord
	for _, rec := range group.Records {
		switch {
		case IsSystemEmail(rec.Email, p.rules.SystemEmailDomain):
			system = append(system, rec)
		case rec.Email != "":
			personal = append(personal, rec)
		}
		// Records with no email at all are left alone.
	}

	switch {
	case len(system) == 0:
		plan.Status = PlanNoAnchor
		return plan
	case len(system) > 1:
		// Ambiguous anchor. The old scripts silently took the first one;
		// this goes to a human instead.
		plan.Status = PlanManual
		plan.Reason = ReasonMultipleAnchors
		return plan
	case len(personal) == 0:
		plan.Status = PlanSkipped
		return plan
	}

	anchor := system[0]
	plan.Status = PlanAutomated
	plan.PrimaryID = anchor.ID
	for _, rec := range personal {
		email, _ := NormalizeEmail(rec.Email)
		plan.Steps = append(plan.Steps, Step{
			Into:          anchor.ID,
			Merge:         rec.ID,
			PreserveEmail: email,
		})
	}
	return plan
}

func recordIDs(records []*model.ContactRecord) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
