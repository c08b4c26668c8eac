package dedupe

import (
	"time"

	"github.com/neetprep/dedupe/internal/model"
)

// Selector picks the canonical record of a duplicate group. Implementations
// must be total (any non-empty group yields exactly one record) and
// deterministic for a given input ordering.
type Selector interface {
	Select(group []*model.ContactRecord, now time.Time) *model.ContactRecord
}

type tagged struct {
	rec  *model.ContactRecord
	tags Tags
}

func tagAll(group []*model.ContactRecord, now time.Time, rules Rules) []tagged {
	out := make([]tagged, len(group))
	for i, rec := range group {
		out[i] = tagged{rec: rec, tags: Classify(rec, now, rules)}
	}
	return out
}

// WaterfallSelector applies the business-rule waterfall agreed with the sales
// team, stopping at the first rule that yields candidates:
//
//  1. priority lifecycle stage, ties by quality then recency
//  2. old and uncontacted, ties by earliest creation (oldest record of truth)
//  3. new with an owner, ties by recency then quality
//  4. unowned, latest creation wins
//  5. fallback: recency then quality over the whole group
type WaterfallSelector struct {
	rules Rules
}

// NewWaterfallSelector returns a waterfall selector using the given rules.
func NewWaterfallSelector(rules Rules) *WaterfallSelector {
	return &WaterfallSelector{rules: rules}
}

func (s *WaterfallSelector) Select(group []*model.ContactRecord, now time.Time) *model.ContactRecord {
	if len(group) == 0 {
		return nil
	}
	all := tagAll(group, now, s.rules)

	if cands := filter(all, func(t tagged) bool { return t.tags.PriorityStage }); len(cands) > 0 {
		if len(cands) == 1 {
			return cands[0].rec
		}
		return bestQualityThenRecency(cands)
	}

	if cands := filter(all, func(t tagged) bool { return !t.tags.New && !t.tags.ContactedRecently }); len(cands) > 0 {
		if len(cands) == 1 {
			return cands[0].rec
		}
		return earliestCreated(cands)
	}

	if cands := filter(all, func(t tagged) bool { return t.tags.New && t.tags.HasOwner }); len(cands) > 0 {
		if len(cands) == 1 {
			return cands[0].rec
		}
		return bestRecencyThenQuality(cands)
	}

	if cands := filter(all, func(t tagged) bool { return !t.tags.HasOwner }); len(cands) > 0 {
		return latestCreated(cands)
	}

	return bestRecencyThenQuality(all)
}

// RecencySelector picks the most recently active record, the strategy of the
// simple pairwise merge scripts. Residual ties keep input order.
type RecencySelector struct {
	rules Rules
}

// NewRecencySelector returns a recency selector using the given rules.
func NewRecencySelector(rules Rules) *RecencySelector {
	return &RecencySelector{rules: rules}
}

func (s *RecencySelector) Select(group []*model.ContactRecord, now time.Time) *model.ContactRecord {
	if len(group) == 0 {
		return nil
	}
	return bestRecencyThenQuality(tagAll(group, now, s.rules))
}

func filter(in []tagged, keep func(tagged) bool) []tagged {
	var out []tagged
	for _, t := range in {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// bestQualityThenRecency returns the candidate with the highest quality
// score, breaking ties by last activity. A residual tie keeps the earlier
// record in input order, so selection is repeatable.
func bestQualityThenRecency(cands []tagged) *model.ContactRecord {
	best := cands[0]
	for _, t := range cands[1:] {
		if t.tags.Quality > best.tags.Quality ||
			(t.tags.Quality == best.tags.Quality && t.tags.LastActivity.After(best.tags.LastActivity)) {
			best = t
		}
	}
	return best.rec
}

// bestRecencyThenQuality returns the most recently active candidate,
// breaking ties by quality score.
func bestRecencyThenQuality(cands []tagged) *model.ContactRecord {
	best := cands[0]
	for _, t := range cands[1:] {
		if t.tags.LastActivity.After(best.tags.LastActivity) ||
			(t.tags.LastActivity.Equal(best.tags.LastActivity) && t.tags.Quality > best.tags.Quality) {
			best = t
		}
	}
	return best.rec
}

func earliestCreated(cands []tagged) *model.ContactRecord {
	best := cands[0]
	for _, t := range cands[1:] {
		if t.rec.CreatedAt.Before(best.rec.CreatedAt) {
			best = t
		}
	}
	return best.rec
}

func latestCreated(cands []tagged) *model.ContactRecord {
	best := cands[0]
	for _, t := range cands[1:] {
		if t.rec.CreatedAt.After(best.rec.CreatedAt) {
			best = t
		}
	}
	return best.rec
}
