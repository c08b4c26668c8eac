package dedupe

import (
	"time"

	"github.com/neetprep/dedupe/internal/model"
)

// Tags are the derived properties of one contact used by selection and
// planning. They are ephemeral: computed per pass, never written back.
type Tags struct {
	SystemEmail       bool
	New               bool
	PriorityStage     bool
	HasOwner          bool
	ContactedRecently bool
	Quality           int
	LastActivity      time.Time
}

// Classify derives Tags for a contact. Pure function of the record, the
// caller-supplied now, and the rules; it never reads a wall clock.
func Classify(rec *model.ContactRecord, now time.Time, rules Rules) Tags {
	last := rec.LastActivity()
	return Tags{
		SystemEmail:       IsSystemEmail(rec.Email, rules.SystemEmailDomain),
		New:               !rec.CreatedAt.IsZero() && now.Sub(rec.CreatedAt) < rules.NewContactWindow(),
		PriorityStage:     rules.IsPriorityStage(rec.LifecycleStage),
		HasOwner:          rec.HasOwner(),
		ContactedRecently: !last.IsZero() && now.Sub(last) < rules.ContactedWindow(),
		Quality:           QualityScore(rec),
		LastActivity:      last,
	}
}

// QualityScore is a weighted count of populated profile fields, used as a
// selection tie-breaker. The weights are fixed; they are part of the business
// agreement, not configuration.
func QualityScore(rec *model.ContactRecord) int {
	score := 0
	if rec.FirstName != "" {
		score++
	}
	if rec.LastName != "" {
		score++
	}
	if rec.Email != "" {
		score += 2
	}
	if rec.Phone != "" {
		score += 2
	}
	if rec.Company != "" {
		score++
	}
	if rec.JobTitle != "" {
		score++
	}
	if rec.Website != "" {
		score++
	}
	if rec.Industry != "" {
		score++
	}
	if rec.City != "" {
		score++
	}
	if rec.State != "" {
		score++
	}
	return score
}
