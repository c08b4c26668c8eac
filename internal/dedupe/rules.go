// Package dedupe implements the duplicate-contact decision engine: identity
// normalization, grouping, classification, primary selection, merge planning
// under the CRM's two-records-per-merge constraint, and plan execution.
package dedupe

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules is the immutable business-rule configuration handed to each engine
// component at construction. Quality-score weights are deliberately not part
// of it; they are a fixed table (see classify.go).
type Rules struct {
	// PriorityStages are the lifecycle stages that outrank every other
	// selection rule.
	PriorityStages []string `yaml:"priority_stages"`

	// NewContactHours separates "new" from "old" contacts by creation time.
	NewContactHours int `yaml:"new_contact_hours"`

	// ContactedDays bounds how far back an activity counts as "recent".
	ContactedDays int `yaml:"contacted_days"`

	// SystemEmailDomain is the domain of algorithmically assigned addresses
	// (digits-only local part).
	SystemEmailDomain string `yaml:"system_email_domain"`

	// PhoneStrictness selects the normalization policy used for grouping:
	// "permissive" or "strict".
	PhoneStrictness Strictness `yaml:"phone_strictness"`

	// CountryPrefix is stripped from phone numbers before validation.
	CountryPrefix string `yaml:"country_prefix"`
}

// DefaultRules returns the rule set the production scripts ran with.
func DefaultRules() Rules {
	return Rules{
		PriorityStages: []string{
			"pre-mql", "mql", "sql", "opportunity",
			"customer", "lapsed customer", "marketingqualifiedlead",
		},
		NewContactHours:   24,
		ContactedDays:     30,
		SystemEmailDomain: "neetprep.com",
		PhoneStrictness:   Permissive,
		CountryPrefix:     "+91",
	}
}

// NewContactWindow returns the new-contact window as a duration.
func (r Rules) NewContactWindow() time.Duration {
	return time.Duration(r.NewContactHours) * time.Hour
}

// ContactedWindow returns the recent-contact window as a duration.
func (r Rules) ContactedWindow() time.Duration {
	return time.Duration(r.ContactedDays) * 24 * time.Hour
}

// IsPriorityStage reports whether stage is in the priority set.
// Comparison is case-insensitive the way the CRM stores stage labels.
func (r Rules) IsPriorityStage(stage string) bool {
	for _, s := range r.PriorityStages {
		if strings.EqualFold(s, stage) {
			return true
		}
	}
	return false
}

// LoadRules reads a rule set from a YAML file. Fields left empty in the file
// keep their defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "dedupe: read rules %s", path)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, eris.Wrap(err, "dedupe: parse rules")
	}
	if err := rules.validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) validate() error {
	switch r.PhoneStrictness {
	case Permissive, Strict:
	default:
		return eris.Errorf("dedupe: unknown phone strictness %q", r.PhoneStrictness)
	}
	if r.NewContactHours <= 0 {
		return eris.New("dedupe: new_contact_hours must be positive")
	}
	if r.ContactedDays <= 0 {
		return eris.New("dedupe: contacted_days must be positive")
	}
	return nil
}
