package main

import (
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/neetprep/dedupe/internal/crm"
	"github.com/neetprep/dedupe/internal/dedupe"
	"github.com/neetprep/dedupe/pkg/hubspot"
)

// env holds the wired collaborators a command runs against.
type env struct {
	Client   hubspot.Client
	Store    *crm.Store
	Searcher *crm.Searcher
	Rules    dedupe.Rules
}

// initEngine builds the CRM client and engine collaborators from config.
func initEngine() (*env, error) {
	if cfg.HubSpot.Token == "" {
		return nil, eris.New("hubspot token not configured (set DEDUPE_HUBSPOT_TOKEN or hubspot.token)")
	}

	client := hubspot.NewClient(cfg.HubSpot.Token,
		hubspot.WithBaseURL(cfg.HubSpot.BaseURL),
		hubspot.WithTimeout(time.Duration(cfg.HubSpot.TimeoutSecs)*time.Second),
		hubspot.WithRateLimit(cfg.HubSpot.RateLimit),
	)

	rules := dedupe.DefaultRules()
	if cfg.Engine.RulesPath != "" {
		r, err := dedupe.LoadRules(cfg.Engine.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = r
	}

	return &env{
		Client:   client,
		Store:    crm.NewStore(client),
		Searcher: crm.NewSearcher(client),
		Rules:    rules,
	}, nil
}

// pacer returns the merge-sequence pacer from config: a fixed delay between
// the orchestrator's external calls.
func (e *env) pacer() dedupe.Pacer {
	if cfg.Engine.PacingSecs <= 0 {
		return dedupe.NopPacer{}
	}
	delay := time.Duration(cfg.Engine.PacingSecs * float64(time.Second))
	return rate.NewLimiter(rate.Every(delay), 1)
}

// buildPlanner maps a strategy name to a planner. The system strategy swaps
// the rule set's phone strictness for the strict policy the business rules
// were written against.
func buildPlanner(strategy string, rules dedupe.Rules) (dedupe.Planner, dedupe.Rules, error) {
	switch strategy {
	case "waterfall":
		return dedupe.NewPairwisePlanner(dedupe.NewWaterfallSelector(rules)), rules, nil
	case "recency":
		return dedupe.NewPairwisePlanner(dedupe.NewRecencySelector(rules)), rules, nil
	case "system":
		rules.PhoneStrictness = dedupe.Strict
		return dedupe.NewSystemEmailPlanner(rules), rules, nil
	default:
		return nil, rules, eris.Errorf("unknown strategy %q (want waterfall, recency or system)", strategy)
	}
}
