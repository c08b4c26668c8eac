package crm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/neetprep/dedupe/internal/model"
	"github.com/neetprep/dedupe/pkg/hubspot"
)

// Searcher fetches contact populations for a dedupe run.
type Searcher struct {
	client hubspot.Client
}

// NewSearcher returns a Searcher over the given client.
func NewSearcher(client hubspot.Client) *Searcher {
	return &Searcher{client: client}
}

// ContactsCreatedBetween returns every contact created in [from, to),
// draining all result pages, oldest first.
func (s *Searcher) ContactsCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.ContactRecord, error) {
	req := hubspot.SearchRequest{
		FilterGroups: []hubspot.FilterGroup{{
			Filters: []hubspot.Filter{
				{PropertyName: propCreateDate, Operator: "GTE", Value: from.UTC().Format(time.RFC3339)},
				{PropertyName: propCreateDate, Operator: "LT", Value: to.UTC().Format(time.RFC3339)},
			},
		}},
		Properties: ContactProperties,
		Sorts:      []hubspot.Sort{{PropertyName: propCreateDate, Direction: "ASCENDING"}},
	}

	contacts, err := hubspot.SearchAll(ctx, s.client, req)
	if err != nil {
		return nil, eris.Wrap(err, "crm: search by creation window")
	}
	zap.L().Info("fetched contacts",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("count", len(contacts)),
	)
	return ParseContacts(contacts), nil
}

// ContactsByPhone returns every contact whose phone property equals phone.
func (s *Searcher) ContactsByPhone(ctx context.Context, phone string) ([]*model.ContactRecord, error) {
	req := hubspot.SearchRequest{
		FilterGroups: []hubspot.FilterGroup{{
			Filters: []hubspot.Filter{
				{PropertyName: propPhone, Operator: "EQ", Value: phone},
			},
		}},
		Properties: ContactProperties,
	}

	contacts, err := hubspot.SearchAll(ctx, s.client, req)
	if err != nil {
		return nil, eris.Wrapf(err, "crm: search by phone %s", phone)
	}
	return ParseContacts(contacts), nil
}
