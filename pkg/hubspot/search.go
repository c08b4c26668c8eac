package hubspot

import (
	"context"

	"github.com/rotisserie/eris"
)

// SearchAll drains every page of a search, following the continuation cursor
// until the API reports no next page. The request's After field is managed by
// this helper; any value the caller set is ignored.
func SearchAll(ctx context.Context, c Client, req SearchRequest) ([]Contact, error) {
	var all []Contact
	req.After = ""

	for {
		page, err := c.SearchContacts(ctx, req)
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: search page")
		}
		all = append(all, page.Results...)

		after := page.NextAfter()
		if after == "" {
			return all, nil
		}
		req.After = after
	}
}
