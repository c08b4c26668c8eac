package hubspot

// Contact is one CRM contact record as returned on the wire: an identifier
// plus a flat string property bag. Parsing the bag into the typed engine
// record happens at the adapter boundary, not here.
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	Archived   bool              `json:"archived,omitempty"`
}

// Property returns the named property or "" when unset.
func (c *Contact) Property(name string) string {
	return c.Properties[name]
}

// Filter is one equality/range condition in a search request.
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value,omitempty"`
}

// FilterGroup ANDs its filters together; groups are ORed by the API.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// Sort orders search results by one property.
type Sort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction,omitempty"`
}

// SearchRequest is the body of a CRM search call. After is the opaque paging
// cursor returned by the previous page.
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
	Sorts        []Sort        `json:"sorts,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	After        string        `json:"after,omitempty"`
}

// SearchResponse is one page of search results plus the continuation cursor.
type SearchResponse struct {
	Total   int       `json:"total"`
	Results []Contact `json:"results"`
	Paging  *Paging   `json:"paging,omitempty"`
}

// Paging carries the next-page cursor; nil Paging means the page is the last.
type Paging struct {
	Next struct {
		After string `json:"after"`
	} `json:"next"`
}

// NextAfter returns the continuation cursor, or "" when there are no more pages.
func (r *SearchResponse) NextAfter() string {
	if r.Paging == nil {
		return ""
	}
	return r.Paging.Next.After
}

// mergeRequest is the body of a pairwise merge call. The CRM accepts exactly
// two identifiers per call and the primary's identifier survives.
type mergeRequest struct {
	PrimaryObjectID string `json:"primaryObjectId"`
	ObjectIDToMerge string `json:"objectIdToMerge"`
}

// apiError is the CRM's error envelope.
type apiError struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Category      string `json:"category"`
}
