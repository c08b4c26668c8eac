// Package hubspot provides a bearer-token REST client for the HubSpot CRM v3
// contacts API: search with paging, property reads and writes, and the
// pairwise merge call.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.hubapi.com"
	defaultTimeout = 15 * time.Second

	// HubSpot allows at most 100 results per search page.
	maxPageSize = 100
)

// Client defines the CRM operations used by the dedupe pipeline.
type Client interface {
	SearchContacts(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	GetContact(ctx context.Context, id string, properties []string) (*Contact, error)
	UpdateContact(ctx context.Context, id string, properties map[string]string) error
	MergeContacts(ctx context.Context, primaryID, mergeID string) (*Contact, error)
}

// ClientOption configures the HubSpot client.
type ClientOption func(*httpClient)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(u string) ClientOption {
	return func(c *httpClient) { c.baseURL = u }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) ClientOption {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// httpClient implements Client over net/http with bearer auth.
type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a HubSpot client authenticating with the given private
// app token.
func NewClient(token string, opts ...ClientOption) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) SearchContacts(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Limit <= 0 || req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", req, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: search contacts")
	}
	return &resp, nil
}

func (c *httpClient) GetContact(ctx context.Context, id string, properties []string) (*Contact, error) {
	path := "/crm/v3/objects/contacts/" + url.PathEscape(id)
	if len(properties) > 0 {
		q := url.Values{}
		for _, p := range properties {
			q.Add("properties", p)
		}
		path += "?" + q.Encode()
	}
	var contact Contact
	if err := c.do(ctx, http.MethodGet, path, nil, &contact); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("hubspot: get contact %s", id))
	}
	return &contact, nil
}

func (c *httpClient) UpdateContact(ctx context.Context, id string, properties map[string]string) error {
	body := struct {
		Properties map[string]string `json:"properties"`
	}{Properties: properties}

	path := "/crm/v3/objects/contacts/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("hubspot: update contact %s", id))
	}
	return nil
}

func (c *httpClient) MergeContacts(ctx context.Context, primaryID, mergeID string) (*Contact, error) {
	body := mergeRequest{PrimaryObjectID: primaryID, ObjectIDToMerge: mergeID}
	var contact Contact
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/merge", body, &contact); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("hubspot: merge %s into %s", mergeID, primaryID))
	}
	return &contact, nil
}

// do issues one API request: rate-limit wait, encode, send, decode.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeJSON(resp.Body, out)
}

// statusError turns a non-2xx response into an error, marking retryable
// statuses as transient so callers can classify failures.
func statusError(resp *http.Response) error {
	var envelope apiError
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
		msg = fmt.Sprintf("%s: %s", resp.Status, envelope.Message)
	}

	err := eris.New(msg)
	if IsTransientStatus(resp.StatusCode) {
		return NewTransientError(err, resp.StatusCode)
	}
	return err
}
