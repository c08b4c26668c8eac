package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL))
}

func TestClient_SearchContacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 100, req.Limit, "page size defaults to the API maximum")
		assert.Equal(t, "phone", req.FilterGroups[0].Filters[0].PropertyName)

		resp := SearchResponse{
			Total:   2,
			Results: []Contact{{ID: "1"}, {ID: "2"}},
			Paging:  &Paging{},
		}
		resp.Paging.Next.After = "cursor-2"
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.SearchContacts(context.Background(), SearchRequest{
		FilterGroups: []FilterGroup{{Filters: []Filter{
			{PropertyName: "phone", Operator: "EQ", Value: "9876543210"},
		}}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "cursor-2", resp.NextAfter())
}

func TestClient_GetContact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/101", r.URL.Path)
		assert.Equal(t, []string{"email", "phone"}, r.URL.Query()["properties"])

		require.NoError(t, json.NewEncoder(w).Encode(Contact{
			ID:         "101",
			Properties: map[string]string{"email": "a@x.com", "phone": "9876543210"},
		}))
	})

	contact, err := client.GetContact(context.Background(), "101", []string{"email", "phone"})
	require.NoError(t, err)
	assert.Equal(t, "101", contact.ID)
	assert.Equal(t, "a@x.com", contact.Property("email"))
	assert.Empty(t, contact.Property("unset"))
}

func TestClient_UpdateContact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/101", r.URL.Path)

		var body struct {
			Properties map[string]string `json:"properties"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"hs_additional_emails": "a@x.com;b@y.com"}, body.Properties)
		w.WriteHeader(http.StatusOK)
	})

	err := client.UpdateContact(context.Background(), "101",
		map[string]string{"hs_additional_emails": "a@x.com;b@y.com"})
	assert.NoError(t, err)
}

func TestClient_MergeContacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/merge", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "A", body["primaryObjectId"])
		assert.Equal(t, "B", body["objectIdToMerge"])

		require.NoError(t, json.NewEncoder(w).Encode(Contact{ID: "A"}))
	})

	contact, err := client.MergeContacts(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "A", contact.ID)
}

func TestClient_StatusErrors(t *testing.T) {
	t.Run("permanent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(apiError{Status: "error", Message: "resource not found"})
		})
		_, err := client.GetContact(context.Background(), "absent", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resource not found")
		assert.False(t, IsTransient(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := client.SearchContacts(context.Background(), SearchRequest{})
		require.Error(t, err)
		assert.True(t, IsTransient(err), "429 must be classified as transient")
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		err := client.UpdateContact(context.Background(), "101", map[string]string{"phone": "9876543210"})
		require.Error(t, err)
		assert.True(t, IsTransient(err))
	})
}
