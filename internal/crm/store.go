package crm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/neetprep/dedupe/internal/model"
	"github.com/neetprep/dedupe/pkg/hubspot"
)

// Store implements the engine's record store over the HubSpot client.
type Store struct {
	client hubspot.Client
}

// NewStore returns a Store writing through the given client.
func NewStore(client hubspot.Client) *Store {
	return &Store{client: client}
}

// Fetch reads one contact with the full dedupe property set.
func (s *Store) Fetch(ctx context.Context, id string) (*model.ContactRecord, error) {
	c, err := s.client.GetContact(ctx, id, ContactProperties)
	if err != nil {
		return nil, eris.Wrapf(err, "crm: fetch contact %s", id)
	}
	return ParseContact(c), nil
}

// SaveAdditionalEmails replaces the contact's additional-emails collection.
func (s *Store) SaveAdditionalEmails(ctx context.Context, id string, emails []string) error {
	props := map[string]string{propAdditionalEmails: JoinEmails(emails)}
	if err := s.client.UpdateContact(ctx, id, props); err != nil {
		return eris.Wrapf(err, "crm: save additional emails on %s", id)
	}
	return nil
}

// SaveAuditLog replaces the contact's dedupe note trail with the full new
// text computed by the engine.
func (s *Store) SaveAuditLog(ctx context.Context, id string, log string) error {
	props := map[string]string{propAuditLog: log}
	if err := s.client.UpdateContact(ctx, id, props); err != nil {
		return eris.Wrapf(err, "crm: save audit log on %s", id)
	}
	return nil
}

// Merge absorbs mergeID into primaryID and returns the surviving identifier.
func (s *Store) Merge(ctx context.Context, primaryID, mergeID string) (string, error) {
	c, err := s.client.MergeContacts(ctx, primaryID, mergeID)
	if err != nil {
		return "", eris.Wrapf(err, "crm: merge %s into %s", mergeID, primaryID)
	}
	if c.ID != "" {
		return c.ID, nil
	}
	return primaryID, nil
}
