// Package model defines the typed contact record and shared value types
// used across the dedupe pipeline.
package model

import (
	"strings"
	"time"
)

// ContactRecord is a typed view of one CRM contact. The CRM stores contacts
// as string property bags; parsing the bag into this struct is the adapter's
// job (internal/crm), so the engine never touches raw property maps.
//
// A zero value means the property is unset in the CRM.
type ContactRecord struct {
	ID string

	Email            string
	AdditionalEmails []string
	Phone            string

	FirstName string
	LastName  string
	Company   string
	JobTitle  string
	Website   string
	Industry  string
	City      string
	State     string

	LifecycleStage string
	OwnerID        string

	CreatedAt time.Time

	// Activity timestamps. The CRM tracks several independent "last touched"
	// properties; LastActivity picks the most recent of them.
	LastContacted      time.Time
	NotesLastContacted time.Time
	AnalyticsLast      time.Time
	MeetingLast        time.Time
	SequenceEnded      time.Time

	// AuditLog is the append-only dedupe note trail stored on the contact.
	AuditLog string
}

// DisplayName returns "First Last", or "No Name" when both parts are empty.
func (c *ContactRecord) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "No Name"
	}
	return name
}

// LastActivity returns the most recent of the contact's activity timestamps.
// If none are set it falls back to the creation timestamp; if that too is
// unset the zero time is returned (never contacted).
func (c *ContactRecord) LastActivity() time.Time {
	latest := time.Time{}
	for _, ts := range []time.Time{
		c.LastContacted,
		c.NotesLastContacted,
		c.AnalyticsLast,
		c.MeetingLast,
		c.SequenceEnded,
	} {
		if ts.After(latest) {
			latest = ts
		}
	}
	if latest.IsZero() {
		return c.CreatedAt
	}
	return latest
}

// HasOwner reports whether an owner is assigned to the contact.
func (c *ContactRecord) HasOwner() bool {
	return strings.TrimSpace(c.OwnerID) != ""
}
