// Package crm adapts the HubSpot wire format to the engine: it parses
// property bags into typed records and implements the engine's Store over
// the REST client.
package crm

import (
	"strconv"
	"strings"
	"time"

	"github.com/neetprep/dedupe/internal/model"
	"github.com/neetprep/dedupe/pkg/hubspot"
)

// CRM property names used by the dedupe pipeline.
const (
	propEmail            = "email"
	propAdditionalEmails = "hs_additional_emails"
	propPhone            = "phone"
	propFirstName        = "firstname"
	propLastName         = "lastname"
	propCompany          = "company"
	propJobTitle         = "jobtitle"
	propWebsite          = "website"
	propIndustry         = "industry"
	propCity             = "city"
	propState            = "state"
	propLifecycleStage   = "lifecyclestage"
	propOwner            = "hubspot_owner_id"
	propCreateDate       = "createdate"
	propLastContacted    = "lastcontactdate"
	propNotesLastContact = "notes_last_contacted"
	propAnalyticsLast    = "hs_analytics_last_timestamp"
	propMeetingLast      = "hs_latest_meeting_activity"
	propSequenceEnded    = "hs_latest_sequence_ended_date"
	propAuditLog         = "duplicate_contact_notes"
)

// emailSeparator joins the additional-emails collection on the wire.
const emailSeparator = ";"

// ContactProperties is the property list requested on every fetch. It covers
// everything classification and selection look at.
var ContactProperties = []string{
	propEmail, propAdditionalEmails, propPhone,
	propFirstName, propLastName, propCompany, propJobTitle,
	propWebsite, propIndustry, propCity, propState,
	propLifecycleStage, propOwner, propCreateDate,
	propLastContacted, propNotesLastContact, propAnalyticsLast,
	propMeetingLast, propSequenceEnded, propAuditLog,
}

// ParseContact converts a wire contact into the typed engine record.
// Unparseable timestamps are treated as unset, mirroring how the CRM leaves
// the properties blank.
func ParseContact(c *hubspot.Contact) *model.ContactRecord {
	return &model.ContactRecord{
		ID:                 c.ID,
		Email:              strings.TrimSpace(c.Property(propEmail)),
		AdditionalEmails:   splitEmails(c.Property(propAdditionalEmails)),
		Phone:              strings.TrimSpace(c.Property(propPhone)),
		FirstName:          strings.TrimSpace(c.Property(propFirstName)),
		LastName:           strings.TrimSpace(c.Property(propLastName)),
		Company:            strings.TrimSpace(c.Property(propCompany)),
		JobTitle:           strings.TrimSpace(c.Property(propJobTitle)),
		Website:            strings.TrimSpace(c.Property(propWebsite)),
		Industry:           strings.TrimSpace(c.Property(propIndustry)),
		City:               strings.TrimSpace(c.Property(propCity)),
		State:              strings.TrimSpace(c.Property(propState)),
		LifecycleStage:     strings.TrimSpace(c.Property(propLifecycleStage)),
		OwnerID:            strings.TrimSpace(c.Property(propOwner)),
		CreatedAt:          parseTime(c.Property(propCreateDate)),
		LastContacted:      parseTime(c.Property(propLastContacted)),
		NotesLastContacted: parseTime(c.Property(propNotesLastContact)),
		AnalyticsLast:      parseTime(c.Property(propAnalyticsLast)),
		MeetingLast:        parseTime(c.Property(propMeetingLast)),
		SequenceEnded:      parseTime(c.Property(propSequenceEnded)),
		AuditLog:           c.Property(propAuditLog),
	}
}

// ParseContacts converts a page of wire contacts.
func ParseContacts(contacts []hubspot.Contact) []*model.ContactRecord {
	out := make([]*model.ContactRecord, len(contacts))
	for i := range contacts {
		out[i] = ParseContact(&contacts[i])
	}
	return out
}

// splitEmails splits the semicolon-joined additional-emails property,
// dropping empty segments.
func splitEmails(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var emails []string
	for _, part := range strings.Split(raw, emailSeparator) {
		if e := strings.TrimSpace(part); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// JoinEmails renders the additional-emails collection for the wire.
func JoinEmails(emails []string) string {
	return strings.Join(emails, emailSeparator)
}

// parseTime accepts the CRM's timestamp renderings: RFC 3339 strings or
// epoch milliseconds. Anything else is unset.
func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC()
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
