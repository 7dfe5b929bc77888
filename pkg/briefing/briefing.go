// Package briefing turns a CRM contact into the short text shown next to an
// appointment.
package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

const (
	notFoundFocus    = "No HubSpot contact found - focus on general coaching objectives"
	notFoundContext  = "Contact not found in HubSpot - maybe a new lead"
	notFoundOverview = "Client data not available"

	shortDate = "1/2/2006"
)

// Synthesizer builds briefings. It has no state beyond its configuration
// and is safe for concurrent use.
type Synthesizer struct {
	contactsURL string
	location    *time.Location
}

// NewSynthesizer creates a Synthesizer linking to contacts under appURL and
// rendering dates in loc
func NewSynthesizer(appURL string, loc *time.Location) *Synthesizer {
	if !strings.HasSuffix(appURL, "/") {
		appURL += "/"
	}
	if loc == nil {
		loc = time.Local
	}
	return &Synthesizer{contactsURL: appURL, location: loc}
}

// NotFound is the briefing used when the client has no CRM record
func (s *Synthesizer) NotFound() models.Briefing {
	return models.Briefing{
		TodaysFocus:    notFoundFocus,
		RecentContext:  notFoundContext,
		ClientOverview: notFoundOverview,
		CRMURL:         s.contactsURL,
	}
}

// Synthesize builds the briefing for contact and event. A nil contact yields
// the NotFound variant.
func (s *Synthesizer) Synthesize(contact *models.ContactRecord, event *models.CalendarEvent) models.Briefing {
	if contact == nil {
		return s.NotFound()
	}

	firstName := or(contact.Property("firstname"), "Client")
	lastName := contact.Property("lastname")
	stage := or(contact.Property("lifecyclestage"), "Unknown")
	status := or(contact.Property("hs_lead_status"), "Unknown")
	revenue := or(contact.Property("total_revenue"), "Not tracked")
	notes := or(contact.Property("num_notes"), "0")
	created := s.formatDate(contact.Property("createdate"))
	lastModified := s.formatDate(contact.Property("lastmodifieddate"))

	title := ""
	if event != nil {
		title = event.Title
	}

	return models.Briefing{
		TodaysFocus: fmt.Sprintf("Focus on %s with %s %s. Stage: %s, Status: %s.",
			or(title, "coaching session"), firstName, lastName, stage, status),
		RecentContext: fmt.Sprintf("Last HubSpot activity: %s. %s notes recorded. Revenue: %s.",
			lastModified, notes, revenue),
		ClientOverview: fmt.Sprintf("%s %s • Since %s • Stage: %s • Status: %s • Revenue: %s",
			firstName, lastName, created, stage, status, revenue),
		CRMURL: s.contactsURL + contact.ID,
	}
}

// formatDate renders an RFC 3339 timestamp as a short date. Values that do
// not parse are shown as they are.
func (s *Synthesizer) formatDate(value string) string {
	if value == "" {
		return "Unknown"
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return t.In(s.location).Format(shortDate)
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
