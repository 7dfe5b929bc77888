package models

import "time"

const (
	// ProgramActiveCustomer is assigned when the CRM lifecycle stage is "customer"
	ProgramActiveCustomer = "Active Customer"
	// ProgramLeadProspect is assigned to everyone else, including unknown contacts
	ProgramLeadProspect = "Lead/Prospect"

	lifecycleStageCustomer = "customer"
)

// ContactRecord is a CRM contact with its flat property bag
type ContactRecord struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  time.Time         `json:"created_at,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Archived   bool              `json:"archived,omitempty"`
}

// Property returns the named property or an empty string when it is absent
func (c *ContactRecord) Property(name string) string {
	if c == nil || c.Properties == nil {
		return ""
	}
	return c.Properties[name]
}

// Briefing summarizes a client's CRM status for display next to an appointment
type Briefing struct {
	TodaysFocus    string `json:"todays_focus"`
	RecentContext  string `json:"recent_context"`
	ClientOverview string `json:"client_overview"`
	CRMURL         string `json:"crm_url"`
}

// EnrichedAppointment is one coaching event combined with its CRM context
type EnrichedAppointment struct {
	ID       string         `json:"id"`
	Time     string         `json:"time"`
	Coach    string         `json:"coach"`
	Client   string         `json:"client"`
	Email    string         `json:"email"`
	Programs string         `json:"programs"`
	Focus    string         `json:"focus"`
	Briefing Briefing       `json:"briefing"`
	Contact  *ContactRecord `json:"crm_contact,omitempty"`
	Event    *CalendarEvent `json:"calendar_event"`
}

// ProgramFor classifies a contact by lifecycle stage
func ProgramFor(contact *ContactRecord) string {
	if contact.Property("lifecyclestage") == lifecycleStageCustomer {
		return ProgramActiveCustomer
	}
	return ProgramLeadProspect
}
