// Package identity works out who coaches a session and who the client is
// from an event's attendee list.
package identity

import (
	"regexp"
	"strings"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

const (
	UnknownCoach  = "Unknown Coach"
	UnknownClient = "Unknown Client"
)

// Coach is one roster member and the lowercase fragments that identify them
// in an attendee's email or display name
type Coach struct {
	Name   string
	Tokens []string
}

// Client is the attendee chosen as the session's client
type Client struct {
	Name  string
	Email string
}

// Resolver matches attendees against a fixed coach roster
type Resolver struct {
	roster  []Coach
	keyword *regexp.Regexp
}

// NewResolver creates a Resolver. keyword is the word stripped from the
// title when a client name has to be derived from it.
func NewResolver(roster []Coach, keyword string) *Resolver {
	normalized := make([]Coach, 0, len(roster))
	for _, coach := range roster {
		tokens := make([]string, 0, len(coach.Tokens))
		for _, token := range coach.Tokens {
			if token = strings.ToLower(strings.TrimSpace(token)); token != "" {
				tokens = append(tokens, token)
			}
		}
		normalized = append(normalized, Coach{Name: coach.Name, Tokens: tokens})
	}

	r := &Resolver{roster: normalized}
	if keyword != "" {
		r.keyword = regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
	}
	return r
}

// Roster returns the coach names in roster order
func (r *Resolver) Roster() []string {
	names := make([]string, len(r.roster))
	for i, coach := range r.roster {
		names[i] = coach.Name
	}
	return names
}

// Resolve returns the coach and client for event
func (r *Resolver) Resolve(event *models.CalendarEvent) (string, Client) {
	return r.Coach(event.Attendees), r.Client(event)
}

// Coach returns the roster member matched by the attendees. Every match
// overwrites the previous one, so when several attendees match, the last
// attendee in list order wins.
func (r *Resolver) Coach(attendees []models.Attendee) string {
	coach := UnknownCoach
	for _, attendee := range attendees {
		email := strings.ToLower(attendee.Email)
		name := strings.ToLower(attendee.DisplayName)
		for _, member := range r.roster {
			if member.matches(email) || member.matches(name) {
				coach = member.Name
			}
		}
	}
	return coach
}

// Client returns the first attendee whose email carries no roster token.
// An attendee may be dropped just for sharing a fragment with a coach's name.
func (r *Resolver) Client(event *models.CalendarEvent) Client {
	for _, attendee := range event.Attendees {
		if r.isCoachEmail(attendee.Email) {
			continue
		}
		name := attendee.DisplayName
		if strings.TrimSpace(name) == "" {
			name = r.nameFromTitle(event.Title)
		}
		return Client{Name: name, Email: attendee.Email}
	}
	return Client{Name: r.nameFromTitle(event.Title)}
}

func (r *Resolver) isCoachEmail(email string) bool {
	email = strings.ToLower(email)
	for _, member := range r.roster {
		if member.matches(email) {
			return true
		}
	}
	return false
}

// nameFromTitle removes the first occurrence of the keyword, ignoring case.
// Offsets come from the title itself since case mapping can change byte
// lengths.
func (r *Resolver) nameFromTitle(title string) string {
	stripped := title
	if r.keyword != nil {
		if loc := r.keyword.FindStringIndex(title); loc != nil {
			stripped = title[:loc[0]] + " " + title[loc[1]:]
		}
	}
	name := strings.Join(strings.Fields(stripped), " ")
	if name == "" {
		return UnknownClient
	}
	return name
}

func (c Coach) matches(s string) bool {
	if s == "" {
		return false
	}
	for _, token := range c.Tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
