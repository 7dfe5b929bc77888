package calendar

import "github.com/dowjanes/coaching-dashboard/internal/models"

// Filter keeps events whose title or description contains a keyword
type Filter struct {
	keyword string
}

// NewFilter creates a Filter for keyword. Matching is a case-insensitive
// substring test with no tolerance for spacing or punctuation variants.
func NewFilter(keyword string) *Filter {
	return &Filter{keyword: keyword}
}

// Match reports whether event is retained
func (f *Filter) Match(event *models.CalendarEvent) bool {
	if event == nil || f.keyword == "" {
		return false
	}
	return event.Mentions(f.keyword)
}

// Apply returns the retained events in their original order
func (f *Filter) Apply(events []*models.CalendarEvent) []*models.CalendarEvent {
	var kept []*models.CalendarEvent
	for _, event := range events {
		if f.Match(event) {
			kept = append(kept, event)
		}
	}
	return kept
}
