package board

import (
	"fmt"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

const (
	ViewMine = "My Calls"
	ViewAll  = "All Coaches"
)

// View is a selectable coach filter with the number of appointments it shows
type View struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Views lists "My Calls", "All Coaches" and one view per roster coach
func Views(appointments []*models.EnrichedAppointment, me string, roster []string) []View {
	views := []View{
		{Name: ViewMine, Count: len(Filter(appointments, ViewMine, me))},
		{Name: ViewAll, Count: len(appointments)},
	}
	for _, coach := range roster {
		views = append(views, View{Name: coach, Count: len(Filter(appointments, coach, me))})
	}
	return views
}

// Filter returns the appointments shown by view. me is the signed-in coach's
// name used by "My Calls".
func Filter(appointments []*models.EnrichedAppointment, view, me string) []*models.EnrichedAppointment {
	if view == ViewAll || view == "" {
		return appointments
	}

	coach := view
	if view == ViewMine {
		coach = me
	}

	filtered := []*models.EnrichedAppointment{}
	for _, appointment := range appointments {
		if appointment.Coach == coach {
			filtered = append(filtered, appointment)
		}
	}
	return filtered
}

// ParseDate reads a YYYY-MM-DD date in loc. An empty value means today.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return Today(loc), nil
	}
	date, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return date, nil
}

// Today returns midnight of the current day in loc
func Today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// PreviousDay and NextDay step one calendar day, keeping wall-clock time
// across DST changes
func PreviousDay(date time.Time) time.Time {
	return date.AddDate(0, 0, -1)
}

func NextDay(date time.Time) time.Time {
	return date.AddDate(0, 0, 1)
}
