package calendar

// Calendar represents metadata about a calendar
type Calendar struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timezone,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	AccessRole  string `json:"access_role,omitempty"`
}

// Label returns the calendar's display name, falling back to its ID
func (c *Calendar) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
