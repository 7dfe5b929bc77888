package hubspot

import (
	"encoding/json"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

// SearchRequest is the body of a CRM object search
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
}

type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// SearchResponse is the search result page as returned by the API
type SearchResponse struct {
	Total   int             `json:"total"`
	Results []Contact       `json:"results"`
	Paging  json.RawMessage `json:"paging,omitempty"`
}

// Contact is a contact object as returned by the API. Property values may be
// JSON null.
type Contact struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Archived   bool               `json:"archived"`
}

// Record converts the contact to the pipeline's model, dropping null and
// empty properties
func (c *Contact) Record() *models.ContactRecord {
	properties := make(map[string]string, len(c.Properties))
	for name, value := range c.Properties {
		if value != nil && *value != "" {
			properties[name] = *value
		}
	}
	return &models.ContactRecord{
		ID:         c.ID,
		Properties: properties,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Archived:   c.Archived,
	}
}

func emailSearch(email string, properties []string) SearchRequest {
	return SearchRequest{
		FilterGroups: []FilterGroup{
			{Filters: []Filter{{PropertyName: "email", Operator: "EQ", Value: email}}},
		},
		Properties: properties,
		Limit:      1,
	}
}
