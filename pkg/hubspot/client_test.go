package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dowjanes/coaching-dashboard/pkg/retry"
)

var testProperties = []string{"firstname", "lastname", "email", "lifecyclestage"}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Options{
		Token:      token,
		APIURL:     server.URL + "/",
		Properties: testProperties,
		Timeout:    time.Second,
	}, nil, nil)
	return client, &calls
}

func TestClient_SearchContactByEmail(t *testing.T) {
	client, _ := newTestClient(t, "pat-test", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != searchPath {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pat-test" {
			t.Errorf("Expected bearer token, got %q", got)
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Limit != 1 {
			t.Errorf("Expected limit 1, got %d", req.Limit)
		}
		filter := req.FilterGroups[0].Filters[0]
		if filter.PropertyName != "email" || filter.Operator != "EQ" || filter.Value != "jane@client.com" {
			t.Errorf("Unexpected filter %+v", filter)
		}
		if len(req.Properties) != len(testProperties) {
			t.Errorf("Expected %d properties, got %v", len(testProperties), req.Properties)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":1,"results":[{"id":"101","properties":{
			"firstname":"Jane","lastname":"Doe","email":"jane@client.com",
			"lifecyclestage":"customer","hs_lead_status":null,"phone":""},
			"createdAt":"2024-01-15T10:00:00Z","updatedAt":"2025-03-01T12:00:00Z","archived":false}]}`)
	})

	contact, err := client.SearchContactByEmail(context.Background(), "jane@client.com")
	if err != nil {
		t.Fatalf("SearchContactByEmail() error = %v", err)
	}
	if contact == nil {
		t.Fatal("Expected a contact")
	}
	if contact.ID != "101" {
		t.Errorf("Expected ID 101, got %s", contact.ID)
	}
	if contact.Property("lifecyclestage") != "customer" {
		t.Errorf("Expected lifecycle stage 'customer', got %q", contact.Property("lifecyclestage"))
	}
	if _, ok := contact.Properties["hs_lead_status"]; ok {
		t.Error("Expected null property to be dropped")
	}
	if _, ok := contact.Properties["phone"]; ok {
		t.Error("Expected empty property to be dropped")
	}
	if contact.CreatedAt.Year() != 2024 {
		t.Errorf("Expected createdAt to be decoded, got %v", contact.CreatedAt)
	}
}

func TestClient_SearchContactByEmail_NoResults(t *testing.T) {
	client, _ := newTestClient(t, "pat-test", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":0,"results":[]}`)
	})

	contact, err := client.SearchContactByEmail(context.Background(), "nobody@client.com")
	if err != nil {
		t.Fatalf("SearchContactByEmail() error = %v", err)
	}
	if contact != nil {
		t.Errorf("Expected no contact, got %+v", contact)
	}
}

func TestClient_SearchContactByEmail_EmptyEmail(t *testing.T) {
	client, calls := newTestClient(t, "pat-test", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":0,"results":[]}`)
	})

	contact, err := client.SearchContactByEmail(context.Background(), "")
	if err != nil || contact != nil {
		t.Errorf("Expected (nil, nil) for empty email, got (%v, %v)", contact, err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Errorf("Expected no API call for empty email, got %d", *calls)
	}
}

func TestClient_Search_HTTPError(t *testing.T) {
	client, _ := newTestClient(t, "pat-test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":"error","message":"Authentication credentials not found."}`)
	})

	_, err := client.Search(context.Background(), "jane@client.com")
	var httpErr *retry.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected retry.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", httpErr.StatusCode)
	}
	if httpErr.Body == "" {
		t.Error("Expected response body to be kept")
	}
}

func TestClient_Search_MissingToken(t *testing.T) {
	client, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {})

	if _, err := client.Search(context.Background(), "jane@client.com"); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Errorf("Expected no API call without a token, got %d", *calls)
	}
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		handler http.HandlerFunc
		found   bool
	}{
		{
			name:  "found",
			token: "pat-test",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"total":1,"results":[{"id":"1","properties":{"email":"a@b.com"}}]}`)
			},
			found: true,
		},
		{
			name:  "server error collapses to nil",
			token: "pat-test",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name:  "malformed body collapses to nil",
			token: "pat-test",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `not json`)
			},
		},
		{
			name:    "missing token collapses to nil",
			token:   "",
			handler: func(w http.ResponseWriter, r *http.Request) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.token, tt.handler)
			contact := client.Lookup(context.Background(), "a@b.com")
			if (contact != nil) != tt.found {
				t.Errorf("Lookup() = %+v, want found=%v", contact, tt.found)
			}
		})
	}
}

func TestClient_LookupNotDeduplicated(t *testing.T) {
	client, calls := newTestClient(t, "pat-test", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":0,"results":[]}`)
	})

	client.Lookup(context.Background(), "jane@client.com")
	client.Lookup(context.Background(), "jane@client.com")

	if got := atomic.LoadInt32(calls); got != 2 {
		t.Errorf("Expected two independent calls, got %d", got)
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(Options{Token: "pat-test", APIURL: server.URL, Timeout: 20 * time.Millisecond}, nil, nil)
	if contact := client.Lookup(context.Background(), "slow@client.com"); contact != nil {
		t.Errorf("Expected nil contact on timeout, got %+v", contact)
	}
}
