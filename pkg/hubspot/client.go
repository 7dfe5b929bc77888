// Package hubspot looks up CRM contacts through the HubSpot search API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
	"github.com/dowjanes/coaching-dashboard/pkg/retry"
)

const searchPath = "/crm/v3/objects/contacts/search"

// ErrMissingToken is returned when no private app token is configured
var ErrMissingToken = errors.New("hubspot token not configured")

// Options configures a Client
type Options struct {
	Token      string
	APIURL     string
	Properties []string
	// Timeout bounds each search call
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client searches HubSpot contacts
type Client struct {
	token      string
	searchURL  string
	properties []string
	timeout    time.Duration
	httpClient *http.Client
	retryer    *retry.Retryer
	logger     *slog.Logger
}

// NewClient creates a new HubSpot client
func NewClient(opts Options, retryer *retry.Retryer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if retryer == nil {
		retryer = retry.NewRetryer(nil, logger)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		token:      opts.Token,
		searchURL:  strings.TrimRight(opts.APIURL, "/") + searchPath,
		properties: opts.Properties,
		timeout:    opts.Timeout,
		httpClient: httpClient,
		retryer:    retryer,
		logger:     logger,
	}
}

// Search runs an exact email search limited to one result and returns the
// response as sent by the API. Non-2xx responses are *retry.HTTPError.
func (c *Client) Search(ctx context.Context, email string) (*SearchResponse, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	body, err := json.Marshal(emailSearch(email, c.properties))
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	return retry.DoWithResult(ctx, c.retryer, func(ctx context.Context) (*SearchResponse, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return c.doSearch(ctx, body)
	})
}

func (c *Client) doSearch(ctx context.Context, body []byte) (*SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, retry.NewHTTPErrorFromResponse(resp)
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// SearchContactByEmail returns the single contact whose email matches, or
// nil when there is none
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*models.ContactRecord, error) {
	if email == "" {
		return nil, nil
	}

	result, err := c.Search(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return result.Results[0].Record(), nil
}

// Lookup is SearchContactByEmail with every failure collapsed to "no record".
// Failures are logged and never returned.
func (c *Client) Lookup(ctx context.Context, email string) *models.ContactRecord {
	contact, err := c.SearchContactByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMissingToken) {
			c.logger.Debug("Skipping CRM lookup without a token", "email", email)
			return nil
		}
		c.logger.Warn("HubSpot lookup failed",
			"email", email,
			"status", retry.StatusCode(err),
			"error", err)
		return nil
	}
	if contact == nil {
		c.logger.Debug("No HubSpot contact found", "email", email)
	}
	return contact
}
