// ABOUTME: Redtail CRM API client
// ABOUTME: Lists contacts with phones and emails using HTTP Basic authentication

package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRedtailBaseURL is the Redtail public API host.
const DefaultRedtailBaseURL = "https://smf.crm3.redtailtechnology.com"

const redtailContactsPath = "/api/public/v1/contacts?include=phones,emails&page_size=200"

// StatusError is returned when Redtail answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Redtail returned %d", e.StatusCode)
}

// RedtailConfig holds the Redtail connection settings.
type RedtailConfig struct {
	BaseURL    string
	User       string
	Key        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// RedtailClient talks to Redtail. NewRedtailClient returns nil unless both
// user and key are set.
type RedtailClient struct {
	baseURL    string
	user       string
	key        string
	httpClient *http.Client
}

func NewRedtailClient(cfg RedtailConfig) *RedtailClient {
	if cfg.User == "" || cfg.Key == "" {
		return nil
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultRedtailBaseURL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &RedtailClient{
		baseURL:    base,
		user:       cfg.User,
		key:        cfg.Key,
		httpClient: hc,
	}
}

// Contacts fetches the first page of contacts.
func (c *RedtailClient) Contacts(ctx context.Context) ([]RedtailContact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+redtailContactsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("redtail: request: %w", err)
	}
	req.SetBasicAuth(c.user, c.key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("redtail: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("redtail: read body: %w", err)
	}

	var listing redtailContacts
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("redtail: decode contacts: %w", err)
	}
	return listing.list(), nil
}
