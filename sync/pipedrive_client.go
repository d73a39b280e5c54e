// ABOUTME: Pipedrive API client routed through the CORS proxy worker
// ABOUTME: Fetches person field definitions, persons and activities with the API token

package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultPipedriveProxy is the proxy worker that forwards requests to the Pipedrive API.
const DefaultPipedriveProxy = "https://pipedriveproxy2.angkor-528.workers.dev"

const maxResponseBytes = 5 * 1024 * 1024

// PipedriveConfig holds the Pipedrive connection settings.
type PipedriveConfig struct {
	ProxyURL   string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// PipedriveClient talks to Pipedrive. NewPipedriveClient returns nil when no token is set.
type PipedriveClient struct {
	proxyURL   string
	token      string
	httpClient *http.Client
}

func NewPipedriveClient(cfg PipedriveConfig) *PipedriveClient {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil
	}

	proxy := cfg.ProxyURL
	if proxy == "" {
		proxy = DefaultPipedriveProxy
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &PipedriveClient{
		proxyURL:   proxy,
		token:      token,
		httpClient: hc,
	}
}

// get fetches one proxied endpoint and decodes the response envelope.
func (c *PipedriveClient) get(ctx context.Context, endpoint, extra string) (*pipedriveEnvelope, error) {
	q := url.Values{}
	q.Set("api_token", c.token)
	q.Set("endpoint", endpoint)
	if extra != "" {
		q.Set("extra", extra)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.proxyURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pipedrive: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipedrive: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("pipedrive: read body: %w", err)
	}

	var env pipedriveEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("pipedrive: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
		return nil, fmt.Errorf("pipedrive: decode %s: %w", endpoint, err)
	}

	return &env, nil
}

// PersonFields returns the person field definitions. An unsuccessful response
// yields no fields rather than an error.
func (c *PipedriveClient) PersonFields(ctx context.Context) ([]PersonField, error) {
	env, err := c.get(ctx, "/v1/personFields", "")
	if err != nil {
		return nil, err
	}
	if env.failed() {
		return nil, nil
	}

	var fields []PersonField
	if err := decodeData(env.Data, &fields); err != nil {
		return nil, fmt.Errorf("pipedrive: decode person fields: %w", err)
	}
	return fields, nil
}

// Persons returns every person visible to the token.
func (c *PipedriveClient) Persons(ctx context.Context) ([]Person, error) {
	env, err := c.get(ctx, "/v1/persons", "")
	if err != nil {
		return nil, err
	}
	if env.failed() {
		if env.Error != "" {
			return nil, errors.New(env.Error)
		}
		return nil, errors.New("Pipedrive API error")
	}

	var persons []Person
	if err := decodeData(env.Data, &persons); err != nil {
		return nil, fmt.Errorf("pipedrive: decode persons: %w", err)
	}
	return persons, nil
}

// Activities returns the activities list. ok is false when Pipedrive answered
// with success:false, in which case the caller should leave synced
// appointments as they are.
func (c *PipedriveClient) Activities(ctx context.Context) (acts []Activity, ok bool, err error) {
	env, err := c.get(ctx, "/v1/activities", "start=0")
	if err != nil {
		return nil, false, err
	}
	if env.failed() || isNull(env.Data) {
		return nil, false, nil
	}

	if err := decodeData(env.Data, &acts); err != nil {
		return nil, false, fmt.Errorf("pipedrive: decode activities: %w", err)
	}
	return acts, true, nil
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
