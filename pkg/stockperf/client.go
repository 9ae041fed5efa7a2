// Package stockperf is a Go SDK for the stockperf-server JSON API.
package stockperf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockperf/internal/domain"
	"stockperf/internal/httpapi"
)

// Client provides a Go SDK for interacting with the stockperf-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new stockperf API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetChart retrieves the chart slice for a period and grouping. Empty values
// let the server apply its defaults.
func (c *Client) GetChart(ctx context.Context, p domain.Period, g domain.Grouping) (*httpapi.ChartResponse, error) {
	q := url.Values{}
	if p != "" {
		q.Set("period", string(p))
	}
	if g != "" {
		q.Set("grouping", string(g))
	}
	var resp httpapi.ChartResponse
	if err := c.do(ctx, http.MethodGet, "/api/chart?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("GetChart: %w", err)
	}
	return &resp, nil
}

// Health retrieves the server status.
func (c *Client) Health(ctx context.Context) (*httpapi.HealthResponse, error) {
	var resp httpapi.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", &resp); err != nil {
		return nil, fmt.Errorf("Health: %w", err)
	}
	return &resp, nil
}

// GetPeriods retrieves the selectable periods and groupings and which periods
// currently have data.
func (c *Client) GetPeriods(ctx context.Context) (*httpapi.PeriodsResponse, error) {
	var resp httpapi.PeriodsResponse
	if err := c.do(ctx, http.MethodGet, "/api/periods", &resp); err != nil {
		return nil, fmt.Errorf("GetPeriods: %w", err)
	}
	return &resp, nil
}

// Reload asks the server to reload its data set.
func (c *Client) Reload(ctx context.Context) (*httpapi.ReloadResponse, error) {
	var resp httpapi.ReloadResponse
	if err := c.do(ctx, http.MethodPost, "/api/reload", &resp); err != nil {
		return nil, fmt.Errorf("Reload: %w", err)
	}
	return &resp, nil
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &body) != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
