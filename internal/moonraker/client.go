// Package moonraker is a thin HTTP client for the Moonraker print server.
// It covers exactly the surfaces the pre-print checker needs: the current
// job filename, parsed file metadata, gcode console messages, the pause
// action, and the multi-material unit status.
package moonraker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every Moonraker request.
const DefaultTimeout = 10 * time.Second

// Client talks to one Moonraker instance.
type Client struct {
	baseURL string
	http    *http.Client
	apiKey  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithAPIKey sets the X-Api-Key header on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the Moonraker instance at baseURL
// (e.g. "http://localhost:7125").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// StatusError reports a non-2xx Moonraker response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Path, e.StatusCode, e.Body)
}

// CurrentFilename returns the filename of the current print job, or "" when
// no job is loaded.
func (c *Client) CurrentFilename(ctx context.Context) (string, error) {
	var payload struct {
		Result struct {
			Status struct {
				PrintStats struct {
					Filename string `json:"filename"`
				} `json:"print_stats"`
			} `json:"status"`
		} `json:"result"`
	}
	query := url.Values{"print_stats": []string{"filename"}}
	if err := c.do(ctx, http.MethodGet, "/printer/objects/query", query, &payload); err != nil {
		return "", fmt.Errorf("query print_stats: %w", err)
	}
	return payload.Result.Status.PrintStats.Filename, nil
}

// PausePrint asks Klipper to pause the current print.
func (c *Client) PausePrint(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/printer/print/pause", nil, nil); err != nil {
		return fmt.Errorf("pause print: %w", err)
	}
	return nil
}

// RunGCode executes a gcode script on the printer.
func (c *Client) RunGCode(ctx context.Context, script string) error {
	query := url.Values{"script": []string{script}}
	if err := c.do(ctx, http.MethodPost, "/printer/gcode/script", query, nil); err != nil {
		return fmt.Errorf("run gcode: %w", err)
	}
	return nil
}
