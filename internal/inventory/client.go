// Package inventory talks to a Spoolman-compatible spool inventory over HTTP.
//
// The client classifies outcomes the way the checker needs them: a 404 is
// ErrNotFound, any transport failure, timeout, or unexpected status is a
// TransientError. The client never retries; retry policy belongs to the
// caller.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spoolguard/spoolguard/internal/spool"
)

// DefaultTimeout bounds every inventory request. The inventory service is a
// suspension point for the whole check session, so requests must not hang.
const DefaultTimeout = 10 * time.Second

// ErrNotFound reports that the inventory has no record for the requested
// spool id.
var ErrNotFound = errors.New("spool not found")

// TransientError reports an inventory failure that says nothing about the
// spool itself: the service was unreachable, timed out, or answered with an
// unexpected status.
type TransientError struct {
	SpoolID int
	Err     error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("fetch spool %d: %v", e.SpoolID, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Client fetches spool records from a Spoolman v1 API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the Spoolman instance at baseURL
// (e.g. "http://localhost:7912/api").
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

// Spool fetches one spool record by id.
//
// Returns ErrNotFound (wrapped) for a 404 and a TransientError for transport
// failures and unexpected statuses.
func (c *Client) Spool(ctx context.Context, id int) (*spool.Spool, error) {
	url := fmt.Sprintf("%s/v1/spool/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build spool request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{SpoolID: id, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("spool %d: %w", id, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &TransientError{SpoolID: id, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var record spool.Spool
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, &TransientError{SpoolID: id, Err: fmt.Errorf("decode spool body: %w", err)}
	}
	record.ID = id
	return &record, nil
}
