// Package client holds the typed HTTP clients for the User Directory and
// Product Catalog services. The transport layer decodes responses and raises
// structured errors per HTTP outcome; a classification wrapper then collapses
// every failure, transport or decode, into the two-way split the workflow
// understands: entity-not-found versus service-unavailable.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = time.Second
	}
	return c
}

// StatusError is raised by the transport layer for any non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Retryable reports whether the response indicates a transient condition
// worth retrying. Caller errors and not-found are final.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500
}

// DecodeError is raised when a 2xx response body cannot be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// httpClient performs GET calls with bounded exponential backoff. Retries
// apply only to transport failures and 5xx responses; 4xx outcomes are
// returned on the first attempt.
type httpClient struct {
	log  *slog.Logger
	base string
	hc   *http.Client
	cfg  Config
}

func newHTTPClient(log *slog.Logger, cfg Config) *httpClient {
	cfg = cfg.withDefaults()
	return &httpClient{
		log:  log,
		base: cfg.BaseURL,
		hc:   &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	url := c.base + path

	var lastErr error
	backoff := c.cfg.InitialBackoff
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err := c.do(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			return err
		}
		if attempt < c.cfg.MaxAttempts {
			c.log.WarnContext(ctx, "remote call failed, retrying",
				"url", url, "attempt", attempt, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				if backoff > c.cfg.MaxBackoff {
					backoff = c.cfg.MaxBackoff
				}
			}
		}
	}
	return lastErr
}

func (c *httpClient) do(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout. Classified upstream.
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &DecodeError{URL: url, Err: err}
		}
		return nil
	default:
		// 404 not-found, 400 caller error, 5xx unavailable: all carried as
		// a StatusError and mapped by the classification wrapper.
		return &StatusError{Code: resp.StatusCode, URL: url}
	}
}

func retryable(err error) bool {
	if se, ok := err.(*StatusError); ok {
		return se.Retryable()
	}
	if _, ok := err.(*DecodeError); ok {
		return false
	}
	// Transport-level failure.
	return true
}
