// Package api is the HTTP client for the mining revenue API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"asicrev/internal/core"
	applog "asicrev/internal/log"
	"asicrev/internal/sources"
)

// ErrMissingBaseURL is returned by every call when no API base URL is configured.
// The message is shown to users as-is.
var ErrMissingBaseURL = errors.New("Missing API base URL")

// StatusError reports a non-2xx response. Its message is the HTTP status line.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Text)
}

type Client struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
}

// Ensure interface conformance
var _ sources.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for the API at baseURL. An empty baseURL is accepted;
// calls then fail with ErrMissingBaseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListASICs fetches the full hardware config list. Responses are never cached.
func (c *Client) ListASICs(ctx context.Context) ([]core.ASIC, error) {
	var raw []wireASIC
	if err := c.getJSON(ctx, "/asic", nil, &raw); err != nil {
		return nil, err
	}

	asics := make([]core.ASIC, 0, len(raw))
	for _, w := range raw {
		asics = append(asics, toASIC(w))
	}
	slog.DebugContext(ctx, "Fetched ASIC list",
		applog.FieldComponent, applog.ComponentAPI,
		applog.FieldASICCount, len(asics))
	return asics, nil
}

// Revenue fetches the per-MWh revenue series for q. Identical queries in flight at
// the same time share a single upstream request.
func (c *Client) Revenue(ctx context.Context, q core.RevenueQuery) ([]core.RawRevenuePoint, error) {
	if c.baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	ch := c.group.DoChan(q.Key(), func() (any, error) {
		// Detached from the first caller so its cancellation does not fail the others.
		return c.fetchRevenue(context.WithoutCancel(ctx), q)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.DebugContext(ctx, "Revenue request coalesced",
				applog.FieldComponent, applog.ComponentAPI,
				applog.FieldASICID, q.ASICID,
				applog.FieldStart, q.Start,
				applog.FieldEnd, q.End)
		}
		points := res.Val.([]core.RawRevenuePoint)
		return append([]core.RawRevenuePoint(nil), points...), nil
	}
}

func (c *Client) fetchRevenue(ctx context.Context, q core.RevenueQuery) ([]core.RawRevenuePoint, error) {
	params := url.Values{}
	params.Set("timestamp_start", q.Start)
	params.Set("timestamp_end", q.End)
	params.Set("asic_id", q.ASICID)

	var raw []wireRevenuePoint
	if err := c.getJSON(ctx, "/mwh_revenue", params, &raw); err != nil {
		return nil, err
	}

	points := make([]core.RawRevenuePoint, 0, len(raw))
	for _, w := range raw {
		points = append(points, toRawPoint(w))
	}
	return points, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	if c.baseURL == "" {
		return ErrMissingBaseURL
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Surface the transport failure without the method and URL prefix.
		var ue *url.Error
		if errors.As(err, &ue) {
			return ue.Err
		}
		return err
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "API response",
		applog.FieldComponent, applog.ComponentAPI,
		applog.FieldPath, path,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Text: statusText(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// statusText returns the reason phrase sent by the server, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
