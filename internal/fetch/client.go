// Package fetch acquires raw tables from source pages: a plain HTTP GET
// and extraction of every <table> element into string-celled tables.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

const defaultUserAgent = "tablewarden/1.0 (+https://github.com/tablewarden/tablewarden)"

// Client fetches pages and extracts their tables.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit overrides the sustained request rate.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewClient returns a client with a sane timeout and a gentle default
// request rate toward the scraped sites.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		limiter:   rate.NewLimiter(rate.Limit(constants.DefaultFetchRate), 2),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tables fetches the page at url and returns every table found on it,
// in document order. Zero tables is a valid result. Cells are cleaned
// and the second column is identifier-normalized at the edge, so the
// rest of the pipeline only ever sees text.
func (c *Client) Tables(ctx context.Context, url string) ([]*tables.Table, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.ConfigError{Component: "fetch", Message: "invalid source url", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapIO("fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, errors.WrapIO("fetch", url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	found, err := Parse(resp.Body)
	if err != nil {
		return nil, &errors.ParseError{Format: "html", File: url, Message: "cannot parse page", Err: err}
	}

	logging.Ctx(ctx).Debug().
		Str("url", url).
		Int("tables", len(found)).
		Dur("elapsed", time.Since(start)).
		Msg("page fetched")
	return found, nil
}
