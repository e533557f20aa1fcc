package tablewarden

import "github.com/tablewarden/tablewarden/pkg/reconcile"

// Option configures a Client.
type Option func(*Client)

// WithFetcher replaces the HTTP table fetcher.
func WithFetcher(f Fetcher) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

// WithNotifier replaces the change notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithEngine replaces the reconciliation engine, mainly so tests can
// inject a fixed clock.
func WithEngine(e *reconcile.Engine) Option {
	return func(c *Client) {
		c.engine = e
	}
}
