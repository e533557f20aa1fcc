// Package tablewarden periodically scrapes tabular data from web pages
// and persists it into spreadsheet workbooks, guarding against data
// loss from manual edits. Durable CSV snapshots are the source of
// truth; the workbooks people open are derived, digest-checked for
// tampering, and regenerated with user-added columns preserved.
//
// The Client ties the pipeline together: fetch a source's tables,
// reconcile them against the snapshots, and notify about new entries.
//
//	cfg, err := config.Load("")
//	client, err := tablewarden.New(cfg)
//	result, err := client.Run(ctx)
package tablewarden

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/tablewarden/tablewarden/internal/config"
	"github.com/tablewarden/tablewarden/internal/fetch"
	"github.com/tablewarden/tablewarden/internal/notify"
	"github.com/tablewarden/tablewarden/pkg/artifact"
	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/metadata"
	"github.com/tablewarden/tablewarden/pkg/reconcile"
	"github.com/tablewarden/tablewarden/pkg/snapshot"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

// Fetcher acquires raw tables from a source URL. Implemented by
// fetch.Client; tests substitute fakes.
type Fetcher interface {
	Tables(ctx context.Context, url string) ([]*tables.Table, error)
}

// Notifier sends change notifications. Implemented by notify.Notifier.
type Notifier interface {
	Enabled() bool
	SendChanges(ctx context.Context, runID string, reports []notify.Report) error
}

// Client is the application facade over the reconciliation engine and
// its collaborators.
type Client struct {
	cfg       *config.Config
	fetcher   Fetcher
	notifier  Notifier
	engine    *reconcile.Engine
	snapshots *snapshot.Store
	registry  *metadata.Registry
	artifacts *artifact.Store

	running atomic.Bool
}

// New builds a client from resolved configuration.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	snapshotsDir := filepath.Join(cfg.DataDir, constants.SnapshotsDirName)

	c := &Client{
		cfg:       cfg,
		snapshots: snapshot.NewStore(snapshotsDir),
		registry:  metadata.NewRegistry(filepath.Join(snapshotsDir, constants.MetadataFileName)),
		artifacts: artifact.NewStore(cfg.DataDir),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = fetch.NewClient()
	}
	if c.notifier == nil {
		c.notifier = notify.New(cfg.SMTP, cfg.SenderName, cfg.MailingList)
	}
	if c.engine == nil {
		var engineOpts []reconcile.Option
		if cfg.LockWait {
			engineOpts = append(engineOpts, reconcile.WithLockWait())
		}
		c.engine = reconcile.New(c.snapshots, c.registry, c.artifacts, engineOpts...)
	}

	return c, nil
}

// Config returns the client's configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Snapshots exposes the snapshot store for reporting.
func (c *Client) Snapshots() *snapshot.Store {
	return c.snapshots
}

// Registry exposes the metadata registry for reporting.
func (c *Client) Registry() *metadata.Registry {
	return c.registry
}

// Artifacts exposes the workbook store for reporting.
func (c *Client) Artifacts() *artifact.Store {
	return c.artifacts
}

// Running reports whether a batch run is currently in flight.
func (c *Client) Running() bool {
	return c.running.Load()
}
