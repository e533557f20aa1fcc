package tablewarden

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tablewarden/tablewarden/internal/config"
	"github.com/tablewarden/tablewarden/internal/notify"
	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
	"github.com/tablewarden/tablewarden/pkg/reconcile"
)

// SourceReport is the per-source outcome of a batch run. Err is set
// when that source failed; the rest of the batch proceeds regardless.
type SourceReport struct {
	Source string
	Result *reconcile.Result
	Err    error
}

// RunResult aggregates a batch run across sources.
type RunResult struct {
	RunID    string
	Reports  []SourceReport
	Notified bool
}

// Failed returns the reports of sources that errored.
func (r *RunResult) Failed() []SourceReport {
	var failed []SourceReport
	for _, rep := range r.Reports {
		if rep.Err != nil {
			failed = append(failed, rep)
		}
	}
	return failed
}

// NewRows sums newly added rows across all sources that succeeded.
func (r *RunResult) NewRows() int {
	n := 0
	for _, rep := range r.Reports {
		if rep.Result != nil {
			n += rep.Result.NewRows()
		}
	}
	return n
}

// Run fetches and reconciles the named sources, or every configured
// source when none are named. Sources run in parallel with a bounded
// degree; one source failing does not abort the others, so the error
// return covers batch-level problems only. A second Run while one is
// in flight returns ErrInProgress.
func (c *Client) Run(ctx context.Context, sources ...string) (*RunResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, errors.ErrInProgress
	}
	defer c.running.Store(false)

	selected, err := c.selectSources(sources)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logging.Info().
		Str("run_id", runID).
		Int("sources", len(selected)).
		Msg("starting reconciliation run")

	result := &RunResult{
		RunID:   runID,
		Reports: make([]SourceReport, len(selected)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.MaxParallelSources)
	for i, src := range selected {
		g.Go(func() error {
			res, err := c.runSource(gctx, src)
			if err != nil {
				logging.Err(err).
					Str("run_id", runID).
					Str("source", src.Name).
					Msg("source reconciliation failed")
			}
			result.Reports[i] = SourceReport{Source: src.Name, Result: res, Err: err}
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := c.notifyChanges(ctx, runID, result); err != nil {
		logging.Err(err).Str("run_id", runID).Msg("change notification failed")
	}

	logging.Info().
		Str("run_id", runID).
		Int("new_rows", result.NewRows()).
		Int("failed", len(result.Failed())).
		Msg("reconciliation run finished")
	return result, nil
}

// selectSources resolves the requested source names against the
// configuration, defaulting to all configured sources.
func (c *Client) selectSources(names []string) ([]config.Source, error) {
	if len(names) == 0 {
		if len(c.cfg.Sources) == 0 {
			return nil, fmt.Errorf("no sources configured: %w", errors.ErrNotFound)
		}
		return c.cfg.Sources, nil
	}
	selected := make([]config.Source, 0, len(names))
	for _, name := range names {
		src, ok := c.cfg.Source(name)
		if !ok {
			return nil, fmt.Errorf("source %q not configured: %w", name, errors.ErrNotFound)
		}
		selected = append(selected, src)
	}
	return selected, nil
}

// runSource fetches one source's tables and reconciles them.
func (c *Client) runSource(ctx context.Context, src config.Source) (*reconcile.Result, error) {
	ctx = logging.WithSource(ctx, src.Name)

	fetched, err := c.fetcher.Tables(ctx, src.URL)
	if err != nil {
		return nil, errors.WrapSource(src.Name, "fetch", err)
	}
	if len(fetched) == 0 {
		return nil, errors.WrapSource(src.Name, "fetch",
			fmt.Errorf("no tables found at %s: %w", src.URL, errors.ErrNotFound))
	}

	sheets := make([]reconcile.SheetRows, len(fetched))
	for i, t := range fetched {
		sheets[i] = reconcile.SheetRows{Sheet: sheetName(i, len(fetched)), Rows: t}
	}

	return c.engine.Reconcile(ctx, src.Name, sheets)
}

// sheetName assigns workbook sheet names. A single table keeps the
// plain default; multi-table pages number their sheets.
func sheetName(index, total int) string {
	if total == 1 {
		return constants.DefaultSheetName
	}
	return fmt.Sprintf("Table_%d", index+1)
}

// notifyChanges sends one mail covering every source that gained rows.
func (c *Client) notifyChanges(ctx context.Context, runID string, result *RunResult) error {
	if !c.notifier.Enabled() {
		return nil
	}

	var reports []notify.Report
	for _, rep := range result.Reports {
		if rep.Result == nil || !rep.Result.HasNewRows() {
			continue
		}
		report := notify.Report{
			Source:    rep.Source,
			TotalRows: rep.Result.TotalRows(),
			NewRows:   rep.Result.NewRows(),
		}
		for _, sheet := range rep.Result.Sheets {
			if sheet.Added == nil || sheet.Added.Empty() {
				continue
			}
			if report.NewEntries == nil {
				report.NewEntries = sheet.Added
			} else {
				report.NewEntries = report.NewEntries.Concat(sheet.Added)
			}
		}
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return nil
	}

	if err := c.notifier.SendChanges(ctx, runID, reports); err != nil {
		return err
	}
	result.Notified = true
	return nil
}

// Restore rebuilds a source's workbook from its snapshots, discarding
// whatever is in the artifact file.
func (c *Client) Restore(ctx context.Context, source string) error {
	return c.engine.ForceRestore(ctx, source, nil)
}
