// Package reconcile implements the integrity engine: it decides how
// newly fetched rows merge with the durable snapshot of each source,
// detects hand-edits to the user-facing spreadsheet, and carries
// user-added columns across automated rewrites.
package reconcile

import (
	"context"
	"time"

	"github.com/tablewarden/tablewarden/pkg/artifact"
	"github.com/tablewarden/tablewarden/pkg/checksum"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
	"github.com/tablewarden/tablewarden/pkg/metadata"
	"github.com/tablewarden/tablewarden/pkg/snapshot"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

// Engine orchestrates snapshot, artifact, and metadata writes for a
// source. It is synchronous; concurrency control is per-source mutual
// exclusion, nothing more.
type Engine struct {
	snapshots *snapshot.Store
	registry  *metadata.Registry
	artifacts *artifact.Store

	locks *lockTable
	wait  bool
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLockWait makes a call for a busy source block (bounded by its
// context) instead of failing fast with ErrInProgress.
func WithLockWait() Option {
	return func(e *Engine) { e.wait = true }
}

// WithClock overrides the time source. Tests use it to pin created_date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an engine over the three stores.
func New(snapshots *snapshot.Store, registry *metadata.Registry, artifacts *artifact.Store, opts ...Option) *Engine {
	e := &Engine{
		snapshots: snapshots,
		registry:  registry,
		artifacts: artifacts,
		locks:     newLockTable(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile merges freshly fetched rows into the source's snapshots and
// regenerates its artifact. Zero sheets is a valid no-op. The commit
// order is snapshot, then artifact, then metadata, so a crash
// mid-sequence leaves the snapshot at least as current as the artifact.
func (e *Engine) Reconcile(ctx context.Context, source string, sheets []SheetRows) (*Result, error) {
	release, err := e.locks.acquire(ctx, source, e.wait)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &Result{Source: source}
	if len(sheets) == 0 {
		return result, nil
	}

	for _, sheet := range sheets {
		if sheet.Rows.Empty() || len(sheet.Rows.Columns) == 0 {
			return nil, &errors.SchemaError{
				Source:  source,
				Sheet:   sheet.Sheet,
				Message: "fetched rows must be non-empty and carry at least one column",
			}
		}
	}

	// One tamper check per artifact file, shared by all its sheets.
	tampered, err := e.tampered(source)
	if err != nil {
		return nil, err
	}
	result.Tampered = tampered
	if tampered {
		logging.Ctx(ctx).Warn().Str("source", source).Msg("artifact was edited outside the engine since last write")
	}

	today := e.now().Format(tables.DateLayout)
	rendered := make([]artifact.Sheet, 0, len(sheets))
	sheetNames := make([]string, 0, len(sheets))

	for _, sheet := range sheets {
		snap, sheetResult, err := e.reconcileSheet(ctx, source, sheet, today)
		if err != nil {
			return nil, err
		}

		render := snap
		if tampered {
			render, err = e.reattachCustomColumns(source, sheet.Sheet, snap)
			if err != nil {
				return nil, err
			}
		}

		rendered = append(rendered, artifact.Sheet{Name: sheet.Sheet, Table: render})
		sheetNames = append(sheetNames, sheet.Sheet)
		result.Sheets = append(result.Sheets, sheetResult)
	}

	if err := e.artifacts.Write(source, rendered); err != nil {
		return nil, err
	}

	if err := e.recordWrite(source, sheetNames); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("source", source).
		Int("total_rows", result.TotalRows()).
		Int("new_rows", result.NewRows()).
		Bool("tampered", result.Tampered).
		Msg("reconciled")
	return result, nil
}

// reconcileSheet runs change detection and merge for one sheet and
// persists the resulting snapshot. Returns the new snapshot for
// rendering.
func (e *Engine) reconcileSheet(ctx context.Context, source string, sheet SheetRows, today string) (*tables.Table, SheetResult, error) {
	stamped := sheet.Rows.Stamp(today)

	existing, err := e.snapshots.Read(source, sheet.Sheet)
	if err != nil {
		return nil, SheetResult{}, err
	}

	// Bootstrap: no snapshot yet, fetched rows become it verbatim.
	if existing == nil || existing.Empty() {
		if err := e.snapshots.Write(source, sheet.Sheet, stamped); err != nil {
			return nil, SheetResult{}, err
		}
		return stamped, SheetResult{
			Sheet:     sheet.Sheet,
			TotalRows: stamped.Len(),
			NewRows:   stamped.Len(),
			Added:     stamped,
		}, nil
	}

	// Snapshots written before the created_date column existed get it
	// backfilled with today before comparison.
	backfilled := !existing.HasColumn(tables.CreatedDateColumn)
	existing = existing.FillStamp(today)

	if tables.Equal(stamped, existing) {
		if backfilled {
			if err := e.snapshots.Write(source, sheet.Sheet, existing); err != nil {
				return nil, SheetResult{}, err
			}
		}
		return existing, SheetResult{
			Sheet:     sheet.Sheet,
			TotalRows: existing.Len(),
			Added:     tables.New(existing.Columns...),
		}, nil
	}

	newKeys := tables.NewKeys(stamped, existing)

	var snap, added *tables.Table
	if len(newKeys) > 0 {
		// Additive merge: append only the rows with unseen keys.
		// Pre-existing keys keep their snapshot values even when the
		// fetch changed their fields.
		keySet := make(map[string]struct{}, len(newKeys))
		for _, k := range newKeys {
			keySet[k] = struct{}{}
		}
		added = stamped.FilterKeys(keySet)
		snap = existing.Concat(added)
	} else {
		// Every fetched key already existed but some field changed:
		// the fetch replaces the snapshot wholesale, original
		// created_date values included. Keys absent from the fetch
		// drop out here.
		logging.Ctx(ctx).Info().
			Str("source", source).
			Str("sheet", sheet.Sheet).
			Msg("changed rows without new keys, replacing snapshot with fetched data")
		added = tables.New(stamped.Columns...)
		snap = stamped
	}

	if err := e.snapshots.Write(source, sheet.Sheet, snap); err != nil {
		return nil, SheetResult{}, err
	}

	return snap, SheetResult{
		Sheet:     sheet.Sheet,
		TotalRows: snap.Len(),
		NewRows:   len(newKeys),
		Added:     added,
	}, nil
}

// tampered compares the artifact's current digest with the one recorded
// at the engine's last write. No artifact or no metadata entry means no
// verdict, so no tampering.
func (e *Engine) tampered(source string) (bool, error) {
	if !e.artifacts.Exists(source) {
		return false, nil
	}
	entry, ok := e.registry.Get(source)
	if !ok {
		return false, nil
	}
	current, err := checksum.File(e.artifacts.Path(source))
	if err != nil {
		return false, err
	}
	return current != entry.Checksum, nil
}

// reattachCustomColumns reads the tampered artifact's current rendering
// of a sheet and applies any columns the snapshot lacks onto the table
// to render, keyed by unique key. Keys the user never annotated get
// empty cells.
func (e *Engine) reattachCustomColumns(source, sheet string, snap *tables.Table) (*tables.Table, error) {
	current, err := e.artifacts.Read(source, sheet)
	if err != nil {
		logging.Warn().Err(err).Str("source", source).Str("sheet", sheet).
			Msg("could not read edited artifact, custom columns will be lost")
		return snap, nil
	}
	if current == nil || current.Empty() {
		return snap, nil
	}

	render := snap
	for _, col := range current.Columns {
		if snap.HasColumn(col) {
			continue
		}
		logging.Info().
			Str("source", source).
			Str("sheet", sheet).
			Str("column", col).
			Msg("preserving custom column")
		render = render.SetColumn(col, current.KeyValues(col))
	}
	return render, nil
}

// recordWrite stamps the registry with the digest of the artifact bytes
// just written.
func (e *Engine) recordWrite(source string, sheetNames []string) error {
	digest, err := checksum.File(e.artifacts.Path(source))
	if err != nil {
		return err
	}
	return e.registry.RecordWrite(source, digest, sheetNames)
}
