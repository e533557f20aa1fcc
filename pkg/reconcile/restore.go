package reconcile

import (
	"context"

	"github.com/tablewarden/tablewarden/pkg/artifact"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

// ForceRestore regenerates the source's artifact from its snapshots,
// unconditionally discarding any manual edits and custom columns, then
// records fresh metadata. For operators who want the spreadsheet back
// to the engine's truth regardless of tamper status.
func (e *Engine) ForceRestore(ctx context.Context, source string, sheetNames []string) error {
	release, err := e.locks.acquire(ctx, source, e.wait)
	if err != nil {
		return err
	}
	defer release()

	if len(sheetNames) == 0 {
		if entry, ok := e.registry.Get(source); ok {
			sheetNames = entry.SheetNames
		}
	}
	if len(sheetNames) == 0 {
		sheetNames, err = e.snapshots.List(source)
		if err != nil {
			return err
		}
	}
	if len(sheetNames) == 0 {
		return errors.WrapSource(source, "restore", errors.ErrNotFound)
	}

	rendered := make([]artifact.Sheet, 0, len(sheetNames))
	written := make([]string, 0, len(sheetNames))
	for _, name := range sheetNames {
		snap, err := e.snapshots.Read(source, name)
		if err != nil {
			return err
		}
		if snap == nil {
			logging.Ctx(ctx).Warn().Str("source", source).Str("sheet", name).
				Msg("no snapshot for sheet, skipping in restore")
			continue
		}
		rendered = append(rendered, artifact.Sheet{Name: name, Table: snap})
		written = append(written, name)
	}
	if len(rendered) == 0 {
		return errors.WrapSource(source, "restore", errors.ErrNotFound)
	}

	if err := e.artifacts.Write(source, rendered); err != nil {
		return err
	}
	if err := e.recordWrite(source, written); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("source", source).
		Strs("sheets", written).
		Msg("artifact force-restored from snapshots")
	return nil
}
