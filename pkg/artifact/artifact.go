// Package artifact renders snapshots into the user-facing spreadsheet,
// one workbook per source with one sheet per table. The workbook is
// derived state: it is regenerated wholesale on every reconciliation
// and may be hand-edited between runs.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

// textNumFmt is the built-in "@" (text) number format, applied to the
// first two columns so identifier-like values keep their leading zeros
// and never collapse into scientific notation.
const textNumFmt = 49

// Sheet pairs a sheet name with the table to render into it.
type Sheet struct {
	Name  string
	Table *tables.Table
}

// Store reads and writes source workbooks under a single directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the workbook path for a source.
func (s *Store) Path(source string) string {
	return filepath.Join(s.dir, source+constants.ArtifactExtension)
}

// Exists reports whether the source's workbook is on disk.
func (s *Store) Exists(source string) bool {
	_, err := os.Stat(s.Path(source))
	return err == nil
}

// Write renders all sheets into the source's workbook, replacing any
// previous file. Every cell is written as a string; the first two
// columns additionally carry the text number format.
func (s *Store) Write(source string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return &errors.ArtifactWriteError{Source: source, Err: errors.New("no sheets to render")}
	}
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return &errors.ArtifactWriteError{Source: source, Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return &errors.ArtifactWriteError{Source: source, Sheet: sheet.Name, Err: err}
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return &errors.ArtifactWriteError{Source: source, Sheet: sheet.Name, Err: err}
			}
		}
		if err := s.renderSheet(f, sheet); err != nil {
			return &errors.ArtifactWriteError{Source: source, Sheet: sheet.Name, Err: err}
		}
	}

	path := s.Path(source)
	if err := f.SaveAs(path); err != nil {
		return &errors.ArtifactWriteError{Source: source, Err: err}
	}

	logging.Debug().
		Str("source", source).
		Int("sheets", len(sheets)).
		Str("path", path).
		Msg("artifact written")
	return nil
}

// renderSheet writes one table into a named sheet.
func (s *Store) renderSheet(f *excelize.File, sheet Sheet) error {
	table := sheet.Table.NormalizeIdentifiers()

	for col, name := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet.Name, cell, name); err != nil {
			return err
		}
	}

	for rowIdx, row := range table.Rows {
		for col, name := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet.Name, cell, row.Get(name)); err != nil {
				return err
			}
		}
	}

	// Text format on the first two columns, data rows only.
	if len(table.Columns) >= 1 && table.Len() > 0 {
		styleID, err := f.NewStyle(&excelize.Style{NumFmt: textNumFmt})
		if err != nil {
			return err
		}
		lastCol := "A"
		if len(table.Columns) >= 2 {
			lastCol = "B"
		}
		start := "A2"
		end := fmt.Sprintf("%s%d", lastCol, table.Len()+1)
		if err := f.SetCellStyle(sheet.Name, start, end, styleID); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the current rendering of one sheet as an all-string
// table, used to capture user-added columns before regeneration.
// A missing workbook or sheet returns (nil, nil).
func (s *Store) Read(source, sheet string) (*tables.Table, error) {
	path := s.Path(source)
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if len(rows) == 0 {
		return tables.New(), nil
	}

	table := tables.New(rows[0]...)
	for _, cells := range rows[1:] {
		row := make(tables.Row, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		table.Append(row)
	}
	return table, nil
}

// SheetNames lists the sheets in a source's workbook, nil when the
// workbook does not exist.
func (s *Store) SheetNames(source string) ([]string, error) {
	path := s.Path(source)
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
