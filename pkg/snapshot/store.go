// Package snapshot persists the authoritative record sets: one CSV file
// per (source, sheet), written wholesale and read back as all-string
// tables. The spreadsheet artifact is derived from these files, never
// the other way around.
package snapshot

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

// Store reads and writes snapshots under a single directory, one
// subdirectory per source holding one CSV per sheet.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// path builds the snapshot file path for a (source, sheet) pair.
func (s *Store) path(source, sheet string) string {
	return filepath.Join(s.dir, source, sheet+".csv")
}

// Read loads the snapshot for a (source, sheet) pair. An absent file
// returns (nil, nil): it signals first ingestion, not an error.
func (s *Store) Read(source, sheet string) (*tables.Table, error) {
	path := s.path(source, sheet)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &errors.ParseError{Format: "csv", File: path, Message: "malformed snapshot", Err: err}
	}
	if len(records) == 0 {
		return tables.New(), nil
	}

	table := tables.New(records[0]...)
	for _, cells := range records[1:] {
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

// Write replaces the snapshot for a (source, sheet) pair wholesale.
// Cell values are normalized to text first, so round-tripping never
// reintroduces numeric or locale ambiguity.
func (s *Store) Write(source, sheet string, table *tables.Table) error {
	dir := filepath.Join(s.dir, source)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	normalized := table.NormalizeIdentifiers()
	path := s.path(source, sheet)

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("write", path, err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(normalized.Columns); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	for _, row := range normalized.Rows {
		cells := make([]string, len(normalized.Columns))
		for i, col := range normalized.Columns {
			cells[i] = row.Get(col)
		}
		if err := writer.Write(cells); err != nil {
			f.Close()
			return errors.WrapIO("write", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}

	logging.Debug().
		Str("source", source).
		Str("sheet", sheet).
		Int("rows", normalized.Len()).
		Msg("snapshot written")
	return nil
}

// List returns the sheet names that have a snapshot for the source,
// sorted for stable output.
func (s *Store) List(source string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, source))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", filepath.Join(s.dir, source), err)
	}

	var sheets []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		sheets = append(sheets, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(sheets)
	return sheets, nil
}

// ListAll enumerates every stored snapshot as source → sheet names.
func (s *Store) ListAll() (map[string][]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, errors.WrapIO("read", s.dir, err)
	}

	out := make(map[string][]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sheets, err := s.List(entry.Name())
		if err != nil {
			return nil, err
		}
		if len(sheets) > 0 {
			out[entry.Name()] = sheets
		}
	}
	return out, nil
}
