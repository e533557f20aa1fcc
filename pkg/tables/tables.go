// Package tables provides the in-memory model for tabular data moving
// through tablewarden: ordered string columns, string cells, and the
// first-column unique key every snapshot is reconciled by.
package tables

import (
	"github.com/tablewarden/tablewarden/pkg/errors"
)

// CreatedDateColumn is stamped on every record entering a snapshot and
// excluded from change detection.
const CreatedDateColumn = "created_date"

// DateLayout is the calendar-date format used for created_date values.
const DateLayout = "2006-01-02"

// Row maps column name to cell value. All cells are strings; numeric
// interpretation is never applied after ingestion.
type Row map[string]string

// Get returns the cell value for a column, empty string when absent.
func (r Row) Get(column string) string {
	return r[column]
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of rows sharing one column schema.
// The first column's value is the unique key of each row.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given column schema.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// KeyColumn returns the name of the first column, which serves as the
// unique identifier for reconciliation.
func (t *Table) KeyColumn() (string, error) {
	if t == nil || len(t.Columns) == 0 {
		return "", &errors.SchemaError{Message: "table has no columns to derive a unique key from"}
	}
	return t.Columns[0], nil
}

// HasColumn reports whether the table's schema contains the column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Keys returns the unique-key values in row order.
func (t *Table) Keys() []string {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}
	key := t.Columns[0]
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, row.Get(key))
	}
	return out
}

// KeySet returns the unique-key values as a set.
func (t *Table) KeySet() map[string]struct{} {
	keys := t.Keys()
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := New(t.Columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, row.Clone())
	}
	return out
}

// Stamp returns a copy of the table with a created_date column holding
// the given date on every row. An existing created_date column is
// overwritten; the column is appended to the schema when absent.
func (t *Table) Stamp(date string) *Table {
	out := t.Clone()
	if !out.HasColumn(CreatedDateColumn) {
		out.Columns = append(out.Columns, CreatedDateColumn)
	}
	for _, row := range out.Rows {
		row[CreatedDateColumn] = date
	}
	return out
}

// FillStamp returns a copy of the table with a created_date column added
// and set to the given date only where the column or value was missing.
// Used to backfill snapshots written before the column existed.
func (t *Table) FillStamp(date string) *Table {
	out := t.Clone()
	if !out.HasColumn(CreatedDateColumn) {
		out.Columns = append(out.Columns, CreatedDateColumn)
	}
	for _, row := range out.Rows {
		if row[CreatedDateColumn] == "" {
			row[CreatedDateColumn] = date
		}
	}
	return out
}

// Concat returns a new table holding t's rows followed by other's rows.
// The schema is t's columns plus any of other's columns t lacks; cells
// absent from a row render as empty strings.
func (t *Table) Concat(other *Table) *Table {
	out := t.Clone()
	if other == nil {
		return out
	}
	for _, c := range other.Columns {
		if !out.HasColumn(c) {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, row := range other.Rows {
		out.Rows = append(out.Rows, row.Clone())
	}
	return out
}

// FilterKeys returns the subset of rows whose unique key is in keys,
// preserving row order.
func (t *Table) FilterKeys(keys map[string]struct{}) *Table {
	out := New(t.Columns...)
	if len(t.Columns) == 0 {
		return out
	}
	key := t.Columns[0]
	for _, row := range t.Rows {
		if _, ok := keys[row.Get(key)]; ok {
			out.Append(row.Clone())
		}
	}
	return out
}

// KeyValues builds a unique-key to value mapping for one column.
// Later rows win on duplicate keys.
func (t *Table) KeyValues(column string) map[string]string {
	out := make(map[string]string)
	if t == nil || len(t.Columns) == 0 {
		return out
	}
	key := t.Columns[0]
	for _, row := range t.Rows {
		out[row.Get(key)] = row.Get(column)
	}
	return out
}

// SetColumn returns a copy of the table with the named column set per
// the key-indexed values; rows without a matching key get empty cells.
// The column is appended to the schema when absent.
func (t *Table) SetColumn(column string, byKey map[string]string) *Table {
	out := t.Clone()
	if !out.HasColumn(column) {
		out.Columns = append(out.Columns, column)
	}
	key := out.Columns[0]
	for _, row := range out.Rows {
		row[column] = byKey[row.Get(key)]
	}
	return out
}
