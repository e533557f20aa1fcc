package tables

import "sort"

// Equal reports whether two tables contain the same data, ignoring the
// created_date column. Both tables are compared sorted by unique key:
// equal iff they have the same row and column counts and, for every
// column present in both schemas, the sorted sequences of string values
// are identical.
func Equal(a, b *Table) bool {
	if a.Empty() && b.Empty() {
		return true
	}
	if a.Empty() || b.Empty() {
		return false
	}

	ac := dropColumn(a, CreatedDateColumn)
	bc := dropColumn(b, CreatedDateColumn)

	if len(ac.Rows) != len(bc.Rows) || len(ac.Columns) != len(bc.Columns) {
		return false
	}

	aSorted := sortByKey(ac)
	bSorted := sortByKey(bc)

	for _, col := range aSorted.Columns {
		if !bSorted.HasColumn(col) {
			continue
		}
		for i := range aSorted.Rows {
			if aSorted.Rows[i].Get(col) != bSorted.Rows[i].Get(col) {
				return false
			}
		}
	}
	return true
}

// NewKeys returns the unique keys present in fetched but absent from
// existing, in fetched row order.
func NewKeys(fetched, existing *Table) []string {
	have := existing.KeySet()
	var out []string
	seen := make(map[string]struct{})
	for _, k := range fetched.Keys() {
		if _, ok := have[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// dropColumn returns a copy of the table without the named column.
func dropColumn(t *Table, name string) *Table {
	if !t.HasColumn(name) {
		return t.Clone()
	}
	out := &Table{}
	for _, c := range t.Columns {
		if c != name {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, row := range t.Rows {
		nr := make(Row, len(row))
		for k, v := range row {
			if k != name {
				nr[k] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// sortByKey returns a copy of the table with rows ordered by unique key.
func sortByKey(t *Table) *Table {
	out := t.Clone()
	if len(out.Columns) == 0 {
		return out
	}
	key := out.Columns[0]
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].Get(key) < out.Rows[j].Get(key)
	})
	return out
}
