package tables_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewarden/tablewarden/pkg/tables"
)

func newTable(t *testing.T, columns []string, rows ...[]string) *tables.Table {
	t.Helper()
	table := tables.New(columns...)
	for _, cells := range rows {
		require.Len(t, cells, len(columns))
		row := make(tables.Row, len(columns))
		for i, col := range columns {
			row[col] = cells[i]
		}
		table.Append(row)
	}
	return table
}

func TestKeyColumn(t *testing.T) {
	table := newTable(t, []string{"id", "name"}, []string{"001", "Alice"})

	key, err := table.KeyColumn()
	require.NoError(t, err)
	assert.Equal(t, "id", key)
}

func TestKeyColumnNoColumns(t *testing.T) {
	table := tables.New()

	_, err := table.KeyColumn()
	assert.Error(t, err)
}

func TestStampOverwritesAndAppendsColumn(t *testing.T) {
	table := newTable(t, []string{"id", "name"}, []string{"001", "Alice"})

	stamped := table.Stamp("2026-08-31")

	assert.True(t, stamped.HasColumn(tables.CreatedDateColumn))
	assert.Equal(t, "2026-08-31", stamped.Rows[0].Get(tables.CreatedDateColumn))
	// original untouched
	assert.False(t, table.HasColumn(tables.CreatedDateColumn))

	restamped := stamped.Stamp("2026-09-01")
	assert.Equal(t, "2026-09-01", restamped.Rows[0].Get(tables.CreatedDateColumn))
	assert.Len(t, restamped.Columns, 3)
}

func TestFillStampOnlyFillsMissing(t *testing.T) {
	table := newTable(t,
		[]string{"id", tables.CreatedDateColumn},
		[]string{"001", "2025-01-01"},
		[]string{"002", ""},
	)

	filled := table.FillStamp("2026-08-31")

	assert.Equal(t, "2025-01-01", filled.Rows[0].Get(tables.CreatedDateColumn))
	assert.Equal(t, "2026-08-31", filled.Rows[1].Get(tables.CreatedDateColumn))
}

func TestConcatUnionsColumns(t *testing.T) {
	a := newTable(t, []string{"id", "name"}, []string{"001", "Alice"})
	b := newTable(t, []string{"id", "city"}, []string{"002", "Delft"})

	out := a.Concat(b)

	assert.Equal(t, []string{"id", "name", "city"}, out.Columns)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, "", out.Rows[1].Get("name"))
	assert.Equal(t, "Delft", out.Rows[1].Get("city"))
}

func TestFilterKeysPreservesOrder(t *testing.T) {
	table := newTable(t, []string{"id", "name"},
		[]string{"003", "Carol"},
		[]string{"001", "Alice"},
		[]string{"002", "Bob"},
	)

	subset := table.FilterKeys(map[string]struct{}{"002": {}, "003": {}})

	assert.Equal(t, []string{"003", "002"}, subset.Keys())
}

func TestSetColumnAttachesByKey(t *testing.T) {
	table := newTable(t, []string{"id", "name"},
		[]string{"001", "Alice"},
		[]string{"002", "Bob"},
	)

	out := table.SetColumn("Notes", map[string]string{"001": "VIP"})

	assert.True(t, out.HasColumn("Notes"))
	assert.Equal(t, "VIP", out.Rows[0].Get("Notes"))
	assert.Equal(t, "", out.Rows[1].Get("Notes"))
}

func TestKeyValues(t *testing.T) {
	table := newTable(t, []string{"id", "Notes"},
		[]string{"001", "VIP"},
		[]string{"002", ""},
	)

	byKey := table.KeyValues("Notes")
	assert.Equal(t, map[string]string{"001": "VIP", "002": ""}, byKey)
}
