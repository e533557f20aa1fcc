package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewarden/tablewarden/pkg/snapshot"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

func testTable(rows ...[]string) *tables.Table {
	table := tables.New("id", "kvk", "name")
	for _, cells := range rows {
		table.Append(tables.Row{"id": cells[0], "kvk": cells[1], "name": cells[2]})
	}
	return table
}

func TestReadAbsentIsNil(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())

	table, err := store.Read("acme", "data")

	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())
	in := testTable(
		[]string{"001", "12345678", "Alice"},
		[]string{"002", "87654321", "Bob"},
	)

	require.NoError(t, store.Write("acme", "data", in))

	out, err := store.Read("acme", "data")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, []string{"id", "kvk", "name"}, out.Columns)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, "Alice", out.Rows[0].Get("name"))
}

func TestWriteNormalizesIdentifierColumn(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())
	in := testTable([]string{" 001 ", "123456.0", "Alice"})

	require.NoError(t, store.Write("acme", "data", in))

	out, err := store.Read("acme", "data")
	require.NoError(t, err)
	assert.Equal(t, "001", out.Rows[0].Get("id"))
	assert.Equal(t, "00123456", out.Rows[0].Get("kvk"))
}

func TestWriteReplacesWholesale(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())
	require.NoError(t, store.Write("acme", "data", testTable(
		[]string{"001", "11111111", "Alice"},
		[]string{"002", "22222222", "Bob"},
	)))

	require.NoError(t, store.Write("acme", "data", testTable(
		[]string{"003", "33333333", "Carol"},
	)))

	out, err := store.Read("acme", "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"003"}, out.Keys())
}

func TestLeadingZerosSurviveRoundTrip(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())
	require.NoError(t, store.Write("acme", "data", testTable(
		[]string{"001", "00012345", "Alice"},
	)))

	out, err := store.Read("acme", "data")
	require.NoError(t, err)
	assert.Equal(t, "00012345", out.Rows[0].Get("kvk"))
}

func TestListAndListAll(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())
	require.NoError(t, store.Write("acme", "Table_2", testTable([]string{"001", "1", "a"})))
	require.NoError(t, store.Write("acme", "Table_1", testTable([]string{"001", "1", "a"})))
	require.NoError(t, store.Write("globex", "data", testTable([]string{"001", "1", "a"})))

	sheets, err := store.List("acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Table_1", "Table_2"}, sheets)

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"acme":   {"Table_1", "Table_2"},
		"globex": {"data"},
	}, all)

	none, err := store.List("unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
