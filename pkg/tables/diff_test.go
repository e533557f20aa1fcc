package tables_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablewarden/tablewarden/pkg/tables"
)

func TestEqualIgnoresCreatedDateAndOrder(t *testing.T) {
	a := newTable(t, []string{"id", "name", tables.CreatedDateColumn},
		[]string{"002", "Bob", "2026-08-31"},
		[]string{"001", "Alice", "2026-08-31"},
	)
	b := newTable(t, []string{"id", "name", tables.CreatedDateColumn},
		[]string{"001", "Alice", "2025-01-15"},
		[]string{"002", "Bob", "2025-01-15"},
	)

	assert.True(t, tables.Equal(a, b))
}

func TestEqualDetectsFieldChange(t *testing.T) {
	a := newTable(t, []string{"id", "name"},
		[]string{"001", "Alice"},
		[]string{"002", "Bob"},
	)
	b := newTable(t, []string{"id", "name"},
		[]string{"001", "Alice"},
		[]string{"002", "Bobby"},
	)

	assert.False(t, tables.Equal(a, b))
}

func TestEqualDetectsRowCountChange(t *testing.T) {
	a := newTable(t, []string{"id"}, []string{"001"})
	b := newTable(t, []string{"id"}, []string{"001"}, []string{"002"})

	assert.False(t, tables.Equal(a, b))
}

func TestEqualEmptyTables(t *testing.T) {
	assert.True(t, tables.Equal(tables.New("id"), tables.New("id")))
	assert.False(t, tables.Equal(tables.New("id"), newTable(t, []string{"id"}, []string{"001"})))
}

func TestNewKeys(t *testing.T) {
	existing := newTable(t, []string{"id"}, []string{"001"}, []string{"002"})
	fetched := newTable(t, []string{"id"},
		[]string{"002"},
		[]string{"003"},
		[]string{"004"},
		[]string{"003"}, // duplicate fetch rows count once
	)

	assert.Equal(t, []string{"003", "004"}, tables.NewKeys(fetched, existing))
}

func TestNewKeysNoneNew(t *testing.T) {
	existing := newTable(t, []string{"id"}, []string{"001"})
	fetched := newTable(t, []string{"id"}, []string{"001"})

	assert.Empty(t, tables.NewKeys(fetched, existing))
}
