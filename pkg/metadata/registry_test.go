package metadata_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewarden/tablewarden/pkg/metadata"
)

func TestLoadAbsentIsEmpty(t *testing.T) {
	reg := metadata.NewRegistry(filepath.Join(t.TempDir(), "metadata.json"))

	entries := reg.Load()

	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLoadCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	reg := metadata.NewRegistry(path)

	assert.Empty(t, reg.Load())
}

func TestRecordWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	reg := metadata.NewRegistry(path)

	require.NoError(t, reg.RecordWrite("acme", "abc123", []string{"data"}))
	require.NoError(t, reg.RecordWrite("globex", "def456", []string{"Table_1", "Table_2"}))

	entries := reg.Load()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc123", entries["acme"].Checksum)
	assert.Equal(t, []string{"Table_1", "Table_2"}, entries["globex"].SheetNames)
	assert.False(t, entries["acme"].LastUpdated.IsZero())

	entry, ok := reg.Get("acme")
	require.True(t, ok)
	assert.Equal(t, "abc123", entry.Checksum)

	_, ok = reg.Get("unknown")
	assert.False(t, ok)
}

func TestRecordWriteOverwritesEntry(t *testing.T) {
	reg := metadata.NewRegistry(filepath.Join(t.TempDir(), "metadata.json"))

	require.NoError(t, reg.RecordWrite("acme", "old", []string{"data"}))
	require.NoError(t, reg.RecordWrite("acme", "new", []string{"data"}))

	entry, ok := reg.Get("acme")
	require.True(t, ok)
	assert.Equal(t, "new", entry.Checksum)
}

func TestSaveFailurePreservesPriorFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")
	reg := metadata.NewRegistry(path)
	require.NoError(t, reg.RecordWrite("acme", "abc123", []string{"data"}))

	// Make the directory unwritable so the temp file cannot be created.
	require.NoError(t, os.Chmod(dir, 0555))
	defer os.Chmod(dir, 0755)

	err := reg.RecordWrite("acme", "zzz", []string{"data"})
	require.Error(t, err)

	require.NoError(t, os.Chmod(dir, 0755))
	entry, ok := reg.Get("acme")
	require.True(t, ok)
	assert.Equal(t, "abc123", entry.Checksum)
}

func TestConcurrentRecordWrites(t *testing.T) {
	reg := metadata.NewRegistry(filepath.Join(t.TempDir(), "metadata.json"))

	var wg sync.WaitGroup
	sources := []string{"a", "b", "c", "d"}
	for _, src := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_ = reg.RecordWrite(src, "digest-"+src, []string{"data"})
			}
		}(src)
	}
	wg.Wait()

	entries := reg.Load()
	require.Len(t, entries, len(sources))
	for _, src := range sources {
		assert.Equal(t, "digest-"+src, entries[src].Checksum)
	}
}
