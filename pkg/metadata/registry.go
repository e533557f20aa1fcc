// Package metadata persists the per-source registry used for tamper
// detection: the digest of each artifact at the engine's last write,
// when it was written, and which sheets it contains.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

// Entry records the state of one source's artifact at the engine's
// last write to it.
type Entry struct {
	Checksum    string    `json:"checksum"`
	LastUpdated time.Time `json:"last_updated"`
	SheetNames  []string  `json:"sheet_names"`
}

// Registry is the durable source-name to Entry mapping, stored as one
// JSON file covering all sources. Saves rewrite the whole file and are
// serialized process-wide.
type Registry struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

// NewRegistry returns a registry backed by the given file path.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, now: time.Now}
}

// Path returns the backing file path.
func (r *Registry) Path() string {
	return r.path
}

// Load reads the full registry. An absent or unparsable file degrades
// to an empty mapping: losing the tamper-detection signal is preferable
// to halting ingestion.
func (r *Registry) Load() map[string]Entry {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", r.path).Msg("failed to read metadata registry, treating as empty")
		}
		return map[string]Entry{}
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn().Err(err).Str("path", r.path).Msg("corrupt metadata registry, treating as empty")
		return map[string]Entry{}
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return entries
}

// Get returns one source's entry and whether it exists.
func (r *Registry) Get(source string) (Entry, bool) {
	entry, ok := r.Load()[source]
	return entry, ok
}

// Save serializes the whole mapping atomically (write temp, then
// rename). A failure leaves the previous on-disk copy intact and
// surfaces as a MetadataWriteError.
func (r *Registry) Save(entries map[string]Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(entries)
}

func (r *Registry) saveLocked(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return &errors.MetadataWriteError{Path: r.path, Err: err}
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return &errors.MetadataWriteError{Path: r.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "metadata-*.json")
	if err != nil {
		return &errors.MetadataWriteError{Path: r.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &errors.MetadataWriteError{Path: r.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &errors.MetadataWriteError{Path: r.path, Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return &errors.MetadataWriteError{Path: r.path, Err: err}
	}
	return nil
}

// RecordWrite merges one source's entry with the current timestamp and
// persists the registry.
func (r *Registry) RecordWrite(source, digest string, sheetNames []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.Load()
	entries[source] = Entry{
		Checksum:    digest,
		LastUpdated: r.now().UTC(),
		SheetNames:  append([]string(nil), sheetNames...),
	}
	return r.saveLocked(entries)
}
