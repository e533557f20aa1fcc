// Package constants provides shared constants used throughout the
// tablewarden codebase: timeouts, file permissions, and on-disk layout
// names that must stay consistent across packages.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for fetching a source page
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRunTimeout bounds a full multi-source batch run
	DefaultRunTimeout = 10 * time.Minute

	// DefaultLockWait is how long a blocking caller waits for a source lock
	DefaultLockWait = 30 * time.Second

	// ServerShutdownTimeout is the grace period for draining the dashboard server
	ServerShutdownTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// On-disk layout names
const (
	// SnapshotsDirName is the subdirectory of the data directory holding
	// the authoritative per-sheet CSV snapshots
	SnapshotsDirName = "snapshots"

	// MetadataFileName is the registry file covering all sources
	MetadataFileName = "metadata.json"

	// ArtifactExtension is the spreadsheet file extension
	ArtifactExtension = ".xlsx"
)

// Data model constants
const (
	// DefaultSheetName is used when a source page yields a single table
	DefaultSheetName = "data"
)

// Limit constants
const (
	// MaxParallelSources caps how many sources reconcile concurrently
	MaxParallelSources = 4

	// DefaultFetchRate is the sustained request rate against source pages
	DefaultFetchRate = 1 // requests per second
)
