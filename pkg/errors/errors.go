// Package errors provides the error types used across tablewarden.
// Sentinel errors support programmatic checks with errors.Is; typed
// errors carry the context (source, path, sheet) a caller needs to
// isolate one data source's failure from the rest of a run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the tablewarden system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInProgress indicates a reconciliation is already running for the source
	ErrInProgress = errors.New("reconciliation in progress")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrDisabled indicates a component is not configured and was skipped
	ErrDisabled = errors.New("disabled")
)

// IOError represents an error during I/O operations on snapshot,
// artifact, or metadata files.
type IOError struct {
	Operation string // "read", "write", "create", "delete"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// MetadataWriteError indicates the metadata registry could not be saved.
// The previous on-disk registry is preserved when this is returned.
type MetadataWriteError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *MetadataWriteError) Error() string {
	return fmt.Sprintf("metadata registry write failed for %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MetadataWriteError) Unwrap() error {
	return e.Err
}

// ArtifactWriteError indicates rendering or writing a spreadsheet failed.
type ArtifactWriteError struct {
	Source string
	Sheet  string
	Err    error
}

// Error implements the error interface
func (e *ArtifactWriteError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("artifact write failed for source %s sheet %s: %v", e.Source, e.Sheet, e.Err)
	}
	return fmt.Sprintf("artifact write failed for source %s: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ArtifactWriteError) Unwrap() error {
	return e.Err
}

// SchemaError indicates fetched rows lack the columns needed to derive
// a unique key.
type SchemaError struct {
	Source  string
	Sheet   string
	Message string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("schema violation for source %s sheet %s: %s", e.Source, e.Sheet, e.Message)
	}
	return fmt.Sprintf("schema violation for source %s: %s", e.Source, e.Message)
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InProgressError indicates a second reconciliation was attempted for a
// source while one was already running.
type InProgressError struct {
	Source string
}

// Error implements the error interface
func (e *InProgressError) Error() string {
	return fmt.Sprintf("reconciliation already in progress for source %s", e.Source)
}

// Is implements errors.Is support
func (e *InProgressError) Is(target error) bool {
	return target == ErrInProgress
}

// SourceError wraps a failure scoped to one named data source, so a
// multi-source run can report it without aborting the other sources.
type SourceError struct {
	Source    string
	Operation string // "fetch", "reconcile", "restore"
	Err       error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s failed for source %s: %v", e.Operation, e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SourceError) Unwrap() error {
	return e.Err
}

// WrapSource wraps an error as a SourceError
func WrapSource(source, operation string, err error) error {
	return &SourceError{Source: source, Operation: operation, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv", "html"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInProgress checks if an error signals lock contention on a source
func IsInProgress(err error) bool {
	return errors.Is(err, ErrInProgress)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}
