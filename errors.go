package sqlkv

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// EngineError wraps a failure surfaced by the storage engine: I/O errors,
// constraint violations, and other statement failures.
type EngineError struct{ Err error }

// Error implements the error interface.
func (e *EngineError) Error() string { return "storage engine: " + e.Err.Error() }

// Unwrap returns the underlying engine error.
func (e *EngineError) Unwrap() error { return e.Err }

// BusyError indicates the engine's write lock could not be obtained within
// the bounded wait of Config.BusyTimeout. The caller may retry; the store
// itself never does.
type BusyError struct{ Err error }

// Error implements the error interface.
func (e *BusyError) Error() string { return "storage engine busy: " + e.Err.Error() }

// Unwrap returns the underlying engine error.
func (e *BusyError) Unwrap() error { return e.Err }

// PoolError indicates a pooled connection could not be acquired within the
// bounded wait of Config.AcquireTimeout.
type PoolError struct{ Err error }

// Error implements the error interface.
func (e *PoolError) Error() string { return "connection pool: " + e.Err.Error() }

// Unwrap returns the underlying acquisition error.
func (e *PoolError) Unwrap() error { return e.Err }

// classify maps an engine failure into the store's error taxonomy.
// A nil error maps to nil.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &BusyError{Err: err}
		}
	}
	return &EngineError{Err: err}
}
