package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation is attempted on a
	// closed or never-opened store.
	ErrNotConnected = errors.New("store not connected")
	// ErrNotFound is returned when a requested metadata key doesn't exist.
	ErrNotFound = errors.New("not found")
)

// StorageError wraps a failure in the persistence layer with the operation
// that produced it. Callers can inspect it with errors.As to distinguish
// storage faults from query faults.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// QueryError wraps a match expression the engine rejected. Given the
// sanitizer's guarantees this should be rare; callers treat it as an
// internal invariant violation and log it loudly.
type QueryError struct {
	Expr string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Expr, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
