package inventory

import (
	"fmt"
)

// NotFoundError indicates a lookup for a node (or its associated data)
// that does not exist.
type NotFoundError struct {
	Kind string // node, status, interfaces, metrics
	ID   string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewStorageError wraps a backend failure with its backend and operation.
func NewStorageError(backend, op string, err error) error {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// StorageError is a datastore backend failure.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("inventory storage error (%s/%s): %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying backend error.
func (e *StorageError) Unwrap() error {
	return e.Err
}
