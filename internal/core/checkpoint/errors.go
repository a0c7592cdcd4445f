// Package checkpoint defines domain-specific errors
package checkpoint

import (
	"errors"
	"fmt"
)

// Domain errors - defined once, used everywhere
var (
	ErrInvalidCheckpointID   = errors.New("invalid checkpoint ID")
	ErrInvalidCheckpointName = errors.New("invalid checkpoint name")
	ErrNilTaskState          = errors.New("checkpoint task state cannot be nil")

	// Filter validation errors
	ErrInvalidLimit  = errors.New("limit cannot be negative")
	ErrInvalidOffset = errors.New("offset cannot be negative")

	// Persistence errors
	ErrSaveFailed = errors.New("failed to save checkpoint")
	ErrLoadFailed = errors.New("failed to load checkpoint")
)

// NotFoundError reports a Restore or Load against an unknown checkpoint
// name. The operation fails without touching current state.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("checkpoint %q not found", e.Name)
}
