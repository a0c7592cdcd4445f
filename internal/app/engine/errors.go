// Package engine defines domain-specific errors
package engine

import "errors"

var (
	// ErrNilRunner is returned when a run is attempted without a task runner.
	ErrNilRunner = errors.New("engine requires a task runner")
)
