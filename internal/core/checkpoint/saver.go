// Package checkpoint provides checkpoint persistence interfaces
package checkpoint

import (
	"context"
	"time"
)

// Saver persists snapshots beyond the life of a run (DIP - the core domain
// depends on this interface, adapters implement it).
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - SRP: Single responsibility - checkpoint persistence
type Saver interface {
	// Save persists a checkpoint
	Save(ctx context.Context, cp *Checkpoint) error

	// Load retrieves a checkpoint by ID
	Load(ctx context.Context, id string) (*Checkpoint, error)

	// List returns checkpoints matching the filter, newest first
	List(ctx context.Context, filter Filter) ([]*Checkpoint, error)

	// Delete removes a checkpoint by ID
	Delete(ctx context.Context, id string) error
}

// Filter narrows List queries.
type Filter struct {
	Name   string     `json:"name,omitempty"`
	RunID  string     `json:"run_id,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
}

// Validate ensures filter parameters are valid.
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// Matches reports whether a checkpoint satisfies the filter's predicates.
func (f *Filter) Matches(cp *Checkpoint) bool {
	if f.Name != "" && cp.Name != f.Name {
		return false
	}
	if f.RunID != "" && cp.RunID != f.RunID {
		return false
	}
	if f.Since != nil && cp.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}
