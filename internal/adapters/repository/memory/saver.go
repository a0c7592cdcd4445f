// Package memory provides an in-memory checkpoint saver, primarily for
// tests and single-process runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taskflow/taskflow/internal/core/checkpoint"
	"github.com/taskflow/taskflow/pkg/serialization"
)

// Saver implements checkpoint.Saver with serialized in-memory storage. Data
// passes through the serialization pipeline so stored snapshots behave
// byte-for-byte like persisted ones.
type Saver struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	order      []string
	serializer *serialization.Serializer
}

// New creates an in-memory saver. A nil serializer selects the default
// msgpack+zstd pipeline.
func New(serializer *serialization.Serializer) *Saver {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &Saver{
		entries:    make(map[string][]byte),
		serializer: serializer,
	}
}

// Save stores a checkpoint.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if cp == nil {
		return checkpoint.ErrInvalidCheckpointID
	}
	if err := cp.Validate(); err != nil {
		return err
	}
	data, err := s.serializer.Serialize(cp)
	if err != nil {
		return fmt.Errorf("%w: %v", checkpoint.ErrSaveFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.entries[cp.ID] = data
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *Saver) Load(ctx context.Context, id string) (*checkpoint.Checkpoint, error) {
	if id == "" {
		return nil, checkpoint.ErrInvalidCheckpointID
	}
	s.mu.RLock()
	data, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &checkpoint.NotFoundError{Name: id}
	}

	var cp checkpoint.Checkpoint
	if err := s.serializer.Deserialize(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", checkpoint.ErrLoadFailed, err)
	}
	return &cp, nil
}

// List returns matching checkpoints, newest first.
func (s *Saver) List(ctx context.Context, filter checkpoint.Filter) ([]*checkpoint.Checkpoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	s.mu.RUnlock()

	var matched []*checkpoint.Checkpoint
	for i := len(ids) - 1; i >= 0; i-- {
		cp, err := s.Load(ctx, ids[i])
		if err != nil {
			continue
		}
		if filter.Matches(cp) {
			matched = append(matched, cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Delete removes a checkpoint by ID.
func (s *Saver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return checkpoint.ErrInvalidCheckpointID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return &checkpoint.NotFoundError{Name: id}
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ checkpoint.Saver = (*Saver)(nil)
