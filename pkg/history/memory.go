package history

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps records for the lifetime of the process.
// It is safe for concurrent use by multiple goroutines.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record // oldest first
}

// NewMemoryStore creates an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds rec as the most recent record.
//
// Returns an error if the record has no ID, its result is not finite,
// or the context is canceled.
func (s *MemoryStore) Append(ctx context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// List returns a copy of all records, most recent first.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[len(s.records)-1-i] = rec
	}
	return out, nil
}

// Len returns the number of records currently stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
