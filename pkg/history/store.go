// Package history records past predictions as an append-only, most-recent-first log
// and derives the summary and chart projections shown to the user.
//
// The log has three interchangeable backends: MemoryStore for a single session,
// SQLiteStore for a local file that survives restarts, and RedisStore for a shared
// key-value log under one fixed key. Records are never updated or deleted.
package history

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/HatiCode/fwirelay/pkg/fwi"
)

// ErrNonFiniteResult is returned when a result is NaN or infinite.
var ErrNonFiniteResult = errors.New("prediction result is not a finite number")

// ErrStoreClosed is returned by operations on a store after Close.
var ErrStoreClosed = errors.New("history store is closed")

// Record is one successful prediction round trip. Records are immutable once created.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Input     fwi.Input `json:"input"`
	Result    float64   `json:"result"`
}

// Band classifies the record's result.
func (r Record) Band() fwi.Band {
	return fwi.Classify(r.Result)
}

func (r Record) validate() error {
	if r.ID == "" {
		return errors.New("record id required")
	}
	if math.IsNaN(r.Result) || math.IsInf(r.Result, 0) {
		return ErrNonFiniteResult
	}
	return nil
}

// Store persists records. List returns records most-recent-first.
type Store interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
}
