package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/HatiCode/fwirelay/pkg/fwi"
)

// History is the single owner of one session's prediction log.
// It is passed explicitly to whatever submits or displays predictions.
type History struct {
	store Store
	now   func() time.Time
	newID func() string
}

// New creates a History backed by store.
func New(store Store) *History {
	return &History{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// AddPrediction records a successful prediction as the most recent entry.
// A non-finite result is rejected with ErrNonFiniteResult and nothing is stored.
func (h *History) AddPrediction(ctx context.Context, input fwi.Input, result float64) (Record, error) {
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return Record{}, ErrNonFiniteResult
	}

	rec := Record{
		ID:        h.newID(),
		Timestamp: h.now(),
		Input:     input,
		Result:    result,
	}
	if err := h.store.Append(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("add prediction: %w", err)
	}
	return rec, nil
}

// Records returns the log, most recent first. The slice is a copy.
func (h *History) Records(ctx context.Context) ([]Record, error) {
	records, err := h.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return records, nil
}

// Summary returns summary statistics over the current log.
func (h *History) Summary(ctx context.Context) (Summary, error) {
	records, err := h.Records(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

// Series returns the chart series for the current log.
func (h *History) Series(ctx context.Context) (Series, error) {
	records, err := h.Records(ctx)
	if err != nil {
		return Series{}, err
	}
	return ChartSeries(records), nil
}
