package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/HatiCode/fwirelay/pkg/fwi"
)

func sampleInput() fwi.Input {
	return fwi.Input{
		Temperature: 32,
		RH:          45,
		Ws:          14,
		Rain:        0,
		FFMC:        88.5,
		DMC:         21.3,
		ISI:         8.1,
		Classes:     1,
		Region:      fwi.RegionSidiBelAbbes,
	}
}

func sampleRecord(id string, result float64) Record {
	return Record{
		ID:        id,
		Timestamp: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		Input:     sampleInput(),
		Result:    result,
	}
}

func TestHistory_AddPrediction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	h := New(store)

	first, err := h.AddPrediction(ctx, sampleInput(), 12.34)
	if err != nil {
		t.Fatalf("AddPrediction() error = %v", err)
	}
	second, err := h.AddPrediction(ctx, sampleInput(), 12.34)
	if err != nil {
		t.Fatalf("AddPrediction() error = %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatal("records should have ids")
	}
	if first.ID == second.ID {
		t.Errorf("two submissions produced the same id %q", first.ID)
	}
	if first.Timestamp.IsZero() {
		t.Error("record timestamp not set")
	}
	if first.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp location = %v, want UTC", first.Timestamp.Location())
	}

	records, err := h.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(Records()) = %d, want 2", len(records))
	}
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Errorf("Records() order = [%s %s], want most recent first [%s %s]",
			records[0].ID, records[1].ID, second.ID, first.ID)
	}
}

func TestHistory_AddPrediction_GrowsByOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	h := New(store)

	for i, result := range []float64{0, -2.5, 4.99, 31, 1e6} {
		if _, err := h.AddPrediction(ctx, sampleInput(), result); err != nil {
			t.Fatalf("AddPrediction(%v) error = %v", result, err)
		}
		if store.Len() != i+1 {
			t.Errorf("after %d adds Len() = %d", i+1, store.Len())
		}
	}
}

func TestHistory_AddPrediction_RejectsNonFinite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	h := New(store)

	for _, result := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := h.AddPrediction(ctx, sampleInput(), result)
		if !errors.Is(err, ErrNonFiniteResult) {
			t.Errorf("AddPrediction(%v) error = %v, want ErrNonFiniteResult", result, err)
		}
	}

	if store.Len() != 0 {
		t.Errorf("non-finite results reached the store: Len() = %d", store.Len())
	}
}

type failingStore struct{}

func (failingStore) Append(context.Context, Record) error { return fmt.Errorf("disk full") }
func (failingStore) List(context.Context) ([]Record, error) {
	return nil, fmt.Errorf("disk gone")
}

func TestHistory_StoreErrors(t *testing.T) {
	h := New(failingStore{})

	if _, err := h.AddPrediction(context.Background(), sampleInput(), 3); err == nil {
		t.Error("AddPrediction() should surface store error")
	}
	if _, err := h.Records(context.Background()); err == nil {
		t.Error("Records() should surface store error")
	}
	if _, err := h.Summary(context.Background()); err == nil {
		t.Error("Summary() should surface store error")
	}
	if _, err := h.Series(context.Background()); err == nil {
		t.Error("Series() should surface store error")
	}
}

func TestHistory_Projections(t *testing.T) {
	ctx := context.Background()
	h := New(NewMemoryStore())

	for _, result := range []float64{2, 8, 20} {
		if _, err := h.AddPrediction(ctx, sampleInput(), result); err != nil {
			t.Fatalf("AddPrediction() error = %v", err)
		}
	}

	summary, err := h.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Count != 3 || summary.Average != 10 || summary.Highest != 20 || summary.Lowest != 2 {
		t.Errorf("Summary() = %+v", summary)
	}

	series, err := h.Series(ctx)
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	got := series.Values()
	want := []float64{2, 8, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Series().Values() = %v, want %v", got, want)
		}
	}
}
