package client

import (
	"context"
	"fmt"

	"github.com/HatiCode/fwirelay/pkg/fwi"
	"github.com/HatiCode/fwirelay/pkg/history"
)

// Predictor returns a score for a set of readings. *Client implements it.
type Predictor interface {
	Predict(ctx context.Context, in fwi.Input) (float64, error)
}

// Session ties a predictor to the history that records its successful results.
// Failed submissions leave the history untouched.
type Session struct {
	predictor Predictor
	history   *history.History
}

// NewSession creates a session writing to h.
func NewSession(p Predictor, h *history.History) *Session {
	return &Session{predictor: p, history: h}
}

// History returns the session's history.
func (s *Session) History() *history.History {
	return s.history
}

// Submit predicts in and records the result.
func (s *Session) Submit(ctx context.Context, in fwi.Input) (history.Record, error) {
	score, err := s.predictor.Predict(ctx, in)
	if err != nil {
		return history.Record{}, err
	}

	rec, err := s.history.AddPrediction(ctx, in, score)
	if err != nil {
		return history.Record{}, fmt.Errorf("record prediction: %w", err)
	}
	return rec, nil
}

// SubmitForm parses raw form values and submits them. Parse errors are returned
// as a *fwi.ValidationError before anything is sent.
func (s *Session) SubmitForm(ctx context.Context, values map[string]string) (history.Record, error) {
	in, err := fwi.ParseForm(values)
	if err != nil {
		return history.Record{}, err
	}
	return s.Submit(ctx, in)
}

// Outcome is the result of one submission in a batch.
type Outcome struct {
	Index  int
	Input  fwi.Input
	Record history.Record
	Err    error
}

// SubmitAll submits inputs one after another, in order. A failed submission does
// not stop the batch; a canceled context does.
func (s *Session) SubmitAll(ctx context.Context, inputs []fwi.Input) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		rec, err := s.Submit(ctx, in)
		outcomes = append(outcomes, Outcome{Index: i, Input: in, Record: rec, Err: err})
	}
	return outcomes, nil
}
