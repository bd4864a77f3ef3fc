// Package fwi defines the environmental readings submitted for a Fire Weather Index
// prediction, their valid ranges, and the risk bands derived from a predicted score.
//
// Ranges reflect the domain of the data the upstream model was trained on (the
// Algerian forest fires dataset). Every field is required and none may be negative.
package fwi

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Field names as they appear on the wire and in form submissions.
const (
	FieldTemperature = "Temperature"
	FieldRH          = "RH"
	FieldWs          = "Ws"
	FieldRain        = "Rain"
	FieldFFMC        = "FFMC"
	FieldDMC         = "DMC"
	FieldISI         = "ISI"
	FieldClasses     = "Classes"
	FieldRegion      = "region"
)

// Range is an inclusive numeric bound for one input field.
type Range struct {
	Min      float64
	Max      float64
	Integral bool
	Unit     string
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Integral && v != math.Trunc(v) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	if r.Unit == "" {
		return fmt.Sprintf("%g-%g", r.Min, r.Max)
	}
	return fmt.Sprintf("%g-%g %s", r.Min, r.Max, r.Unit)
}

// Ranges holds the valid range of every numeric field.
var Ranges = map[string]Range{
	FieldTemperature: {Min: 20, Max: 100, Unit: "°C"},
	FieldRH:          {Min: 21, Max: 90, Unit: "%"},
	FieldWs:          {Min: 6, Max: 29, Unit: "km/h"},
	FieldRain:        {Min: 0, Max: 16.8, Unit: "mm"},
	FieldFFMC:        {Min: 28.6, Max: 92.5},
	FieldDMC:         {Min: 1.1, Max: 65.9},
	FieldISI:         {Min: 0, Max: 18.5},
	FieldClasses:     {Min: 0, Max: 1, Integral: true},
}

// NumericFields lists the numeric fields in submission order.
var NumericFields = []string{
	FieldTemperature, FieldRH, FieldWs, FieldRain, FieldFFMC, FieldDMC, FieldISI, FieldClasses,
}

// Input is one set of environmental readings.
type Input struct {
	Temperature float64 `json:"Temperature" yaml:"Temperature"`
	RH          float64 `json:"RH" yaml:"RH"`
	Ws          float64 `json:"Ws" yaml:"Ws"`
	Rain        float64 `json:"Rain" yaml:"Rain"`
	FFMC        float64 `json:"FFMC" yaml:"FFMC"`
	DMC         float64 `json:"DMC" yaml:"DMC"`
	ISI         float64 `json:"ISI" yaml:"ISI"`
	Classes     float64 `json:"Classes" yaml:"Classes"`
	Region      Region  `json:"region" yaml:"region"`
}

// Payload is the body sent to the upstream prediction service.
type Payload struct {
	Temperature float64 `json:"Temperature"`
	RH          float64 `json:"RH"`
	Ws          float64 `json:"Ws"`
	Rain        float64 `json:"Rain"`
	FFMC        float64 `json:"FFMC"`
	DMC         float64 `json:"DMC"`
	ISI         float64 `json:"ISI"`
	Classes     float64 `json:"Classes"`
	Region      float64 `json:"region"`
}

// Value returns the numeric field with the given name.
func (in Input) Value(field string) (float64, bool) {
	switch field {
	case FieldTemperature:
		return in.Temperature, true
	case FieldRH:
		return in.RH, true
	case FieldWs:
		return in.Ws, true
	case FieldRain:
		return in.Rain, true
	case FieldFFMC:
		return in.FFMC, true
	case FieldDMC:
		return in.DMC, true
	case FieldISI:
		return in.ISI, true
	case FieldClasses:
		return in.Classes, true
	}
	return 0, false
}

func (in *Input) set(field string, v float64) {
	switch field {
	case FieldTemperature:
		in.Temperature = v
	case FieldRH:
		in.RH = v
	case FieldWs:
		in.Ws = v
	case FieldRain:
		in.Rain = v
	case FieldFFMC:
		in.FFMC = v
	case FieldDMC:
		in.DMC = v
	case FieldISI:
		in.ISI = v
	case FieldClasses:
		in.Classes = v
	}
}

// Validate checks every field and returns a *ValidationError listing all failures.
func (in Input) Validate() error {
	verr := &ValidationError{}
	for _, field := range NumericFields {
		v, _ := in.Value(field)
		verr.check(field, v)
	}
	if !in.Region.Valid() {
		verr.add(FieldRegion, "region is required")
	}
	return verr.orNil()
}

// Payload converts the input to the upstream wire format.
func (in Input) Payload() (Payload, error) {
	code, err := in.Region.UpstreamCode()
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Temperature: in.Temperature,
		RH:          in.RH,
		Ws:          in.Ws,
		Rain:        in.Rain,
		FFMC:        in.FFMC,
		DMC:         in.DMC,
		ISI:         in.ISI,
		Classes:     in.Classes,
		Region:      code,
	}, nil
}

// ErrInvalidInput is matched by every *ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes why one field was rejected.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects field errors for one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Field returns the message recorded for field, if any.
func (e *ValidationError) Field(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) check(field string, v float64) {
	r := Ranges[field]
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		e.add(field, "must be a finite number")
	case v < 0:
		e.add(field, "must not be negative")
	case !r.Contains(v):
		if r.Integral {
			e.add(field, fmt.Sprintf("must be a whole number in %s", r))
		} else {
			e.add(field, fmt.Sprintf("must be within %s", r))
		}
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
