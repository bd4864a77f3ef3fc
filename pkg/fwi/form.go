package fwi

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParseForm builds an Input from raw form values keyed by field name.
//
// All nine fields are required. Unknown keys, empty values, unparsable or
// non-finite numbers and out-of-range values are all reported together in a
// single *ValidationError; any one of them invalidates the submission.
func ParseForm(values map[string]string) (Input, error) {
	var in Input
	verr := &ValidationError{}

	unknown := make([]string, 0)
	for key := range values {
		if _, ok := Ranges[key]; !ok && key != FieldRegion {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		verr.add(key, "unknown field")
	}

	for _, field := range NumericFields {
		raw, ok := values[field]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			verr.add(field, "is required")
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			verr.add(field, "must be a number")
			continue
		}
		in.set(field, v)
		verr.check(field, v)
	}

	region, err := ParseRegion(values[FieldRegion])
	if err != nil {
		verr.add(FieldRegion, err.Error())
	}
	in.Region = region

	if err := verr.orNil(); err != nil {
		return Input{}, err
	}
	return in, nil
}
