package fwi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeBatch reads a list of inputs from r. Format is "json" or "yaml".
// Unknown fields are rejected in both formats. Inputs are decoded but not validated.
func DecodeBatch(r io.Reader, format string) ([]Input, error) {
	var inputs []Input

	switch strings.ToLower(format) {
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&inputs); err != nil {
			return nil, fmt.Errorf("decode json batch: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&inputs); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml batch: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported batch format %q (must be json or yaml)", format)
	}

	return inputs, nil
}

// BatchFormat infers the batch format from a file name.
func BatchFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
