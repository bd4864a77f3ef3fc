package fwi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Region identifies one of the two regions the prediction model was trained on.
// The zero value is RegionUnset and never passes validation.
type Region int

const (
	RegionUnset Region = iota
	RegionBejaia
	RegionSidiBelAbbes
)

var regionNames = map[Region]string{
	RegionBejaia:       "Bejaia",
	RegionSidiBelAbbes: "Sidi-Bel Abbes",
}

var regionSlugs = map[Region]string{
	RegionBejaia:       "bejaia",
	RegionSidiBelAbbes: "sidi-bel-abbes",
}

// Regions lists every valid region in upstream code order.
func Regions() []Region {
	return []Region{RegionBejaia, RegionSidiBelAbbes}
}

// String returns the display name of the region.
func (r Region) String() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return "unset"
}

// Slug returns the lowercase identifier used in stored records and CLI flags.
func (r Region) Slug() string {
	return regionSlugs[r]
}

// Valid reports whether r is one of the known regions.
func (r Region) Valid() bool {
	_, ok := regionNames[r]
	return ok
}

// UpstreamCode returns the numeric encoding the prediction model expects.
// This is the only place the region enumeration is translated for the upstream service.
func (r Region) UpstreamCode() (float64, error) {
	switch r {
	case RegionBejaia:
		return 0, nil
	case RegionSidiBelAbbes:
		return 1, nil
	default:
		return 0, fmt.Errorf("region %d has no upstream code", int(r))
	}
}

// ParseRegion accepts a display name, a slug, or one of the legacy numeric codes "0" and "1".
func ParseRegion(s string) (Region, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "":
		return RegionUnset, fmt.Errorf("region is required")
	case "0", "bejaia":
		return RegionBejaia, nil
	case "1", "sidi-bel-abbes", "sidi-bel abbes", "sidi bel abbes":
		return RegionSidiBelAbbes, nil
	}
	return RegionUnset, fmt.Errorf("unknown region %q", s)
}

// MarshalText encodes the region by slug.
func (r Region) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot encode unset region")
	}
	return []byte(r.Slug()), nil
}

// UnmarshalText decodes any form accepted by ParseRegion.
func (r *Region) UnmarshalText(text []byte) error {
	parsed, err := ParseRegion(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalJSON accepts the region as a string or as a bare numeric code.
func (r *Region) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return r.UnmarshalText([]byte(s))
	}
	return r.UnmarshalText(data)
}

// UnmarshalYAML accepts the same forms as UnmarshalText.
func (r *Region) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("region must be a scalar, got node kind %d", node.Kind)
	}
	return r.UnmarshalText([]byte(node.Value))
}
