package scene

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ShadingMode selects one of the fixed fragment-shading behaviors. The
// integer value is what the shader receives.
type ShadingMode int32

const (
	ShadingFlat ShadingMode = iota
	ShadingGouraud
	ShadingPhong
	ShadingFakeFlat
	ShadingCartoon

	shadingModeCount
)

var shadingNames = [shadingModeCount]string{"flat", "gouraud", "phong", "fakeflat", "cartoon"}

// String returns the lower-case mode name.
func (m ShadingMode) String() string {
	if m < 0 || m >= shadingModeCount {
		return fmt.Sprintf("Unknown(%d)", int32(m))
	}
	return shadingNames[m]
}

// Next cycles to the following mode, wrapping after Cartoon.
func (m ShadingMode) Next() ShadingMode {
	return (m + 1) % shadingModeCount
}

// ParseShadingMode parses a mode name, ignoring case, dashes and underscores.
func ParseShadingMode(s string) (ShadingMode, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for i, name := range shadingNames {
		if key == name {
			return ShadingMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading mode %q", s)
}

// MarshalYAML writes the mode by name.
func (m ShadingMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML reads a mode name.
func (m *ShadingMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	mode, err := ParseShadingMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
