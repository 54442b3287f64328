package table

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is the closed set of surface colors. The zero value means unset.
type Color int

const (
	ColorUnset Color = iota
	Red
	Yellow
	White
	Black
	Blue
	Gray
	Green
)

// Colors lists every valid color in palette order.
var Colors = []Color{Red, Yellow, White, Black, Blue, Gray, Green}

var colorNames = map[Color]string{
	Red:    "red",
	Yellow: "yellow",
	White:  "white",
	Black:  "black",
	Blue:   "blue",
	Gray:   "gray",
	Green:  "green",
}

// ParseColor maps a color name to its Color. Names are case-insensitive
// and "grey" is accepted for Gray.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "grey" {
		return Gray, nil
	}
	for c, n := range colorNames {
		if n == name {
			return c, nil
		}
	}
	return ColorUnset, fmt.Errorf("unknown color %q", s)
}

// Valid reports whether c is one of the defined colors.
func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// RGB returns the diffuse color components in [0,1].
func (c Color) RGB() [3]float64 {
	switch c {
	case Red:
		return [3]float64{1, 0, 0}
	case Yellow:
		return [3]float64{1, 1, 0}
	case White:
		return [3]float64{1, 1, 1}
	case Blue:
		return [3]float64{0, 0, 1}
	case Gray:
		return [3]float64{0.5, 0.5, 0.5}
	case Green:
		return [3]float64{0, 1, 0}
	default:
		return [3]float64{0, 0, 0}
	}
}

// Hex returns the color as a CSS hex string.
func (c Color) Hex() string {
	rgb := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", int(rgb[0]*255), int(rgb[1]*255), int(rgb[2]*255))
}

// UnmarshalYAML decodes a color name.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the color name.
func (c Color) MarshalYAML() (interface{}, error) {
	if !c.Valid() {
		return nil, nil
	}
	return c.String(), nil
}

// MarshalText lets colors appear by name in JSON sent to the frontend.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
