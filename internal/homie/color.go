package homie

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a red/green/blue color triple. Wire form is "r,g,b".
// Component values are carried as-is; the convention's 0-255 range is the
// producer's responsibility.
type RGB struct {
	R int
	G int
	B int
}

// String returns the Homie wire form, e.g. "255,128,0".
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// HSV is a hue/saturation/value color triple. Wire form is "h,s,v".
type HSV struct {
	H int
	S int
	V int
}

// String returns the Homie wire form, e.g. "120,100,50".
func (c HSV) String() string {
	return fmt.Sprintf("%d,%d,%d", c.H, c.S, c.V)
}

// ParseRGB parses "r,g,b" into an RGB value.
func ParseRGB(s string) (RGB, error) {
	a, b, c, err := parseTriple(s)
	if err != nil {
		return RGB{}, err
	}
	return RGB{R: a, G: b, B: c}, nil
}

// ParseHSV parses "h,s,v" into an HSV value.
func ParseHSV(s string) (HSV, error) {
	a, b, c, err := parseTriple(s)
	if err != nil {
		return HSV{}, err
	}
	return HSV{H: a, S: b, V: c}, nil
}

// parseTriple splits a comma-joined integer triple.
func parseTriple(s string) (int, int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q is not a comma-joined triple", ErrInvalidPayload, s)
	}

	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: component %q: %w", ErrInvalidPayload, p, err)
		}
		vals[i] = v
	}

	return vals[0], vals[1], vals[2], nil
}
