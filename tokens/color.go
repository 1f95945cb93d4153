package tokens

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is a parsed color with channels in [0,1].
type RGB struct {
	R, G, B float64
}

// ParseHex parses #rgb and #rrggbb hex colors. Anything else is an error;
// callers decide whether an unparseable palette entry is skipped or fatal.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "#") {
		return RGB{}, fmt.Errorf("tokens: not a hex color: %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("tokens: bad hex color length: %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("tokens: bad hex color %q: %w", s, err)
	}
	return RGB{
		R: float64(n>>16&0xff) / 255,
		G: float64(n>>8&0xff) / 255,
		B: float64(n&0xff) / 255,
	}, nil
}

// HSL returns hue in degrees [0,360), and saturation/lightness in [0,1].
func (c RGB) HSL() (h, s, l float64) {
	max := math.Max(c.R, math.Max(c.G, c.B))
	min := math.Min(c.R, math.Min(c.G, c.B))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case c.R:
		h = (c.G - c.B) / d
		if c.G < c.B {
			h += 6
		}
	case c.G:
		h = (c.B-c.R)/d + 2
	default:
		h = (c.R-c.G)/d + 4
	}
	return h * 60, s, l
}

// Luminance returns the WCAG relative luminance in [0,1].
func (c RGB) Luminance() float64 {
	lin := func(v float64) float64 {
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// ContrastRatio returns the WCAG contrast ratio (lighter+0.05)/(darker+0.05),
// in [1,21].
func ContrastRatio(a, b RGB) float64 {
	la, lb := a.Luminance(), b.Luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// HueCosSin pre-encodes a hue angle (degrees) as a (cos, sin) pair, the
// required representation for circular features.
func HueCosSin(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}
