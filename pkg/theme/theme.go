// Package theme derives CSS custom properties from site colour settings.
package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HSL is a colour in hue (degrees), saturation and lightness (percent).
type HSL struct {
	H, S, L int
}

// String renders the colour the way CSS variables consume it: "221 83% 53%".
func (c HSL) String() string {
	return fmt.Sprintf("%d %d%% %d%%", c.H, c.S, c.L)
}

// ParseHex parses "#rrggbb" or "#rgb" (leading # optional).
func ParseHex(hex string) (r, g, b uint8, err error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// HexToHSL converts a hex colour to HSL with integer components.
func HexToHSL(hex string) (HSL, error) {
	r8, g8, b8, err := ParseHex(hex)
	if err != nil {
		return HSL{}, err
	}
	r, g, b := float64(r8)/255, float64(g8)/255, float64(b8)/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	var h, s float64
	if d := maxC - minC; d > 0 {
		if l > 0.5 {
			s = d / (2 - maxC - minC)
		} else {
			s = d / (maxC + minC)
		}
		switch maxC {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h *= 60
	}

	return HSL{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}, nil
}

// Variables maps setting keys holding hex colours to CSS variable names and
// returns the computed values. Missing or malformed colours are skipped.
func Variables(settings map[string]string, mapping map[string]string) map[string]string {
	vars := make(map[string]string, len(mapping))
	for key, variable := range mapping {
		raw, ok := settings[key]
		if !ok || raw == "" {
			continue
		}
		hsl, err := HexToHSL(raw)
		if err != nil {
			continue
		}
		vars[variable] = hsl.String()
	}
	return vars
}
