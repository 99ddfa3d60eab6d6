package imaging

import (
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// PaletteEntry describes one cluster centre of a colour quantization.
type PaletteEntry struct {
	Hex        string   `json:"hex"`        // Hex format "#RRGGBB"
	RGB        RGBColor `json:"rgb"`        // Centre rounded to 8-bit components
	HSL        HSLColor `json:"hsl"`        // HSL representation
	Percentage float64  `json:"percentage"` // Share of pixels in this cluster (0-100)
}

// Palette summarizes a quantization as one entry per non-empty cluster,
// sorted by pixel share in descending order.
//
// Single-channel centres are reported as neutral grays.
func (q Quantization) Palette() []PaletteEntry {
	total := 0
	for _, n := range q.Counts {
		total += n
	}
	if total == 0 {
		return nil
	}

	entries := make([]PaletteEntry, 0, len(q.Centers))
	for i, center := range q.Centers {
		if q.Counts[i] == 0 {
			continue
		}
		var r, g, b uint8
		if len(center) >= 3 {
			r, g, b = saturate(center[0]), saturate(center[1]), saturate(center[2])
		} else {
			r = saturate(center[0])
			g, b = r, r
		}

		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		h, s, l := c.Hsl()
		if math.IsNaN(h) {
			h = 0
		}

		entries = append(entries, PaletteEntry{
			Hex: strings.ToUpper(c.Hex()),
			RGB: RGBColor{R: r, G: g, B: b},
			HSL: HSLColor{
				H: int(h),
				S: int(s * 100),
				L: int(l * 100),
			},
			Percentage: math.Round(float64(q.Counts[i])/float64(total)*1000) / 10,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	return entries
}
