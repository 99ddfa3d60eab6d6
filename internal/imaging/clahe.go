package imaging

import (
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Default CLAHE parameters used by the histogram-equalization operation.
const (
	DefaultClipLimit = 3.0
	DefaultTileGrid  = 8
)

const histBins = 256

// EqualizeContrast applies contrast-limited adaptive histogram equalization
// (CLAHE).
//
// Parameters:
//   - b: Source buffer. Single-channel input is equalized directly. Colour
//     input is converted to YCbCr, only the luma plane is equalized, and the
//     result is converted back so chroma is preserved. Alpha passes through.
//   - clipLimit: Histogram bin ceiling relative to a uniform distribution. A
//     tile's bins are clipped at clipLimit*tilePixels/256 (at least 1) and the
//     excess is spread over all bins. Zero or negative disables clipping.
//   - tileGrid: Number of tiles along each axis (tileGrid x tileGrid cells).
//     Values below 1 fall back to DefaultTileGrid.
//
// # Algorithm
//
//  1. If the image size is not a multiple of the grid, the histogram source
//     is extended to the right and bottom by reflection (without repeating
//     the edge pixel) so every tile has the same size.
//  2. Each tile gets a clipped, redistributed histogram and a cumulative
//     lookup table scaled to 0-255.
//  3. Every pixel is mapped through the four nearest tile tables and the
//     results are blended bilinearly by the pixel's position relative to the
//     tile centres.
//
// An empty buffer is returned unchanged.
func EqualizeContrast(b Buffer, clipLimit float64, tileGrid int) Buffer {
	if b.Empty() {
		return b
	}
	if tileGrid < 1 {
		tileGrid = DefaultTileGrid
	}

	switch {
	case b.Channels == 1:
		return claheGray(b, clipLimit, tileGrid)
	case b.Channels < 3:
		return claheGray(toGray(b), clipLimit, tileGrid)
	}

	// Split luma, equalize, merge.
	n := b.Width * b.Height
	c := b.Channels
	lum := NewBuffer(b.Width, b.Height, 1)
	cb := make([]uint8, n)
	cr := make([]uint8, n)
	for i := 0; i < n; i++ {
		p := i * c
		lum.Pix[i], cb[i], cr[i] = color.RGBToYCbCr(b.Pix[p], b.Pix[p+1], b.Pix[p+2])
	}

	eq := claheGray(lum, clipLimit, tileGrid)

	out := b.Clone()
	for i := 0; i < n; i++ {
		p := i * c
		out.Pix[p], out.Pix[p+1], out.Pix[p+2] = color.YCbCrToRGB(eq.Pix[i], cb[i], cr[i])
	}
	return out
}

// claheGray equalizes a single-channel buffer.
func claheGray(src Buffer, clipLimit float64, tiles int) Buffer {
	w, h := src.Width, src.Height

	// Padded dimensions divisible by the grid.
	pw, ph := w, h
	if r := w % tiles; r != 0 {
		pw += tiles - r
	}
	if r := h % tiles; r != 0 {
		ph += tiles - r
	}
	tileW, tileH := pw/tiles, ph/tiles
	tileArea := tileW * tileH

	limit := 0
	if clipLimit > 0 {
		limit = max(int(clipLimit*float64(tileArea)/histBins), 1)
	}
	lutScale := float64(histBins-1) / float64(tileArea)

	luts := make([][histBins]uint8, tiles*tiles)
	parallel.Line(tiles*tiles, func(start, end int) {
		for t := start; t < end; t++ {
			tx, ty := t%tiles, t/tiles
			var hist [histBins]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				sy := reflect101(y, h)
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[src.Pix[sy*w+reflect101(x, w)]]++
				}
			}
			if limit > 0 {
				clipHistogram(&hist, limit)
			}
			sum := 0
			for i := 0; i < histBins; i++ {
				sum += hist[i]
				luts[t][i] = saturate(float64(sum) * lutScale)
			}
		}
	})

	out := NewBuffer(w, h, 1)
	invTW, invTH := 1/float64(tileW), 1/float64(tileH)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			tyf := float64(y)*invTH - 0.5
			ty1 := int(math.Floor(tyf))
			ty2 := ty1 + 1
			ya := tyf - float64(ty1)
			ya1 := 1 - ya
			ty1 = max(ty1, 0)
			ty2 = min(ty2, tiles-1)

			for x := 0; x < w; x++ {
				txf := float64(x)*invTW - 0.5
				tx1 := int(math.Floor(txf))
				tx2 := tx1 + 1
				xa := txf - float64(tx1)
				xa1 := 1 - xa
				tx1 = max(tx1, 0)
				tx2 = min(tx2, tiles-1)

				v := src.Pix[y*w+x]
				top := float64(luts[ty1*tiles+tx1][v])*xa1 + float64(luts[ty1*tiles+tx2][v])*xa
				bottom := float64(luts[ty2*tiles+tx1][v])*xa1 + float64(luts[ty2*tiles+tx2][v])*xa
				out.Pix[y*w+x] = saturate(top*ya1 + bottom*ya)
			}
		}
	})
	return out
}

// clipHistogram caps every bin at limit and redistributes the excess evenly,
// handing any remainder out one count at a time at a regular stride.
func clipHistogram(hist *[histBins]int, limit int) {
	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := clipped / histBins
	residual := clipped - batch*histBins
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(histBins/residual, 1)
		for i := 0; i < histBins && residual > 0; i, residual = i+step, residual-1 {
			hist[i]++
		}
	}
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// around the edge pixels without repeating them (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
