package imaging

import "math"

// Default hysteresis thresholds used by the canny operation.
const (
	DefaultCannyLow  = 50.0
	DefaultCannyHigh = 100.0
)

// Edge-map states during hysteresis.
const (
	edgeNone      = 0
	edgeCandidate = 1
	edgeStrong    = 2
)

// tan(22.5 degrees) in Q15 fixed point.
const tg22 = 13573

// DetectEdges performs Canny edge detection.
//
// Parameters:
//   - b: Source buffer (colour or gray). Colour input is reduced with
//     Grayscale first.
//   - thresholdLow: Lower hysteresis bound. Gradients at or below it are
//     never edges. Typical value: 50.
//   - thresholdHigh: Upper hysteresis bound. Local maxima above it seed
//     edges. Typical value: 100.
//
// If thresholdLow exceeds thresholdHigh the two are swapped. Both are
// truncated to integers, matching the integer gradient magnitude.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators for X and Y, borders
//     replicated. Magnitude is the L1 approximation |Gx| + |Gy|.
//  2. Non-maximum suppression: each pixel is compared with its two
//     neighbours along the gradient, quantized to horizontal, vertical or
//     one of the diagonals. Magnitudes outside the image count as 0.
//  3. Hysteresis thresholding:
//     - Local maxima above thresholdHigh are strong edges
//     - Local maxima above thresholdLow are kept only if 8-connected to a
//     strong edge, directly or through other kept pixels
//
// No smoothing is applied; blur the input first if it is noisy.
//
// The output is single-channel with values 0 (no edge) and 255 (edge).
// Raising thresholdHigh never adds edge pixels. An empty buffer is returned
// unchanged.
func DetectEdges(b Buffer, thresholdLow, thresholdHigh float64) Buffer {
	if b.Empty() {
		return b
	}
	gray := b
	if b.Channels != 1 {
		gray = toGray(b)
	}
	if thresholdLow > thresholdHigh {
		thresholdLow, thresholdHigh = thresholdHigh, thresholdLow
	}
	low := int(math.Floor(thresholdLow))
	high := int(math.Floor(thresholdHigh))

	width, height := gray.Width, gray.Height

	// Gradients with a one-pixel zero frame around the magnitude map so
	// suppression never needs bounds checks.
	stride := width + 2
	magnitude := make([]int, stride*(height+2))
	gradX := make([]int, width*height)
	gradY := make([]int, width*height)

	px := func(x, y int) int {
		return int(gray.Pix[clamp(y, 0, height-1)*width+clamp(x, 0, width-1)])
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			gradX[y*width+x] = gx
			gradY[y*width+x] = gy
			magnitude[(y+1)*stride+x+1] = absInt(gx) + absInt(gy)
		}
	}

	// Non-maximum suppression and double threshold
	state := make([]uint8, width*height)
	stack := make([]int, 0, 256)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mi := (y+1)*stride + x + 1
			m := magnitude[mi]
			if m <= low {
				continue
			}

			xs, ys := gradX[y*width+x], gradY[y*width+x]
			ax, ay := absInt(xs), absInt(ys)<<15
			tg22x := ax * tg22

			var isMax bool
			if ay < tg22x {
				isMax = m > magnitude[mi-1] && m >= magnitude[mi+1]
			} else {
				tg67x := tg22x + ax<<16
				if ay > tg67x {
					isMax = m > magnitude[mi-stride] && m >= magnitude[mi+stride]
				} else {
					s := 1
					if (xs ^ ys) < 0 {
						s = -1
					}
					isMax = m > magnitude[mi-stride-s] && m > magnitude[mi+stride+s]
				}
			}
			if !isMax {
				continue
			}

			i := y*width + x
			if m > high {
				state[i] = edgeStrong
				stack = append(stack, i)
			} else {
				state[i] = edgeCandidate
			}
		}
	}

	// Edge tracking by hysteresis
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for ny := max(y-1, 0); ny <= min(y+1, height-1); ny++ {
			for nx := max(x-1, 0); nx <= min(x+1, width-1); nx++ {
				j := ny*width + nx
				if state[j] == edgeCandidate {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	result := NewBuffer(width, height, 1)
	for i, s := range state {
		if s == edgeStrong {
			result.Pix[i] = 255
		}
	}
	return result
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
