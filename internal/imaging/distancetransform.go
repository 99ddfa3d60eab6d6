package imaging

import "math"

// 5x5 chamfer weights approximating the Euclidean metric: orthogonal step,
// diagonal step and knight move.
const (
	chamferA = 1.0
	chamferB = 1.4
	chamferC = 2.1969
)

type chamferStep struct {
	dx, dy int
	cost   float64
}

// Forward-pass neighbourhood; the backward pass uses the negated offsets.
var chamferMask = []chamferStep{
	{-1, 0, chamferA},
	{-1, -1, chamferB}, {0, -1, chamferA}, {1, -1, chamferB},
	{-2, -1, chamferC}, {-1, -2, chamferC}, {1, -2, chamferC}, {2, -1, chamferC},
}

// distanceTransform returns, for every non-zero sample of a single-channel
// buffer, the chamfer-approximated Euclidean distance to the nearest zero
// sample. Zero samples map to 0. Pixels outside the image are not zero, so
// they never shorten a distance.
//
// If the buffer has no zero sample at all, every distance is 0.
func distanceTransform(b Buffer) []float64 {
	w, h := b.Width, b.Height
	dist := make([]float64, w*h)
	anyZero := false
	for i, v := range b.Pix {
		if v == 0 {
			anyZero = true
		} else {
			dist[i] = math.Inf(1)
		}
	}
	if !anyZero {
		clear(dist)
		return dist
	}

	relax := func(x, y, sign int) {
		i := y*w + x
		d := dist[i]
		if d == 0 {
			return
		}
		for _, s := range chamferMask {
			nx, ny := x+sign*s.dx, y+sign*s.dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			d = min(d, dist[ny*w+nx]+s.cost)
		}
		dist[i] = d
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			relax(x, y, 1)
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			relax(x, y, -1)
		}
	}
	return dist
}

// normalizeMinMax rescales values linearly onto [0, 1] in place. A constant
// input maps to all zeros.
func normalizeMinMax(v []float64) {
	if len(v) == 0 {
		return
	}
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	span := hi - lo
	for i, x := range v {
		if span > math.SmallestNonzeroFloat64 {
			v[i] = (x - lo) / span
		} else {
			v[i] = 0
		}
	}
}
