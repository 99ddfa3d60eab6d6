package imaging

// Morphology on single-channel buffers with a 3x3 rectangular structuring
// element. Neighbours outside the image are ignored, so borders neither
// erode nor grow.

// erode replaces each sample with the minimum of its 3x3 neighbourhood,
// iterations times.
func erode(b Buffer, iterations int) Buffer {
	return morph(b, iterations, func(acc, v uint8) uint8 { return min(acc, v) })
}

// dilate replaces each sample with the maximum of its 3x3 neighbourhood,
// iterations times.
func dilate(b Buffer, iterations int) Buffer {
	return morph(b, iterations, func(acc, v uint8) uint8 { return max(acc, v) })
}

// morphOpen erodes then dilates, each iterations times.
func morphOpen(b Buffer, iterations int) Buffer {
	return dilate(erode(b, iterations), iterations)
}

func morph(b Buffer, iterations int, pick func(acc, v uint8) uint8) Buffer {
	src := b.Clone()
	if iterations < 1 {
		return src
	}
	w, h := b.Width, b.Height
	dst := NewBuffer(w, h, 1)
	for it := 0; it < iterations; it++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				acc := src.Pix[y*w+x]
				for ky := max(y-1, 0); ky <= min(y+1, h-1); ky++ {
					for kx := max(x-1, 0); kx <= min(x+1, w-1); kx++ {
						acc = pick(acc, src.Pix[ky*w+kx])
					}
				}
				dst.Pix[y*w+x] = acc
			}
		}
		src, dst = dst, src
	}
	return src
}
