package imaging

import (
	"slices"

	"github.com/anthonynsimon/bild/parallel"
)

// DefaultMedianKernel is the window side used by the noise-reduction
// operation.
const DefaultMedianKernel = 3

// Denoise applies a square median filter of side kernel to every channel
// independently.
//
// Samples outside the image replicate the nearest edge pixel. A kernel
// smaller than 1 falls back to DefaultMedianKernel and an even kernel is
// widened by one so the window stays centred. An empty buffer is returned
// unchanged.
func Denoise(b Buffer, kernel int) Buffer {
	if b.Empty() {
		return b
	}
	if kernel < 1 {
		kernel = DefaultMedianKernel
	}
	if kernel%2 == 0 {
		kernel++
	}
	if kernel == 1 {
		return b.Clone()
	}
	return medianFilter(b, kernel)
}

func medianFilter(b Buffer, kernel int) Buffer {
	out := NewBuffer(b.Width, b.Height, b.Channels)
	radius := kernel / 2
	mid := kernel * kernel / 2
	w, h, c := b.Width, b.Height, b.Channels

	parallel.Line(h, func(start, end int) {
		window := make([]uint8, kernel*kernel)
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				for ch := 0; ch < c; ch++ {
					n := 0
					for ky := -radius; ky <= radius; ky++ {
						py := clamp(y+ky, 0, h-1)
						for kx := -radius; kx <= radius; kx++ {
							px := clamp(x+kx, 0, w-1)
							window[n] = b.Pix[(py*w+px)*c+ch]
							n++
						}
					}
					slices.Sort(window)
					out.Pix[(y*w+x)*c+ch] = window[mid]
				}
			}
		}
	})
	return out
}
