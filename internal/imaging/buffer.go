package imaging

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Buffer is an 8-bit, row-major, interleaved pixel buffer.
//
// Samples are stored in R, G, B(, A) order for colour buffers. A Buffer with
// Width*Height == 0 is empty; every transform in this package returns an
// empty input unchanged.
//
// Transforms never modify the Buffer they are given. Each returns a newly
// allocated Buffer, so a Buffer may be shared freely between goroutines as
// long as nobody writes to Pix after publishing it.
type Buffer struct {
	// Width is the number of pixels per row.
	Width int

	// Height is the number of rows.
	Height int

	// Channels is the number of samples per pixel: 1 (gray), 3 (RGB) or
	// 4 (RGBA, straight alpha).
	Channels int

	// Pix holds Width*Height*Channels samples.
	Pix []uint8
}

// NewBuffer allocates a zeroed Buffer of the given shape.
func NewBuffer(width, height, channels int) Buffer {
	return Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Empty reports whether the buffer holds no pixels.
func (b Buffer) Empty() bool {
	return b.Width*b.Height == 0
}

// Validate checks the shape invariants.
func (b Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative dimensions %dx%d: %w", b.Width, b.Height, ErrInvalidInput)
	}
	switch b.Channels {
	case 1, 3, 4:
	default:
		if !b.Empty() {
			return fmt.Errorf("unsupported channel count %d: %w", b.Channels, ErrInvalidInput)
		}
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("pixel data has %d samples, want %d: %w", len(b.Pix), want, ErrInvalidInput)
	}
	return nil
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	out := b
	out.Pix = make([]uint8, len(b.Pix))
	copy(out.Pix, b.Pix)
	return out
}

// At returns sample c of the pixel at (x, y).
func (b Buffer) At(x, y, c int) uint8 {
	return b.Pix[(y*b.Width+x)*b.Channels+c]
}

// Set stores sample c of the pixel at (x, y).
func (b Buffer) Set(x, y, c int, v uint8) {
	b.Pix[(y*b.Width+x)*b.Channels+c] = v
}

// luma reduces an RGB triple with BT.601 weights in 14-bit fixed point.
func luma(r, g, b uint8) uint8 {
	const (
		wr    = 4899 // 0.299 * 2^14
		wg    = 9617 // 0.587 * 2^14
		wb    = 1868 // 0.114 * 2^14
		shift = 14
	)
	return uint8((int(r)*wr + int(g)*wg + int(b)*wb + 1<<(shift-1)) >> shift)
}

// toGray returns a single-channel copy. Buffers with fewer than three
// channels contribute their first channel unchanged.
func toGray(b Buffer) Buffer {
	out := NewBuffer(b.Width, b.Height, 1)
	c := b.Channels
	parallel.Line(b.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * b.Width
			for x := 0; x < b.Width; x++ {
				p := (row + x) * c
				if c >= 3 {
					out.Pix[row+x] = luma(b.Pix[p], b.Pix[p+1], b.Pix[p+2])
				} else {
					out.Pix[row+x] = b.Pix[p]
				}
			}
		}
	})
	return out
}

// toRGB returns a three-channel copy: gray is replicated, alpha is dropped.
func toRGB(b Buffer) Buffer {
	if b.Channels == 3 {
		return b.Clone()
	}
	out := NewBuffer(b.Width, b.Height, 3)
	c := b.Channels
	n := b.Width * b.Height
	for i := 0; i < n; i++ {
		if c >= 3 {
			copy(out.Pix[i*3:i*3+3], b.Pix[i*c:i*c+3])
		} else {
			v := b.Pix[i*c]
			out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = v, v, v
		}
	}
	return out
}

// saturate rounds half to even and clamps to the 8-bit range.
func saturate(v float64) uint8 {
	v = math.RoundToEven(v)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// clamp constrains an integer value to the range [min, max].
// Used for edge-replicated border handling.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
