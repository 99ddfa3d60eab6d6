package imaging

// Grayscale reduces a colour buffer to a single intensity channel.
//
// Each output sample is the ITU-R BT.601 luma of the pixel
// (0.299*R + 0.587*G + 0.114*B), computed in 14-bit fixed point with
// rounding. Alpha is ignored. A buffer that is already single-channel is
// returned as a copy; an empty buffer is returned unchanged.
func Grayscale(b Buffer) Buffer {
	if b.Empty() {
		return b
	}
	if b.Channels == 1 {
		return b.Clone()
	}
	return toGray(b)
}
