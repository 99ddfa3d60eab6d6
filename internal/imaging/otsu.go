package imaging

// OtsuLevel returns the threshold t that maximizes the between-class
// variance of a single-channel buffer's 256-bin histogram. Pixels >= t form
// the foreground class.
//
// Levels are scanned from dark to light and the first maximum wins. When no
// split separates two non-empty classes (a uniform image), t is 1, so only
// pure black pixels fall below it.
func OtsuLevel(gray Buffer) uint8 {
	var hist [histBins]int
	for _, v := range gray.Pix {
		hist[v]++
	}

	total := len(gray.Pix)
	totalSum := 0
	for level, n := range hist {
		totalSum += level * n
	}

	var (
		best      int
		bestSigma float64

		// Pixel count and intensity sum of the class at or below the level.
		lowCount int
		lowSum   int
	)
	for level, n := range hist {
		lowCount += n
		lowSum += level * n
		highCount := total - lowCount
		if lowCount == 0 || highCount == 0 {
			continue
		}

		lowMean := float64(lowSum) / float64(lowCount)
		highMean := float64(totalSum-lowSum) / float64(highCount)
		d := lowMean - highMean
		sigma := float64(lowCount) * float64(highCount) * d * d
		if sigma > bestSigma {
			bestSigma = sigma
			best = level
		}
	}

	return uint8(best + 1)
}

// Binarize segments a buffer into two levels with Otsu's method.
//
// Colour input is first reduced with Grayscale. The output is
// single-channel: 255 where the intensity is at or above the Otsu level, 0
// elsewhere. An empty buffer is returned unchanged.
func Binarize(b Buffer) Buffer {
	if b.Empty() {
		return b
	}
	gray := b
	if b.Channels != 1 {
		gray = toGray(b)
	}
	return threshold(gray, OtsuLevel(gray))
}

// threshold maps samples >= level to 255 and the rest to 0.
func threshold(gray Buffer, level uint8) Buffer {
	out := NewBuffer(gray.Width, gray.Height, 1)
	for i, v := range gray.Pix {
		if v >= level {
			out.Pix[i] = 255
		}
	}
	return out
}
