package imaging

// labelComponents assigns a label to every 8-connected group of non-zero
// samples of a single-channel buffer. Background is 0 and components are
// numbered from 1 in raster order of their first pixel. It returns the
// label map and the number of components.
func labelComponents(b Buffer) ([]int32, int) {
	w, h := b.Width, b.Height
	labels := make([]int32, w*h)
	var next int32
	queue := make([]int, 0, 64)

	for start, v := range b.Pix {
		if v == 0 || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := i%w, i/w
			for ny := max(y-1, 0); ny <= min(y+1, h-1); ny++ {
				for nx := max(x-1, 0); nx <= min(x+1, w-1); nx++ {
					j := ny*w + nx
					if b.Pix[j] != 0 && labels[j] == 0 {
						labels[j] = next
						queue = append(queue, j)
					}
				}
			}
		}
	}
	return labels, int(next)
}
