package imaging

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultClusters is the cluster count used when a caller passes k <= 0.
const DefaultClusters = 2

// KMeansOptions controls the clustering loop of QuantizeColors.
type KMeansOptions struct {
	// Attempts is the number of independent clusterings; the one with the
	// lowest compactness is kept.
	Attempts int

	// MaxIterations bounds the assign/update loop of one attempt.
	MaxIterations int

	// Epsilon stops an attempt once no centre moves farther than this.
	Epsilon float64

	// Seed makes clustering reproducible when non-zero. Zero draws a fresh
	// seed on every call.
	Seed uint64
}

// DefaultKMeansOptions returns 10 attempts of at most 100 iterations with
// a 0.2 convergence threshold and per-call random seeding.
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{
		Attempts:      10,
		MaxIterations: 100,
		Epsilon:       0.2,
	}
}

func (o KMeansOptions) withDefaults() KMeansOptions {
	d := DefaultKMeansOptions()
	if o.Attempts <= 0 {
		o.Attempts = d.Attempts
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Epsilon < 0 {
		o.Epsilon = d.Epsilon
	}
	return o
}

// Quantization is the outcome of QuantizeColors.
type Quantization struct {
	// Image has every pixel replaced by its cluster centre.
	Image Buffer

	// Centers holds one representative colour per cluster, with one value
	// per channel of Image.
	Centers [][]float64

	// Counts holds the number of pixels assigned to each cluster.
	Counts []int

	// Compactness is the sum of squared distances from each pixel to its
	// centre for the winning attempt.
	Compactness float64
}

// QuantizeColors clusters pixel colours with k-means and paints every pixel
// with its cluster centre.
//
// Parameters:
//   - b: Source buffer. A 4-channel buffer has its alpha dropped first, so
//     the output never carries alpha. Gray input clusters intensities.
//   - k: Number of clusters. Values <= 0 fall back to DefaultClusters.
//   - opts: Loop controls; zero fields take the DefaultKMeansOptions values.
//
// # Algorithm
//
// Each attempt seeds k centres uniformly at random inside the bounding box
// of the pixel vectors, then alternates assignment (nearest centre by
// Euclidean distance) and update (centre = mean of its pixels) until the
// largest centre shift is at most Epsilon or MaxIterations is reached. A
// cluster that empties is re-seeded with the pixel farthest from its
// centre in the largest cluster. Attempts run concurrently, each with its
// own generator, and the lowest-compactness attempt wins.
//
// The output holds at most k distinct colours. With k == 1 every pixel is
// the rounded mean colour.
//
// # Errors
//
// Returns an error wrapping ErrComputation if the image has fewer pixels
// than clusters or a numerical step produces a non-finite value. An empty
// buffer is returned unchanged with no error.
func QuantizeColors(b Buffer, k int, opts KMeansOptions) (Quantization, error) {
	if b.Empty() {
		return Quantization{Image: b}, nil
	}
	if k <= 0 {
		k = DefaultClusters
	}
	opts = opts.withDefaults()

	src := b
	if b.Channels == 4 {
		src = toRGB(b)
	}
	dims := src.Channels
	n := src.Width * src.Height
	if n < k {
		return Quantization{}, fmt.Errorf("kmeans: %d pixels cannot form %d clusters: %w", n, k, ErrComputation)
	}

	data := make([]float64, len(src.Pix))
	for i, v := range src.Pix {
		data[i] = float64(v)
	}

	best, err := kmeans(data, dims, k, opts)
	if err != nil {
		return Quantization{}, err
	}

	out := NewBuffer(src.Width, src.Height, dims)
	painted := make([][]uint8, k)
	for c := 0; c < k; c++ {
		painted[c] = make([]uint8, dims)
		for j := 0; j < dims; j++ {
			painted[c][j] = saturate(best.centers[c*dims+j])
		}
	}
	for i, label := range best.labels {
		copy(out.Pix[i*dims:(i+1)*dims], painted[label])
	}

	centers := make([][]float64, k)
	for c := range centers {
		centers[c] = best.centers[c*dims : (c+1)*dims : (c+1)*dims]
	}
	return Quantization{
		Image:       out,
		Centers:     centers,
		Counts:      best.counts,
		Compactness: best.compactness,
	}, nil
}

type clustering struct {
	labels      []int32
	centers     []float64 // k*dims, row per cluster
	counts      []int
	compactness float64
}

// kmeans runs opts.Attempts independent clusterings of n = len(data)/dims
// vectors and returns the most compact one.
func kmeans(data []float64, dims, k int, opts KMeansOptions) (clustering, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	results := make([]clustering, opts.Attempts)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for a := 0; a < opts.Attempts; a++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(a)))
			res := kmeansAttempt(data, dims, k, opts, rng)
			if math.IsNaN(res.compactness) || math.IsInf(res.compactness, 0) {
				return fmt.Errorf("kmeans attempt %d: non-finite compactness: %w", a, ErrComputation)
			}
			results[a] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return clustering{}, err
	}

	best := 0
	for a := 1; a < len(results); a++ {
		if results[a].compactness < results[best].compactness {
			best = a
		}
	}
	return results[best], nil
}

func kmeansAttempt(data []float64, dims, k int, opts KMeansOptions, rng *rand.Rand) clustering {
	n := len(data) / dims
	labels := make([]int32, n)
	counts := make([]int, k)
	centers := make([]float64, k*dims)
	old := make([]float64, k*dims)

	lo, hi := boundingBox(data, dims)
	maxIter := max(opts.MaxIterations, 2)
	eps := opts.Epsilon * opts.Epsilon
	shift := math.MaxFloat64
	compactness := 0.0

	for iter := 0; ; {
		centers, old = old, centers
		if iter == 0 {
			randomCenters(centers, lo, hi, dims, rng)
		} else {
			updateCenters(data, dims, k, labels, centers, old, counts)
			shift = 0
			for c := 0; c < k; c++ {
				shift = max(shift, sqDist(centers[c*dims:(c+1)*dims], old[c*dims:(c+1)*dims]))
			}
		}
		iter++
		if iter == maxIter || shift <= eps {
			break
		}
		compactness = assignLabels(data, dims, k, centers, labels)
	}

	return clustering{
		labels:      labels,
		centers:     centers,
		counts:      counts,
		compactness: compactness,
	}
}

func boundingBox(data []float64, dims int) (lo, hi []float64) {
	lo = make([]float64, dims)
	hi = make([]float64, dims)
	copy(lo, data[:dims])
	copy(hi, data[:dims])
	for i := dims; i < len(data); i += dims {
		for j := 0; j < dims; j++ {
			lo[j] = min(lo[j], data[i+j])
			hi[j] = max(hi[j], data[i+j])
		}
	}
	return lo, hi
}

// randomCenters draws each centre coordinate uniformly from the data range,
// widened by a margin of 1/dims on both sides.
func randomCenters(centers, lo, hi []float64, dims int, rng *rand.Rand) {
	margin := 1 / float64(dims)
	for i := range centers {
		j := i % dims
		centers[i] = (rng.Float64()*(1+2*margin)-margin)*(hi[j]-lo[j]) + lo[j]
	}
}

// assignLabels moves every vector to its nearest centre and returns the
// summed squared distances.
func assignLabels(data []float64, dims, k int, centers []float64, labels []int32) float64 {
	total := 0.0
	for i := range labels {
		p := data[i*dims : (i+1)*dims]
		bestC, bestD := 0, math.MaxFloat64
		for c := 0; c < k; c++ {
			if d := sqDist(p, centers[c*dims:(c+1)*dims]); d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = int32(bestC)
		total += bestD
	}
	return total
}

// updateCenters recomputes centres as label means. A cluster left empty
// takes over the point of the largest cluster farthest from that cluster's
// previous centre.
func updateCenters(data []float64, dims, k int, labels []int32, centers, old []float64, counts []int) {
	clear(centers)
	clear(counts)
	for i, l := range labels {
		counts[l]++
		c := centers[int(l)*dims : (int(l)+1)*dims]
		for j := range c {
			c[j] += data[i*dims+j]
		}
	}

	for c := 0; c < k; c++ {
		if counts[c] != 0 {
			continue
		}
		big := 0
		for j := 1; j < k; j++ {
			if counts[j] > counts[big] {
				big = j
			}
		}
		oldBig := old[big*dims : (big+1)*dims]
		far, farD := -1, -1.0
		for i, l := range labels {
			if int(l) != big {
				continue
			}
			if d := sqDist(data[i*dims:(i+1)*dims], oldBig); d > farD {
				far, farD = i, d
			}
		}
		counts[big]--
		counts[c]++
		labels[far] = int32(c)
		for j := 0; j < dims; j++ {
			v := data[far*dims+j]
			centers[big*dims+j] -= v
			centers[c*dims+j] += v
		}
	}

	for c := 0; c < k; c++ {
		inv := 1 / float64(counts[c])
		for j := 0; j < dims; j++ {
			centers[c*dims+j] *= inv
		}
	}
}

func sqDist(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		t := a[i] - b[i]
		d += t * t
	}
	return d
}
