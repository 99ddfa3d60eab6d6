// Package ops exposes the image-transform catalogue to the boundary
// transports.
//
// Each operation decodes its input, runs one imaging transform with the
// request's parameters (falling back to the configured defaults) and
// encodes the result. Callers classify failures with Classify to pick a
// client or server error response.
package ops

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ironsheep/imageops/internal/imaging"
)

// Operation names.
const (
	Grayscale = "grayscale"
	Noise     = "noise"
	Histogram = "histogram"
	Otsu      = "otsu"
	KMeans    = "kmeans"
	Watershed = "watershed"
	Canny     = "canny"
	Distance  = "distance"
)

// ErrUnknownOperation is returned for operation names outside the catalogue.
var ErrUnknownOperation = errors.New("unknown operation")

// Param documents one optional request parameter.
type Param struct {
	Name        string  `json:"name"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
}

// Operation describes one catalogue entry.
type Operation struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
}

// Params carries optional per-request parameters. Nil fields take the
// processor defaults.
type Params struct {
	K          *int
	Threshold1 *float64
	Threshold2 *float64
}

// Defaults holds the parameter values used when a request omits them.
type Defaults struct {
	K            int
	Threshold1   float64
	Threshold2   float64
	ClipLimit    float64
	TileGrid     int
	MedianKernel int
}

// DefaultDefaults returns the catalogue's built-in parameter values.
func DefaultDefaults() Defaults {
	return Defaults{
		K:            imaging.DefaultClusters,
		Threshold1:   imaging.DefaultCannyLow,
		Threshold2:   imaging.DefaultCannyHigh,
		ClipLimit:    imaging.DefaultClipLimit,
		TileGrid:     imaging.DefaultTileGrid,
		MedianKernel: imaging.DefaultMedianKernel,
	}
}

// Result is the outcome of an image operation.
type Result struct {
	Image imaging.Buffer

	// Palette is set by the kmeans operation only.
	Palette []imaging.PaletteEntry
}

// Processor runs catalogue operations. It is safe for concurrent use.
type Processor struct {
	defaults Defaults
	kmeans   imaging.KMeansOptions
}

// NewProcessor creates a processor with the given defaults and clustering
// options.
func NewProcessor(d Defaults, km imaging.KMeansOptions) *Processor {
	return &Processor{defaults: d, kmeans: km}
}

// Catalogue returns the operation list with the processor's defaults filled
// in.
func (p *Processor) Catalogue() []Operation {
	d := p.defaults
	return []Operation{
		{
			Name:        Grayscale,
			Label:       "grayscale conversion",
			Description: "Convert to a single luminance channel (BT.601 weights)",
		},
		{
			Name:        Noise,
			Label:       "noise reduction",
			Description: "Median filter with a square window",
			Params: []Param{
				{Name: "kernel", Default: float64(d.MedianKernel), Description: "Window side in pixels (odd)"},
			},
		},
		{
			Name:        Histogram,
			Label:       "histogram equalization",
			Description: "Contrast-limited adaptive histogram equalization on luma",
			Params: []Param{
				{Name: "clip_limit", Default: d.ClipLimit, Description: "Histogram clip limit"},
				{Name: "tile_grid", Default: float64(d.TileGrid), Description: "Tiles per axis"},
			},
		},
		{
			Name:        Otsu,
			Label:       "Otsu thresholding",
			Description: "Binarize with a global threshold chosen by Otsu's method",
		},
		{
			Name:        KMeans,
			Label:       "K-Means segmentation",
			Description: "Quantize colours to k cluster centres",
			Params: []Param{
				{Name: "k", Default: float64(d.K), Description: "Number of clusters"},
			},
		},
		{
			Name:        Watershed,
			Label:       "watershed segmentation",
			Description: "Marker-based watershed with boundaries painted red",
		},
		{
			Name:        Canny,
			Label:       "Canny edge detection",
			Description: "Canny edge map with hysteresis thresholds",
			Params: []Param{
				{Name: "threshold1", Default: d.Threshold1, Description: "Lower hysteresis threshold"},
				{Name: "threshold2", Default: d.Threshold2, Description: "Upper hysteresis threshold"},
			},
		},
		{
			Name:        Distance,
			Label:       "distance measurement",
			Description: "Euclidean distance between exactly two points",
		},
	}
}

// Lookup returns the catalogue entry for name.
func (p *Processor) Lookup(name string) (Operation, bool) {
	ops := p.Catalogue()
	i := slices.IndexFunc(ops, func(o Operation) bool { return o.Name == name })
	if i < 0 {
		return Operation{}, false
	}
	return ops[i], true
}

// Apply runs the image operation name on b.
//
// Distance is not an image operation and is rejected here; use Measure.
func (p *Processor) Apply(ctx context.Context, name string, b imaging.Buffer, params Params) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := b.Validate(); err != nil {
		return Result{}, err
	}

	d := p.defaults
	switch name {
	case Grayscale:
		return Result{Image: imaging.Grayscale(b)}, nil
	case Noise:
		return Result{Image: imaging.Denoise(b, d.MedianKernel)}, nil
	case Histogram:
		return Result{Image: imaging.EqualizeContrast(b, d.ClipLimit, d.TileGrid)}, nil
	case Otsu:
		return Result{Image: imaging.Binarize(b)}, nil
	case KMeans:
		k := d.K
		if params.K != nil {
			k = *params.K
		}
		q, err := imaging.QuantizeColors(b, k, p.kmeans)
		if err != nil {
			return Result{}, err
		}
		return Result{Image: q.Image, Palette: q.Palette()}, nil
	case Watershed:
		return Result{Image: imaging.SegmentRegions(b)}, nil
	case Canny:
		t1, t2 := d.Threshold1, d.Threshold2
		if params.Threshold1 != nil {
			t1 = *params.Threshold1
		}
		if params.Threshold2 != nil {
			t2 = *params.Threshold2
		}
		return Result{Image: imaging.DetectEdges(b, t1, t2)}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// ApplyBase64 decodes a base64 image, runs the operation and returns the
// result as base64 PNG. An empty result encodes to "".
func (p *Processor) ApplyBase64(ctx context.Context, name, image string, params Params) (string, Result, error) {
	if _, ok := p.Lookup(name); !ok || name == Distance {
		return "", Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	b, err := imaging.DecodeBase64(image)
	if err != nil {
		return "", Result{}, err
	}
	res, err := p.Apply(ctx, name, b, params)
	if err != nil {
		return "", Result{}, err
	}
	out, err := imaging.EncodeBase64(res.Image)
	if err != nil {
		return "", Result{}, err
	}
	return out, res, nil
}

// Measure returns the distance between exactly two points.
func (p *Processor) Measure(ctx context.Context, points []imaging.Point) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return imaging.MeasureDistance(points)
}
