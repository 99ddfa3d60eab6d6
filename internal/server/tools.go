package server

import "github.com/ironsheep/imageops/internal/ops"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// toolOperations maps image tool names to catalogue operations.
var toolOperations = map[string]string{
	"image_grayscale":              ops.Grayscale,
	"image_noise_reduction":        ops.Noise,
	"image_histogram_equalization": ops.Histogram,
	"image_otsu_threshold":         ops.Otsu,
	"image_kmeans":                 ops.KMeans,
	"image_watershed":              ops.Watershed,
	"image_canny":                  ops.Canny,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_grayscale",
			Description: "Convert an image to a single luminance channel using BT.601 weights. Returns a base64-encoded PNG.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_noise_reduction",
			Description: "Reduce salt-and-pepper noise with a 3x3 median filter applied to each channel. Edges are preserved.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_histogram_equalization",
			Description: "Boost local contrast with CLAHE (clip limit 3.0, 8x8 tiles). Colour images are equalized on luma only so hues are kept.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_otsu_threshold",
			Description: "Binarize an image with a global threshold chosen by Otsu's method. Output pixels are 0 or 255.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_kmeans",
			Description: "Quantize colours with k-means clustering. Every pixel is replaced by its cluster centre; the result includes the palette with pixel shares.",
			InputSchema: imageSchema(map[string]interface{}{
				"k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of clusters. Default 2",
					"default":     2,
					"minimum":     1,
				},
			}),
		},
		{
			Name:        "image_watershed",
			Description: "Segment touching objects with marker-based watershed. Region boundaries, including the image border, are painted pure red (255,0,0).",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_canny",
			Description: "Detect edges with the Canny algorithm. Output is a single-channel edge map with values 0 and 255.",
			InputSchema: imageSchema(map[string]interface{}{
				"threshold1": map[string]interface{}{
					"type":        "number",
					"description": "Lower hysteresis threshold. Default 50",
					"default":     50,
				},
				"threshold2": map[string]interface{}{
					"type":        "number",
					"description": "Upper hysteresis threshold. Default 100",
					"default":     100,
				},
			}),
		},
		{
			Name:        "measure_distance",
			Description: "Measure the Euclidean distance in pixels between exactly two points, with the X/Y deltas and direction angle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Exactly two points [{x, y}, {x, y}]",
						"minItems":    2,
						"maxItems":    2,
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"points"},
			},
		},
	}
}

// imageSchema returns the input schema shared by image tools: one of
// image_base64 or path, plus extra properties.
func imageSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP). A data: URL prefix is accepted",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file. Used when image_base64 is absent",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
}
