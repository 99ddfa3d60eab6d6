// Package server exposes the image operation catalogue over two transports.
//
// # MCP over stdio
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Available tools:
//   - image_grayscale: Luminance conversion
//   - image_noise_reduction: 3x3 median filter
//   - image_histogram_equalization: CLAHE on luma
//   - image_otsu_threshold: Otsu binarization
//   - image_kmeans: Colour quantization with palette (k)
//   - image_watershed: Marker-based segmentation, boundaries in red
//   - image_canny: Canny edge map (threshold1, threshold2)
//   - measure_distance: Distance between two points
//
// Image tools take either image_base64 or a path. Images read from a path
// are decoded once and cached for the lifetime of the server.
//
// # HTTP
//
// Handler serves the same operations as REST routes under /api/process/,
// taking a JSON body {"base64Image", "k", "threshold1", "threshold2"} and
// answering with the result as bare base64 PNG text. Configured origins get
// CORS headers; OPTIONS preflights are answered directly.
//
// # Error Handling
//
// MCP errors use code -32602 for caller mistakes (undecodable image,
// invalid arguments), -32000 for unknown tools and computation failures, and
// -32601 for unknown methods. HTTP answers 400 or 500 with a text body of
// the form "Error during <operation>: <message>".
//
// # Usage
//
//	srv := server.New(proc, server.Options{Logger: log})
//	if err := srv.Run(ctx); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package server
