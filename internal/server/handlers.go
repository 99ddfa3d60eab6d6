package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/imageops/internal/imaging"
	"github.com/ironsheep/imageops/internal/logging"
	"github.com/ironsheep/imageops/internal/ops"
)

var errUnknownTool = errors.New("unknown tool")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_canny", "measure_distance").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ImageResult is returned by every image tool.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Channels    int    `json:"channels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// KMeansResult adds the cluster palette to an ImageResult.
type KMeansResult struct {
	ImageResult
	Palette []imaging.PaletteEntry `json:"palette"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Caller mistakes (undecodable image, bad arguments) return -32602. Unknown
// tools and computation failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("request_id", uuid.NewString()),
		slog.String("tool", params.Name),
	)
	start := time.Now()

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	elapsed := time.Since(start)
	if err != nil {
		if !errors.Is(err, errUnknownTool) && ops.Classify(err) == ops.KindClient {
			s.log.WarnContext(ctx, "tool rejected", "duration", elapsed, "error", err)
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		s.log.ErrorContext(ctx, "tool failed", "duration", elapsed, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.log.InfoContext(ctx, "tool completed", "duration", elapsed)

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if name == "measure_distance" {
		return s.handleMeasureDistance(ctx, args)
	}
	op, ok := toolOperations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
	return s.handleImageTool(ctx, op, args)
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// imageToolArgs covers the arguments of every image tool; parameters a tool
// does not use are ignored.
type imageToolArgs struct {
	ImageBase64 string   `json:"image_base64"`
	Path        string   `json:"path"`
	K           *int     `json:"k"`
	Threshold1  *float64 `json:"threshold1"`
	Threshold2  *float64 `json:"threshold2"`
}

type distanceArgs struct {
	Points []imaging.Point `json:"points"`
}

func (s *Server) handleImageTool(ctx context.Context, op string, args json.RawMessage) (interface{}, error) {
	var a imageToolArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	src, err := s.loadImage(a)
	if err != nil {
		return nil, err
	}

	res, err := s.proc.Apply(ctx, op, src, ops.Params{
		K:          a.K,
		Threshold1: a.Threshold1,
		Threshold2: a.Threshold2,
	})
	if err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodeBase64(res.Image)
	if err != nil {
		return nil, err
	}
	out := ImageResult{
		Width:       res.Image.Width,
		Height:      res.Image.Height,
		Channels:    res.Image.Channels,
		ImageBase64: encoded,
		MimeType:    imaging.MimeType,
	}
	if op == ops.KMeans {
		return KMeansResult{ImageResult: out, Palette: res.Palette}, nil
	}
	return out, nil
}

func (s *Server) handleMeasureDistance(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a distanceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.proc.Measure(ctx, a.Points); err != nil {
		return nil, err
	}
	return imaging.Measure(a.Points[0], a.Points[1]), nil
}

// loadImage decodes inline base64 when present, otherwise reads path
// through the cache.
func (s *Server) loadImage(a imageToolArgs) (imaging.Buffer, error) {
	switch {
	case a.ImageBase64 != "":
		return imaging.DecodeBase64(a.ImageBase64)
	case a.Path != "":
		b, err := s.cache.Load(a.Path)
		if err != nil && !errors.Is(err, imaging.ErrDecode) {
			// Unreadable paths are the caller's mistake too
			return imaging.Buffer{}, fmt.Errorf("%v: %w", err, imaging.ErrInvalidInput)
		}
		return b, err
	default:
		return imaging.Buffer{}, fmt.Errorf("image_base64 or path is required: %w", imaging.ErrInvalidInput)
	}
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %v: %w", err, imaging.ErrInvalidInput)
	}
	return nil
}
