package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/loupe"
	"github.com/ironsheep/color-picker-mcp/internal/mosaic"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "picker_load", "picker_click").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
	switch name {
	// Image
	case "picker_load":
		return s.handlePickerLoad(ctx, args)

	// Selection mode
	case "picker_toggle":
		return &ModeResult{Mode: s.picker.Toggle()}, nil
	case "picker_select":
		return s.handlePickerSelect(args)

	// Pointer events
	case "picker_pointer_move":
		return s.handlePickerPointerMove(args)
	case "picker_pointer_leave":
		s.picker.PointerLeave()
		return &ModeResult{Mode: s.picker.State().Mode}, nil
	case "picker_click":
		return s.handlePickerClick(args)

	// Inspection
	case "picker_frame":
		return s.handlePickerFrame(args)
	case "picker_state":
		return s.picker.State(), nil
	case "picker_configure":
		return s.handlePickerConfigure(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Image Handlers ===

type pickerLoadArgs struct {
	Path    string `json:"path"`
	DataURL string `json:"data_url"`
}

// LoadResult reports the outcome of picker_load.
type LoadResult struct {
	Accepted     bool               `json:"accepted"`
	Reason       string             `json:"reason,omitempty"`
	Image        *imaging.ImageInfo `json:"image,omitempty"`
	CanvasWidth  int                `json:"canvas_width,omitempty"`
	CanvasHeight int                `json:"canvas_height,omitempty"`
}

func (s *Server) handlePickerLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pickerLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var src picker.Source
	switch {
	case a.Path != "" && a.DataURL != "":
		return nil, fmt.Errorf("give either path or data_url, not both")
	case a.Path != "":
		src = picker.FromFile(s.cache, a.Path)
	case a.DataURL != "":
		src = picker.FromDataURL(a.DataURL)
	default:
		return nil, fmt.Errorf("path or data_url is required")
	}

	err := s.picker.Load(ctx, src)
	switch {
	case errors.Is(err, imaging.ErrNotImage), errors.Is(err, picker.ErrStaleLoad):
		return &LoadResult{Accepted: false, Reason: err.Error()}, nil
	case err != nil:
		return nil, err
	}

	st := s.picker.State()
	return &LoadResult{
		Accepted:     true,
		Image:        st.Image,
		CanvasWidth:  st.CanvasWidth,
		CanvasHeight: st.CanvasHeight,
	}, nil
}

// === Selection Mode Handlers ===

// ModeResult reports the selection mode after a call.
type ModeResult struct {
	Mode picker.Mode `json:"mode"`
}

type pickerSelectArgs struct {
	Active *bool `json:"active"`
}

func (s *Server) handlePickerSelect(args json.RawMessage) (interface{}, error) {
	var a pickerSelectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Active == nil {
		return nil, fmt.Errorf("active is required")
	}
	return &ModeResult{Mode: s.picker.SetSelecting(*a.Active)}, nil
}

// === Pointer Event Handlers ===

type pointerArgs struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (a pointerArgs) point() (loupe.Point, error) {
	if a.X == nil || a.Y == nil {
		return loupe.Point{}, fmt.Errorf("x and y are required")
	}
	return loupe.Point{X: *a.X, Y: *a.Y}, nil
}

// MoveResult reports whether the loupe was drawn and the color under it.
type MoveResult struct {
	Rendered bool   `json:"rendered"`
	Hex      string `json:"hex,omitempty"`
}

func (s *Server) handlePickerPointerMove(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := a.point()
	if err != nil {
		return nil, err
	}
	hex, ok := s.picker.PointerMove(p)
	return &MoveResult{Rendered: ok, Hex: hex}, nil
}

// ClickResult reports the picked color. Picked is false when the click was
// ignored because selection mode is off or no image is ready.
type ClickResult struct {
	Picked bool                 `json:"picked"`
	Color  *imaging.ColorResult `json:"color,omitempty"`
}

func (s *Server) handlePickerClick(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := a.point()
	if err != nil {
		return nil, err
	}
	c, ok := s.picker.Click(p)
	return &ClickResult{Picked: ok, Color: c}, nil
}

// === Inspection Handlers ===

type pickerFrameArgs struct {
	Layer string  `json:"layer"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handlePickerFrame(args json.RawMessage) (interface{}, error) {
	var a pickerFrameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	var img image.Image
	switch a.Layer {
	case "", "canvas":
		img = s.picker.Frame()
	case "base":
		if b := s.picker.Base(); b != nil {
			img = b
		}
	case "mosaic":
		if m := s.picker.Mosaic(); m != nil {
			img = m.Image
		}
	default:
		return nil, fmt.Errorf("unknown layer %q", a.Layer)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("no image loaded")
	}

	var region *imaging.Region
	if a.X2 != 0 || a.Y2 != 0 {
		region = &imaging.Region{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
	}
	return imaging.EncodeRegion(img, region, a.Scale)
}

type pickerConfigureArgs struct {
	Radius      *float64 `json:"radius"`
	Zoom        *float64 `json:"zoom"`
	BlockSize   *int     `json:"block_size"`
	CanvasWidth *int     `json:"canvas_width"`
	Strategy    *string  `json:"strategy"`
	Grid        *bool    `json:"grid"`
	Edge        *string  `json:"edge"`
}

func (s *Server) handlePickerConfigure(args json.RawMessage) (interface{}, error) {
	var a pickerConfigureArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	opts := s.picker.Options()
	if a.Radius != nil {
		opts.Radius = *a.Radius
	}
	if a.Zoom != nil {
		opts.Zoom = *a.Zoom
	}
	if a.BlockSize != nil {
		opts.BlockSize = *a.BlockSize
	}
	if a.CanvasWidth != nil {
		opts.CanvasWidth = *a.CanvasWidth
	}
	if a.Strategy != nil {
		st, err := mosaic.ParseStrategy(*a.Strategy)
		if err != nil {
			return nil, err
		}
		opts.Strategy = st
	}
	if a.Grid != nil {
		opts.Grid = *a.Grid
	}
	if a.Edge != nil {
		e, err := loupe.ParseEdgePolicy(*a.Edge)
		if err != nil {
			return nil, err
		}
		opts.Edge = e
	}

	if err := s.picker.Configure(opts); err != nil {
		return nil, err
	}
	return s.picker.Options(), nil
}
