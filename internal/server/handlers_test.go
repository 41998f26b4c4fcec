package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/loupe"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

func solidImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, solidImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// callTool runs a tools/call request for name with args.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

func loadRed(t *testing.T, s *Server) {
	t.Helper()
	var res LoadResult
	decodeResult(t, callTool(t, s, "picker_load", map[string]interface{}{
		"path": createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255}),
	}), &res)
	if !res.Accepted {
		t.Fatalf("load rejected: %s", res.Reason)
	}
}

func TestHandleToolsCall_LoadFile(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var res LoadResult
	decodeResult(t, callTool(t, s, "picker_load", map[string]interface{}{"path": imgPath}), &res)

	if !res.Accepted {
		t.Fatalf("load rejected: %s", res.Reason)
	}
	if res.Image == nil || res.Image.Width != 100 || res.Image.Height != 80 || res.Image.Format != "png" {
		t.Errorf("image info: %+v", res.Image)
	}
	if res.CanvasWidth != 100 || res.CanvasHeight != 80 {
		t.Errorf("canvas: got %dx%d, want 100x80", res.CanvasWidth, res.CanvasHeight)
	}
}

func TestHandleToolsCall_LoadDataURL(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(30, 20, color.RGBA{0, 255, 0, 255})); err != nil {
		t.Fatal(err)
	}

	var res LoadResult
	decodeResult(t, callTool(t, s, "picker_load", map[string]interface{}{
		"data_url": imaging.EncodeDataURL(buf.Bytes()),
	}), &res)

	if !res.Accepted || res.CanvasWidth != 30 || res.CanvasHeight != 20 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestHandleToolsCall_LoadNonImage(t *testing.T) {
	s := newTestServer(t)
	loadRed(t, s)

	path := filepath.Join(t.TempDir(), "readme.txt")
	if err := os.WriteFile(path, []byte("hello, not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	var res LoadResult
	decodeResult(t, callTool(t, s, "picker_load", map[string]interface{}{"path": path}), &res)

	if res.Accepted {
		t.Fatal("non-image file should not be accepted")
	}
	if !strings.Contains(res.Reason, "not an image") {
		t.Errorf("reason: got %q", res.Reason)
	}

	// The red image is still shown.
	st := s.Picker().State()
	if !st.Ready || st.Image == nil || st.Image.Width != 100 {
		t.Errorf("state changed after rejected load: %+v", st)
	}
}

func TestHandleToolsCall_LoadErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing file", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"no source", map[string]interface{}{}},
		{"both sources", map[string]interface{}{"path": "/a.png", "data_url": "data:image/png;base64,AA=="}},
		{"bad data url", map[string]interface{}{"data_url": "image/png;base64,AA=="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "picker_load", tt.args)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_SelectionMode(t *testing.T) {
	s := newTestServer(t)

	var mode map[string]string
	decodeResult(t, callTool(t, s, "picker_toggle", nil), &mode)
	if mode["mode"] != "active" {
		t.Errorf("after toggle: got %v, want active", mode["mode"])
	}

	decodeResult(t, callTool(t, s, "picker_select", map[string]interface{}{"active": false}), &mode)
	if mode["mode"] != "idle" {
		t.Errorf("after select false: got %v, want idle", mode["mode"])
	}

	if resp := callTool(t, s, "picker_select", map[string]interface{}{}); resp.Error == nil {
		t.Error("picker_select without active should fail")
	}
}

func TestHandleToolsCall_PointerMove(t *testing.T) {
	s := newTestServer(t)
	loadRed(t, s)

	var res MoveResult
	decodeResult(t, callTool(t, s, "picker_pointer_move", map[string]interface{}{"x": 50, "y": 40}), &res)
	if res.Rendered {
		t.Error("pointer move should not render while idle")
	}

	callTool(t, s, "picker_select", map[string]interface{}{"active": true})
	decodeResult(t, callTool(t, s, "picker_pointer_move", map[string]interface{}{"x": 50.5, "y": 40.25}), &res)
	if !res.Rendered || res.Hex != "#FF0000" {
		t.Errorf("active move: %+v", res)
	}

	if resp := callTool(t, s, "picker_pointer_move", map[string]interface{}{"x": 1}); resp.Error == nil {
		t.Error("pointer move without y should fail")
	}
}

func TestHandleToolsCall_PointerLeave(t *testing.T) {
	s := newTestServer(t)
	loadRed(t, s)
	callTool(t, s, "picker_select", map[string]interface{}{"active": true})
	callTool(t, s, "picker_pointer_move", map[string]interface{}{"x": 50, "y": 40})

	var mode map[string]string
	decodeResult(t, callTool(t, s, "picker_pointer_leave", nil), &mode)
	if mode["mode"] != "active" {
		t.Errorf("mode after leave: got %v", mode["mode"])
	}
	if !bytes.Equal(s.Picker().Frame().Pix, s.Picker().Base().Pix) {
		t.Error("pointer leave should restore the base image")
	}
}

func TestHandleToolsCall_Click(t *testing.T) {
	s := newTestServer(t)
	var out bytes.Buffer
	s.enc = json.NewEncoder(&out)
	loadRed(t, s)

	var res ClickResult
	decodeResult(t, callTool(t, s, "picker_click", map[string]interface{}{"x": 50, "y": 50}), &res)
	if res.Picked || res.Color != nil {
		t.Errorf("idle click should be ignored: %+v", res)
	}
	if out.Len() != 0 {
		t.Errorf("idle click sent a notification: %s", out.String())
	}

	callTool(t, s, "picker_toggle", nil)
	decodeResult(t, callTool(t, s, "picker_click", map[string]interface{}{"x": 50, "y": 50}), &res)
	if !res.Picked || res.Color == nil || res.Color.Hex != "#FF0000" {
		t.Fatalf("active click: %+v", res)
	}
	if res.Color.HSL.H != 0 || res.Color.HSL.S != 100 || res.Color.HSL.L != 50 {
		t.Errorf("HSL: got %+v, want {0 100 50}", res.Color.HSL)
	}

	var note struct {
		Method string              `json:"method"`
		Params imaging.ColorResult `json:"params"`
	}
	if err := json.Unmarshal(out.Bytes(), &note); err != nil {
		t.Fatalf("failed to decode notification %q: %v", out.String(), err)
	}
	if note.Method != ColorNotification || note.Params.Hex != "#FF0000" {
		t.Errorf("notification: %+v", note)
	}
}

func TestHandleToolsCall_Frame(t *testing.T) {
	s := newTestServer(t)

	if resp := callTool(t, s, "picker_frame", nil); resp.Error == nil {
		t.Error("frame without an image should fail")
	}

	loadRed(t, s)

	tests := []struct {
		name          string
		args          map[string]interface{}
		width, height int
	}{
		{"canvas", map[string]interface{}{}, 100, 80},
		{"base layer", map[string]interface{}{"layer": "base"}, 100, 80},
		{"mosaic layer", map[string]interface{}{"layer": "mosaic"}, 100, 80},
		{"region", map[string]interface{}{"x1": 10, "y1": 10, "x2": 30, "y2": 20}, 20, 10},
		{"scaled region", map[string]interface{}{"x1": 0, "y1": 0, "x2": 10, "y2": 10, "scale": 3}, 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res imaging.EncodedImage
			decodeResult(t, callTool(t, s, "picker_frame", tt.args), &res)

			if res.Width != tt.width || res.Height != tt.height {
				t.Errorf("size: got %dx%d, want %dx%d", res.Width, res.Height, tt.width, tt.height)
			}
			data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
			if err != nil {
				t.Fatalf("bad base64: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("bad PNG: %v", err)
			}
			if img.Bounds().Dx() != tt.width {
				t.Errorf("decoded width: got %d, want %d", img.Bounds().Dx(), tt.width)
			}
		})
	}

	if resp := callTool(t, s, "picker_frame", map[string]interface{}{"layer": "ring"}); resp.Error == nil {
		t.Error("unknown layer should fail")
	}
	if resp := callTool(t, s, "picker_frame", map[string]interface{}{"x1": 0, "y1": 0, "x2": 500, "y2": 10}); resp.Error == nil {
		t.Error("region outside the canvas should fail")
	}
}

func TestHandleToolsCall_State(t *testing.T) {
	s := newTestServer(t)
	loadRed(t, s)
	callTool(t, s, "picker_toggle", nil)
	callTool(t, s, "picker_click", map[string]interface{}{"x": 3, "y": 3})

	var st map[string]interface{}
	decodeResult(t, callTool(t, s, "picker_state", nil), &st)

	if st["mode"] != "active" || st["ready"] != true || st["last_color"] != "#FF0000" {
		t.Errorf("state: %v", st)
	}
	if st["canvas_width"] != float64(100) || st["canvas_height"] != float64(80) {
		t.Errorf("canvas: %v x %v", st["canvas_width"], st["canvas_height"])
	}
}

func TestHandleToolsCall_Configure(t *testing.T) {
	s := newTestServer(t)
	loadRed(t, s)

	var opts picker.Options
	decodeResult(t, callTool(t, s, "picker_configure", map[string]interface{}{
		"block_size": 10,
		"zoom":       2.5,
		"edge":       "clamp",
		"grid":       true,
	}), &opts)

	want := picker.DefaultOptions()
	want.BlockSize = 10
	want.Zoom = 2.5
	want.Grid = true
	want.Edge = loupe.EdgeClamp
	if opts != want {
		t.Errorf("options: got %+v, want %+v", opts, want)
	}
	if m := s.Picker().Mosaic(); m == nil || m.BlockSize != 10 {
		t.Errorf("mosaic not rebuilt: %+v", m)
	}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"zoom below one", map[string]interface{}{"zoom": 0.5}},
		{"zero radius", map[string]interface{}{"radius": 0}},
		{"bad strategy", map[string]interface{}{"strategy": "average"}},
		{"bad edge", map[string]interface{}{"edge": "wrap"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := callTool(t, s, "picker_configure", tt.args); resp.Error == nil {
				t.Error("expected an error response")
			}
			if got := s.Picker().Options(); got != want {
				t.Errorf("options changed after rejected configure: %+v", got)
			}
		})
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "image_ocr_full", map[string]interface{}{})
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	}

	resp := s.handleRequest(context.Background(), req)
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestServe_ClickNotificationPrecedesResponse(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 20, 20, color.RGBA{0, 0, 255, 255})

	lines := []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"picker_load","arguments":{"path":` + mustMarshalJSON(imgPath) + `}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"picker_toggle"}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"picker_click","arguments":{"x":5,"y":5}}}`,
	}

	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	msgs := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4:\n%s", len(msgs), out.String())
	}
	if !strings.Contains(msgs[2], ColorNotification) || !strings.Contains(msgs[2], "#0000FF") {
		t.Errorf("third message should be the color notification: %s", msgs[2])
	}
	if !strings.Contains(msgs[3], `"id":3`) {
		t.Errorf("last message should answer the click: %s", msgs[3])
	}
}
