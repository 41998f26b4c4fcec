package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "number",
				"description": "X coordinate relative to the canvas left edge (" + description + ")",
			},
			"y": map[string]interface{}{
				"type":        "number",
				"description": "Y coordinate relative to the canvas top edge (" + description + ")",
			},
		},
		"required": []string{"x", "y"},
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image
		{
			Name:        "picker_load",
			Description: "Load the image shown on the picker canvas, from a file path or a data URL. Content that is not an image is ignored and reported with accepted=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"data_url": map[string]interface{}{
						"type":        "string",
						"description": "Image as a data URL, e.g. data:image/png;base64,...",
					},
				},
			},
		},

		// Selection mode
		{
			Name:        "picker_toggle",
			Description: "Toggle selection mode. Pointer events only have an effect while selection mode is active.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "picker_select",
			Description: "Turn selection mode on or off.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"active": map[string]interface{}{
						"type":        "boolean",
						"description": "true to start picking, false to stop",
					},
				},
				"required": []string{"active"},
			},
		},

		// Pointer events
		{
			Name:        "picker_pointer_move",
			Description: "Move the pointer over the canvas. Redraws the magnifier loupe and returns the color under the pointer.",
			InputSchema: pointSchema("pixels, fractional allowed"),
		},
		{
			Name:        "picker_pointer_leave",
			Description: "Move the pointer off the canvas. Restores the plain image.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "picker_click",
			Description: "Click on the canvas to pick the color under the pointer. The color is returned and also sent as a notifications/picker/color notification.",
			InputSchema: pointSchema("pixels, fractional allowed"),
		},

		// Inspection
		{
			Name:        "picker_frame",
			Description: "Return the current canvas, or a region of it, as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"layer": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"canvas", "base", "mosaic"},
						"description": "canvas (what is displayed, default), base (plain image) or mosaic (pixelated image)",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive). Omit x2 and y2 for the whole canvas",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
			},
		},
		{
			Name:        "picker_state",
			Description: "Get the picker state: selection mode, readiness, canvas size, pointer, last picked color and options.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "picker_configure",
			Description: "Change loupe and mosaic options. Omitted fields keep their current value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"radius": map[string]interface{}{
						"type":        "number",
						"description": "Loupe radius in canvas pixels (> 0)",
					},
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Magnification factor (>= 1)",
					},
					"block_size": map[string]interface{}{
						"type":        "integer",
						"description": "Mosaic block size in canvas pixels (>= 1)",
					},
					"canvas_width": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas width in pixels, 0 for the image width",
					},
					"strategy": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "per-pixel"},
						"description": "How mosaic blocks are filled",
					},
					"grid": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline mosaic blocks",
					},
					"edge": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"transparent", "clamp"},
						"description": "Loupe behaviour near canvas edges",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
