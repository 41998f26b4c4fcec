package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"picker_load",
		"picker_toggle",
		"picker_select",
		"picker_pointer_move",
		"picker_pointer_leave",
		"picker_click",
		"picker_frame",
		"picker_state",
		"picker_configure",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_PointerCoordinates(t *testing.T) {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range []string{"picker_pointer_move", "picker_click"} {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			if !ok {
				t.Fatalf("%s not found", name)
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			want := map[string]bool{"x": true, "y": true}
			for _, r := range required {
				delete(want, r)
			}
			for missing := range want {
				t.Errorf("%s should require '%s'", name, missing)
			}

			props := tool.InputSchema["properties"].(map[string]interface{})
			x := props["x"].(map[string]interface{})
			if x["type"] != "number" {
				t.Errorf("x type: got %v, want number (fractional coordinates)", x["type"])
			}
		})
	}
}

func TestToolDefinitions_ConfigureEnums(t *testing.T) {
	var tool Tool
	for _, tt := range GetToolDefinitions() {
		if tt.Name == "picker_configure" {
			tool = tt
			break
		}
	}
	if tool.Name == "" {
		t.Fatal("picker_configure tool not found")
	}

	props := tool.InputSchema["properties"].(map[string]interface{})
	for key, want := range map[string][]string{
		"strategy": {"top-left", "per-pixel"},
		"edge":     {"transparent", "clamp"},
	} {
		prop, ok := props[key].(map[string]interface{})
		if !ok {
			t.Errorf("missing %s property", key)
			continue
		}
		enum, ok := prop["enum"].([]string)
		if !ok || len(enum) != len(want) {
			t.Errorf("%s enum: got %v, want %v", key, prop["enum"], want)
			continue
		}
		for i := range want {
			if enum[i] != want[i] {
				t.Errorf("%s enum[%d]: got %s, want %s", key, i, enum[i], want[i])
			}
		}
	}
}
