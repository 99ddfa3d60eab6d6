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
		"image_grayscale",
		"image_noise_reduction",
		"image_histogram_equalization",
		"image_otsu_threshold",
		"image_kmeans",
		"image_watershed",
		"image_canny",
		"measure_distance",
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
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
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

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Error("InputSchema missing 'properties' field")
			}
		})
	}
}

func TestToolDefinitions_ImageInput(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if _, ok := toolOperations[tool.Name]; !ok {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, key := range []string{"image_base64", "path"} {
				if _, ok := props[key]; !ok {
					t.Errorf("missing %s property", key)
				}
			}
		})
	}
}

func TestToolDefinitions_Parameters(t *testing.T) {
	tests := []struct {
		tool  string
		props []string
	}{
		{"image_kmeans", []string{"k"}},
		{"image_canny", []string{"threshold1", "threshold2"}},
		{"measure_distance", []string{"points"}},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool, ok := toolMap[tt.tool]
			if !ok {
				t.Fatalf("tool %s not found", tt.tool)
			}
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, p := range tt.props {
				if _, ok := props[p]; !ok {
					t.Errorf("missing %s property", p)
				}
			}
		})
	}
}

func TestToolOperations_AllDefined(t *testing.T) {
	defined := make(map[string]bool)
	for _, tool := range GetToolDefinitions() {
		defined[tool.Name] = true
	}
	for name := range toolOperations {
		if !defined[name] {
			t.Errorf("operation mapping for undefined tool %s", name)
		}
	}
}
