package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question":   map[string]any{"type": "string"},
						"difficulty": map[string]any{"type": "integer"},
						"band":       map[string]any{"type": "string", "enum": []string{"easy", "hard"}},
					},
					"required": []string{"question", "difficulty"},
				},
			},
		},
		"required": []any{"questions"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT, got %s", schema.Type)
	}
	if len(schema.Required) != 1 {
		t.Fatalf("expected 1 required field, got %d", len(schema.Required))
	}
	list := schema.Properties["questions"]
	if list.Type != genai.TypeArray || list.MinItems == nil || *list.MinItems != 1 {
		t.Fatalf("unexpected array schema: %+v", list)
	}
	item := list.Items
	if item.Properties["difficulty"].Type != genai.TypeInteger {
		t.Fatalf("expected INTEGER difficulty, got %s", item.Properties["difficulty"].Type)
	}
	if len(item.Properties["band"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(item.Properties["band"].Enum))
	}
	if len(item.Required) != 2 {
		t.Fatalf("expected 2 required item fields, got %d", len(item.Required))
	}
}
