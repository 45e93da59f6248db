package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultResponseMapper_MapToToolResponse(t *testing.T) {
	mapper := NewResponseMapper()

	t.Run("nil result", func(t *testing.T) {
		response, err := mapper.MapToToolResponse(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if response == nil {
			t.Fatal("expected non-nil response")
		}
		if len(response.Content) != 1 {
			t.Fatalf("expected 1 content block, got %d", len(response.Content))
		}
		if response.Content[0].Type != "text" {
			t.Errorf("expected type 'text', got %s", response.Content[0].Type)
		}
		if response.Content[0].Text != "[]" {
			t.Errorf("expected empty JSON array, got %s", response.Content[0].Text)
		}
		if response.IsError {
			t.Error("expected IsError to be false")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		response, err := mapper.MapToToolResponse(SearchResult{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if response.Content[0].Text != "[]" {
			t.Errorf("expected empty JSON array, got %s", response.Content[0].Text)
		}
	})

	t.Run("records pass through unmodified", func(t *testing.T) {
		result := SearchResult{
			{
				"id":    "12345",
				"title": "Release notes",
				"space": map[string]interface{}{"key": "DOCS"},
			},
			{
				"id":    "67890",
				"title": "Runbook",
			},
		}

		response, err := mapper.MapToToolResponse(result)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(response.Content) != 1 {
			t.Fatalf("expected 1 content block, got %d", len(response.Content))
		}

		// The text must decode back to exactly the input records
		var decoded []map[string]interface{}
		if err := json.Unmarshal([]byte(response.Content[0].Text), &decoded); err != nil {
			t.Fatalf("content is not valid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 records, got %d", len(decoded))
		}
		if decoded[0]["id"] != "12345" {
			t.Errorf("expected first record id '12345', got %v", decoded[0]["id"])
		}
		space, ok := decoded[0]["space"].(map[string]interface{})
		if !ok || space["key"] != "DOCS" {
			t.Errorf("expected nested space key to survive, got %v", decoded[0]["space"])
		}
	})

	t.Run("output is indented", func(t *testing.T) {
		result := SearchResult{{"key": "OPS-1"}}

		response, err := mapper.MapToToolResponse(result)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := response.Content[0].Text
		if !strings.Contains(text, "\n") {
			t.Error("expected pretty-printed JSON with newlines")
		}
		if !strings.Contains(text, `  "key"`) {
			t.Errorf("expected two-space indentation, got:\n%s", text)
		}
	})

	t.Run("serialization is deterministic", func(t *testing.T) {
		result := SearchResult{
			{"zebra": 1.0, "alpha": 2.0, "mike": 3.0},
		}

		first, err := mapper.MapToToolResponse(result)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := mapper.MapToToolResponse(result)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if first.Content[0].Text != second.Content[0].Text {
			t.Error("expected identical output for identical input")
		}

		// Map keys are rendered in sorted order
		text := first.Content[0].Text
		alphaIdx := strings.Index(text, "alpha")
		mikeIdx := strings.Index(text, "mike")
		zebraIdx := strings.Index(text, "zebra")
		if !(alphaIdx < mikeIdx && mikeIdx < zebraIdx) {
			t.Errorf("expected sorted keys, got:\n%s", text)
		}
	})

	t.Run("round trip preserves record order", func(t *testing.T) {
		result := SearchResult{
			{"key": "OPS-3"},
			{"key": "OPS-1"},
			{"key": "OPS-2"},
		}

		response, err := mapper.MapToToolResponse(result)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var decoded SearchResult
		if err := json.Unmarshal([]byte(response.Content[0].Text), &decoded); err != nil {
			t.Fatalf("content is not valid JSON: %v", err)
		}
		if !reflect.DeepEqual(decoded, result) {
			t.Errorf("expected record order preserved, got %v", decoded)
		}
	})
}
