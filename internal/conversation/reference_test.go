package conversation

import (
	"encoding/json"
	"testing"

	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

func TestNormalizeReference_Totality(t *testing.T) {
	t.Parallel()

	want := Reference{DocumentName: UnknownDocument}

	tests := []struct {
		name string
		raw  any
	}{
		{"empty map", map[string]any{}},
		{"zero chunk", ragflow.Chunk{}},
		{"nil chunk pointer", (*ragflow.Chunk)(nil)},
		{"nil input", nil},
		{"unrelated type", 42},
		{"string input", "not a reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeReference(tt.raw)
			if got != want {
				t.Errorf("NormalizeReference(%v) = %+v, want %+v", tt.raw, got, want)
			}
		})
	}
}

func TestNormalizeReference_MapShape(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"document_name": "handbook.pdf",
		"similarity":    0.93,
		"content":       "relevant passage",
		"document_id":   "doc-17",
	}

	got := NormalizeReference(raw)
	want := Reference{
		DocumentName: "handbook.pdf",
		Similarity:   0.93,
		Content:      "relevant passage",
		DocumentID:   "doc-17",
	}
	if got != want {
		t.Errorf("NormalizeReference = %+v, want %+v", got, want)
	}
}

func TestNormalizeReference_MapShape_PartialAndWrongTypes(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"document_name": 123,                  // wrong type -> default
		"similarity":    json.Number("0.25"),  // decoder variant -> parsed
		"content":       nil,                  // nil -> default
	}

	got := NormalizeReference(raw)
	if got.DocumentName != UnknownDocument {
		t.Errorf("DocumentName = %q, want %q", got.DocumentName, UnknownDocument)
	}
	if got.Similarity != 0.25 {
		t.Errorf("Similarity = %v, want 0.25", got.Similarity)
	}
	if got.Content != "" || got.DocumentID != "" {
		t.Errorf("Content/DocumentID = %q/%q, want empty", got.Content, got.DocumentID)
	}
}

func TestNormalizeReference_ChunkShape(t *testing.T) {
	t.Parallel()

	chunk := ragflow.Chunk{
		DocumentName: "notes.md",
		DocumentID:   "doc-9",
		Content:      "cited text",
		Similarity:   0.71,
	}

	got := NormalizeReference(chunk)
	want := Reference{
		DocumentName: "notes.md",
		Similarity:   0.71,
		Content:      "cited text",
		DocumentID:   "doc-9",
	}
	if got != want {
		t.Errorf("NormalizeReference = %+v, want %+v", got, want)
	}

	// Pointer form normalizes identically.
	if byPtr := NormalizeReference(&chunk); byPtr != want {
		t.Errorf("NormalizeReference(ptr) = %+v, want %+v", byPtr, want)
	}
}

func TestNormalizeReferences_EmptyYieldsNil(t *testing.T) {
	t.Parallel()

	if got := NormalizeReferences(nil); got != nil {
		t.Errorf("NormalizeReferences(nil) = %v, want nil", got)
	}
	if got := NormalizeReferences([]any{}); got != nil {
		t.Errorf("NormalizeReferences(empty) = %v, want nil", got)
	}
}

func TestNormalizeReferences_MixedShapes(t *testing.T) {
	t.Parallel()

	raws := []any{
		map[string]any{"document_name": "a.txt"},
		ragflow.Chunk{DocumentName: "b.txt"},
	}

	refs := NormalizeReferences(raws)
	if len(refs) != 2 {
		t.Fatalf("len = %d, want 2", len(refs))
	}
	if refs[0].DocumentName != "a.txt" || refs[1].DocumentName != "b.txt" {
		t.Errorf("refs = %+v", refs)
	}
}
