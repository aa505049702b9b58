package conversation

import (
	"encoding/json"

	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// UnknownDocument is the placeholder name for citations whose source
// document could not be determined.
const UnknownDocument = "unknown document"

// Reference is the canonical citation record. It is produced only by
// NormalizeReference; every other representation is a transient input.
type Reference struct {
	DocumentName string  `json:"document_name"`
	Similarity   float64 `json:"similarity"`
	Content      string  `json:"content"`
	DocumentID   string  `json:"document_id"`
}

// NormalizeReference converts a raw backend citation into the canonical
// shape. The server returns citations either as loose key/value maps or
// as typed chunk records depending on its version; missing fields fall
// back to documented defaults. Total: it never fails, whatever the input.
func NormalizeReference(raw any) Reference {
	switch v := raw.(type) {
	case map[string]any:
		return referenceFromMap(v)
	case ragflow.Chunk:
		return referenceFromChunk(v)
	case *ragflow.Chunk:
		if v == nil {
			return defaultReference()
		}
		return referenceFromChunk(*v)
	default:
		return defaultReference()
	}
}

// NormalizeReferences normalizes a raw citation list. Returns nil for an
// empty input so assistant turns omit the field entirely instead of
// carrying an empty-but-present list.
func NormalizeReferences(raws []any) []Reference {
	if len(raws) == 0 {
		return nil
	}
	refs := make([]Reference, len(raws))
	for i, raw := range raws {
		refs[i] = NormalizeReference(raw)
	}
	return refs
}

func defaultReference() Reference {
	return Reference{DocumentName: UnknownDocument}
}

func referenceFromChunk(c ragflow.Chunk) Reference {
	name := c.DocumentName
	if name == "" {
		name = UnknownDocument
	}
	return Reference{
		DocumentName: name,
		Similarity:   c.Similarity,
		Content:      c.Content,
		DocumentID:   c.DocumentID,
	}
}

func referenceFromMap(m map[string]any) Reference {
	return Reference{
		DocumentName: stringField(m, "document_name", UnknownDocument),
		Similarity:   floatField(m, "similarity"),
		Content:      stringField(m, "content", ""),
		DocumentID:   stringField(m, "document_id", ""),
	}
}

// stringField looks up a string value, substituting fallback when the
// key is absent, nil, or not a string.
func stringField(m map[string]any, key, fallback string) string {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// floatField looks up a numeric value, tolerating the types a JSON
// decoder may produce. Absent or non-numeric values yield 0.
func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
