package ragflow

import "encoding/json"

// Dataset is a knowledge base exposed by the RAGFlow server.
type Dataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Chunk is a retrieved citation record in its typed wire shape.
// Older server builds return the same data as loose key/value maps;
// both shapes are normalized downstream by the conversation package.
type Chunk struct {
	DocumentName string  `json:"document_name"`
	DocumentID   string  `json:"document_id"`
	Content      string  `json:"content"`
	Similarity   float64 `json:"similarity"`
}

// Fragment is one snapshot of an in-progress streamed answer.
// Answer always carries the FULL text generated so far, not a delta.
// References holds raw citation entries (Chunk or map[string]any) from
// the snapshot that carried them, usually only the last one.
type Fragment struct {
	Answer     string
	References []any
}

// envelope is the standard RAGFlow API response wrapper.
// A non-zero Code indicates an application-level failure.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// createChatRequest is the body for POST /api/v1/chats.
type createChatRequest struct {
	Name       string   `json:"name"`
	DatasetIDs []string `json:"dataset_ids"`
}

// createSessionRequest is the body for POST /api/v1/chats/{id}/sessions.
type createSessionRequest struct {
	Name string `json:"name"`
}

// completionRequest is the body for POST /api/v1/chats/{id}/completions.
type completionRequest struct {
	Question  string `json:"question"`
	Stream    bool   `json:"stream"`
	SessionID string `json:"session_id"`
}

// idData extracts the id field from creation responses.
type idData struct {
	ID string `json:"id"`
}

// completionData is the inner payload of one streamed completion event.
// Reference stays raw: the server sends either {"chunks":[...]} or a bare
// array depending on version.
type completionData struct {
	Answer    string          `json:"answer"`
	Reference json.RawMessage `json:"reference"`
}

// parseReferences decodes the polymorphic reference payload into raw
// entries for the normalizer. Unknown shapes yield nil rather than an
// error; citations are best-effort decoration on an answer.
func parseReferences(raw json.RawMessage) []any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	// Current servers: {"chunks": [...], "doc_aggs": [...]}
	var wrapped struct {
		Chunks []Chunk `json:"chunks"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Chunks) > 0 {
		refs := make([]any, len(wrapped.Chunks))
		for i, c := range wrapped.Chunks {
			refs[i] = c
		}
		return refs
	}

	// Older servers: a bare array of loose maps.
	var maps []map[string]any
	if err := json.Unmarshal(raw, &maps); err == nil && len(maps) > 0 {
		refs := make([]any, len(maps))
		for i, m := range maps {
			refs[i] = m
		}
		return refs
	}

	return nil
}
