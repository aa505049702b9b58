// Package conversation owns the chat/session lifecycle against the
// RAGFlow backend.
//
// It reconstructs streamed answers incrementally, normalizes the
// heterogeneous citation payloads the server returns, and keeps UI state
// consistent with backend state: one active chat+session pair, dataset
// selection gating, and an append-only message history.
//
// Responsibilities are split across small pieces:
//   - Gate: dataset selection + reachability gating for new turns
//   - Manager: lazy, exactly-once chat/session creation and turn submission
//   - History: append-only ordered log of turns, the source of truth for rendering
//   - ConsumeStream: incremental answer assembly from full-text snapshots
//   - NormalizeReference: canonicalizes citation records
//
// Thread Safety: Gate and History are safe for concurrent use. The
// Manager assumes the UI issues one turn at a time, but Reset (new
// conversation) may be called at any moment, including mid-stream; a
// generation counter makes sure results of a superseded stream are
// discarded instead of appended to a history that has moved on.
package conversation
