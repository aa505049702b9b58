package ragflow

import (
	"errors"
	"strings"
)

// Sentinel errors for backend operations.
// These are part of the Client's public API and should be checked
// with errors.Is().
var (
	// ErrUnreachable indicates the RAGFlow server could not be reached.
	ErrUnreachable = errors.New("ragflow server unreachable")

	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("ragflow API key rejected")

	// ErrDuplicateName indicates a chat or session name collision.
	// Generated names embed a timestamp and random suffix, so a collision
	// is practically negligible but must stay distinguishable so callers
	// can retry with a fresh name instead of treating it as fatal.
	ErrDuplicateName = errors.New("duplicate name")
)

// duplicateNameMarker is the substring the server embeds in duplicate
// chat/session name failures. The API reports this class of failure only
// through the message text, so matching it is the wire contract.
const duplicateNameMarker = "duplicated chat name"

// classifyAPIError maps an application-level failure (non-zero envelope
// code) onto a sentinel error where one applies.
func classifyAPIError(code int, message string) error {
	if strings.Contains(strings.ToLower(message), duplicateNameMarker) {
		return ErrDuplicateName
	}
	return nil
}
