package conversation

import (
	"errors"
	"fmt"

	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// Sentinel errors for conversation operations.
// Check with errors.Is().
var (
	// ErrNotReady indicates a turn was submitted with no knowledge base
	// selected or the backend unreachable. Rejected before any backend
	// call and rendered as a static assistant notice, never thrown.
	ErrNotReady = errors.New("no knowledge base selected or backend unreachable")

	// ErrConversationReset indicates an in-flight turn was superseded by
	// a reset; its result was discarded rather than appended.
	ErrConversationReset = errors.New("conversation was reset")
)

// Kind classifies user-visible failures. Every backend-facing failure is
// converted to exactly one kind at the Manager/accumulator boundary;
// nothing propagates unclassified.
type Kind int

// Failure kinds.
const (
	KindNone Kind = iota
	KindValidationGap
	KindConnectivity
	KindDuplicateName
	KindStream
)

// Classify maps an error onto its failure kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotReady):
		return KindValidationGap
	case errors.Is(err, ragflow.ErrDuplicateName):
		return KindDuplicateName
	case errors.Is(err, ragflow.ErrUnreachable), errors.Is(err, ragflow.ErrUnauthorized):
		return KindConnectivity
	default:
		return KindStream
	}
}

// User-visible notices. The gate notice doubles as the static assistant
// turn appended on validation-gap rejections.
const (
	noticeNotReady = "Please select at least one knowledge base and make sure the RAGFlow connection is healthy."

	noticeDuplicateName = "Chat creation failed: the generated chat name already exists. Please retry."
)

// UserMessage renders an error as the message shown to the user.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindValidationGap:
		return noticeNotReady
	case KindDuplicateName:
		return noticeDuplicateName
	case KindConnectivity:
		return fmt.Sprintf("Cannot reach the RAGFlow server: %v", err)
	default:
		return fmt.Sprintf("Chat failed: %v", err)
	}
}

// annotateInterrupted decorates the best partial answer accumulated
// before a mid-stream failure. The conversation stays usable for the
// next turn.
func annotateInterrupted(partial string, err error) string {
	if partial == "" {
		return fmt.Sprintf("Sorry, something went wrong while answering: %v", err)
	}
	return fmt.Sprintf("%s\n\n_(answer interrupted: %v)_", partial, err)
}
