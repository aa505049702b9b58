package conversation

import (
	"iter"
	"strings"

	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// UpdateFunc receives incremental display updates while an answer
// streams in. delta is the newly appended text when the snapshot grew as
// a pure extension; on a shrink or rewrite it is empty and full must be
// re-rendered. full is always the authoritative answer-so-far.
type UpdateFunc func(delta, full string)

// Result is the outcome of consuming one streamed answer.
type Result struct {
	// Text is the final answer: the last snapshot's full text, or the
	// best partial text annotated with the failure when the stream broke.
	Text string

	// References are the normalized citations from the final snapshot.
	// nil when the stream failed or the snapshot carried none.
	References []Reference

	// Err records a mid-stream failure for classification and logging.
	// Text is already annotated; callers never need to re-handle it.
	Err error
}

// ConsumeStream drains a fragment sequence into a final answer.
//
// Each fragment carries the full answer-so-far, not a delta, so the last
// snapshot is authoritative: snapshots are never concatenated, which
// keeps a shrinking or repeating snapshot from double-counting text.
// The server occasionally does send a shorter snapshot than the previous
// one; last-wins is deliberate and preserved.
//
// Failures never escape: on a backend error mid-stream the result holds
// the annotated partial text and empty references.
func ConsumeStream(seq iter.Seq2[ragflow.Fragment, error], onUpdate UpdateFunc) Result {
	var (
		full string
		refs []any
	)

	for frag, err := range seq {
		if err != nil {
			return Result{Text: annotateInterrupted(full, err), Err: err}
		}

		prev := full
		full = frag.Answer
		// Only the latest snapshot's references count; an earlier
		// snapshot's citations are as stale as its text.
		refs = frag.References

		if onUpdate != nil {
			var delta string
			if strings.HasPrefix(full, prev) {
				delta = full[len(prev):]
			}
			onUpdate(delta, full)
		}
	}

	return Result{
		Text:       full,
		References: NormalizeReferences(refs),
	}
}
