package conversation

import (
	"errors"
	"iter"
	"testing"

	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// fragmentSeq builds a sequence that yields the given fragments in order
// and then, if finalErr is non-nil, yields it as the terminal element.
func fragmentSeq(frags []ragflow.Fragment, finalErr error) iter.Seq2[ragflow.Fragment, error] {
	return func(yield func(ragflow.Fragment, error) bool) {
		for _, f := range frags {
			if !yield(f, nil) {
				return
			}
		}
		if finalErr != nil {
			yield(ragflow.Fragment{}, finalErr)
		}
	}
}

func TestConsumeStream_LastSnapshotWins(t *testing.T) {
	t.Parallel()

	seq := fragmentSeq([]ragflow.Fragment{
		{Answer: "H"},
		{Answer: "He"},
		{Answer: "Hello"},
	}, nil)

	got := ConsumeStream(seq, nil)
	if got.Err != nil {
		t.Fatalf("unexpected error: %v", got.Err)
	}
	if got.Text != "Hello" {
		t.Errorf("Text = %q, want %q", got.Text, "Hello")
	}
}

func TestConsumeStream_ShrinkingSnapshotIsNotConcatenated(t *testing.T) {
	t.Parallel()

	// The server may legitimately send a shorter snapshot than the
	// previous one; the result must be exactly the last snapshot.
	seq := fragmentSeq([]ragflow.Fragment{
		{Answer: "Hello"},
		{Answer: "Hel"},
	}, nil)

	got := ConsumeStream(seq, nil)
	if got.Text != "Hel" {
		t.Errorf("Text = %q, want %q", got.Text, "Hel")
	}
}

func TestConsumeStream_DeltaOnlyOnPureExtension(t *testing.T) {
	t.Parallel()

	seq := fragmentSeq([]ragflow.Fragment{
		{Answer: "Hi"},
		{Answer: "Hi there"},
		{Answer: "rewritten"},
	}, nil)

	type update struct{ delta, full string }
	var got []update
	ConsumeStream(seq, func(delta, full string) {
		got = append(got, update{delta, full})
	})

	want := []update{
		{"Hi", "Hi"},
		{" there", "Hi there"},
		{"", "rewritten"}, // rewrite: no delta, full text is authoritative
	}
	if len(got) != len(want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConsumeStream_FinalSnapshotReferencesWin(t *testing.T) {
	t.Parallel()

	seq := fragmentSeq([]ragflow.Fragment{
		{Answer: "partial", References: []any{
			map[string]any{"document_name": "stale.txt"},
		}},
		{Answer: "final", References: []any{
			map[string]any{"document_name": "current.txt", "similarity": 0.8},
		}},
	}, nil)

	got := ConsumeStream(seq, nil)
	if len(got.References) != 1 {
		t.Fatalf("References = %+v, want one entry", got.References)
	}
	if got.References[0].DocumentName != "current.txt" {
		t.Errorf("DocumentName = %q, want %q", got.References[0].DocumentName, "current.txt")
	}
}

func TestConsumeStream_NoReferencesYieldsNil(t *testing.T) {
	t.Parallel()

	seq := fragmentSeq([]ragflow.Fragment{{Answer: "done"}}, nil)

	got := ConsumeStream(seq, nil)
	if got.References != nil {
		t.Errorf("References = %+v, want nil", got.References)
	}
}

func TestConsumeStream_MidStreamErrorAnnotatesPartial(t *testing.T) {
	t.Parallel()

	streamErr := errors.New("connection reset")
	seq := fragmentSeq([]ragflow.Fragment{
		{Answer: "partial answer", References: []any{
			map[string]any{"document_name": "doc.txt"},
		}},
	}, streamErr)

	got := ConsumeStream(seq, nil)
	if !errors.Is(got.Err, streamErr) {
		t.Fatalf("Err = %v, want %v", got.Err, streamErr)
	}
	if got.References != nil {
		t.Errorf("References = %+v, want nil after interruption", got.References)
	}
	if got.Text == "" || got.Text == "partial answer" {
		t.Errorf("Text = %q, want annotated partial", got.Text)
	}
	if want := "partial answer"; len(got.Text) <= len(want) || got.Text[:len(want)] != want {
		t.Errorf("Text = %q, should start with the partial answer", got.Text)
	}
}

func TestConsumeStream_ErrorBeforeAnyText(t *testing.T) {
	t.Parallel()

	streamErr := errors.New("upstream exploded")
	got := ConsumeStream(fragmentSeq(nil, streamErr), nil)

	if !errors.Is(got.Err, streamErr) {
		t.Fatalf("Err = %v, want %v", got.Err, streamErr)
	}
	if got.Text == "" {
		t.Error("Text should carry an apology message, not be empty")
	}
}

func TestConsumeStream_EmptyStream(t *testing.T) {
	t.Parallel()

	got := ConsumeStream(fragmentSeq(nil, nil), nil)
	if got.Text != "" || got.References != nil || got.Err != nil {
		t.Errorf("got %+v, want zero result", got)
	}
}
