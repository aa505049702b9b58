package conversation

import "testing"

func TestHistory_AppendPreservesOrder(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	h.Append(Turn{Role: RoleUser, Content: "first"})
	h.Append(Turn{Role: RoleAssistant, Content: "second"})
	h.Append(Turn{Role: RoleUser, Content: "third"})

	turns := h.Turns()
	if len(turns) != 3 {
		t.Fatalf("len = %d, want 3", len(turns))
	}
	for i, want := range []string{"first", "second", "third"} {
		if turns[i].Content != want {
			t.Errorf("turns[%d].Content = %q, want %q", i, turns[i].Content, want)
		}
	}
}

func TestHistory_TurnsReturnsCopy(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	h.Append(Turn{Role: RoleUser, Content: "original"})

	turns := h.Turns()
	turns[0].Content = "mutated"

	if got := h.Turns()[0].Content; got != "original" {
		t.Errorf("store mutated through returned slice: %q", got)
	}
}

func TestHistory_LengthMonotonicUntilClear(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	prev := 0
	for i := 0; i < 10; i++ {
		h.Append(Turn{Role: RoleUser, Content: "x"})
		if h.Len() <= prev {
			t.Fatalf("length not monotonically increasing at %d", i)
		}
		prev = h.Len()
	}

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", h.Len())
	}
	if got := h.Turns(); len(got) != 0 {
		t.Errorf("Turns after Clear = %v, want empty", got)
	}
}
