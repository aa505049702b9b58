package conversation

import (
	"slices"
	"testing"
)

func TestGate_StartsClosed(t *testing.T) {
	t.Parallel()

	g := NewGate()
	if g.Ready() {
		t.Error("new gate should not be ready")
	}
}

func TestGate_ReadyNeedsBothConditions(t *testing.T) {
	t.Parallel()

	g := NewGate()

	g.Select([]string{"ds-1"})
	if g.Ready() {
		t.Error("ready without reachability")
	}

	g.SetReachable(true)
	if !g.Ready() {
		t.Error("not ready with selection and reachable backend")
	}

	g.Select(nil)
	if g.Ready() {
		t.Error("ready with empty selection")
	}
}

func TestGate_SelectReplacesFully(t *testing.T) {
	t.Parallel()

	g := NewGate()
	g.Select([]string{"a", "b"})
	g.Select([]string{"c"})

	if got := g.Selected(); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Selected = %v, want [c]", got)
	}
}

func TestGate_SelectedReturnsCopy(t *testing.T) {
	t.Parallel()

	g := NewGate()
	g.Select([]string{"a"})

	got := g.Selected()
	got[0] = "mutated"

	if g.Selected()[0] != "a" {
		t.Error("selection mutated through returned slice")
	}
}

func TestGate_ConnectivityLossClearsSelection(t *testing.T) {
	t.Parallel()

	g := NewGate()
	g.SetReachable(true)
	g.Select([]string{"a", "b"})

	g.SetReachable(false)

	if len(g.Selected()) != 0 {
		t.Errorf("selection should clear on connectivity loss, got %v", g.Selected())
	}

	// Regaining connectivity alone does not reopen the gate.
	g.SetReachable(true)
	if g.Ready() {
		t.Error("gate ready without a fresh selection")
	}
}
