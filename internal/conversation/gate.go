package conversation

import "sync"

// Gate tracks which knowledge bases are selected and whether the backend
// is reachable, and blocks conversation turns when either is missing.
type Gate struct {
	mu        sync.RWMutex
	selected  []string
	reachable bool
}

// NewGate creates a closed gate: nothing selected, backend not yet seen.
func NewGate() *Gate {
	return &Gate{}
}

// Select replaces the current selection. Full replacement each render
// cycle, mirroring the backend listing refresh; there are no incremental
// add/remove semantics.
func (g *Gate) Select(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selected = make([]string, len(ids))
	copy(g.selected, ids)
}

// Selected returns a copy of the current selection.
func (g *Gate) Selected() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make([]string, len(g.selected))
	copy(result, g.selected)
	return result
}

// SetReachable records backend reachability. Losing connectivity also
// clears the selection: the ids belong to a listing that can no longer
// be trusted.
func (g *Gate) SetReachable(ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reachable = ok
	if !ok {
		g.selected = nil
	}
}

// Reachable reports whether the last backend listing succeeded.
func (g *Gate) Reachable() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reachable
}

// Ready reports whether a turn may be sent: backend reachable AND at
// least one knowledge base selected.
func (g *Gate) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reachable && len(g.selected) > 0
}
