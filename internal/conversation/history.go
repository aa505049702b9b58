package conversation

import "sync"

// History is the append-only ordered log of conversation turns and the
// source of truth for what gets rendered.
//
// Turns are never mutated in place, reordered, or removed; the log only
// grows until Clear, which is invoked solely by the Manager's reset.
//
// Note: The zero value is NOT useful - use NewHistory() to create instances.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewHistory creates a new History instance.
func NewHistory() *History {
	return &History{
		turns: make([]Turn, 0),
	}
}

// Append adds a turn to the end of the log. O(1) amortized.
func (h *History) Append(turn Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
}

// Turns returns a copy of all turns for thread-safe rendering.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make([]Turn, len(h.turns))
	copy(result, h.turns)
	return result
}

// Len returns the number of turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Clear removes all turns.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = make([]Turn, 0)
}
