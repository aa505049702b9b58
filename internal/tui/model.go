// Package tui provides the Bubble Tea terminal interface for the
// RAGFlow assistant: a knowledge base sidebar plus a chat pane fed by
// the conversation manager.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wang-junjian/RAGFlowAssistant/internal/conversation"
	"github.com/wang-junjian/RAGFlowAssistant/internal/log"
	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// State represents TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput     State = iota // Awaiting user input
	StateThinking               // Waiting for the first answer snapshot
	StateStreaming              // Streaming response
)

// focus identifies which pane receives key events.
type focus int

const (
	focusInput focus = iota
	focusSidebar
)

// maxHistory bounds the prompt-recall buffer.
const maxHistory = 100

// streamTimeout is the maximum time for a single answer stream.
const streamTimeout = 5 * time.Minute

// Layout constants for viewport height calculation.
const (
	sidebarWidth   = 30 // Knowledge base pane width
	separatorLines = 2  // Two separator lines (above and below input)
	helpLines      = 1  // Help bar height
	promptLines    = 1  // Prompt prefix line
	minViewport    = 3  // Minimum viewport height
)

// Model is the Bubble Tea model for the assistant terminal interface.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	focus     focus
	lastCtrlC time.Time

	// Knowledge base sidebar
	datasets   []ragflow.Dataset
	selected   map[string]bool
	cursor     int
	refreshing bool
	connErr    error

	// Output
	spinner  spinner.Model
	liveText string          // answer-so-far of the in-flight turn
	showHelp bool            // /help block visible in the chat pane
	viewBuf  strings.Builder // Reusable buffer for View() to reduce allocations

	// Scrollable message viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Stream management
	// Note: No sync.WaitGroup - Bubble Tea's event loop provides
	// synchronization; the manager owns the producing goroutine.
	streamCancel context.CancelFunc
	progressCh   <-chan conversation.Progress

	// Dependencies (direct, no interface)
	manager   *conversation.Manager
	logger    log.Logger
	ctx       context.Context
	ctxCancel context.CancelFunc // For canceling all operations on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a Model wired to the conversation manager.
// Returns error if required dependencies are nil.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, manager *conversation.Manager, logger log.Logger) (*Model, error) {
	if manager == nil {
		return nil, errors.New("tui.New: manager is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	// Create cancellable context for cleanup on exit
	ctx, cancel := context.WithCancel(ctx)

	// Create textarea for multi-line input
	// Enter submits, Shift+Enter adds newline (default behavior)
	ta := textarea.New()
	ta.Placeholder = "Ask your knowledge bases..."
	ta.SetHeight(1)  // Single line by default
	ta.SetWidth(120) // Wide enough for long text, updated on WindowSizeMsg
	ta.MaxWidth = 0  // No max width limit
	ta.ShowLineNumbers = false

	// Clean, minimal styling: no background colors, just simple text
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray placeholder
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Create viewport for scrollable message history.
	// Disable built-in keyboard handling — we route keys explicitly
	// in handleKey to avoid conflicts with textarea/history navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{} // Disable default key bindings

	h := help.New()

	return &Model{
		manager:    manager,
		logger:     logger,
		ctx:        ctx,
		ctxCancel:  cancel,
		input:      ta,
		spinner:    sp,
		viewport:   vp,
		help:       h,
		keys:       newKeyMap(),
		styles:     DefaultStyles(),
		history:    make([]string, 0, maxHistory),
		selected:   make(map[string]bool),
		refreshing: true, // initial listing is in flight from Init
		markdown:   newMarkdownRenderer(80),
		width:      80, // Default width until WindowSizeMsg arrives
	}, nil
}

// Init implements tea.Model. The knowledge base listing starts
// immediately so the sidebar populates without a keypress.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(), // Ensure textarea is focused on startup
		m.refreshDatasets(),
	)
}

// applySelection pushes the sidebar's checkbox state into the manager,
// preserving listing order.
func (m *Model) applySelection() {
	ids := make([]string, 0, len(m.selected))
	for _, ds := range m.datasets {
		if m.selected[ds.ID] {
			ids = append(ids, ds.ID)
		}
	}
	m.manager.SetSelection(ids)
}
