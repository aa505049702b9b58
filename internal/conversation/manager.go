package conversation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wang-junjian/RAGFlowAssistant/internal/log"
	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// Backend is the retrieval/chat service the Manager talks to.
// Interface is defined here, by the consumer; *ragflow.Client satisfies it.
type Backend interface {
	ListDatasets(ctx context.Context) ([]ragflow.Dataset, error)
	CreateChat(ctx context.Context, name string, datasetIDs []string) (string, error)
	CreateSession(ctx context.Context, chatID, name string) (string, error)
	Ask(ctx context.Context, chatID, sessionID, question string) iter.Seq2[ragflow.Fragment, error]
}

// Compile-time interface verification.
var _ Backend = (*ragflow.Client)(nil)

// progressBufferSize absorbs display-rate bursts. Live updates beyond it
// are dropped (the next snapshot supersedes them anyway); terminal events
// always block until delivered.
const progressBufferSize = 64

// Progress is one update of an in-flight turn, delivered on the channel
// returned by SubmitPrompt. The final event has Done set; it carries the
// appended turn on success and the classified error on failure.
type Progress struct {
	LiveText string // full answer-so-far for live display
	Done     bool
	Turn     *Turn // appended turn, when one was
	Err      error // classified failure; also set alongside an annotated partial turn
}

// Config contains required parameters for the Manager.
type Config struct {
	Backend Backend
	Logger  log.Logger

	// Name prefixes for lazily created chats and sessions.
	ChatPrefix    string
	SessionPrefix string
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Backend == nil {
		return errors.New("backend is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Manager owns the single active chat/session pair and the conversation
// state around it. It creates the pair lazily, exactly once per
// conversation, and guarantees uniqueness of generated names.
type Manager struct {
	backend       Backend
	logger        log.Logger
	chatPrefix    string
	sessionPrefix string

	gate    *Gate
	history *History

	mu     sync.Mutex
	active *ChatSession
	// generation stamps each conversation epoch. A submit captures the
	// value up front; Reset bumps it, so a superseded stream's result is
	// detected and discarded instead of appended.
	generation uint64
}

// NewManager creates a Manager with required configuration.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	chatPrefix := cfg.ChatPrefix
	if chatPrefix == "" {
		chatPrefix = "Chat"
	}
	sessionPrefix := cfg.SessionPrefix
	if sessionPrefix == "" {
		sessionPrefix = "Session"
	}

	return &Manager{
		backend:       cfg.Backend,
		logger:        cfg.Logger,
		chatPrefix:    chatPrefix,
		sessionPrefix: sessionPrefix,
		gate:          NewGate(),
		history:       NewHistory(),
	}, nil
}

// RefreshKnowledgeBases fetches the current listing and updates the
// gate's reachability. On failure the gate closes and the selection is
// cleared; the classified error is returned for display.
func (m *Manager) RefreshKnowledgeBases(ctx context.Context) ([]ragflow.Dataset, error) {
	datasets, err := m.backend.ListDatasets(ctx)
	if err != nil {
		m.gate.SetReachable(false)
		m.logger.Warn("listing knowledge bases failed", "error", err)
		return nil, err
	}
	m.gate.SetReachable(true)
	return datasets, nil
}

// SetSelection replaces the knowledge base selection.
func (m *Manager) SetSelection(ids []string) {
	m.gate.Select(ids)
}

// Selection returns the current knowledge base selection.
func (m *Manager) Selection() []string {
	return m.gate.Selected()
}

// Ready reports whether a turn can be submitted right now.
func (m *Manager) Ready() bool {
	return m.gate.Ready()
}

// History returns a copy of the conversation turns in display order.
func (m *Manager) History() []Turn {
	return m.history.Turns()
}

// ActiveSession returns a copy of the active chat/session pair, or nil
// when the conversation is empty.
func (m *Manager) ActiveSession() *ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	s := *m.active
	s.DatasetIDs = append([]string(nil), m.active.DatasetIDs...)
	return &s
}

// StartNewConversation resets to the empty state: active session and
// history are cleared together. The knowledge base selection survives.
// Callable at any time, including mid-stream; the superseded stream's
// result is discarded via the generation stamp.
func (m *Manager) StartNewConversation() {
	m.mu.Lock()
	m.active = nil
	m.generation++
	m.mu.Unlock()

	m.history.Clear()
	m.logger.Info("started new conversation")
}

// EnsureSession returns the active chat/session pair, creating it on
// first use. Idempotent: a second call without an intervening reset
// returns the identical pair without touching the backend.
//
// The chat is bound to the selection snapshot taken here; later
// selection changes do not alter it.
func (m *Manager) EnsureSession(ctx context.Context) (ChatSession, error) {
	m.mu.Lock()
	if m.active != nil {
		s := *m.active
		m.mu.Unlock()
		return s, nil
	}
	gen := m.generation
	m.mu.Unlock()

	// Backend calls run unlocked so a reset stays possible at any time.
	datasetIDs := m.gate.Selected()

	chatName := m.uniqueName(m.chatPrefix)
	chatID, err := m.backend.CreateChat(ctx, chatName, datasetIDs)
	if err != nil {
		return ChatSession{}, fmt.Errorf("creating chat: %w", err)
	}

	sessionName := m.uniqueName(m.sessionPrefix)
	sessionID, err := m.backend.CreateSession(ctx, chatID, sessionName)
	if err != nil {
		return ChatSession{}, fmt.Errorf("creating session: %w", err)
	}

	session := ChatSession{
		ChatID:     chatID,
		SessionID:  sessionID,
		Name:       chatName,
		DatasetIDs: datasetIDs,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return ChatSession{}, ErrConversationReset
	}
	m.active = &session

	m.logger.Info("created chat session",
		"chat_id", chatID,
		"session_id", sessionID,
		"datasets", len(datasetIDs))
	return session, nil
}

// SubmitPrompt submits one user turn. It returns a progress channel that
// streams live answer text and closes after a final Done event.
//
// The turn pipeline: selection gate, lazy session creation, streamed
// answer accumulation, reference normalization, history append. All
// failures arrive classified on the final event; none of them crash or
// blank the history.
func (m *Manager) SubmitPrompt(ctx context.Context, prompt string) <-chan Progress {
	ch := make(chan Progress, progressBufferSize)
	go func() {
		defer close(ch)
		m.submit(ctx, prompt, ch)
	}()
	return ch
}

func (m *Manager) submit(ctx context.Context, prompt string, ch chan<- Progress) {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	m.history.Append(Turn{Role: RoleUser, Content: prompt})

	// Gate check happens before any backend call; the rejection becomes
	// a static assistant notice, not a thrown failure.
	if !m.gate.Ready() {
		notice := Turn{Role: RoleAssistant, Content: noticeNotReady}
		m.history.Append(notice)
		ch <- Progress{Done: true, Turn: &notice, Err: ErrNotReady}
		return
	}

	session, err := m.EnsureSession(ctx)
	if err != nil {
		m.logger.Warn("ensuring session failed", "error", err, "kind", Classify(err))
		ch <- Progress{Done: true, Err: err}
		return
	}

	result := ConsumeStream(
		m.backend.Ask(ctx, session.ChatID, session.SessionID, prompt),
		func(_, full string) {
			// Best-effort live updates: dropping one is fine, the next
			// snapshot carries the full text again.
			select {
			case ch <- Progress{LiveText: full}:
			default:
			}
		},
	)
	if result.Err != nil {
		m.logger.Warn("answer stream interrupted",
			"error", result.Err,
			"partial_len", len(result.Text))
	}

	turn := Turn{
		Role:       RoleAssistant,
		Content:    result.Text,
		References: result.References,
	}

	// The conversation may have been reset while the stream was in
	// flight; its result then belongs to a history that no longer exists.
	if !m.appendIfCurrent(gen, turn) {
		ch <- Progress{Done: true, Err: ErrConversationReset}
		return
	}

	ch <- Progress{Done: true, Turn: &turn, Err: result.Err}
}

// appendIfCurrent appends the turn only when the conversation generation
// still matches the one captured at submit time.
func (m *Manager) appendIfCurrent(gen uint64, turn Turn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return false
	}
	m.history.Append(turn)
	return true
}

// uniqueName generates a globally unique chat/session name:
// {prefix}_{unixTimestampSeconds}_{8-hex-random}. The second-granularity
// timestamp plus 32 random bits make a collision practically negligible;
// if one does occur the backend reports it as a distinguishable
// duplicate-name error and the caller retries.
func (m *Manager) uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().Unix(), uuid.NewString()[:8])
}
