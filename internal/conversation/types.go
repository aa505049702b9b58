package conversation

// Role constants define valid turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn. Immutable once appended to the
// History; append order is display order.
type Turn struct {
	Role    string
	Content string

	// References carries the normalized citations for assistant turns.
	// nil when the answer carried none; never an empty non-nil slice, so
	// renderers can gate the citation block on len() alone.
	References []Reference
}

// ChatSession pairs a backend chat (bound to a fixed dataset selection)
// with a backend session (the actual message thread).
//
// At most one ChatSession is active at a time. It is created lazily on
// the first turn after a reset and is immutable for its lifetime; only
// an explicit reset replaces it.
type ChatSession struct {
	ChatID    string
	SessionID string
	Name      string

	// DatasetIDs is the selection snapshot taken at creation time.
	// Changing the selection afterwards does not retroactively alter an
	// in-flight chat.
	DatasetIDs []string
}
