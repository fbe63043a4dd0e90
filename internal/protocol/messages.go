package protocol

// The wire protocol exposes exactly the document-store operations: whole
// document reads, partial-field merges and per-document subscriptions.
// Game rules never cross this boundary; clients run them locally.

// Message types: Client → Server
const (
	MsgCreate      = "create"
	MsgGet         = "get"
	MsgUpdate      = "update"
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
)

// Message types: Server → Client
const (
	MsgDoc    = "doc"    // reply to get, and every pushed change
	MsgAbsent = "absent" // subscribed document does not exist
	MsgAck    = "ack"    // create/update/subscribe succeeded
	MsgError  = "error"
)

// Error kinds mirror the store's recoverable error taxonomy.
const (
	ErrKindNotFound = "not_found"
	ErrKindExists   = "exists"
	ErrKindConflict = "conflict"
	ErrKindInvalid  = "invalid"
)

// CreateMsg creates a document under a room code.
type CreateMsg struct {
	Code string         `json:"code"`
	Doc  map[string]any `json:"doc"`
}

// GetMsg reads a whole document.
type GetMsg struct {
	Code string `json:"code"`
}

// UpdateMsg merges partial fields into a document. Field keys may be dotted
// paths. Rev, when non-nil, makes the update conditional on the document
// version and fails with a conflict error otherwise.
type UpdateMsg struct {
	Code   string         `json:"code"`
	Rev    *int64         `json:"rev,omitempty"`
	Fields map[string]any `json:"fields"`
}

// SubscribeMsg subscribes the connection to a document's changes. The
// current state is pushed immediately as a doc (or absent) message.
type SubscribeMsg struct {
	Code string `json:"code"`
}

// UnsubscribeMsg drops the connection's subscription to a document.
type UnsubscribeMsg struct {
	Code string `json:"code"`
}

// DocMsg carries one document state.
type DocMsg struct {
	Code string         `json:"code"`
	Rev  int64          `json:"rev"`
	Doc  map[string]any `json:"doc"`
}

// AbsentMsg reports that a document does not exist.
type AbsentMsg struct {
	Code string `json:"code"`
}

// AckMsg confirms a mutating operation.
type AckMsg struct {
	Op   string `json:"op"`
	Code string `json:"code"`
}

// ErrorMsg is sent to a client on a failed operation.
type ErrorMsg struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
