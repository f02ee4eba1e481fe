package contract

import (
	"context"
	"time"
)

// Turn is one message in a conversation. Turns are append-only: once stored
// they are never edited or removed.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionStore keeps per-conversation history and the one-way boolean flags
// the response generator uses to avoid repeating conversational asides.
// Backends are pluggable: the in-memory store lives for the process, the
// Redis store survives restarts and multi-instance deployments.
type SessionStore interface {
	// AppendTurn adds a turn to the session, creating it on first reference.
	AppendTurn(ctx context.Context, sessionID string, turn Turn) error

	// History returns all turns in insertion order.
	History(ctx context.Context, sessionID string) ([]Turn, error)

	// Flags returns the session's flag map. Unknown sessions yield an empty map.
	Flags(ctx context.Context, sessionID string) (map[string]bool, error)

	// MarkFlag sets a flag to true. Flags never transition back to false.
	MarkFlag(ctx context.Context, sessionID, name string) error
}
