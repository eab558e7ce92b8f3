// Package session tracks live board sessions for the preview server.
//
// A session is created when a client opens a board and identifies the
// client's engine across websocket reconnects. Sessions carry identity
// and expiry bookkeeping only; the engine itself lives in the server
// process and is rebuilt from the stored graph when a session outlives
// it.
//
// Two backends implement [Store]:
//   - memory: per-process, for tests and single-instance servers
//   - file: survives server restarts, so stale browser tabs reconnect
//     cleanly instead of erroring
//
// # Usage
//
//	store, err := session.NewFileStore("")  // ~/.config/linkboard/sessions/
//	if err != nil {
//	    return err
//	}
//
//	sess := session.New(graphID, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Unknown or expired: open a fresh session.
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the default session duration. Expiry slides forward on
// every Touch, so an analyst keeping a board open stays connected.
const DefaultTTL = 24 * time.Hour

// Session identifies one open board.
type Session struct {
	ID         string    `json:"id"`
	GraphID    string    `json:"graph_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch slides the expiry window forward from now.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(ttl)
}

// New creates a session for the given graph with a fresh uuid.
func New(graphID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		GraphID:    graphID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by id. Unknown and expired sessions both
	// return nil, nil; expired sessions are removed on the way.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
