package storage

import (
	"context"
	"errors"
	"time"

	"github.com/xaenox/blog-assistant/internal/models"
)

var ErrNotFound = errors.New("session not found")

// SessionStore keeps conversation sessions keyed by session id. Implementations
// must be safe for concurrent use across different ids and must not share
// mutable state with callers: Get returns a private copy and Put stores one.
type SessionStore interface {
	// Get returns ErrNotFound when no session exists for id.
	Get(ctx context.Context, id string) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	// ClearDraft resets the draft of a session but keeps its history.
	// Clearing an unknown session is a no-op.
	ClearDraft(ctx context.Context, id string) error
	// Delete removes a session. Deleting an unknown session is a no-op.
	Delete(ctx context.Context, id string) error
	Close() error
}

// IdleEvicter is implemented by stores that can drop sessions nobody has
// touched for a while.
type IdleEvicter interface {
	DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error)
}
