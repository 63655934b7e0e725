package ports

import (
	"context"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

// SessionStore is the durable mirror of the in-memory session: written
// through on every commit, read once at startup, never authoritative while
// the process runs.
type SessionStore interface {
	Save(ctx context.Context, s domain.Session) error
	// Load returns the mirrored session, or a zero session when none is stored.
	Load(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
	Close() error
}
