package sessionRepo

import (
	"context"

	"barberflow/models"
)

// SessionRepository manages conversation sessions. At most one active
// session exists per (shop, phone); Acquire is the only way one is
// created.
type SessionRepository interface {
	// Acquire returns the active session for (shopID, phone), creating
	// it atomically when none exists. The bool reports whether this
	// call created it.
	Acquire(ctx context.Context, shopID, phone string) (*models.Session, bool, error)
	// Save persists the session's mutable state.
	Save(ctx context.Context, session *models.Session) error
	// Retire deactivates the session. The next inbound message from the
	// same customer starts a fresh one.
	Retire(ctx context.Context, session *models.Session) error
	EnsureIndexes(ctx context.Context) error
}
