package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/athipan1/Database-painaidee/internal/types"
)

// SessionStore holds conversational state keyed by session id. Unknown and
// expired ids both yield types.ErrSessionNotFound, and every mutation of one
// session is atomic with respect to concurrent mutations of the same session.
type SessionStore interface {
	Create(ctx context.Context, userID *string) (*types.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Session, error)
	// AppendTurn records a turn, evicting the oldest history beyond the limit.
	// A non-empty resolved context replaces the carried one.
	AppendTurn(ctx context.Context, id uuid.UUID, turn types.Turn, resolved types.QueryContext) (*types.Session, error)
	// SetPreferences merges an already validated update into the session preferences.
	SetPreferences(ctx context.Context, id uuid.UUID, update types.Preferences) (*types.Session, error)
	// Touch pushes expiry out to a full TTL from now.
	Touch(ctx context.Context, id uuid.UUID) (*types.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CleanupExpired removes dead sessions and reports how many were removed.
	CleanupExpired(ctx context.Context) (int, error)
}

// StoreOptions are shared by every SessionStore backend.
type StoreOptions struct {
	HistoryLimit int
	TTL          time.Duration
	// Now is the clock used for expiry; nil means time.Now.
	Now func() time.Time
}

func (o StoreOptions) withDefaults() StoreOptions {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = types.DefaultHistoryLimit
	}
	if o.TTL <= 0 {
		o.TTL = types.DefaultSessionTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// now truncates to microseconds so that values survive a Postgres round trip unchanged.
func (o StoreOptions) now() time.Time {
	return o.Now().UTC().Truncate(time.Microsecond)
}
