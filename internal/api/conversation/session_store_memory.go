package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore keeps sessions in process. Stored sessions are never
// mutated in place: writers clone, modify and replace under a per-session lock,
// so readers always see a consistent snapshot.
type MemorySessionStore struct {
	sessions *cache.Cache
	locks    sync.Map
	opts     StoreOptions
	logger   *slog.Logger
}

func NewMemorySessionStore(opts StoreOptions, logger *slog.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: cache.New(cache.NoExpiration, 0),
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// lock takes the per-session mutex. Ids with no stored session get no lock,
// so unknown ids cannot grow the lock table.
func (s *MemorySessionStore) lock(id uuid.UUID) (func(), bool) {
	if _, ok := s.sessions.Get(id.String()); !ok {
		return nil, false
	}
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock, true
}

// forget drops the lock of a session that is gone. Callers hold the lock.
func (s *MemorySessionStore) forget(id uuid.UUID) {
	s.locks.Delete(id)
}

func (s *MemorySessionStore) load(id uuid.UUID) (*types.Session, bool) {
	v, ok := s.sessions.Get(id.String())
	if !ok {
		return nil, false
	}
	sess := v.(*types.Session)
	if sess.Expired(s.opts.now()) {
		return nil, false
	}
	return sess, true
}

func (s *MemorySessionStore) Create(ctx context.Context, userID *string) (*types.Session, error) {
	sess := types.NewSession(userID, s.opts.now(), s.opts.TTL)
	s.sessions.Set(sess.ID.String(), sess, cache.NoExpiration)
	s.logger.DebugContext(ctx, "Session created", slog.String("session_id", sess.ID.String()))
	return sess.Clone(), nil
}

func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*types.Session, error) {
	sess, ok := s.load(id)
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// update applies fn to a copy of the live session and stores the copy.
func (s *MemorySessionStore) update(id uuid.UUID, fn func(*types.Session)) (*types.Session, error) {
	unlock, ok := s.lock(id)
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	defer unlock()

	current, ok := s.load(id)
	if !ok {
		s.forget(id)
		return nil, types.ErrSessionNotFound
	}
	next := current.Clone()
	fn(next)
	s.sessions.Set(id.String(), next, cache.NoExpiration)
	return next.Clone(), nil
}

func (s *MemorySessionStore) AppendTurn(_ context.Context, id uuid.UUID, turn types.Turn, resolved types.QueryContext) (*types.Session, error) {
	return s.update(id, func(sess *types.Session) {
		sess.RecordTurn(turn, resolved, s.opts.HistoryLimit, s.opts.now())
	})
}

func (s *MemorySessionStore) SetPreferences(_ context.Context, id uuid.UUID, update types.Preferences) (*types.Session, error) {
	return s.update(id, func(sess *types.Session) {
		sess.Preferences = sess.Preferences.Merge(update)
		sess.UpdatedAt = s.opts.now()
	})
}

func (s *MemorySessionStore) Touch(_ context.Context, id uuid.UUID) (*types.Session, error) {
	return s.update(id, func(sess *types.Session) {
		now := s.opts.now()
		sess.ExpiresAt = now.Add(s.opts.TTL)
		sess.UpdatedAt = now
	})
}

func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	unlock, ok := s.lock(id)
	if !ok {
		return types.ErrSessionNotFound
	}
	defer unlock()

	_, live := s.load(id)
	s.sessions.Delete(id.String())
	s.forget(id)
	if !live {
		return types.ErrSessionNotFound
	}
	return nil
}

func (s *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	now := s.opts.now()
	removed := 0
	for key, item := range s.sessions.Items() {
		sess := item.Object.(*types.Session)
		if !sess.Expired(now) {
			continue
		}
		unlock, ok := s.lock(sess.ID)
		if !ok {
			continue
		}
		// re-check under the lock; a concurrent Touch may have renewed it
		if v, ok := s.sessions.Get(key); ok && v.(*types.Session).Expired(now) {
			s.sessions.Delete(key)
			s.forget(sess.ID)
			removed++
		}
		unlock()
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "Expired sessions removed", slog.Int("count", removed))
	}
	return removed, nil
}
