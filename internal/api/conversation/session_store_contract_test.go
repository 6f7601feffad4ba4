package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athipan1/Database-painaidee/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// fakeClock is a settable clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func turn(text string, intent types.Intent) types.Turn {
	return types.Turn{ID: uuid.NewString(), Text: text, Intent: intent, Timestamp: time.Now().UTC()}
}

// runSessionStoreContract checks the behavior every SessionStore backend shares.
// expiry is false for backends whose clock cannot be faked.
func runSessionStoreContract(t *testing.T, newStore func(opts StoreOptions) SessionStore, expiry bool) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(StoreOptions{})
		uid := "user-1"
		sess, err := s.Create(ctx, &uid)
		require.NoError(t, err)
		require.NotNil(t, sess.UserID)
		assert.Equal(t, "user-1", *sess.UserID)
		assert.Empty(t, sess.History)
		assert.True(t, sess.Context.Empty())
		assert.True(t, sess.ExpiresAt.After(sess.CreatedAt))

		got, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, sess.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		s := newStore(StoreOptions{})
		_, err := s.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		_, err = s.AppendTurn(ctx, uuid.New(), turn("x", types.IntentUnknown), types.QueryContext{})
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		_, err = s.Touch(ctx, uuid.New())
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		assert.ErrorIs(t, s.Delete(ctx, uuid.New()), types.ErrSessionNotFound)
	})

	t.Run("history keeps the most recent turns", func(t *testing.T) {
		s := newStore(StoreOptions{HistoryLimit: 3})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err := s.AppendTurn(ctx, sess.ID, turn(fmt.Sprintf("turn-%d", i), types.IntentSearchAttractions), types.QueryContext{})
			require.NoError(t, err)
		}
		got, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, got.History, 3)
		assert.Equal(t, "turn-2", got.History[0].Text)
		assert.Equal(t, "turn-4", got.History[2].Text)
		assert.Equal(t, types.IntentSearchAttractions, got.LastIntent)
	})

	t.Run("context is replaced only by a non-empty resolution", func(t *testing.T) {
		s := newStore(StoreOptions{})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		_, err = s.AppendTurn(ctx, sess.ID, turn("หาที่เที่ยวในเชียงใหม่", types.IntentSearchByLocation),
			types.QueryContext{Province: "Chiang Mai"})
		require.NoError(t, err)
		got, err := s.AppendTurn(ctx, sess.ID, turn("สวัสดี", types.IntentGreeting), types.QueryContext{})
		require.NoError(t, err)

		assert.Equal(t, "Chiang Mai", got.Context.Province)
		assert.Equal(t, types.IntentGreeting, got.LastIntent)
	})

	t.Run("preferences merge", func(t *testing.T) {
		s := newStore(StoreOptions{})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		_, err = s.SetPreferences(ctx, sess.ID, types.Preferences{PreferredProvince: ptr("Phuket")})
		require.NoError(t, err)
		got, err := s.SetPreferences(ctx, sess.ID, types.Preferences{MaxResults: ptr(5)})
		require.NoError(t, err)

		require.NotNil(t, got.Preferences.PreferredProvince)
		assert.Equal(t, "Phuket", *got.Preferences.PreferredProvince)
		assert.Equal(t, 5, *got.Preferences.MaxResults)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(StoreOptions{})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, sess.ID))
		_, err = s.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		assert.ErrorIs(t, s.Delete(ctx, sess.ID), types.ErrSessionNotFound)
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		const writers = 20
		s := newStore(StoreOptions{HistoryLimit: writers})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.AppendTurn(ctx, sess.ID, turn(fmt.Sprintf("t%d", i), types.IntentSearchAttractions), types.QueryContext{})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Len(t, got.History, writers)
	})

	if !expiry {
		return
	}

	t.Run("expired sessions are not found", func(t *testing.T) {
		clock := newFakeClock()
		s := newStore(StoreOptions{TTL: time.Hour, Now: clock.Now})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		clock.Advance(59 * time.Minute)
		_, err = s.Get(ctx, sess.ID)
		require.NoError(t, err)

		// live strictly before ExpiresAt
		clock.Advance(time.Minute)
		_, err = s.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		_, err = s.Touch(ctx, sess.ID)
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		_, err = s.AppendTurn(ctx, sess.ID, turn("x", types.IntentUnknown), types.QueryContext{})
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
	})

	t.Run("touch renews expiry", func(t *testing.T) {
		clock := newFakeClock()
		s := newStore(StoreOptions{TTL: time.Hour, Now: clock.Now})
		sess, err := s.Create(ctx, nil)
		require.NoError(t, err)

		clock.Advance(50 * time.Minute)
		touched, err := s.Touch(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, touched.ExpiresAt.Equal(clock.Now().Add(time.Hour)))

		clock.Advance(50 * time.Minute)
		_, err = s.Get(ctx, sess.ID)
		assert.NoError(t, err)
	})

	t.Run("cleanup removes only expired sessions", func(t *testing.T) {
		clock := newFakeClock()
		s := newStore(StoreOptions{TTL: time.Hour, Now: clock.Now})
		old, err := s.Create(ctx, nil)
		require.NoError(t, err)
		clock.Advance(30 * time.Minute)
		fresh, err := s.Create(ctx, nil)
		require.NoError(t, err)

		clock.Advance(45 * time.Minute)
		removed, err := s.CleanupExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, removed, 1)

		_, err = s.Get(ctx, old.ID)
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
		_, err = s.Get(ctx, fresh.ID)
		assert.NoError(t, err)
	})
}
