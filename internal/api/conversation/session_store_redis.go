package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/athipan1/Database-painaidee/app/observability/metrics"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ SessionStore = (*RedisSessionStore)(nil)

const (
	redisKeyPrefix  = "conversation:session:"
	redisMaxRetries = 50
)

var errConflict = errors.New("session modified concurrently")

// RedisSessionStore keeps each session as one JSON value whose key expires with
// the session. Mutations are optimistic WATCH/MULTI transactions, retried on conflict.
type RedisSessionStore struct {
	rdb    *redis.Client
	opts   StoreOptions
	logger *slog.Logger
}

func NewRedisSessionStore(rdb *redis.Client, opts StoreOptions, logger *slog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		rdb:    rdb,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (s *RedisSessionStore) span(ctx context.Context, name string, id uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("SessionStore").Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("session.id", id.String()),
	))
}

func (s *RedisSessionStore) fail(ctx context.Context, span trace.Span, msg string, err error) error {
	metrics.Get().SessionStoreErrorsTotal.Add(ctx, 1)
	s.logger.ErrorContext(ctx, msg, slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *RedisSessionStore) decode(data []byte) (*types.Session, error) {
	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if sess.History == nil {
		sess.History = []types.Turn{}
	}
	if sess.Expired(s.opts.now()) {
		return nil, types.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *RedisSessionStore) Create(ctx context.Context, userID *string) (*types.Session, error) {
	now := s.opts.now()
	sess := types.NewSession(userID, now, s.opts.TTL)
	ctx, span := s.span(ctx, "CreateSession", sess.ID)
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to encode session", err)
	}
	if err := s.rdb.Set(ctx, redisKey(sess.ID), data, sess.ExpiresAt.Sub(now)).Err(); err != nil {
		return nil, s.fail(ctx, span, "failed to create session", err)
	}
	span.SetStatus(codes.Ok, "Session created")
	return sess, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	ctx, span := s.span(ctx, "GetSession", id)
	defer span.End()

	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrSessionNotFound
		}
		return nil, s.fail(ctx, span, "failed to get session", err)
	}
	sess, err := s.decode(data)
	if err != nil {
		if errors.Is(err, types.ErrSessionNotFound) {
			return nil, err
		}
		return nil, s.fail(ctx, span, "failed to get session", err)
	}
	span.SetStatus(codes.Ok, "Session found")
	return sess, nil
}

// update runs fn inside a WATCH transaction on the session key. The write is
// discarded and retried when another client changed the key in between.
func (s *RedisSessionStore) update(ctx context.Context, method string, id uuid.UUID, fn func(*types.Session)) (*types.Session, error) {
	ctx, span := s.span(ctx, method, id)
	defer span.End()
	key := redisKey(id)

	var result *types.Session
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return types.ErrSessionNotFound
			}
			return err
		}
		sess, err := s.decode(data)
		if err != nil {
			return err
		}
		fn(sess)
		encoded, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		ttl := sess.ExpiresAt.Sub(s.opts.now())
		if ttl <= 0 {
			return types.ErrSessionNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = sess
		return nil
	}

	for attempt := 1; attempt <= redisMaxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			span.SetAttributes(attribute.Int("attempts", attempt))
			span.SetStatus(codes.Ok, "Session updated")
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			span.AddEvent("optimistic lock conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
			select {
			case <-ctx.Done():
				return nil, s.fail(ctx, span, "failed to update session", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Millisecond):
			}
			continue
		case errors.Is(err, types.ErrSessionNotFound):
			return nil, err
		default:
			return nil, s.fail(ctx, span, "failed to update session", err)
		}
	}
	return nil, s.fail(ctx, span, "failed to update session", errConflict)
}

func (s *RedisSessionStore) AppendTurn(ctx context.Context, id uuid.UUID, turn types.Turn, resolved types.QueryContext) (*types.Session, error) {
	return s.update(ctx, "AppendTurn", id, func(sess *types.Session) {
		sess.RecordTurn(turn, resolved, s.opts.HistoryLimit, s.opts.now())
	})
}

func (s *RedisSessionStore) SetPreferences(ctx context.Context, id uuid.UUID, update types.Preferences) (*types.Session, error) {
	return s.update(ctx, "SetPreferences", id, func(sess *types.Session) {
		sess.Preferences = sess.Preferences.Merge(update)
		sess.UpdatedAt = s.opts.now()
	})
}

func (s *RedisSessionStore) Touch(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	return s.update(ctx, "Touch", id, func(sess *types.Session) {
		now := s.opts.now()
		sess.ExpiresAt = now.Add(s.opts.TTL)
		sess.UpdatedAt = now
	})
}

func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.span(ctx, "DeleteSession", id)
	defer span.End()

	n, err := s.rdb.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return s.fail(ctx, span, "failed to delete session", err)
	}
	if n == 0 {
		return types.ErrSessionNotFound
	}
	span.SetStatus(codes.Ok, "Session deleted")
	return nil
}

// CleanupExpired is a no-op: keys expire together with their session.
func (s *RedisSessionStore) CleanupExpired(context.Context) (int, error) {
	return 0, nil
}
