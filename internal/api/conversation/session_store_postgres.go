package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/athipan1/Database-painaidee/app/db"
	"github.com/athipan1/Database-painaidee/app/observability/metrics"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ SessionStore = (*PostgresSessionStore)(nil)

// PostgresSessionStore persists sessions in conversation_sessions. Mutations run
// in a transaction holding the session row lock.
type PostgresSessionStore struct {
	pgpool database.Pool
	opts   StoreOptions
	logger *slog.Logger
}

func NewPostgresSessionStore(pgpool database.Pool, opts StoreOptions, logger *slog.Logger) *PostgresSessionStore {
	return &PostgresSessionStore{
		pgpool: pgpool,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

const sessionColumns = `id, user_id, history, last_intent, context, preferences, created_at, updated_at, expires_at`

func (s *PostgresSessionStore) span(ctx context.Context, name, op string, id uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("SessionStore").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", op),
		attribute.String("session.id", id.String()),
	))
}

func (s *PostgresSessionStore) fail(ctx context.Context, span trace.Span, l *slog.Logger, msg string, err error) error {
	metrics.Get().SessionStoreErrorsTotal.Add(ctx, 1)
	l.ErrorContext(ctx, msg, slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func scanSession(row pgx.Row) (*types.Session, error) {
	var (
		sess                          types.Session
		lastIntent                    string
		historyJSON, ctxJSON, prefsJS []byte
	)
	if err := row.Scan(&sess.ID, &sess.UserID, &historyJSON, &lastIntent, &ctxJSON, &prefsJS,
		&sess.CreatedAt, &sess.UpdatedAt, &sess.ExpiresAt); err != nil {
		return nil, err
	}
	sess.LastIntent = types.Intent(lastIntent)
	if err := json.Unmarshal(historyJSON, &sess.History); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	if sess.History == nil {
		sess.History = []types.Turn{}
	}
	if err := json.Unmarshal(ctxJSON, &sess.Context); err != nil {
		return nil, fmt.Errorf("decoding context: %w", err)
	}
	if err := json.Unmarshal(prefsJS, &sess.Preferences); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	return &sess, nil
}

func encodeSession(sess *types.Session) (history, ctx, prefs []byte, err error) {
	if history, err = json.Marshal(sess.History); err != nil {
		return nil, nil, nil, err
	}
	if ctx, err = json.Marshal(sess.Context); err != nil {
		return nil, nil, nil, err
	}
	if prefs, err = json.Marshal(sess.Preferences); err != nil {
		return nil, nil, nil, err
	}
	return history, ctx, prefs, nil
}

func (s *PostgresSessionStore) Create(ctx context.Context, userID *string) (*types.Session, error) {
	sess := types.NewSession(userID, s.opts.now(), s.opts.TTL)
	ctx, span := s.span(ctx, "CreateSession", "INSERT", sess.ID)
	defer span.End()
	l := s.logger.With(slog.String("method", "Create"), slog.String("session_id", sess.ID.String()))

	history, sctx, prefs, err := encodeSession(sess)
	if err != nil {
		return nil, s.fail(ctx, span, l, "failed to encode session", err)
	}

	query := `
        INSERT INTO conversation_sessions (
            id, user_id, history, last_intent, context, preferences, created_at, updated_at, expires_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	if _, err := s.pgpool.Exec(ctx, query, sess.ID, sess.UserID, history, string(sess.LastIntent), sctx, prefs,
		sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt); err != nil {
		return nil, s.fail(ctx, span, l, "failed to create session", err)
	}

	l.DebugContext(ctx, "Session created")
	span.SetStatus(codes.Ok, "Session created")
	return sess, nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	ctx, span := s.span(ctx, "GetSession", "SELECT", id)
	defer span.End()
	l := s.logger.With(slog.String("method", "Get"), slog.String("session_id", id.String()))

	query := `SELECT ` + sessionColumns + ` FROM conversation_sessions WHERE id = $1`
	sess, err := scanSession(s.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "Session not found")
			return nil, types.ErrSessionNotFound
		}
		return nil, s.fail(ctx, span, l, "failed to get session", err)
	}
	if sess.Expired(s.opts.now()) {
		span.SetStatus(codes.Ok, "Session expired")
		return nil, types.ErrSessionNotFound
	}
	span.SetStatus(codes.Ok, "Session found")
	return sess, nil
}

// update locks the live session row, applies fn and writes the mutable columns back.
func (s *PostgresSessionStore) update(ctx context.Context, method string, id uuid.UUID, fn func(*types.Session)) (*types.Session, error) {
	ctx, span := s.span(ctx, method, "UPDATE", id)
	defer span.End()
	l := s.logger.With(slog.String("method", method), slog.String("session_id", id.String()))

	tx, err := s.pgpool.Begin(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, l, "failed to start transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + sessionColumns + ` FROM conversation_sessions WHERE id = $1 FOR UPDATE`
	sess, err := scanSession(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "Session not found")
			return nil, types.ErrSessionNotFound
		}
		return nil, s.fail(ctx, span, l, "failed to lock session", err)
	}
	if sess.Expired(s.opts.now()) {
		span.SetStatus(codes.Ok, "Session expired")
		return nil, types.ErrSessionNotFound
	}

	fn(sess)

	history, sctx, prefs, err := encodeSession(sess)
	if err != nil {
		return nil, s.fail(ctx, span, l, "failed to encode session", err)
	}
	updateQuery := `
        UPDATE conversation_sessions
        SET history = $2, last_intent = $3, context = $4, preferences = $5, updated_at = $6, expires_at = $7
        WHERE id = $1
    `
	if _, err := tx.Exec(ctx, updateQuery, id, history, string(sess.LastIntent), sctx, prefs,
		sess.UpdatedAt, sess.ExpiresAt); err != nil {
		return nil, s.fail(ctx, span, l, "failed to update session", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, s.fail(ctx, span, l, "failed to commit transaction", err)
	}

	span.SetStatus(codes.Ok, "Session updated")
	return sess, nil
}

func (s *PostgresSessionStore) AppendTurn(ctx context.Context, id uuid.UUID, turn types.Turn, resolved types.QueryContext) (*types.Session, error) {
	return s.update(ctx, "AppendTurn", id, func(sess *types.Session) {
		sess.RecordTurn(turn, resolved, s.opts.HistoryLimit, s.opts.now())
	})
}

func (s *PostgresSessionStore) SetPreferences(ctx context.Context, id uuid.UUID, update types.Preferences) (*types.Session, error) {
	return s.update(ctx, "SetPreferences", id, func(sess *types.Session) {
		sess.Preferences = sess.Preferences.Merge(update)
		sess.UpdatedAt = s.opts.now()
	})
}

func (s *PostgresSessionStore) Touch(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	return s.update(ctx, "Touch", id, func(sess *types.Session) {
		now := s.opts.now()
		sess.ExpiresAt = now.Add(s.opts.TTL)
		sess.UpdatedAt = now
	})
}

func (s *PostgresSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.span(ctx, "DeleteSession", "DELETE", id)
	defer span.End()
	l := s.logger.With(slog.String("method", "Delete"), slog.String("session_id", id.String()))

	tag, err := s.pgpool.Exec(ctx, `DELETE FROM conversation_sessions WHERE id = $1 AND expires_at > $2`, id, s.opts.now())
	if err != nil {
		return s.fail(ctx, span, l, "failed to delete session", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Ok, "Session not found")
		return types.ErrSessionNotFound
	}
	span.SetStatus(codes.Ok, "Session deleted")
	return nil
}

func (s *PostgresSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("SessionStore").Start(ctx, "CleanupExpired", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "CleanupExpired"))

	tag, err := s.pgpool.Exec(ctx, `DELETE FROM conversation_sessions WHERE expires_at <= $1`, s.opts.now())
	if err != nil {
		return 0, s.fail(ctx, span, l, "failed to delete expired sessions", err)
	}
	removed := int(tag.RowsAffected())
	if removed > 0 {
		l.InfoContext(ctx, "Expired sessions removed", slog.Int("count", removed))
	}
	span.SetAttributes(attribute.Int("sessions.removed", removed))
	span.SetStatus(codes.Ok, "Expired sessions removed")
	return removed, nil
}
