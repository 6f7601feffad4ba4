package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/athipan1/Database-painaidee/app/middleware"
	"github.com/athipan1/Database-painaidee/app/observability/metrics"
	"github.com/athipan1/Database-painaidee/internal/api/attractions"
	"github.com/athipan1/Database-painaidee/internal/api/nlu"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the conversational query pipeline.
type Service interface {
	DetectIntent(ctx context.Context, text string) (types.IntentResult, error)
	GenerateQuery(ctx context.Context, text string, sessionID *uuid.UUID) (*types.QueryResponse, error)
	CreateSession(ctx context.Context, userID *string) (*types.Session, error)
	Chat(ctx context.Context, text string, sessionID *uuid.UUID) (*types.ChatResponse, error)
	UpdatePreferences(ctx context.Context, sessionID uuid.UUID, prefs types.Preferences) (*types.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	TouchSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
}

// Stage is a step of one conversational turn.
type Stage string

const (
	StageClassifying Stage = "classifying"
	StageBuilding    Stage = "building"
	StageExecuting   Stage = "executing"
	StageComposing   Stage = "composing"
	StagePersisting  Stage = "persisting"
)

const DefaultQueryTimeout = 5 * time.Second

type ServiceConfig struct {
	DefaultLimit int
	MaxLimit     int
	// QueryTimeout bounds each record store call.
	QueryTimeout time.Duration
}

type ServiceImpl struct {
	classifier   *nlu.Classifier
	builder      *QueryBuilder
	composer     *Composer
	validator    *PreferenceValidator
	sessions     SessionStore
	attractions  attractions.Repository
	queryTimeout time.Duration
	logger       *slog.Logger
}

func NewServiceImpl(sessions SessionStore, repo attractions.Repository, cfg ServiceConfig, logger *slog.Logger) *ServiceImpl {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return &ServiceImpl{
		classifier:   nlu.NewClassifier(),
		builder:      NewQueryBuilder(cfg.DefaultLimit, cfg.MaxLimit),
		composer:     NewComposer(),
		validator:    NewPreferenceValidator(cfg.MaxLimit),
		sessions:     sessions,
		attractions:  repo,
		queryTimeout: cfg.QueryTimeout,
		logger:       logger,
	}
}

func enterStage(ctx context.Context, span trace.Span, l *slog.Logger, stage Stage) {
	span.AddEvent(string(stage))
	l.DebugContext(ctx, "Turn stage", slog.String("stage", string(stage)))
}

func (s *ServiceImpl) DetectIntent(ctx context.Context, text string) (types.IntentResult, error) {
	_, span := otel.Tracer("ConversationService").Start(ctx, "DetectIntent")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty text")
		return types.IntentResult{}, types.ErrEmptyText
	}
	res := s.classifier.Classify(text)
	span.SetAttributes(
		attribute.String("intent", string(res.Intent)),
		attribute.Float64("confidence", res.Confidence),
	)
	span.SetStatus(codes.Ok, "Intent detected")
	return res, nil
}

// search runs a built query against the record store with the configured timeout.
func (s *ServiceImpl) search(ctx context.Context, q types.QueryDescriptor) ([]types.Attraction, error) {
	if q.Skip {
		return []types.Attraction{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	results, err := s.attractions.Search(ctx, q)
	if err != nil {
		if !errors.Is(err, types.ErrRecordStoreUnavailable) {
			err = fmt.Errorf("%w: %w", types.ErrRecordStoreUnavailable, err)
		}
		return nil, err
	}
	if results == nil {
		results = []types.Attraction{}
	}
	return results, nil
}

// resolveSession returns the live session for id, or a fresh one when id is
// nil, unknown or expired. The bool reports whether a session was created.
func (s *ServiceImpl) resolveSession(ctx context.Context, id *uuid.UUID) (*types.Session, bool, error) {
	if id != nil {
		sess, err := s.sessions.Get(ctx, *id)
		if err == nil {
			return sess, false, nil
		}
		if !errors.Is(err, types.ErrSessionNotFound) {
			return nil, false, fmt.Errorf("failed to load session: %w", err)
		}
		s.logger.InfoContext(ctx, "Session unknown or expired, starting a new one", slog.String("session_id", id.String()))
	}
	sess, err := s.CreateSession(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// persistTurn appends the turn. A session that expired during the turn is
// replaced with a new one holding only this turn.
func (s *ServiceImpl) persistTurn(ctx context.Context, sess *types.Session, turn types.Turn, resolved types.QueryContext) (*types.Session, bool, error) {
	updated, err := s.sessions.AppendTurn(ctx, sess.ID, turn, resolved)
	if err == nil {
		return updated, false, nil
	}
	if !errors.Is(err, types.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("failed to record turn: %w", err)
	}
	s.logger.WarnContext(ctx, "Session expired mid-turn, recording turn in a new session", slog.String("session_id", sess.ID.String()))
	fresh, err := s.CreateSession(ctx, sess.UserID)
	if err != nil {
		return nil, false, err
	}
	updated, err = s.sessions.AppendTurn(ctx, fresh.ID, turn, resolved)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record turn: %w", err)
	}
	return updated, true, nil
}

func newTurn(text string, intent types.Intent) types.Turn {
	return types.Turn{
		ID:        ulid.Make().String(),
		Text:      text,
		Intent:    intent,
		Timestamp: time.Now().UTC(),
	}
}

// GenerateQuery classifies text and runs the resulting query. Without a session
// id the call is stateless; with one the session context fills in missing
// entities and the turn is recorded.
func (s *ServiceImpl) GenerateQuery(ctx context.Context, text string, sessionID *uuid.UUID) (*types.QueryResponse, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "GenerateQuery")
	defer span.End()
	l := s.logger.With(slog.String("method", "GenerateQuery"))

	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty text")
		return nil, types.ErrEmptyText
	}

	var sess *types.Session
	if sessionID != nil {
		var err error
		if sess, _, err = s.resolveSession(ctx, sessionID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "session unavailable")
			return nil, err
		}
	}

	res := s.classifier.Classify(text)
	var carried types.QueryContext
	var prefs types.Preferences
	if sess != nil {
		carried, prefs = sess.Context, sess.Preferences
	}
	plan := s.builder.Plan(res, carried, prefs)

	results, err := s.search(ctx, plan.Query)
	if err != nil {
		l.ErrorContext(ctx, "Record store search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "record store unavailable")
		return nil, err
	}

	resp := &types.QueryResponse{
		Intent:       res,
		Query:        plan.Query,
		Results:      results,
		TotalResults: len(results),
	}
	if sess != nil {
		updated, _, err := s.persistTurn(ctx, sess, newTurn(text, res.Intent), plan.Resolved)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record turn")
			return nil, err
		}
		id := updated.ID
		resp.SessionID = &id
	}

	metrics.Get().TurnsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", string(res.Intent))))
	span.SetAttributes(attribute.String("intent", string(res.Intent)), attribute.Int("results.count", len(results)))
	span.SetStatus(codes.Ok, "Query generated")
	return resp, nil
}

func (s *ServiceImpl) CreateSession(ctx context.Context, userID *string) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "CreateSession")
	defer span.End()

	if userID == nil {
		if id, ok := appMiddleware.GetUserIDFromContext(ctx); ok && id != "" {
			userID = &id
		}
	}
	sess, err := s.sessions.Create(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	span.SetAttributes(attribute.String("session.id", sess.ID.String()))
	span.SetStatus(codes.Ok, "Session created")
	return sess, nil
}

// Chat runs one conversational turn. Record store failures degrade to an
// apology; the turn is recorded either way.
func (s *ServiceImpl) Chat(ctx context.Context, text string, sessionID *uuid.UUID) (*types.ChatResponse, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "Chat")
	defer span.End()
	l := s.logger.With(slog.String("method", "Chat"))

	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty text")
		return nil, types.ErrEmptyText
	}

	sess, isNew, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session unavailable")
		return nil, err
	}
	l = l.With(slog.String("session_id", sess.ID.String()))
	span.SetAttributes(attribute.String("session.id", sess.ID.String()), attribute.Bool("session.new", isNew))

	enterStage(ctx, span, l, StageClassifying)
	res := s.classifier.Classify(text)
	l.InfoContext(ctx, "Intent classified",
		slog.String("intent", string(res.Intent)),
		slog.Float64("confidence", res.Confidence),
		slog.String("entities", nlu.Describe(res.Entities)))

	plan := Plan{Query: types.QueryDescriptor{Skip: true, SearchTerms: []string{}}}
	results := []types.Attraction{}
	degraded := false
	if res.Intent.NeedsQuery() {
		enterStage(ctx, span, l, StageBuilding)
		plan = s.builder.Plan(res, sess.Context, sess.Preferences)

		enterStage(ctx, span, l, StageExecuting)
		results, err = s.search(ctx, plan.Query)
		if err != nil {
			l.WarnContext(ctx, "Record store unavailable, replying with apology", slog.Any("error", err))
			span.RecordError(err)
			results = []types.Attraction{}
			degraded = true
		}
	}

	enterStage(ctx, span, l, StageComposing)
	lang := Language(sess.Preferences)
	message := s.composer.Compose(res, plan.Query, len(results), lang)
	if degraded {
		message = s.composer.ComposeStoreFailure(lang)
	}

	enterStage(ctx, span, l, StagePersisting)
	updated, replaced, err := s.persistTurn(ctx, sess, newTurn(text, res.Intent), plan.Resolved)
	if err != nil {
		l.ErrorContext(ctx, "Failed to persist turn", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record turn")
		return nil, err
	}

	metrics.Get().TurnsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", string(res.Intent))))
	span.SetAttributes(attribute.String("intent", string(res.Intent)), attribute.Int("results.count", len(results)))
	span.SetStatus(codes.Ok, "Turn completed")

	return &types.ChatResponse{
		SessionID:    updated.ID,
		Message:      message,
		Intent:       res,
		Results:      results,
		TotalResults: len(results),
		IsNewSession: isNew || replaced,
		Degraded:     degraded,
	}, nil
}

func (s *ServiceImpl) UpdatePreferences(ctx context.Context, sessionID uuid.UUID, prefs types.Preferences) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "UpdatePreferences", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	normalized, err := s.validator.Normalize(prefs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid preferences")
		return nil, err
	}
	sess, err := s.sessions.SetPreferences(ctx, sessionID, normalized)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update preferences")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Preferences updated")
	return sess, nil
}

func (s *ServiceImpl) GetSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "GetSession", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get session")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Session found")
	return sess, nil
}

func (s *ServiceImpl) TouchSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "TouchSession", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	sess, err := s.sessions.Touch(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to touch session")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Session renewed")
	return sess, nil
}

func (s *ServiceImpl) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "DeleteSession", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete session")
		return err
	}
	span.SetStatus(codes.Ok, "Session deleted")
	return nil
}
