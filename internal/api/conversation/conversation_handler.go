package conversation

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/athipan1/Database-painaidee/internal/api"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	DetectIntent(w http.ResponseWriter, r *http.Request)
	QueryFromText(w http.ResponseWriter, r *http.Request)
	CreateSession(w http.ResponseWriter, r *http.Request)
	Chat(w http.ResponseWriter, r *http.Request)
	UpdatePreferences(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	TouchSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func startSpan(r *http.Request, name, route string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return r.WithContext(ctx), span
}

func sessionIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	return id, err == nil
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *HandlerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrEmptyText):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing 'text' field")
	case errors.Is(err, types.ErrSessionNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
	case errors.Is(err, types.ErrInvalidPreference):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrRecordStoreUnavailable):
		l.ErrorContext(r.Context(), "Record store unavailable", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Attraction search is temporarily unavailable")
	default:
		l.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// DetectIntent godoc
// @Summary      Detect intent
// @Description  Classifies free text into one intent with extracted entities.
// @Tags         NLU
// @Accept       json
// @Produce      json
// @Param        request body types.TextRequest true "Text to classify"
// @Success      200 {object} types.IntentResult
// @Failure      400 {object} types.Response "Missing text"
// @Router       /nlu/intent [post]
func (h *HandlerImpl) DetectIntent(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "DetectIntent", "/nlu/intent")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "DetectIntent"))

	var req types.TextRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.DetectIntent(r.Context(), req.Text)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

// QueryFromText godoc
// @Summary      Search from text
// @Description  Classifies text, builds a query and returns matching attractions.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request body types.QueryRequest true "Text and optional session"
// @Success      200 {object} types.QueryResponse
// @Failure      400 {object} types.Response "Missing text"
// @Failure      503 {object} types.Response "Record store unavailable"
// @Router       /search/from-text [post]
func (h *HandlerImpl) QueryFromText(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "QueryFromText", "/search/from-text")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "QueryFromText"))

	var req types.QueryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GenerateQuery(r.Context(), req.Text, req.SessionID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// CreateSession godoc
// @Summary      Create conversation session
// @Tags         Conversation
// @Accept       json
// @Produce      json
// @Param        request body types.CreateSessionRequest false "Optional user id"
// @Success      201 {object} types.CreateSessionResponse
// @Router       /conversation/session [post]
func (h *HandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreateSession", "/conversation/session")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "CreateSession"))

	var req types.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.UserID != nil && strings.TrimSpace(*req.UserID) == "" {
		req.UserID = nil
	}

	sess, err := h.service.CreateSession(r.Context(), req.UserID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, types.CreateSessionResponse{
		SessionID:      sess.ID,
		ExpiresAt:      sess.ExpiresAt,
		ExpiresInHours: sess.ExpiresAt.Sub(sess.CreatedAt).Hours(),
		Message:        "Conversation session created successfully",
	})
}

// Chat godoc
// @Summary      Conversational turn
// @Description  Runs one turn: classify, query, compose a reply and record the turn.
// @Tags         Conversation
// @Accept       json
// @Produce      json
// @Param        request body types.ChatRequest true "Utterance and optional session"
// @Success      200 {object} types.ChatResponse
// @Failure      400 {object} types.Response "Missing text"
// @Failure      429 {object} types.Response "Too many requests"
// @Router       /conversation/chat [post]
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Chat", "/conversation/chat")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "Chat"))

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Chat(r.Context(), req.Text, req.SessionID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// UpdatePreferences godoc
// @Summary      Update session preferences
// @Description  Merges the given preference keys into the session; keys not given are kept.
// @Tags         Conversation
// @Accept       json
// @Produce      json
// @Param        request body types.PreferencesRequest true "Session id and preferences"
// @Success      200 {object} types.PreferencesResponse
// @Failure      400 {object} types.Response "Invalid preference"
// @Failure      404 {object} types.Response "Session not found"
// @Router       /conversation/preferences [post]
func (h *HandlerImpl) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "UpdatePreferences", "/conversation/preferences")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "UpdatePreferences"))

	var req types.PreferencesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing 'session_id' field")
		return
	}

	sess, err := h.service.UpdatePreferences(r.Context(), req.SessionID, req.Preferences)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.PreferencesResponse{
		Success:     true,
		SessionID:   sess.ID,
		Preferences: sess.Preferences,
	})
}

// GetSession godoc
// @Summary      Get session
// @Tags         Conversation
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} types.Session
// @Failure      404 {object} types.Response "Session not found"
// @Router       /conversation/session/{sessionID} [get]
func (h *HandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetSession", "/conversation/session/{sessionID}")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "GetSession"))

	id, ok := sessionIDParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	sess, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, sess)
}

// TouchSession godoc
// @Summary      Renew session expiry
// @Tags         Conversation
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} types.Session
// @Failure      404 {object} types.Response "Session not found"
// @Router       /conversation/session/{sessionID}/touch [post]
func (h *HandlerImpl) TouchSession(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "TouchSession", "/conversation/session/{sessionID}/touch")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "TouchSession"))

	id, ok := sessionIDParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	sess, err := h.service.TouchSession(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, sess)
}

// DeleteSession godoc
// @Summary      End session
// @Tags         Conversation
// @Param        sessionID path string true "Session ID"
// @Success      204
// @Failure      404 {object} types.Response "Session not found"
// @Router       /conversation/session/{sessionID} [delete]
func (h *HandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "DeleteSession", "/conversation/session/{sessionID}")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "DeleteSession"))

	id, ok := sessionIDParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	if err := h.service.DeleteSession(r.Context(), id); err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
