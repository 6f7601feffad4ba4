package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/athipan1/Database-painaidee/docs"
	"github.com/athipan1/Database-painaidee/internal/api/conversation"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ConversationHandler    conversation.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	RateLimitMiddleware    func(http.Handler) http.Handler
	AllowedOrigins         []string
}

func passthrough(next http.Handler) http.Handler { return next }

// SetupRouter builds the API router. Server-wide middleware (logger, request id,
// recoverer) is applied in main before mounting it.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	authenticate := cfg.AuthenticateMiddleware
	if authenticate == nil {
		authenticate = passthrough
	}
	rateLimit := cfg.RateLimitMiddleware
	if rateLimit == nil {
		rateLimit = passthrough
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		h := cfg.ConversationHandler

		r.Post("/nlu/intent", h.DetectIntent)
		r.Post("/search/from-text", h.QueryFromText)

		r.Route("/conversation", func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/session", h.CreateSession)
			r.Get("/session/{sessionID}", h.GetSession)
			r.Post("/session/{sessionID}/touch", h.TouchSession)
			r.Delete("/session/{sessionID}", h.DeleteSession)
			r.Post("/preferences", h.UpdatePreferences)

			r.With(rateLimit).Post("/chat", h.Chat)
		})
	})

	return r
}
