// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/use-overseer/Orquesta/internal/auth"
	"github.com/use-overseer/Orquesta/internal/domain/assign"
	"github.com/use-overseer/Orquesta/internal/domain/learning"
	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Default limits for history reads.
const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 500
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// AssignMeeting fills every slot of one meeting.
	AssignMeeting(ctx context.Context, req assign.Request) (assign.Result, error)

	// ApplyFeedback applies one verdict to the learned weights.
	ApplyFeedback(ctx context.Context, v learning.Verdict) (Receipt, error)

	// History returns up to limit recent history entries, oldest first.
	History(ctx context.Context, limit int) []model.HistoryEntry
}

// Receipt mirrors the feedback outcome shape returned by the engine.
type Receipt = model.Receipt

// validate is the shared request validator.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by the CORS middleware.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithHistoryLimit sets the default page size for history reads.
func WithHistoryLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	assignHandler   *AssignHandler
	feedbackHandler *FeedbackHandler
	historyHandler  *HistoryHandler
	statusHandler   *StatusHandler
	healthHandler   *HealthHandler
	tokensHandler   *TokensHandler

	auth         *auth.Manager
	corsOrigins  []string
	historyLimit int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, authManager *auth.Manager, opts ...Option) *Server {
	s := &Server{
		auth:         authManager,
		corsOrigins:  []string{"*"},
		historyLimit: defaultHistoryLimit,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.assignHandler = NewAssignHandler(deps)
	s.feedbackHandler = NewFeedbackHandler(deps)
	s.historyHandler = NewHistoryHandler(deps, s.historyLimit)
	s.statusHandler = NewStatusHandler(statsProvider)
	s.healthHandler = NewHealthHandler()
	s.tokensHandler = NewTokensHandler(authManager)

	return s
}

// Register attaches all HTTP routes to the router. Engine routes live
// under /v1 behind bearer-token auth; token review routes additionally
// require the admin secret. Status, health and token requests are public.
func (s *Server) Register(r chi.Router) {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           corsMaxAgeSeconds,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/v1/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	r.Post("/v1/tokens/request", MetricsMiddleware(s.tokensHandler.HandleRequest, "tokens_request"))

	// Engine endpoints: any active API token, or the admin secret.
	r.Group(func(r chi.Router) {
		r.Use(RequireToken(s.auth))
		r.Post("/v1/assign_meeting", MetricsMiddleware(s.assignHandler.HandleAssign, "assign_meeting"))
		r.Post("/v1/feedback", MetricsMiddleware(s.feedbackHandler.HandleFeedback, "feedback"))
		r.Get("/v1/feedback/history", MetricsMiddleware(s.historyHandler.HandleHistory, "feedback_history"))
	})

	// Token review endpoints: admin secret only.
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(s.auth))
		r.Post("/v1/tokens/approve", MetricsMiddleware(s.tokensHandler.HandleApprove, "tokens_approve"))
		r.Get("/v1/tokens", MetricsMiddleware(s.tokensHandler.HandleList, "tokens_list"))
		r.Delete("/v1/tokens/{id}", MetricsMiddleware(s.tokensHandler.HandleRevoke, "tokens_revoke"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// validationError flattens validator output into one readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
	}
	return errors.New(strings.Join(parts, "; "))
}
