// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/use-overseer/Orquesta/internal/domain/learning"
	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// FeedbackDependencies defines the interface for feedback processing dependencies
type FeedbackDependencies interface {
	ApplyFeedback(ctx context.Context, v learning.Verdict) (Receipt, error)
}

// HistoryDependencies defines the interface for history read dependencies
type HistoryDependencies interface {
	History(ctx context.Context, limit int) []model.HistoryEntry
}

// feedbackRequest is the wire shape of POST /v1/feedback. Role and
// person_id narrow the verdict to one assignment; when omitted the verdict
// covers the whole week.
type feedbackRequest struct {
	WeekDate      string `json:"week_date" validate:"required,datetime=2006-01-02"`
	Resultado     string `json:"resultado" validate:"required,oneof=aceptada rechazada corrigida"`
	Role          string `json:"role"`
	PersonID      int64  `json:"person_id" validate:"omitempty,min=1"`
	AlternativeID int64  `json:"alternative_id" validate:"required_if=Resultado corrigida,omitempty,min=1"`
}

func (f feedbackRequest) toDomain() learning.Verdict {
	return learning.Verdict{
		Week:          f.WeekDate,
		Outcome:       model.Outcome(f.Resultado),
		Role:          f.Role,
		CandidateID:   f.PersonID,
		AlternativeID: f.AlternativeID,
	}
}

// FeedbackHandler handles feedback requests
type FeedbackHandler struct {
	deps FeedbackDependencies
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(deps FeedbackDependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

// HandleFeedback handles POST /v1/feedback requests
func (h *FeedbackHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.feedback"
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, validationError(err)))
		return
	}

	receipt, err := h.deps.ApplyFeedback(r.Context(), req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, learning.ErrUnknownReference):
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		case errors.Is(err, learning.ErrInvalidOutcome), errors.Is(err, learning.ErrMissingAlternative):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		default:
			// Includes verdicts that were rolled back because persistence
			// failed; the caller is expected to retry.
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// historyResponse is the wire shape of GET /v1/feedback/history.
type historyResponse struct {
	Entries []model.HistoryEntry `json:"entries"`
	Count   int                  `json:"count"`
}

// HistoryHandler handles feedback history requests
type HistoryHandler struct {
	deps         HistoryDependencies
	defaultLimit int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(deps HistoryDependencies, defaultLimit int) *HistoryHandler {
	if defaultLimit <= 0 {
		defaultLimit = defaultHistoryLimit
	}
	return &HistoryHandler{deps: deps, defaultLimit: defaultLimit}
}

// HandleHistory handles GET /v1/feedback/history requests
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.feedback_history"
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	entries := h.deps.History(r.Context(), limit)
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Count: len(entries)})
}
