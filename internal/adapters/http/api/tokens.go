// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/use-overseer/Orquesta/internal/adapters/repository"
	"github.com/use-overseer/Orquesta/internal/auth"
)

// tokenRequestPayload is the wire shape of POST /v1/tokens/request.
type tokenRequestPayload struct {
	Owner   string `json:"owner" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
}

// tokenReviewPayload is the wire shape of POST /v1/tokens/approve.
type tokenReviewPayload struct {
	RequestID   string `json:"request_id" validate:"required"`
	Approved    bool   `json:"approved"`
	Notes       string `json:"notes"`
	ExpiresDays int    `json:"expires_days" validate:"omitempty,min=1"`
}

// tokenPayload is the outward view of a token record. The credential
// digest never leaves the store.
type tokenPayload struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	RequestedAt string `json:"requested_at"`
	ReviewedAt  string `json:"reviewed_at,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

type tokenRequestResponse struct {
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	RequestedAt string `json:"requested_at"`
}

// tokenReviewResponse carries the minted cleartext exactly once; it is
// not recoverable from any later call.
type tokenReviewResponse struct {
	Token  string       `json:"token,omitempty"`
	Record tokenPayload `json:"record"`
}

type tokenListResponse struct {
	Tokens []tokenPayload `json:"tokens"`
	Count  int            `json:"count"`
}

func fromTokenRecord(rec repository.TokenRecord) tokenPayload {
	p := tokenPayload{
		ID:          rec.ID,
		Owner:       rec.Owner,
		Email:       rec.Email,
		Purpose:     rec.Purpose,
		Status:      string(rec.Status),
		Notes:       rec.Notes,
		RequestedAt: rec.RequestedAt.UTC().Format(time.RFC3339),
	}
	if !rec.ReviewedAt.IsZero() {
		p.ReviewedAt = rec.ReviewedAt.UTC().Format(time.RFC3339)
	}
	if !rec.ExpiresAt.IsZero() {
		p.ExpiresAt = rec.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return p
}

// TokensHandler handles token lifecycle requests
type TokensHandler struct {
	auth *auth.Manager
}

// NewTokensHandler creates a new tokens handler
func NewTokensHandler(m *auth.Manager) *TokensHandler {
	return &TokensHandler{auth: m}
}

// HandleRequest handles POST /v1/tokens/request requests
func (h *TokensHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	const op = "api.tokens_request"
	var req tokenRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, validationError(err)))
		return
	}

	rec, err := h.auth.Request(r.Context(), req.Owner, req.Email, req.Purpose)
	if err != nil {
		if errors.Is(err, auth.ErrRequestPending) {
			writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, tokenRequestResponse{
		RequestID:   rec.ID,
		Status:      string(rec.Status),
		RequestedAt: rec.RequestedAt.UTC().Format(time.RFC3339),
	})
}

// HandleApprove handles POST /v1/tokens/approve requests
func (h *TokensHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	const op = "api.tokens_approve"
	var req tokenReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, validationError(err)))
		return
	}

	rec, cleartext, err := h.auth.Review(r.Context(), req.RequestID, req.Approved, req.Notes, req.ExpiresDays)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownRequest):
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		case errors.Is(err, auth.ErrAlreadyReviewed):
			writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
		default:
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, tokenReviewResponse{Token: cleartext, Record: fromTokenRecord(rec)})
}

// HandleList handles GET /v1/tokens requests
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.tokens_list"
	status := repository.TokenStatus(r.URL.Query().Get("status"))
	switch status {
	case "", repository.TokenPending, repository.TokenActive, repository.TokenRejected, repository.TokenRevoked:
	default:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("unknown status filter")))
		return
	}

	recs, err := h.auth.List(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	tokens := make([]tokenPayload, 0, len(recs))
	for _, rec := range recs {
		tokens = append(tokens, fromTokenRecord(rec))
	}
	writeJSON(w, http.StatusOK, tokenListResponse{Tokens: tokens, Count: len(tokens)})
}

// HandleRevoke handles DELETE /v1/tokens/{id} requests
func (h *TokensHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	const op = "api.tokens_revoke"
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	rec, err := h.auth.Revoke(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownToken) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, fromTokenRecord(rec))
}
