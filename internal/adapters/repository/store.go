// Package repository defines the durable gateway for engine state and
// errors. The engine owns state in memory; stores only load it at start
// and absorb atomic snapshots, so the interface is deliberately narrow.
package repository

import (
	"context"
	"time"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// TokenStatus tracks a token through its request/approval lifecycle.
type TokenStatus string

// Token lifecycle states.
const (
	TokenPending  TokenStatus = "pending"
	TokenActive   TokenStatus = "active"
	TokenRejected TokenStatus = "rejected"
	TokenRevoked  TokenStatus = "revoked"
)

// TokenRecord is a persisted API token request or token. Only a digest of
// the secret is stored; the cleartext exists once, in the response that
// issued it.
type TokenRecord struct {
	ID          string      `json:"id"`
	Owner       string      `json:"owner"`
	Email       string      `json:"email"`
	Purpose     string      `json:"purpose"`
	Status      TokenStatus `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	Digest      []byte      `json:"digest,omitempty"`
	RequestedAt time.Time   `json:"requested_at"`
	ReviewedAt  time.Time   `json:"reviewed_at,omitempty"`
	ExpiresAt   time.Time   `json:"expires_at,omitempty"`
}

// Store provides load/save access to the learned state plus token records.
type Store interface {
	// Load returns the persisted weights and history. A store holding no
	// snapshot yet returns empty state and no error.
	Load(ctx context.Context) (model.WeightVector, []model.HistoryEntry, error)
	// Save persists weights and history as one atomic replacement. A crash
	// mid-save must leave the previous snapshot readable.
	Save(ctx context.Context, weights model.WeightVector, history []model.HistoryEntry) error

	// PutToken stores or replaces a token record.
	PutToken(ctx context.Context, rec TokenRecord) error
	// GetToken returns the record for id.
	// Returns ErrNotFound if the id is unknown.
	GetToken(ctx context.Context, id string) (TokenRecord, error)
	// ListTokens returns all token records, oldest first.
	ListTokens(ctx context.Context) ([]TokenRecord, error)
	// DeleteToken removes the record for id. Unknown ids are not an error.
	DeleteToken(ctx context.Context, id string) error
}
