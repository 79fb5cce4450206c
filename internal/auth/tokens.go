// Package auth issues and validates the API tokens guarding the assignment
// endpoints, and gates the admin surface behind a shared secret.
//
// Tokens look like orq_<id>_<secret>, where both parts are unpadded
// URL-safe base64 and the secret is 32 random bytes. At rest only a bcrypt
// digest of the token's SHA-256 survives; the cleartext appears exactly
// once, in the approval response. Validation is hardened with a bounded
// cache so steady-state requests skip both the store and bcrypt.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/use-overseer/Orquesta/internal/adapters/repository"
	"github.com/use-overseer/Orquesta/pkg/logger"
	"github.com/use-overseer/Orquesta/pkg/metrics"
)

// Default settings for the token manager.
const (
	// tokenPrefix marks every minted token. The trailing underscore
	// doubles as the separator before the id part.
	tokenPrefix = "orq_"
	// tokenSecretLength is the size of the random secret in bytes.
	tokenSecretLength = 32
	// defaultBcryptCost trades roughly 250ms of hashing for resistance
	// to offline cracking of a leaked store.
	defaultBcryptCost = 12
	// defaultCacheSize bounds the validated-token cache.
	defaultCacheSize = 1024
	// defaultExpiryDays is the token lifetime when an approval does not
	// name one.
	defaultExpiryDays = 365
)

// Manager mints, validates and revokes API tokens backed by a Store.
type Manager struct {
	store      repository.Store
	cache      *tokenCache
	adminToken string
	bcryptCost int
	cacheSize  int
	expiryDays int
	now        func() time.Time
	logger     logger.Logger
}

// NewManager creates a token manager on top of the given store.
func NewManager(store repository.Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		bcryptCost: defaultBcryptCost,
		cacheSize:  defaultCacheSize,
		expiryDays: defaultExpiryDays,
		now:        time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.cache = newTokenCache(m.cacheSize)
	m.logger = logger.Named("auth")

	return m
}

// Request files a token request for review. At most one pending request per
// email is allowed.
func (m *Manager) Request(ctx context.Context, owner, email, purpose string) (repository.TokenRecord, error) {
	recs, err := m.store.ListTokens(ctx)
	if err != nil {
		return repository.TokenRecord{}, fmt.Errorf("list tokens: %w", err)
	}
	for _, rec := range recs {
		if rec.Status == repository.TokenPending && strings.EqualFold(rec.Email, email) {
			return repository.TokenRecord{}, ErrRequestPending
		}
	}

	rec := repository.TokenRecord{
		ID:          uuid.NewString(),
		Owner:       owner,
		Email:       email,
		Purpose:     purpose,
		Status:      repository.TokenPending,
		RequestedAt: m.now().UTC(),
	}
	if err := m.store.PutToken(ctx, rec); err != nil {
		return repository.TokenRecord{}, fmt.Errorf("store token request: %w", err)
	}

	m.logger.Info(ctx, "token requested",
		logger.String("request_id", rec.ID),
		logger.String("owner", owner))

	return rec, nil
}

// Review approves or rejects a pending request. On approval a token is
// minted and its cleartext returned; it is not recoverable afterwards.
// expiresDays bounds the token lifetime, zero meaning the default.
func (m *Manager) Review(ctx context.Context, requestID string, approve bool, notes string, expiresDays int) (repository.TokenRecord, string, error) {
	rec, err := m.store.GetToken(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.TokenRecord{}, "", ErrUnknownRequest
		}
		return repository.TokenRecord{}, "", fmt.Errorf("get token request: %w", err)
	}
	if rec.Status != repository.TokenPending {
		return repository.TokenRecord{}, "", ErrAlreadyReviewed
	}

	rec.ReviewedAt = m.now().UTC()
	rec.Notes = notes

	if !approve {
		rec.Status = repository.TokenRejected
		if err := m.store.PutToken(ctx, rec); err != nil {
			return repository.TokenRecord{}, "", fmt.Errorf("store rejection: %w", err)
		}
		m.logger.Info(ctx, "token request rejected",
			logger.String("request_id", rec.ID))
		return rec, "", nil
	}

	cleartext, digest, err := m.mint(rec.ID)
	if err != nil {
		return repository.TokenRecord{}, "", fmt.Errorf("mint token: %w", err)
	}

	days := expiresDays
	if days <= 0 {
		days = m.expiryDays
	}
	rec.Status = repository.TokenActive
	rec.Digest = digest
	rec.ExpiresAt = rec.ReviewedAt.AddDate(0, 0, days)

	if err := m.store.PutToken(ctx, rec); err != nil {
		return repository.TokenRecord{}, "", fmt.Errorf("store token: %w", err)
	}

	metrics.RecordTokenIssued()
	m.logger.Info(ctx, "token issued",
		logger.String("token_id", rec.ID),
		logger.String("owner", rec.Owner),
		logger.Int("expires_days", days))

	return rec, cleartext, nil
}

// List returns token records, optionally filtered by status.
func (m *Manager) List(ctx context.Context, status repository.TokenStatus) ([]repository.TokenRecord, error) {
	recs, err := m.store.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	if status == "" {
		return recs, nil
	}

	filtered := make([]repository.TokenRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Status == status {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// Revoke deactivates a token. The record survives for auditing.
func (m *Manager) Revoke(ctx context.Context, tokenID string) (repository.TokenRecord, error) {
	rec, err := m.store.GetToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.TokenRecord{}, ErrUnknownToken
		}
		return repository.TokenRecord{}, fmt.Errorf("get token: %w", err)
	}

	rec.Status = repository.TokenRevoked
	if err := m.store.PutToken(ctx, rec); err != nil {
		return repository.TokenRecord{}, fmt.Errorf("store revocation: %w", err)
	}
	m.cache.drop(tokenID)

	m.logger.Info(ctx, "token revoked",
		logger.String("token_id", tokenID),
		logger.String("owner", rec.Owner))

	return rec, nil
}

// Validate checks a cleartext token and returns its record when the token
// is active, unexpired and matches the stored digest.
func (m *Manager) Validate(ctx context.Context, cleartext string) (repository.TokenRecord, error) {
	id, ok := parseTokenID(cleartext)
	if !ok {
		metrics.RecordAuthFailure()
		return repository.TokenRecord{}, ErrInvalidToken
	}

	sum := sha256.Sum256([]byte(cleartext))
	cacheKey := hex.EncodeToString(sum[:])
	now := m.now().UTC()

	if rec, hit := m.cache.get(cacheKey, now); hit {
		return rec, nil
	}

	rec, err := m.store.GetToken(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordAuthFailure()
			return repository.TokenRecord{}, ErrUnknownToken
		}
		return repository.TokenRecord{}, fmt.Errorf("get token: %w", err)
	}

	if rec.Status != repository.TokenActive {
		metrics.RecordAuthFailure()
		return repository.TokenRecord{}, ErrTokenInactive
	}
	if !rec.ExpiresAt.IsZero() && now.After(rec.ExpiresAt) {
		metrics.RecordAuthFailure()
		return repository.TokenRecord{}, ErrTokenExpired
	}
	if bcrypt.CompareHashAndPassword(rec.Digest, sum[:]) != nil {
		metrics.RecordAuthFailure()
		return repository.TokenRecord{}, ErrInvalidToken
	}

	m.cache.put(cacheKey, rec)

	return rec, nil
}

// VerifyAdmin checks a cleartext token against the configured admin secret.
func (m *Manager) VerifyAdmin(token string) error {
	if m.adminToken == "" {
		return ErrNotAdmin
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(m.adminToken)) != 1 {
		metrics.RecordAuthFailure()
		return ErrNotAdmin
	}
	return nil
}

// mint generates a token for the given record id and returns the cleartext
// along with the bcrypt digest of its SHA-256.
func (m *Manager) mint(id string) (string, []byte, error) {
	secret := make([]byte, tokenSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, fmt.Errorf("generate secret: %w", err)
	}

	cleartext := tokenPrefix +
		base64.RawURLEncoding.EncodeToString([]byte(id)) +
		"_" +
		base64.RawURLEncoding.EncodeToString(secret)

	// bcrypt caps input at 72 bytes, so the token is pre-hashed.
	sum := sha256.Sum256([]byte(cleartext))
	digest, err := bcrypt.GenerateFromPassword(sum[:], m.bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash token: %w", err)
	}

	return cleartext, digest, nil
}

// parseTokenID extracts the record id embedded in a cleartext token.
func parseTokenID(cleartext string) (string, bool) {
	rest, found := strings.CutPrefix(cleartext, tokenPrefix)
	if !found {
		return "", false
	}
	idPart, secretPart, found := strings.Cut(rest, "_")
	if !found || idPart == "" || secretPart == "" {
		return "", false
	}
	id, err := base64.RawURLEncoding.DecodeString(idPart)
	if err != nil {
		return "", false
	}
	return string(id), true
}

// ExtractBearer pulls the token out of an Authorization header value.
// Returns the empty string when the header is missing or malformed.
func ExtractBearer(header string) string {
	const scheme = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
