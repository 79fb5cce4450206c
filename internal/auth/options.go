package auth

import "time"

// Option is a function that configures the token manager.
type Option func(*Manager)

// WithAdminToken sets the shared secret accepted for admin endpoints.
// When empty, every admin check fails.
func WithAdminToken(token string) Option {
	return func(m *Manager) {
		m.adminToken = token
	}
}

// WithBcryptCost sets the bcrypt cost used when hashing minted tokens.
// Lower costs are useful in tests.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) {
		if cost > 0 {
			m.bcryptCost = cost
		}
	}
}

// WithCacheSize bounds the validated-token cache.
func WithCacheSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.cacheSize = n
		}
	}
}

// WithDefaultExpiryDays sets the token lifetime applied when an approval
// does not name one.
func WithDefaultExpiryDays(days int) Option {
	return func(m *Manager) {
		if days > 0 {
			m.expiryDays = days
		}
	}
}

// WithClock overrides the time source. Useful in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
