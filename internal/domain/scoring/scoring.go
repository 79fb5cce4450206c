// Package scoring computes candidate scores for role slots from the learned
// weight vector.
package scoring

import (
	"math/rand"
	"sync"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultEpsilonMin = 0.01
	defaultEpsilonMax = 0.5
	defaultRandomSeed = 42
)

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithEpsilonRange sets the exploration schedule bounds.
func WithEpsilonRange(minEps, maxEps float64) Option {
	return func(m *Model) {
		if minEps >= 0 && maxEps >= minEps {
			m.epsilonMin = minEps
			m.epsilonMax = maxEps
		}
	}
}

// WithSeed reseeds the exploration noise source.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // exploration noise, not crypto
	}
}

// WithExploration toggles the exploration noise term. Disabled scoring is
// fully deterministic, which also makes tie-breaking deterministic.
func WithExploration(enabled bool) Option {
	return func(m *Model) {
		m.explore = enabled
	}
}

// Scorer computes a score for one (candidate, slot) feature vector.
type Scorer interface {
	// Score returns the weighted sum of the features plus exploration noise
	// bounded by epsilon. It only reads the weight vector.
	Score(weights model.WeightVector, features model.FeatureVector, epsilon float64) float64
	// Epsilon returns the exploration magnitude for the given amount of
	// recorded feedback.
	Epsilon(totalFeedback int) float64
}

// Model implements Scorer as a weighted linear combination with an
// epsilon-greedy exploration term that decays as feedback accumulates.
type Model struct {
	epsilonMin float64
	epsilonMax float64
	explore    bool

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a scoring model with configuration options.
func New(opts ...Option) *Model {
	m := &Model{
		epsilonMin: defaultEpsilonMin,
		epsilonMax: defaultEpsilonMax,
		explore:    true,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible runs
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Score computes the score for one candidate-slot pairing. Missing weight
// keys read as zero, so a fresh model ranks purely on rotation and the
// seeded weights until feedback arrives.
func (m *Model) Score(weights model.WeightVector, features model.FeatureVector, epsilon float64) float64 {
	score := weights.Dot(features)
	if m.explore && epsilon > 0 {
		m.mu.Lock()
		score += m.rng.Float64() * epsilon
		m.mu.Unlock()
	}
	return score
}

// Epsilon implements the decaying schedule
// max(epsilonMin, epsilonMax/(1+totalFeedback)): a fresh model explores a
// lot, a well-trained one almost not at all.
func (m *Model) Epsilon(totalFeedback int) float64 {
	if totalFeedback < 0 {
		totalFeedback = 0
	}
	eps := m.epsilonMax / (1 + float64(totalFeedback))
	if eps < m.epsilonMin {
		return m.epsilonMin
	}
	return eps
}

// Features builds the feature vector for a candidate in a slot. The values
// returned here are snapshotted into history so feedback later replays
// exactly what was scored.
func Features(c model.Candidate, slot model.RoleSlot, rotation float64) model.FeatureVector {
	f := model.FeatureVector{
		model.RoleFeature(slot.Role):           1,
		model.AffinityFeature(c.ID, slot.Role): 1,
		model.FeatureRotation:                  rotation,
	}
	switch {
	case slot.PreferredGender != "":
		f[model.FeatureGenderMatch] = genderIndicator(c.Gender, slot.PreferredGender)
	case slot.RequiredGender != "":
		f[model.FeatureGenderMatch] = genderIndicator(c.Gender, slot.RequiredGender)
	}
	return f
}

func genderIndicator(have, want model.Gender) float64 {
	if have == want {
		return 1
	}
	return 0
}
