// Package learning applies feedback verdicts to the weight vector. The
// update rule is a plain gradient step over the feature snapshot recorded at
// assignment time, asymmetric so that one bad assignment outweighs one good
// one.
package learning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Default learning configuration constants.
const (
	defaultLearningRate   = 0.05
	defaultNegativeFactor = 2.0
	defaultWeightCap      = 5.0
)

// Option applies a configuration option to the Learner.
type Option func(*Learner)

// WithLearningRate sets the base learning rate.
func WithLearningRate(rate float64) Option {
	return func(l *Learner) {
		if rate > 0 {
			l.rate = rate
		}
	}
}

// WithNegativeFactor sets how much harder negative feedback pushes than
// positive feedback.
func WithNegativeFactor(factor float64) Option {
	return func(l *Learner) {
		if factor > 0 {
			l.negativeFactor = factor
		}
	}
}

// WithWeightCap bounds every weight to [-cap, +cap].
func WithWeightCap(capValue float64) Option {
	return func(l *Learner) {
		if capValue > 0 {
			l.weightCap = capValue
		}
	}
}

// Verdict is one feedback input: the terminal outcome plus its payload.
// Role and CandidateID optionally narrow which assignments of the week the
// verdict covers; zero values mean "all of them".
type Verdict struct {
	Week          string
	Outcome       model.Outcome
	Role          string
	CandidateID   int64
	AlternativeID int64 // replacement candidate, corrections only
}

// Update reports what one verdict changed.
type Update struct {
	// Deltas holds the weight change actually applied per feature key,
	// after clamping.
	Deltas map[string]float64
	// Entries are the new history records to append, one per matched
	// assignment.
	Entries []model.HistoryEntry
	// Matched counts the assignments the verdict covered.
	Matched int
}

// Learner mutates a weight vector according to feedback verdicts.
type Learner struct {
	rate           float64
	negativeFactor float64
	weightCap      float64
}

// New creates a learner with configuration options.
func New(opts ...Option) *Learner {
	l := &Learner{
		rate:           defaultLearningRate,
		negativeFactor: defaultNegativeFactor,
		weightCap:      defaultWeightCap,
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Apply finds the assignments the verdict refers to and adjusts weights in
// place: weight += rate * signal * featureValue, clamped to the cap. Each
// matched assignment gets a new outcome-bearing history entry appended to
// the returned update; existing entries are never touched. A verdict that
// matches nothing returns ErrUnknownReference and mutates nothing.
func (l *Learner) Apply(weights model.WeightVector, history []model.HistoryEntry, v Verdict) (Update, error) {
	if !v.Outcome.Terminal() {
		return Update{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, v.Outcome)
	}
	if v.Outcome == model.OutcomeCorrected && v.AlternativeID == 0 {
		return Update{}, ErrMissingAlternative
	}

	matched := l.match(history, v)
	if len(matched) == 0 {
		return Update{}, fmt.Errorf("%w: week %s", ErrUnknownReference, v.Week)
	}

	signal := v.Outcome.Signal(l.negativeFactor)
	now := time.Now().UTC()
	up := Update{
		Deltas:  make(map[string]float64),
		Entries: make([]model.HistoryEntry, 0, len(matched)),
		Matched: len(matched),
	}

	for _, entry := range matched {
		for key, value := range entry.Features {
			up.Deltas[key] += l.step(weights, key, l.rate*signal*value)
		}
		if v.Outcome == model.OutcomeCorrected {
			// The replacement earns a positive nudge on its own affinity so
			// the next assignment of this role ranks it ahead.
			key := model.AffinityFeature(v.AlternativeID, entry.Role)
			up.Deltas[key] += l.step(weights, key, l.rate)
		}

		up.Entries = append(up.Entries, model.HistoryEntry{
			ID:            uuid.NewString(),
			Week:          entry.Week,
			Role:          entry.Role,
			CandidateID:   entry.CandidateID,
			CandidateName: entry.CandidateName,
			Outcome:       v.Outcome,
			AlternativeID: v.AlternativeID,
			Features:      entry.Features.Clone(),
			CreatedAt:     now,
		})
	}

	return up, nil
}

// match returns the latest history entry per (role, candidate) that the
// verdict covers. Later entries win, so repeated feedback always applies to
// the freshest feature snapshot.
func (l *Learner) match(history []model.HistoryEntry, v Verdict) []model.HistoryEntry {
	latest := make(map[string]model.HistoryEntry)
	order := make([]string, 0)
	for i := range history {
		e := history[i]
		if e.Week != v.Week {
			continue
		}
		if v.Role != "" && e.Role != v.Role {
			continue
		}
		if v.CandidateID != 0 && e.CandidateID != v.CandidateID {
			continue
		}
		if len(e.Features) == 0 {
			continue
		}
		key := fmt.Sprintf("%s|%d", e.Role, e.CandidateID)
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = e
	}

	out := make([]model.HistoryEntry, 0, len(latest))
	for _, key := range order {
		out = append(out, latest[key])
	}
	return out
}

// step applies one clamped delta to a weight key and returns the change that
// actually landed.
func (l *Learner) step(weights model.WeightVector, key string, delta float64) float64 {
	old := weights[key]
	next := old + delta
	if next > l.weightCap {
		next = l.weightCap
	}
	if next < -l.weightCap {
		next = -l.weightCap
	}
	weights[key] = next
	return next - old
}
