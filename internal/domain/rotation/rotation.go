// Package rotation derives recency-of-last-assignment from the history and
// turns it into the normalized rotation feature.
package rotation

import (
	"time"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Default rotation configuration constants.
const (
	defaultSaturationWeeks = 20
	isoDate                = "2006-01-02"
	daysPerWeek            = 7
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithSaturation sets the number of weeks after which the rotation feature
// stops growing.
func WithSaturation(weeks int) Option {
	return func(t *Tracker) {
		if weeks > 0 {
			t.saturation = weeks
		}
	}
}

// Tracker computes rotation recency. It is stateless besides configuration;
// the history slice is supplied per call.
type Tracker struct {
	saturation int
}

// New creates a tracker with configuration options.
func New(opts ...Option) *Tracker {
	t := &Tracker{saturation: defaultSaturationWeeks}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WeeksSince returns the whole weeks between the candidate's most recent
// history entry and the meeting week. The second return is false when the
// history knows nothing about the candidate. Entries count regardless of
// outcome: a pending entry is still an assignment.
func (t *Tracker) WeeksSince(history []model.HistoryEntry, candidateID int64, week string) (int, bool) {
	ref, err := time.Parse(isoDate, week)
	if err != nil {
		return 0, false
	}

	var latest time.Time
	found := false
	for i := range history {
		if history[i].CandidateID != candidateID {
			continue
		}
		at, err := time.Parse(isoDate, history[i].Week)
		if err != nil {
			continue
		}
		if !found || at.After(latest) {
			latest = at
			found = true
		}
	}
	if !found {
		return 0, false
	}

	weeks := int(ref.Sub(latest).Hours() / 24 / daysPerWeek)
	if weeks < 0 {
		weeks = 0
	}
	return weeks, true
}

// Effective merges the history-derived recency with the caller-supplied hint,
// keeping the fresher of the two. The second return is false when neither
// side knows, which means the candidate was never assigned.
func (t *Tracker) Effective(history []model.HistoryEntry, c model.Candidate, week string) (int, bool) {
	weeks, known := t.WeeksSince(history, c.ID, week)
	if c.LastAssignedWeeks != nil {
		hint := *c.LastAssignedWeeks
		if hint < 0 {
			hint = 0
		}
		if !known || hint < weeks {
			return hint, true
		}
	}
	return weeks, known
}

// Value normalizes recency into [0,1], saturating after the configured
// horizon. Never-assigned candidates get the maximal value so they surface
// first.
func (t *Tracker) Value(weeks int, known bool) float64 {
	if !known {
		return 1
	}
	if weeks < 0 {
		weeks = 0
	}
	if weeks >= t.saturation {
		return 1
	}
	return float64(weeks) / float64(t.saturation)
}
