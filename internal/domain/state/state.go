// Package state holds the process-wide learning state: the weight vector
// and the assignment history, behind a single reader/writer lock.
//
// Discipline: weights are copy-on-write. Writers mutate a clone and install
// it with Commit as one pointer swap, so readers never observe a vector torn
// mid-update; history is append-only. Nothing in this package performs I/O,
// and callers must not hold locks of their own while calling in.
package state

import (
	"sync"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Option applies a configuration option to the State.
type Option func(*State)

// WithSeedWeights sets the weights a fresh state starts from. A later
// Replace (for example from a persisted snapshot) overrides the seed.
func WithSeedWeights(w model.WeightVector) Option {
	return func(s *State) {
		if len(w) > 0 {
			s.weights = w.Clone()
		}
	}
}

// State is the shared mutable resource of the engine.
type State struct {
	mu       sync.RWMutex
	weights  model.WeightVector
	history  []model.HistoryEntry
	feedback int // cached count of terminal entries
}

// New creates state with configuration options.
func New(opts ...Option) *State {
	s := &State{weights: model.WeightVector{}}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot returns the current weights, history and feedback count for
// scoring. The returned weights map is the installed copy-on-write vector;
// callers must treat it as read-only.
func (s *State) Snapshot() (model.WeightVector, []model.HistoryEntry, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights, s.history, s.feedback
}

// Replace installs a freshly loaded state, typically at process start.
func (s *State) Replace(weights model.WeightVector, history []model.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if weights == nil {
		weights = model.WeightVector{}
	}
	s.weights = weights
	s.history = history
	s.feedback = countTerminal(history)
}

// AppendPending records assignment-born entries. They carry no verdict yet
// and therefore do not move the feedback count.
func (s *State) AppendPending(entries ...model.HistoryEntry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entries...)
}

// Commit installs an updated weight vector and appends the feedback entries
// produced with it, as one atomic step. It returns an undo that restores
// the previous weights and removes exactly the appended entries; undo is
// safe even if assignments appended further pending entries in between.
func (s *State) Commit(weights model.WeightVector, entries []model.HistoryEntry) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.weights
	added := make(map[string]struct{}, len(entries))
	terminal := 0
	for i := range entries {
		added[entries[i].ID] = struct{}{}
		if entries[i].Outcome.Terminal() {
			terminal++
		}
	}

	s.weights = weights
	s.history = append(s.history, entries...)
	s.feedback += terminal

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.weights = prev
		// Fresh slice: snapshots may still iterate the old backing array.
		kept := make([]model.HistoryEntry, 0, len(s.history))
		for i := range s.history {
			if _, drop := added[s.history[i].ID]; drop {
				continue
			}
			kept = append(kept, s.history[i])
		}
		s.history = kept
		s.feedback -= terminal
	}
}

// Export deep-copies the state for persistence, outside any caller locks.
func (s *State) Export() (model.WeightVector, []model.HistoryEntry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]model.HistoryEntry, len(s.history))
	copy(history, s.history)
	return s.weights.Clone(), history
}

// FeedbackCount returns the number of terminal feedback entries.
func (s *State) FeedbackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feedback
}

// HistoryLen returns the total number of history entries.
func (s *State) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// WeightKeys returns the number of keys in the weight vector.
func (s *State) WeightKeys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weights)
}

// Recent returns up to limit history entries, oldest first, taken from the
// tail of the log.
func (s *State) Recent(limit int) []model.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]model.HistoryEntry, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}

func countTerminal(history []model.HistoryEntry) int {
	n := 0
	for i := range history {
		if history[i].Outcome.Terminal() {
			n++
		}
	}
	return n
}
