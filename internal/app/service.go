// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/use-overseer/Orquesta/internal/adapters/flush"
	repository "github.com/use-overseer/Orquesta/internal/adapters/repository"
	"github.com/use-overseer/Orquesta/internal/domain/assign"
	"github.com/use-overseer/Orquesta/internal/domain/eligibility"
	"github.com/use-overseer/Orquesta/internal/domain/learning"
	"github.com/use-overseer/Orquesta/internal/domain/model"
	"github.com/use-overseer/Orquesta/internal/domain/rotation"
	"github.com/use-overseer/Orquesta/internal/domain/scoring"
	"github.com/use-overseer/Orquesta/internal/domain/state"
	"github.com/use-overseer/Orquesta/pkg/logger"
	"github.com/use-overseer/Orquesta/pkg/metrics"
)

// Service implements the API dependencies for the assignment engine. It
// owns the learned state, runs the assigner and learner against it, and
// keeps the durable store in sync: asynchronously after assignments,
// synchronously with rollback for feedback.
type Service struct {
	mu   sync.RWMutex
	fbMu sync.Mutex // serializes feedback verdicts end to end

	// Core components
	store    repository.Store
	state    *state.State
	assigner *assign.Assigner
	scorer   *scoring.Model
	learner  *learning.Learner
	flusher  *flush.Flusher

	// Configuration
	seedWeights      map[string]float64
	epsilonMin       float64
	epsilonMax       float64
	exploration      bool
	learningRate     float64
	negativeFactor   float64
	weightCap        float64
	saturationWeeks  int
	tieBreak         assign.TieBreak
	persistAttempts  int
	persistBackoff   time.Duration
	flushCapacity    int
	flushDebounce    time.Duration
	flushSaveTimeout time.Duration

	// State
	started     bool
	flushCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the durable store backing the engine state.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSeedWeights sets the weights a first boot starts from. A persisted
// snapshot always wins over the seed.
func WithSeedWeights(weights map[string]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.seedWeights = weights
		}
	}
}

// WithEpsilonRange sets the exploration schedule bounds.
func WithEpsilonRange(minEps, maxEps float64) Option {
	return func(s *Service) {
		if minEps >= 0 && maxEps >= minEps {
			s.epsilonMin = minEps
			s.epsilonMax = maxEps
		}
	}
}

// WithExploration toggles epsilon-greedy exploration noise.
func WithExploration(enabled bool) Option {
	return func(s *Service) {
		s.exploration = enabled
	}
}

// WithLearningRate sets the base feedback learning rate.
func WithLearningRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.learningRate = rate
		}
	}
}

// WithNegativeFactor sets how much harder negative feedback pushes than
// positive feedback.
func WithNegativeFactor(factor float64) Option {
	return func(s *Service) {
		if factor > 0 {
			s.negativeFactor = factor
		}
	}
}

// WithWeightCap bounds every learned weight to [-cap, +cap].
func WithWeightCap(capValue float64) Option {
	return func(s *Service) {
		if capValue > 0 {
			s.weightCap = capValue
		}
	}
}

// WithSaturationWeeks sets the recency horizon after which rotation
// pressure stops growing.
func WithSaturationWeeks(weeks int) Option {
	return func(s *Service) {
		if weeks > 0 {
			s.saturationWeeks = weeks
		}
	}
}

// WithTieBreak sets the policy for resolving exact score ties.
func WithTieBreak(policy string) Option {
	return func(s *Service) {
		switch assign.TieBreak(policy) {
		case assign.TieBreakLowestID, assign.TieBreakName:
			s.tieBreak = assign.TieBreak(policy)
		}
	}
}

// WithPersistRetry shapes the synchronous feedback save: number of
// attempts and the initial backoff, which doubles per retry.
func WithPersistRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.persistAttempts = attempts
		}
		if backoff > 0 {
			s.persistBackoff = backoff
		}
	}
}

// WithFlushTuning tunes the background snapshot flusher.
func WithFlushTuning(capacity int, debounce, saveTimeout time.Duration) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.flushCapacity = capacity
		}
		if debounce >= 0 {
			s.flushDebounce = debounce
		}
		if saveTimeout > 0 {
			s.flushSaveTimeout = saveTimeout
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seedWeights: map[string]float64{
			model.FeatureRotation:    1.0,
			model.FeatureGenderMatch: 0.5,
		},
		epsilonMin:       0.01,
		epsilonMax:       0.5,
		exploration:      true,
		learningRate:     0.05,
		negativeFactor:   2.0,
		weightCap:        5.0,
		saturationWeeks:  20,
		tieBreak:         assign.TieBreakLowestID,
		persistAttempts:  3,
		persistBackoff:   50 * time.Millisecond,
		flushCapacity:    64,
		flushDebounce:    250 * time.Millisecond,
		flushSaveTimeout: 5 * time.Second,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the persisted state and brings up the engine components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting assignment engine...")

	// Initialize components
	s.scorer = scoring.New(
		scoring.WithEpsilonRange(s.epsilonMin, s.epsilonMax),
		scoring.WithExploration(s.exploration),
	)
	s.assigner = assign.New(
		assign.WithScorer(s.scorer),
		assign.WithTracker(rotation.New(rotation.WithSaturation(s.saturationWeeks))),
		assign.WithChecker(eligibility.New()),
		assign.WithTieBreak(s.tieBreak),
	)
	s.learner = learning.New(
		learning.WithLearningRate(s.learningRate),
		learning.WithNegativeFactor(s.negativeFactor),
		learning.WithWeightCap(s.weightCap),
	)
	s.state = state.New(state.WithSeedWeights(model.WeightVector(s.seedWeights)))

	// Load the persisted snapshot; an empty store keeps the seed weights.
	weights, history, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted state: %w", err)
	}
	if len(weights) > 0 || len(history) > 0 {
		s.state.Replace(weights, history)
	}

	// Start the background flusher that persists post-assign state.
	s.flusher = flush.New(s.state, s.store,
		flush.WithCapacity(s.flushCapacity),
		flush.WithDebounce(s.flushDebounce),
		flush.WithSaveTimeout(s.flushSaveTimeout),
	)
	flushCtx, cancel := context.WithCancel(context.Background())
	s.flushCancel = cancel
	go s.flusher.Run(flushCtx)

	s.started = true
	s.logger.Info(ctx, "assignment engine started",
		logger.Int("weight_keys", s.state.WeightKeys()),
		logger.Int("history_entries", s.state.HistoryLen()),
		logger.Int("total_feedbacks", s.state.FeedbackCount()),
	)

	metrics.UpdateWeightKeys(s.state.WeightKeys())
	metrics.UpdateHistoryEntries(s.state.HistoryLen())

	return nil
}

// Stop gracefully shuts down the service. The freshest state is flushed
// one last time so a restart resumes where this process left off.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping assignment engine...")

	var firstErr error
	if s.flusher != nil {
		if err := s.flusher.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if s.flushCancel != nil {
		s.flushCancel()
	}

	// Final synchronous flush, independent of pending triggers.
	weights, history := s.state.Export()
	if err := s.store.Save(ctx, weights, history); err != nil {
		s.logger.Warn(ctx, "final state flush failed", logger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	s.started = false
	s.logger.Info(ctx, "assignment engine stopped")

	return firstErr
}

// AssignMeeting fills every slot of one meeting and records the picks as
// pending history entries. Their persistence is asynchronous; the response
// never waits on the store.
func (s *Service) AssignMeeting(ctx context.Context, req assign.Request) (assign.Result, error) {
	if !s.running() {
		return assign.Result{}, ErrNotStarted
	}

	start := time.Now()
	weights, history, feedback := s.state.Snapshot()
	res := s.assigner.Assign(req, weights, history, feedback)

	now := time.Now().UTC()
	entries := make([]model.HistoryEntry, 0, len(res.Picks))
	for _, p := range res.Picks {
		entries = append(entries, model.HistoryEntry{
			ID:            uuid.NewString(),
			Week:          p.Week,
			Role:          p.Role,
			CandidateID:   p.Candidate.ID,
			CandidateName: p.Candidate.Name,
			Outcome:       model.OutcomePending,
			Features:      p.Features,
			CreatedAt:     now,
		})
	}
	s.state.AppendPending(entries...)
	s.flusher.Trigger()

	metrics.RecordAssignment()
	metrics.RecordAssignDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordCandidatePoolSize(len(req.Candidates))
	metrics.UpdateExplorationEpsilon(res.Epsilon)
	metrics.UpdateHistoryEntries(s.state.HistoryLen())
	for i := 0; i < res.Unfilled; i++ {
		metrics.RecordSlotUnfilled()
	}

	s.logger.Info(ctx, "meeting assigned",
		logger.String("week", req.Week),
		logger.Int("activities", len(req.Activities)),
		logger.Int("candidates", len(req.Candidates)),
		logger.Int("filled", len(res.Picks)),
		logger.Int("unfilled", res.Unfilled),
		logger.Float64("epsilon", res.Epsilon),
	)

	return res, nil
}

// ApplyFeedback applies one verdict to the learned weights and persists
// the result synchronously. A verdict that cannot be made durable is
// rolled back and reported as ErrNotPersisted; the engine then behaves as
// if the call never happened.
func (s *Service) ApplyFeedback(ctx context.Context, v learning.Verdict) (model.Receipt, error) {
	if !s.running() {
		return model.Receipt{}, ErrNotStarted
	}

	// One verdict at a time: concurrent verdicts would clone the same base
	// vector and the second commit would silently drop the first.
	s.fbMu.Lock()
	defer s.fbMu.Unlock()

	weights, history, _ := s.state.Snapshot()
	next := weights.Clone()
	up, err := s.learner.Apply(next, history, v)
	if err != nil {
		return model.Receipt{}, err
	}

	undo := s.state.Commit(next, up.Entries)
	if err := s.persist(ctx); err != nil {
		undo()
		metrics.RecordPersistFailure()
		s.logger.Error(ctx, "feedback persist failed, rolled back",
			logger.String("week", v.Week),
			logger.String("resultado", string(v.Outcome)),
			logger.Error(err),
		)
		return model.Receipt{}, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}

	metrics.RecordFeedback(string(v.Outcome))
	metrics.RecordWeightUpdates(len(up.Deltas))
	metrics.UpdateWeightKeys(s.state.WeightKeys())
	metrics.UpdateHistoryEntries(s.state.HistoryLen())

	total := s.state.FeedbackCount()
	s.logger.Info(ctx, "feedback applied",
		logger.String("week", v.Week),
		logger.String("resultado", string(v.Outcome)),
		logger.Int("matched", up.Matched),
		logger.Int("weight_updates", len(up.Deltas)),
		logger.Int("total_feedbacks", total),
	)

	return model.Receipt{Applied: up.Deltas, Matched: up.Matched, TotalFeedback: total}, nil
}

// History returns up to limit recent history entries, oldest first.
func (s *Service) History(ctx context.Context, limit int) []model.HistoryEntry {
	if !s.running() {
		return nil
	}
	return s.state.Recent(limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"exploration": s.exploration,
		"tie_break":   string(s.tieBreak),
	}

	if s.started {
		total := s.state.FeedbackCount()
		eps := s.scorer.Epsilon(total)
		stats["total_feedbacks"] = total
		stats["history_entries"] = s.state.HistoryLen()
		stats["weight_keys"] = s.state.WeightKeys()
		stats["epsilon"] = eps

		// Update metrics
		metrics.UpdateWeightKeys(s.state.WeightKeys())
		metrics.UpdateHistoryEntries(s.state.HistoryLen())
		metrics.UpdateExplorationEpsilon(eps)
	}

	return stats
}

// persist saves the current state synchronously, retrying with a doubling
// backoff. Every failure is treated as transient up to the attempt cap.
func (s *Service) persist(ctx context.Context) error {
	weights, history := s.state.Export()

	backoff := s.persistBackoff
	var lastErr error
	for attempt := 1; attempt <= s.persistAttempts; attempt++ {
		if attempt > 1 {
			metrics.RecordPersistRetry()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		start := time.Now()
		lastErr = s.store.Save(ctx, weights, history)
		metrics.RecordPersistDuration(float64(time.Since(start).Milliseconds()))
		if lastErr == nil {
			return nil
		}
		metrics.RecordStoreError()
		s.logger.Warn(ctx, "state save failed",
			logger.Int("attempt", attempt),
			logger.Error(lastErr),
		)
	}

	return lastErr
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
