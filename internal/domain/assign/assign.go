// Package assign implements the greedy single-pass meeting assigner.
package assign

import (
	"fmt"
	"sort"

	"github.com/use-overseer/Orquesta/internal/domain/eligibility"
	"github.com/use-overseer/Orquesta/internal/domain/model"
	"github.com/use-overseer/Orquesta/internal/domain/rotation"
	"github.com/use-overseer/Orquesta/internal/domain/scoring"
)

// TieBreak selects how exact score ties are resolved when exploration noise
// is off.
type TieBreak string

// Tie-break policies.
const (
	TieBreakLowestID TieBreak = "lowest_id"
	TieBreakName     TieBreak = "name"
)

// Option applies a configuration option to the Assigner.
type Option func(*Assigner)

// WithScorer replaces the scoring model.
func WithScorer(s scoring.Scorer) Option {
	return func(a *Assigner) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithTracker replaces the rotation tracker.
func WithTracker(t *rotation.Tracker) Option {
	return func(a *Assigner) {
		if t != nil {
			a.tracker = t
		}
	}
}

// WithChecker replaces the hard-rule checker.
func WithChecker(c eligibility.Checker) Option {
	return func(a *Assigner) {
		if c != nil {
			a.checker = c
		}
	}
}

// WithTieBreak sets the tie-break policy.
func WithTieBreak(policy TieBreak) Option {
	return func(a *Assigner) {
		if policy == TieBreakLowestID || policy == TieBreakName {
			a.tieBreak = policy
		}
	}
}

// Request bundles one meeting's input. Activities are processed in the
// order given; candidates are request-scoped and never mutated.
type Request struct {
	Week         string
	Candidates   []model.Candidate
	Activities   []model.Activity
	ExcludeNames []string
}

// Pick records one filled slot together with the feature snapshot it was
// scored on. The snapshot is what feedback later replays.
type Pick struct {
	Week      string
	Role      string
	Candidate model.Candidate
	Features  model.FeatureVector
}

// Result is the outcome of one assignment run.
type Result struct {
	Assignments []model.Assignment
	Picks       []Pick
	Epsilon     float64
	Unfilled    int
}

// Assigner fills meeting slots greedily: one pass over the activities, each
// slot taking the highest-scoring eligible candidate still available. There
// is no backtracking; a consumed candidate stays consumed even if a later
// slot ends up empty because of it.
type Assigner struct {
	scorer   scoring.Scorer
	tracker  *rotation.Tracker
	checker  eligibility.Checker
	tieBreak TieBreak
}

// New creates an assigner with configuration options.
func New(opts ...Option) *Assigner {
	a := &Assigner{
		scorer:   scoring.New(),
		tracker:  rotation.New(),
		checker:  eligibility.New(),
		tieBreak: TieBreakLowestID,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assign produces assignments for every activity in request order. Weights
// and history are read-only snapshots; totalFeedback drives the exploration
// schedule. An activity with no eligible primary yields a nil Publicador
// plus a warning and the batch continues.
func (a *Assigner) Assign(req Request, weights model.WeightVector, history []model.HistoryEntry, totalFeedback int) Result {
	eps := a.scorer.Epsilon(totalFeedback)
	mctx := eligibility.NewContext(req.ExcludeNames)
	ordered := a.order(req.Candidates)

	res := Result{
		Assignments: make([]model.Assignment, 0, len(req.Activities)),
		Epsilon:     eps,
	}

	for _, act := range req.Activities {
		asg := model.Assignment{Activity: act}

		slot := model.PrimarySlot(act)
		if winner, feats, ok := a.pick(ordered, slot, req.Week, weights, history, mctx, eps); ok {
			w := winner
			asg.Publicador = &w
			mctx.MarkUsed(w.ID)
			res.Picks = append(res.Picks, Pick{Week: req.Week, Role: slot.Role, Candidate: w, Features: feats})
		} else {
			asg.Warning = fmt.Sprintf("no eligible candidate for role %q", slot.Role)
			res.Unfilled++
		}

		if act.RequiresAssistant {
			var gender model.Gender
			if asg.Publicador != nil {
				gender = asg.Publicador.Gender
			}
			aslot := model.AssistantSlot(gender)
			if helper, feats, ok := a.pick(ordered, aslot, req.Week, weights, history, mctx, eps); ok {
				h := helper
				asg.Ayudante = &h
				mctx.MarkUsed(h.ID)
				res.Picks = append(res.Picks, Pick{Week: req.Week, Role: aslot.Role, Candidate: h, Features: feats})
			}
			// A missing assistant is not an error; the slot stays empty.
		}

		res.Assignments = append(res.Assignments, asg)
	}

	return res
}

// pick scores every eligible candidate for the slot and returns the best.
// Candidates arrive pre-sorted by the tie-break policy, and only a strictly
// greater score displaces the current best, so exact ties resolve to the
// first candidate in policy order.
func (a *Assigner) pick(
	ordered []model.Candidate,
	slot model.RoleSlot,
	week string,
	weights model.WeightVector,
	history []model.HistoryEntry,
	mctx eligibility.Context,
	eps float64,
) (model.Candidate, model.FeatureVector, bool) {
	bestIdx := -1
	var bestScore float64
	var bestFeats model.FeatureVector

	for i := range ordered {
		cand := ordered[i]
		if !a.checker.Eligible(cand, slot, mctx) {
			continue
		}
		weeks, known := a.tracker.Effective(history, cand, week)
		feats := scoring.Features(cand, slot, a.tracker.Value(weeks, known))
		score := a.scorer.Score(weights, feats, eps)
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
			bestFeats = feats
		}
	}

	if bestIdx < 0 {
		return model.Candidate{}, nil, false
	}
	return ordered[bestIdx], bestFeats, true
}

// order returns a copy of the candidates sorted by the tie-break policy.
func (a *Assigner) order(cands []model.Candidate) []model.Candidate {
	ordered := make([]model.Candidate, len(cands))
	copy(ordered, cands)
	switch a.tieBreak {
	case TieBreakName:
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].Name != ordered[j].Name {
				return ordered[i].Name < ordered[j].Name
			}
			return ordered[i].ID < ordered[j].ID
		})
	default:
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	}
	return ordered
}
