// Package eligibility enforces the hard assignment rules. Everything here is
// a yes/no gate; anything gradable belongs to scoring instead.
package eligibility

import (
	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Context carries the per-meeting state the hard rules check against.
type Context struct {
	// Used holds candidate ids already assigned to a slot this meeting.
	Used map[int64]struct{}
	// Excluded holds display names barred from this meeting.
	Excluded map[string]struct{}
}

// NewContext builds a meeting context from an exclusion-name list.
func NewContext(excludeNames []string) Context {
	mctx := Context{
		Used:     make(map[int64]struct{}),
		Excluded: make(map[string]struct{}, len(excludeNames)),
	}
	for _, name := range excludeNames {
		mctx.Excluded[name] = struct{}{}
	}
	return mctx
}

// MarkUsed records that a candidate occupies a slot this meeting.
func (c Context) MarkUsed(id int64) {
	c.Used[id] = struct{}{}
}

// Checker validates whether a candidate may occupy a role slot.
type Checker interface {
	Eligible(cand model.Candidate, slot model.RoleSlot, mctx Context) bool
}

// Rules implements Checker with the four hard rules: capability, exclusion
// list, no double-booking within the meeting, and mandated gender.
type Rules struct{}

// Compile-time interface compliance check.
var _ Checker = (*Rules)(nil)

// New creates the rule set.
func New() *Rules {
	return &Rules{}
}

// Eligible reports whether every hard rule holds. The order short-circuits
// on the cheapest checks first.
func (r *Rules) Eligible(cand model.Candidate, slot model.RoleSlot, mctx Context) bool {
	if _, used := mctx.Used[cand.ID]; used {
		return false
	}
	if _, excluded := mctx.Excluded[cand.Name]; excluded {
		return false
	}
	if slot.RequiredGender != "" && cand.Gender != slot.RequiredGender {
		return false
	}
	return cand.Capable(slot.Role)
}

// Filter returns the eligible subset of candidates, preserving input order.
func (r *Rules) Filter(cands []model.Candidate, slot model.RoleSlot, mctx Context) []model.Candidate {
	out := make([]model.Candidate, 0, len(cands))
	for _, cand := range cands {
		if r.Eligible(cand, slot, mctx) {
			out = append(out, cand)
		}
	}
	return out
}
