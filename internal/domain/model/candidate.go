// Package model contains domain models passed between layers.
package model

// Gender is the gender tag carried by candidates. Wire values follow the
// congregation records: "M" and "F".
type Gender string

// Known gender tags. The empty value means "unspecified" and matches nothing
// when used as a slot requirement.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Candidate is one person offered to the assigner for a single meeting.
// Candidates are request-scoped and immutable; long-lived state about a
// person lives in the history, keyed by id.
type Candidate struct {
	ID     int64  // stable person identifier
	Name   string // display name, also used by exclusion lists
	Gender Gender
	Roles  []string // role capabilities, e.g. "presidente", "lector", "ayudante"
	// LastAssignedWeeks is the caller-supplied recency hint in whole weeks.
	// Nil means the caller does not know; the history may still know better.
	LastAssignedWeeks *int
}

// Capable reports whether the candidate's capability set contains role.
// The generic role is open to everyone.
func (c Candidate) Capable(role string) bool {
	if role == RoleTypeGeneric {
		return true
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
