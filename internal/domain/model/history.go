package model

import "time"

// Outcome is the feedback state of a history entry. Entries are written as
// pending when an assignment is produced and move to exactly one terminal
// outcome via feedback. Wire values match the congregation app.
type Outcome string

// Outcome values.
const (
	OutcomePending   Outcome = "pendiente"
	OutcomeAccepted  Outcome = "aceptada"
	OutcomeRejected  Outcome = "rechazada"
	OutcomeCorrected Outcome = "corrigida"
)

// Terminal reports whether the outcome is a final feedback verdict.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeAccepted, OutcomeRejected, OutcomeCorrected:
		return true
	}
	return false
}

// Valid reports whether o is a known outcome value.
func (o Outcome) Valid() bool {
	return o == OutcomePending || o.Terminal()
}

// Signal returns the learning signal for a terminal outcome given the
// configured negative factor. Acceptance reinforces with +1; rejection and
// correction push back harder so one bad assignment outweighs one good one.
func (o Outcome) Signal(negativeFactor float64) float64 {
	switch o {
	case OutcomeAccepted:
		return 1
	case OutcomeRejected, OutcomeCorrected:
		return -negativeFactor
	}
	return 0
}

// Receipt reports what one feedback verdict changed. It is the read shape
// shared by the engine service and the HTTP layer.
type Receipt struct {
	// Applied holds the weight delta that actually landed per feature key.
	Applied map[string]float64 `json:"applied"`
	// Matched counts the assignments the verdict covered.
	Matched int `json:"matched"`
	// TotalFeedback is the terminal feedback count after this verdict.
	TotalFeedback int `json:"total_feedbacks"`
}

// HistoryEntry is one immutable record of an assignment or of feedback about
// it. Corrections and verdicts append new entries referencing the same
// (week, role, candidate); nothing is rewritten in place.
type HistoryEntry struct {
	ID            string        `json:"id"`
	Week          string        `json:"week"` // ISO date of the meeting
	Role          string        `json:"role"`
	CandidateID   int64         `json:"candidate_id"`
	CandidateName string        `json:"candidate_name"`
	Outcome       Outcome       `json:"outcome"`
	AlternativeID int64         `json:"alternative_id,omitempty"` // set for corrections
	Features      FeatureVector `json:"features,omitempty"`       // snapshot taken at assign time
	CreatedAt     time.Time     `json:"created_at"`
}
