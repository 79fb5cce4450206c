package meetingsim

import "time"

// Config holds configuration for the meeting simulation
type Config struct {
	BaseURL     string        // Base URL of the service
	Token       string        // Bearer token for the engine endpoints
	Weeks       int           // Number of consecutive weeks to schedule
	RosterSize  int           // Number of people in the synthetic congregation
	RejectEvery int           // Reject the week's lector every Nth week (0 disables)
	StartDate   string        // ISO date of the first meeting week
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for scheduled meetings
	LogFile     string        // Log file for simulation output
	Verbose     bool          // Enable verbose logging
}

// Candidate is one roster member sent with every assignment request.
type Candidate struct {
	ID     int64    `json:"id"`
	Nombre string   `json:"nombre"`
	Genero string   `json:"genero"`
	Roles  []string `json:"roles"`
}

// Activity is one slot of the weekly meeting plan.
type Activity struct {
	Tema              string `json:"tema"`
	Type              string `json:"type"`
	RequiresAssistant bool   `json:"requires_assistant"`
}

// MeetingRequest is the assignment request wire shape.
type MeetingRequest struct {
	WeekDate     string      `json:"week_date"`
	Candidates   []Candidate `json:"candidates"`
	Activities   []Activity  `json:"activities"`
	ExcludeNames []string    `json:"exclude_names,omitempty"`
}

// Person is an assigned candidate inside a meeting response.
type Person struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Genero string `json:"genero"`
}

// Assignment is one staffed (or unfillable) slot of a meeting.
type Assignment struct {
	Tema       string  `json:"tema"`
	Type       string  `json:"type"`
	Publicador *Person `json:"publicador"`
	Ayudante   *Person `json:"ayudante"`
	Warning    string  `json:"warning,omitempty"`
}

// MeetingResponse is the assignment response wire shape.
type MeetingResponse struct {
	WeekDate    string       `json:"week_date"`
	Assignments []Assignment `json:"assignments"`
}

// FeedbackRequest is the feedback wire shape.
type FeedbackRequest struct {
	WeekDate      string `json:"week_date"`
	Resultado     string `json:"resultado"`
	Role          string `json:"role,omitempty"`
	PersonID      int64  `json:"person_id,omitempty"`
	AlternativeID int64  `json:"alternative_id,omitempty"`
}

// Receipt is the feedback response wire shape.
type Receipt struct {
	Applied        map[string]float64 `json:"applied"`
	Matched        int                `json:"matched"`
	TotalFeedbacks int                `json:"total_feedbacks"`
}

// Stats holds simulation statistics
type Stats struct {
	WeeksPlanned     int
	WeeksAssigned    int
	SlotsFilled      int
	SlotsUnfilled    int
	FeedbackAccepted int
	FeedbackRejected int
	FeedbackFailed   int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
