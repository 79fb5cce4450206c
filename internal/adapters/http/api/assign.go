// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/use-overseer/Orquesta/internal/domain/assign"
	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// AssignDependencies defines the interface for meeting assignment dependencies
type AssignDependencies interface {
	AssignMeeting(ctx context.Context, req assign.Request) (assign.Result, error)
}

// meetingRequest is the wire shape of POST /v1/assign_meeting.
type meetingRequest struct {
	WeekDate     string             `json:"week_date" validate:"required,datetime=2006-01-02"`
	Candidates   []candidatePayload `json:"candidates" validate:"required,min=1,dive"`
	Activities   []activityPayload  `json:"activities" validate:"required,min=1,dive"`
	ExcludeNames []string           `json:"exclude_names"`
}

type candidatePayload struct {
	ID                int64    `json:"id" validate:"required,min=1"`
	Nombre            string   `json:"nombre" validate:"required"`
	Genero            string   `json:"genero" validate:"required,oneof=M F"`
	Roles             []string `json:"roles"`
	LastAssignedWeeks *int     `json:"last_assigned_weeks" validate:"omitempty,min=0"`
}

type activityPayload struct {
	Tema              string `json:"tema" validate:"required"`
	Type              string `json:"type" validate:"required"`
	RequiresAssistant bool   `json:"requires_assistant"`
}

// meetingResponse is the wire shape returned to the caller. Unfillable
// slots come back as null publicadores with a warning instead of an error;
// a meeting with gaps is still a meeting.
type meetingResponse struct {
	WeekDate    string              `json:"week_date"`
	Assignments []assignmentPayload `json:"assignments"`
}

type assignmentPayload struct {
	Tema       string         `json:"tema"`
	Type       string         `json:"type"`
	Publicador *personPayload `json:"publicador"`
	Ayudante   *personPayload `json:"ayudante"`
	Warning    string         `json:"warning,omitempty"`
}

type personPayload struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Genero string `json:"genero"`
}

func (m meetingRequest) toDomain() assign.Request {
	req := assign.Request{
		Week:         m.WeekDate,
		Candidates:   make([]model.Candidate, 0, len(m.Candidates)),
		Activities:   make([]model.Activity, 0, len(m.Activities)),
		ExcludeNames: m.ExcludeNames,
	}
	for _, c := range m.Candidates {
		req.Candidates = append(req.Candidates, model.Candidate{
			ID:                c.ID,
			Name:              c.Nombre,
			Gender:            model.Gender(c.Genero),
			Roles:             c.Roles,
			LastAssignedWeeks: c.LastAssignedWeeks,
		})
	}
	for _, a := range m.Activities {
		req.Activities = append(req.Activities, model.Activity{
			Type:              a.Type,
			Title:             a.Tema,
			RequiresAssistant: a.RequiresAssistant,
		})
	}
	return req
}

func toMeetingResponse(week string, res assign.Result) meetingResponse {
	out := meetingResponse{
		WeekDate:    week,
		Assignments: make([]assignmentPayload, 0, len(res.Assignments)),
	}
	for _, a := range res.Assignments {
		out.Assignments = append(out.Assignments, assignmentPayload{
			Tema:       a.Activity.Title,
			Type:       a.Activity.Type,
			Publicador: toPerson(a.Publicador),
			Ayudante:   toPerson(a.Ayudante),
			Warning:    a.Warning,
		})
	}
	return out
}

func toPerson(c *model.Candidate) *personPayload {
	if c == nil {
		return nil
	}
	return &personPayload{ID: c.ID, Nombre: c.Name, Genero: string(c.Gender)}
}

// AssignHandler handles meeting assignment requests
type AssignHandler struct {
	deps AssignDependencies
}

// NewAssignHandler creates a new assignment handler
func NewAssignHandler(deps AssignDependencies) *AssignHandler {
	return &AssignHandler{deps: deps}
}

// HandleAssign handles POST /v1/assign_meeting requests
func (h *AssignHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.assign_meeting"
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, validationError(err)))
		return
	}

	res, err := h.deps.AssignMeeting(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, toMeetingResponse(req.WeekDate, res))
}
