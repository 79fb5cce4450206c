package model

// Role types with special handling. Everything else is matched literally
// against candidate capabilities.
const (
	// RoleTypeGeneric accepts any candidate regardless of capabilities.
	RoleTypeGeneric = "generic"
	// RoleTypeSMM marks the "Seamos Mejores Maestros" section: slots draw
	// from the publicador pool and prefer, without requiring, women.
	RoleTypeSMM = "seamos_mejores_maestros"
	// RolePublicador is the capability backing SMM primary slots and every
	// assistant slot.
	RolePublicador = "publicador"
)

// SlotKind distinguishes the primary slot of an activity from its assistant.
type SlotKind string

// Slot kinds.
const (
	SlotPrimary   SlotKind = "publicador"
	SlotAssistant SlotKind = "ayudante"
)

// Activity is one meeting part to be staffed. Type selects the candidate
// pool; Title is what ends up on the printed program.
type Activity struct {
	Type              string
	Title             string
	RequiresAssistant bool
}

// RoleSlot is a single position derived from an activity: every activity
// yields one primary slot and, when RequiresAssistant is set, one assistant
// slot. RequiredGender is a hard rule checked by eligibility; PreferredGender
// only biases scoring.
type RoleSlot struct {
	Role            string
	Kind            SlotKind
	RequiredGender  Gender
	PreferredGender Gender
}

// PrimarySlot derives the primary role slot for an activity.
func PrimarySlot(act Activity) RoleSlot {
	s := RoleSlot{Role: act.Type, Kind: SlotPrimary}
	if act.Type == RoleTypeSMM {
		// SMM parts are staffed from the publicador pool, women first.
		s.Role = RolePublicador
		s.PreferredGender = GenderFemale
	}
	return s
}

// AssistantSlot derives the assistant slot paired with a primary of the
// given gender. Assistants come from the publicador pool and match the
// primary's gender when it is known.
func AssistantSlot(primaryGender Gender) RoleSlot {
	return RoleSlot{
		Role:           RolePublicador,
		Kind:           SlotAssistant,
		RequiredGender: primaryGender,
	}
}

// Assignment pairs an activity with its chosen candidates. Publicador may be
// nil when no eligible candidate existed; Warning then says so. Ayudante is
// nil whenever the activity needs no assistant or none was available.
type Assignment struct {
	Activity   Activity
	Publicador *Candidate
	Ayudante   *Candidate
	Warning    string
}
