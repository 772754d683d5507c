package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// EscalationStage – immutable value object
// ---------------------------------------------------------------------------

// EscalationStage is the collections escalation state of a loan. Stages are
// totally ordered and only ever advance; a case is closed, never rewound.
type EscalationStage struct {
	value string
	rank  int
}

const (
	stageNone                 = "NONE"
	stageReminderSent         = "REMINDER_SENT"
	stageCallTaskCreated      = "CALL_TASK_CREATED"
	stageManagerEscalated     = "MANAGER_ESCALATED"
	stageLegalReviewInitiated = "LEGAL_REVIEW_INITIATED"
)

var (
	StageNone                 = EscalationStage{value: stageNone, rank: 0}
	StageReminderSent         = EscalationStage{value: stageReminderSent, rank: 1}
	StageCallTaskCreated      = EscalationStage{value: stageCallTaskCreated, rank: 2}
	StageManagerEscalated     = EscalationStage{value: stageManagerEscalated, rank: 3}
	StageLegalReviewInitiated = EscalationStage{value: stageLegalReviewInitiated, rank: 4}
)

var validEscalationStages = map[string]EscalationStage{
	stageNone:                 StageNone,
	stageReminderSent:         StageReminderSent,
	stageCallTaskCreated:      StageCallTaskCreated,
	stageManagerEscalated:     StageManagerEscalated,
	stageLegalReviewInitiated: StageLegalReviewInitiated,
}

// stageActions maps each stage past NONE to the collections action it triggers.
var stageActions = map[string]string{
	stageReminderSent:         "SendReminder",
	stageCallTaskCreated:      "CreateCallTask",
	stageManagerEscalated:     "EscalateToManager",
	stageLegalReviewInitiated: "InitiateLegalReview",
}

// NewEscalationStage creates an EscalationStage from a raw string.
func NewEscalationStage(s string) (EscalationStage, error) {
	v, ok := validEscalationStages[s]
	if !ok {
		return EscalationStage{}, fmt.Errorf("invalid escalation stage: %q", s)
	}
	return v, nil
}

// String returns the string representation of the stage.
func (s EscalationStage) String() string { return s.value }

// IsZero returns true if the stage has not been initialised.
func (s EscalationStage) IsZero() bool { return s.value == "" }

// Equal returns true when both stages carry the same value.
func (s EscalationStage) Equal(other EscalationStage) bool { return s.value == other.value }

// After returns true when s is a later stage than other.
func (s EscalationStage) After(other EscalationStage) bool { return s.rank > other.rank }

// Action returns the collections action associated with the stage, or the
// empty string for NONE.
func (s EscalationStage) Action() string { return stageActions[s.value] }
