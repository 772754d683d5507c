package service

import (
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Escalator – domain service for collections escalation
// ---------------------------------------------------------------------------

// EscalationMilestone binds a DPD threshold to the stage it triggers.
type EscalationMilestone struct {
	Stage  valueobject.EscalationStage
	MinDPD int
}

// EscalationPolicy is an explicit, versioned milestone table. Milestones must
// be ordered by ascending MinDPD.
type EscalationPolicy struct {
	Version    string
	Milestones []EscalationMilestone
}

// DefaultEscalationPolicy returns the default collections ladder:
//
//	DPD >=  7  REMINDER_SENT
//	DPD >= 30  CALL_TASK_CREATED
//	DPD >= 60  MANAGER_ESCALATED
//	DPD >= 90  LEGAL_REVIEW_INITIATED
func DefaultEscalationPolicy() EscalationPolicy {
	return EscalationPolicy{
		Version: "collections-2024.1",
		Milestones: []EscalationMilestone{
			{MinDPD: 7, Stage: valueobject.StageReminderSent},
			{MinDPD: 30, Stage: valueobject.StageCallTaskCreated},
			{MinDPD: 60, Stage: valueobject.StageManagerEscalated},
			{MinDPD: 90, Stage: valueobject.StageLegalReviewInitiated},
		},
	}
}

// StageFor returns the deepest stage whose milestone the given DPD has
// reached, or NONE.
func (p EscalationPolicy) StageFor(dpd int) valueobject.EscalationStage {
	stage := valueobject.StageNone
	for _, m := range p.Milestones {
		if dpd >= m.MinDPD {
			stage = m.Stage
		}
	}
	return stage
}

// Escalator decides whether a loan's collections case must advance. Stages
// never regress: a DPD at or below the current stage's milestone is a no-op.
type Escalator struct {
	policy EscalationPolicy
}

// NewEscalator creates an Escalator with the given policy.
func NewEscalator(policy EscalationPolicy) *Escalator {
	return &Escalator{policy: policy}
}

// Policy returns the escalator's milestone table.
func (e *Escalator) Policy() EscalationPolicy { return e.policy }

// NextStage returns the stage the case must land on for the given DPD, and
// whether that is an advance over current. Intermediate stages are skipped
// when DPD jumped past several milestones at once.
func (e *Escalator) NextStage(current valueobject.EscalationStage, dpd int) (valueobject.EscalationStage, bool) {
	target := e.policy.StageFor(dpd)
	if !target.After(current) {
		return current, false
	}
	return target, true
}
