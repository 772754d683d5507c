package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zedfin/arrears/internal/domain/event"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// CollectionsCase entity
// ---------------------------------------------------------------------------

// CollectionsCase tracks the collections escalation state of one loan.
// There is exactly one case per loan. The stage only moves forward; closing
// the case is the only explicit way out.
type CollectionsCase struct {
	id           string
	loanID       string
	stage        valueobject.EscalationStage
	stageEntries map[string]time.Time
	closed       bool
	closedAt     *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewCollectionsCase creates a case at stage NONE.
func NewCollectionsCase(loanID string, now time.Time) (CollectionsCase, error) {
	if loanID == "" {
		return CollectionsCase{}, fmt.Errorf("%w: loan ID is required", valueobject.ErrValidation)
	}
	return CollectionsCase{
		id:           uuid.New().String(),
		loanID:       loanID,
		stage:        valueobject.StageNone,
		stageEntries: map[string]time.Time{},
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructCollectionsCase rebuilds from persistence.
func ReconstructCollectionsCase(
	id, loanID string,
	stage valueobject.EscalationStage,
	stageEntries map[string]time.Time,
	closed bool,
	closedAt *time.Time,
	createdAt, updatedAt time.Time,
) CollectionsCase {
	if stageEntries == nil {
		stageEntries = map[string]time.Time{}
	}
	return CollectionsCase{
		id:           id,
		loanID:       loanID,
		stage:        stage,
		stageEntries: stageEntries,
		closed:       closed,
		closedAt:     closedAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Mutations (return new copies)
// ---------------------------------------------------------------------------

// Advance moves the case to a later stage, stamping the entry time and
// emitting exactly one EscalationTriggered for the landing stage. Skipped
// intermediate stages produce no events.
func (c CollectionsCase) Advance(
	target valueobject.EscalationStage,
	dpd int,
	correlationID string,
	now time.Time,
) (CollectionsCase, error) {
	if c.closed {
		return c, fmt.Errorf("%w: case is closed", valueobject.ErrInvalidStatusTransition)
	}
	if !target.After(c.stage) {
		return c, fmt.Errorf("%w: stage %s does not advance %s", valueobject.ErrInvalidStatusTransition, target, c.stage)
	}

	next := c
	next.stage = target
	next.stageEntries = c.copyStageEntries()
	next.stageEntries[target.String()] = now
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewEscalationTriggered(
		c.id, correlationID, c.loanID, target.String(), target.Action(), dpd,
	))
	return next, nil
}

// Close terminates the case. Closed cases are skipped by evaluation and
// never reopened; a fresh delinquency gets a fresh case.
func (c CollectionsCase) Close(reason, correlationID string, now time.Time) (CollectionsCase, error) {
	if c.closed {
		return c, fmt.Errorf("%w: case already closed", valueobject.ErrInvalidStatusTransition)
	}

	next := c
	next.closed = true
	next.closedAt = &now
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCaseClosed(c.id, correlationID, c.loanID, reason))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c CollectionsCase) ID() string                         { return c.id }
func (c CollectionsCase) LoanID() string                     { return c.loanID }
func (c CollectionsCase) Stage() valueobject.EscalationStage { return c.stage }
func (c CollectionsCase) Closed() bool                       { return c.closed }
func (c CollectionsCase) ClosedAt() *time.Time               { return c.closedAt }
func (c CollectionsCase) CreatedAt() time.Time               { return c.createdAt }
func (c CollectionsCase) UpdatedAt() time.Time               { return c.updatedAt }
func (c CollectionsCase) DomainEvents() []event.DomainEvent  { return c.domainEvents }

// StageEntries returns a defensive copy of the per-stage entry timestamps.
func (c CollectionsCase) StageEntries() map[string]time.Time {
	return c.copyStageEntries()
}

// ClearEvents returns a copy with an empty event list.
func (c CollectionsCase) ClearEvents() CollectionsCase {
	next := c
	next.domainEvents = nil
	return next
}

func (c CollectionsCase) copyStageEntries() map[string]time.Time {
	out := make(map[string]time.Time, len(c.stageEntries))
	for k, v := range c.stageEntries {
		out[k] = v
	}
	return out
}
