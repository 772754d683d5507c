package usecase

import (
	"fmt"
	"time"

	"github.com/zedfin/arrears/internal/domain/event"
	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	"github.com/zedfin/arrears/pkg/events"
)

// conflictRetries bounds how often a lost per-loan race is retried before
// ErrConcurrencyConflict reaches the caller.
const conflictRetries = 3

// evaluationOutcome carries everything a single evaluate pass decided.
type evaluationOutcome struct {
	loan            model.LoanAccount
	record          *model.ClassificationRecord
	collectionsCase *model.CollectionsCase
	reclassified    bool
	escalated       bool
	escalatedTo     valueobject.EscalationStage
}

// runEvaluation executes the DPD -> classify -> escalate pipeline on an
// in-memory aggregate. Pure apart from clock input; persistence is the
// caller's job so that payments can run the same pass inside their own
// transaction.
func runEvaluation(
	loan model.LoanAccount,
	collectionsCase model.CollectionsCase,
	haveCase bool,
	classifier *service.Classifier,
	escalator *service.Escalator,
	asOf, now time.Time,
	correlationID string,
) (evaluationOutcome, error) {
	dpd := service.DaysPastDue(loan.Schedule(), asOf)
	loan = loan.WithDelinquency(dpd, asOf, now)

	outcome := evaluationOutcome{}

	// Classification: append-only, no-op when nothing material changed.
	result := classifier.Classify(dpd, loan.OutstandingPrincipal())
	if result.Materially(loan.Category(), loan.ProvisionAmount()) {
		record := model.NewClassificationRecord(
			loan.ID(), loan.Category(), result.Category,
			dpd, loan.OutstandingPrincipal(), result.ProvisionRate, result.ProvisionAmount,
			result.NonAccrual, result.ReasonFor(loan.Category()), now,
		)
		loan = loan.Reclassify(
			result.Category, result.NonAccrual,
			result.ProvisionRate, result.ProvisionAmount,
			dpd, record.Reason, correlationID, now,
		)
		outcome.record = &record
		outcome.reclassified = true
	}

	// Escalation: forward-only; a clean loan never gets a case row.
	target, advance := escalator.NextStage(stageOf(collectionsCase, haveCase), dpd)
	if advance {
		if !haveCase {
			created, err := model.NewCollectionsCase(loan.ID(), now)
			if err != nil {
				return evaluationOutcome{}, fmt.Errorf("create collections case: %w", err)
			}
			collectionsCase = created
		}
		if !collectionsCase.Closed() {
			advanced, err := collectionsCase.Advance(target, dpd, correlationID, now)
			if err != nil {
				return evaluationOutcome{}, fmt.Errorf("advance collections case: %w", err)
			}
			outcome.collectionsCase = &advanced
			outcome.escalated = true
			outcome.escalatedTo = target
		}
	}

	outcome.loan = loan
	return outcome, nil
}

func stageOf(c model.CollectionsCase, haveCase bool) valueobject.EscalationStage {
	if !haveCase || c.Closed() {
		// A closed case never advances; treating it as beyond every
		// milestone makes NextStage a no-op.
		if haveCase {
			return valueobject.StageLegalReviewInitiated
		}
		return valueobject.StageNone
	}
	return c.Stage()
}

// outboxEntries collects the domain events of the loan and, when present,
// the collections case into outbox entries.
func outboxEntries(loan model.LoanAccount, collectionsCase *model.CollectionsCase) ([]events.OutboxEntry, error) {
	evts := make([]event.DomainEvent, 0, len(loan.DomainEvents())+2)
	evts = append(evts, loan.DomainEvents()...)
	if collectionsCase != nil {
		evts = append(evts, collectionsCase.DomainEvents()...)
	}
	return events.Entries(evts...)
}
