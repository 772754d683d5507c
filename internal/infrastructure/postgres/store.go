package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/pkg/events"
	pg "github.com/zedfin/arrears/pkg/postgres"
)

// Store implements port.ArrearsStore: each Save* groups the ledger, the
// audit trail, the case state and the outbox entries into one transaction,
// so evaluation results commit or roll back as a unit.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates the transactional write store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveEvaluation persists one evaluation pass for a loan.
func (s *Store) SaveEvaluation(
	ctx context.Context,
	loan model.LoanAccount,
	record *model.ClassificationRecord,
	collectionsCase *model.CollectionsCase,
	entries []events.OutboxEntry,
) error {
	return pg.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		return s.saveAll(ctx, tx, loan, nil, record, collectionsCase, entries)
	})
}

// SavePayment persists one posted payment together with the evaluation it
// triggered.
func (s *Store) SavePayment(
	ctx context.Context,
	loan model.LoanAccount,
	payment model.PaymentTransaction,
	record *model.ClassificationRecord,
	collectionsCase *model.CollectionsCase,
	entries []events.OutboxEntry,
) error {
	return pg.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		return s.saveAll(ctx, tx, loan, &payment, record, collectionsCase, entries)
	})
}

// SaveCase persists a case state change outside an evaluation, such as an
// explicit close.
func (s *Store) SaveCase(
	ctx context.Context,
	collectionsCase model.CollectionsCase,
	entries []events.OutboxEntry,
) error {
	return pg.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		if err := saveCase(ctx, tx, collectionsCase); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, entries)
	})
}

func (s *Store) saveAll(
	ctx context.Context,
	tx pgx.Tx,
	loan model.LoanAccount,
	payment *model.PaymentTransaction,
	record *model.ClassificationRecord,
	collectionsCase *model.CollectionsCase,
	entries []events.OutboxEntry,
) error {
	if err := saveLoan(ctx, tx, loan); err != nil {
		return err
	}
	if payment != nil {
		if err := insertPayment(ctx, tx, *payment); err != nil {
			return err
		}
	}
	if record != nil {
		if err := insertClassification(ctx, tx, *record); err != nil {
			return err
		}
	}
	if collectionsCase != nil {
		if err := saveCase(ctx, tx, *collectionsCase); err != nil {
			return err
		}
	}
	return insertOutbox(ctx, tx, entries)
}
