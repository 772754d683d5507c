package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	pg "github.com/zedfin/arrears/pkg/postgres"
)

// CaseRepo implements port.CaseRepository.
type CaseRepo struct {
	pool *pgxpool.Pool
}

// NewCaseRepo creates a PostgreSQL-backed collections case repository.
func NewCaseRepo(pool *pgxpool.Pool) *CaseRepo {
	return &CaseRepo{pool: pool}
}

// FindByLoanID retrieves the loan's collections case.
func (r *CaseRepo) FindByLoanID(ctx context.Context, loanID string) (model.CollectionsCase, error) {
	query := `
		SELECT id, loan_id, stage, stage_entries, closed, closed_at, created_at, updated_at
		FROM collections_cases
		WHERE loan_id = $1
	`
	row := r.pool.QueryRow(ctx, query, loanID)

	var (
		id, caseLoanID, stage string
		entriesJSON           []byte
		closed                bool
		closedAt              *time.Time
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&id, &caseLoanID, &stage, &entriesJSON, &closed, &closedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CollectionsCase{}, valueobject.ErrCaseNotFound
		}
		return model.CollectionsCase{}, fmt.Errorf("scan collections case: %w", err)
	}

	caseStage, err := valueobject.NewEscalationStage(stage)
	if err != nil {
		return model.CollectionsCase{}, fmt.Errorf("case %s: %w", id, err)
	}

	stageEntries := map[string]time.Time{}
	if len(entriesJSON) > 0 {
		if err := json.Unmarshal(entriesJSON, &stageEntries); err != nil {
			return model.CollectionsCase{}, fmt.Errorf("case %s: decode stage entries: %w", id, err)
		}
	}

	return model.ReconstructCollectionsCase(
		id, caseLoanID, caseStage, stageEntries,
		closed, closedAt, createdAt, updatedAt,
	), nil
}

// saveCase upserts the collections case. The one-case-per-loan constraint
// lives in the unique index on loan_id.
func saveCase(ctx context.Context, q pg.Querier, c model.CollectionsCase) error {
	entriesJSON, err := json.Marshal(c.StageEntries())
	if err != nil {
		return fmt.Errorf("encode stage entries: %w", err)
	}

	query := `
		INSERT INTO collections_cases (
			id, loan_id, stage, stage_entries, closed, closed_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			stage         = EXCLUDED.stage,
			stage_entries = EXCLUDED.stage_entries,
			closed        = EXCLUDED.closed,
			closed_at     = EXCLUDED.closed_at,
			updated_at    = EXCLUDED.updated_at
	`
	_, err = q.Exec(ctx, query,
		c.ID(), c.LoanID(), c.Stage().String(), entriesJSON,
		c.Closed(), c.ClosedAt(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save collections case: %w", err)
	}
	return nil
}
