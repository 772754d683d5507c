package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zedfin/arrears/pkg/events"
	pg "github.com/zedfin/arrears/pkg/postgres"
)

// OutboxRepo implements events.OutboxRepository. Entries are written inside
// the financial transaction and drained by the relay after commit.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

// NewOutboxRepo creates a PostgreSQL-backed outbox repository.
func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// FetchUnpublished returns up to batchSize entries awaiting delivery, oldest
// first.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, correlation_id, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var entry events.OutboxEntry
		err := rows.Scan(
			&entry.ID, &entry.AggregateID, &entry.AggregateType,
			&entry.EventType, &entry.CorrelationID, &entry.Payload, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkPublished stamps delivered entries. Idempotent: already-stamped rows
// are left untouched.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox SET published_at = $1 WHERE id = ANY($2) AND published_at IS NULL`,
		time.Now().UTC(), ids,
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// insertOutbox appends entries inside the caller's transaction.
func insertOutbox(ctx context.Context, q pg.Querier, entries []events.OutboxEntry) error {
	for _, entry := range entries {
		query := `
			INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, correlation_id, payload, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`
		_, err := q.Exec(ctx, query,
			entry.ID, entry.AggregateID, entry.AggregateType,
			entry.EventType, entry.CorrelationID, entry.Payload, entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert outbox entry %s: %w", entry.ID, err)
		}
	}
	return nil
}
