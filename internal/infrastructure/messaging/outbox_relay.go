package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/zedfin/arrears/internal/domain/port"
)

// OutboxRelay drains the transactional outbox: fetch unpublished entries,
// hand them to the publisher, stamp them published. Delivery is at least
// once; consumers deduplicate on event ID.
type OutboxRelay struct {
	outbox    port.OutboxRepository
	publisher port.EventPublisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewOutboxRelay wires the relay.
func NewOutboxRelay(
	outbox port.OutboxRepository,
	publisher port.EventPublisher,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Start polls until the context is cancelled. Errors are logged and the
// next tick retries; undelivered entries stay in the outbox.
func (r *OutboxRelay) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.DrainOnce(ctx); err != nil {
				r.logger.Error("outbox drain failed", slog.String("error", err.Error()))
			}
		}
	}
}

// DrainOnce publishes one batch of unpublished entries.
func (r *OutboxRelay) DrainOnce(ctx context.Context) error {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := r.publisher.Publish(ctx, entries...); err != nil {
		return err
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	if err := r.outbox.MarkPublished(ctx, ids); err != nil {
		return err
	}

	r.logger.Debug("outbox batch delivered", slog.Int("entries", len(entries)))
	return nil
}
