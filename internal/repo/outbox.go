package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepo stores domain events alongside the state change that produced
// them, for asynchronous dispatch by the worker.
type OutboxRepo struct {
	Pool *pgxpool.Pool
}

// Insert records an event outside of any caller transaction.
func (r OutboxRepo) Insert(ctx context.Context, topic, aggregateID string, payload []byte) error {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO outbox_events (topic, aggregate_id, payload) VALUES ($1, $2, $3)`,
		topic, aggregateID, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ListUndispatched returns up to limit events that have not been dispatched,
// oldest first.
func (r OutboxRepo) ListUndispatched(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, topic, aggregate_id, payload, occurred_at
		 FROM outbox_events
		 WHERE dispatched_at IS NULL
		 ORDER BY occurred_at
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox events: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.Topic, &e.AggregateID, &e.Payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkDispatched stamps an event as delivered.
func (r OutboxRepo) MarkDispatched(ctx context.Context, id int64) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE outbox_events SET dispatched_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event dispatched: %w", err)
	}
	return nil
}
