package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PG implements Processor on the wallet_ledger table.
type PG struct {
	Pool *pgxpool.Pool
}

var _ Processor = PG{}

// Confirm flips a pending entry to completed. The status guard makes the
// update idempotent; a row that is already completed reports back without
// touching anything.
func (p PG) Confirm(ctx context.Context, referenceID string) (Result, error) {
	tag, err := p.Pool.Exec(ctx,
		`UPDATE wallet_ledger SET status = $1 WHERE reference_id = $2 AND status = $3`,
		StatusCompleted, referenceID, StatusPending)
	if err != nil {
		return Result{}, fmt.Errorf("confirm ledger entry: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return Result{ReferenceID: referenceID, Status: StatusCompleted}, nil
	}

	var status string
	err = p.Pool.QueryRow(ctx,
		`SELECT status FROM wallet_ledger WHERE reference_id = $1`, referenceID).Scan(&status)
	if err != nil {
		return Result{}, ErrNotFound
	}
	return Result{
		ReferenceID:      referenceID,
		Status:           status,
		AlreadyCompleted: status == StatusCompleted,
	}, nil
}

// ListStalePending returns pending entries created before now-olderThan.
func (p PG) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]Entry, error) {
	rows, err := p.Pool.Query(ctx,
		`SELECT reference_id, wallet_id, user_id, currency, amount, entry_type, status, gateway, trnx_type, created_at
		 FROM wallet_ledger
		 WHERE status = $1 AND created_at < now() - $2::interval
		 ORDER BY created_at
		 LIMIT $3`,
		StatusPending, fmt.Sprintf("%d seconds", int(olderThan.Seconds())), limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ReferenceID, &e.WalletID, &e.UserID, &e.Currency, &e.Amount,
			&e.EntryType, &e.Status, &e.Gateway, &e.TrnxType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
