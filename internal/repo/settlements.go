package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettlementRepo persists computed commission splits.
type SettlementRepo struct {
	Pool *pgxpool.Pool
}

// RecordSplit stores the five-slot split for an order as a single row. The
// parties argument must be JSON-marshalable; it is stored as jsonb so the
// payout job can read each slot without schema churn.
func (r SettlementRepo) RecordSplit(ctx context.Context, orderID, productID string, parties any) error {
	payload, err := json.Marshal(parties)
	if err != nil {
		return fmt.Errorf("marshal split parties: %w", err)
	}
	_, err = r.Pool.Exec(ctx,
		`INSERT INTO settlements (order_id, product_id, parties)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (order_id) DO UPDATE SET product_id = EXCLUDED.product_id, parties = EXCLUDED.parties`,
		orderID, productID, payload)
	if err != nil {
		return fmt.Errorf("record split: %w", err)
	}
	return nil
}
