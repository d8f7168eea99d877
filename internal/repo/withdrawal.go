package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientBalance is returned when a conditional decrement would push
// a shared counter below zero. The whole withdrawal rolls back.
var ErrInsufficientBalance = errors.New("repo: insufficient balance")

// WithdrawalParams describes one revenue withdrawal: three counter
// decrements, the wallet credit, the pending ledger entry, and the outbox
// event, applied in a single transaction.
type WithdrawalParams struct {
	BrandID       string
	UserID        string
	OwnerWalletID string
	UserWalletID  string

	// Views is the floor-to-thousand view amount deducted from both the
	// user's counter and the brand pool; the fractional remainder stays.
	Views float64
	// GrossAmount is deducted from the owner wallet's share ledger in the
	// owner's currency.
	GrossAmount float64
	// CreditAmount is added to the user's wallet in the user's currency.
	CreditAmount float64
	Currency     string
	ReferenceID  string

	EventTopic   string
	EventPayload []byte
}

// WithdrawalRepo applies withdrawals transactionally.
type WithdrawalRepo struct {
	Pool *pgxpool.Pool
}

// Execute runs the full withdrawal mutation. Either every counter moves and
// the pending credit is recorded, or nothing changes: each decrement is
// conditional on the counter staying non-negative, and a failed condition
// aborts the transaction with ErrInsufficientBalance.
func (r WithdrawalRepo) Execute(ctx context.Context, p WithdrawalParams) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin withdrawal tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := decrement(ctx, tx,
		`UPDATE brands SET children_mille = children_mille - $1 WHERE id = $2 AND children_mille >= $1`,
		p.Views, p.BrandID); err != nil {
		return fmt.Errorf("decrement brand pool: %w", err)
	}
	if err := decrement(ctx, tx,
		`UPDATE users SET mille = mille - $1 WHERE id = $2 AND mille >= $1`,
		p.Views, p.UserID); err != nil {
		return fmt.Errorf("decrement user mille: %w", err)
	}
	if err := decrement(ctx, tx,
		`UPDATE wallets SET share_value = share_value - $1 WHERE id = $2 AND share_value >= $1`,
		p.GrossAmount, p.OwnerWalletID); err != nil {
		return fmt.Errorf("decrement owner share: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE wallets SET value = value + $1 WHERE id = $2`,
		p.CreditAmount, p.UserWalletID); err != nil {
		return fmt.Errorf("credit user wallet: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO wallet_ledger (reference_id, wallet_id, user_id, currency, amount, entry_type, status, gateway, trnx_type)
		 VALUES ($1, $2, $3, $4, $5, 'credit', 'pending', 'wallet', 'revenue')`,
		p.ReferenceID, p.UserWalletID, p.UserID, p.Currency, p.CreditAmount); err != nil {
		return fmt.Errorf("record ledger entry: %w", err)
	}

	if p.EventTopic != "" {
		if _, err := tx.Exec(ctx,
			`INSERT INTO outbox_events (topic, aggregate_id, payload) VALUES ($1, $2, $3)`,
			p.EventTopic, p.UserID, p.EventPayload); err != nil {
			return fmt.Errorf("record outbox event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit withdrawal tx: %w", err)
	}
	return nil
}

func decrement(ctx context.Context, tx pgx.Tx, sql string, amount float64, id string) error {
	tag, err := tx.Exec(ctx, sql, amount, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrInsufficientBalance
	}
	return nil
}
