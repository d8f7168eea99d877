package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WalletRepo resolves wallets by id or owner.
type WalletRepo struct {
	Pool *pgxpool.Pool
}

const walletColumns = `id, owner_user_id, value, share_value, coalesce(currency, '')`

// Get loads a wallet by id.
func (r WalletRepo) Get(ctx context.Context, id string) (Wallet, error) {
	var w Wallet
	err := r.Pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id,
	).Scan(&w.ID, &w.OwnerUserID, &w.Value, &w.ShareValue, &w.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("get wallet %s: %w", id, err)
	}
	return w, nil
}

// GetByOwner resolves the wallet belonging to the given user.
func (r WalletRepo) GetByOwner(ctx context.Context, userID string) (Wallet, error) {
	var w Wallet
	err := r.Pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE owner_user_id = $1`, userID,
	).Scan(&w.ID, &w.OwnerUserID, &w.Value, &w.ShareValue, &w.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, fmt.Errorf("wallet for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("get wallet for user %s: %w", userID, err)
	}
	return w, nil
}
