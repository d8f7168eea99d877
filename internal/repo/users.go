package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo reads platform users.
type UserRepo struct {
	Pool *pgxpool.Pool
}

// Get loads a single user by id.
func (r UserRepo) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := r.Pool.QueryRow(ctx,
		`SELECT id, coalesce(brand_id, ''), mille, coalesce(default_currency, ''), coalesce(wallet_id, '')
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.BrandID, &u.Mille, &u.DefaultCurrency, &u.WalletID)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}
