package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("repo: not found")

// BrandRepo reads brand hierarchy nodes.
type BrandRepo struct {
	Pool *pgxpool.Pool
}

const brandColumns = `id, user_id, coalesce(parent_brand_id, ''), coalesce(default_currency, ''),
	cost_per_mille, cost_per_unit, children_mille, sales_commission, inhouse_monetization`

// Get loads a single brand by id.
func (r BrandRepo) Get(ctx context.Context, id string) (Brand, error) {
	var b Brand
	err := r.Pool.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE id = $1`, id,
	).Scan(&b.ID, &b.UserID, &b.ParentBrandID, &b.DefaultCurrency,
		&b.CostPerMille, &b.CostPerUnit, &b.ChildrenMille, &b.SalesCommission, &b.InhouseMonetization)
	if errors.Is(err, pgx.ErrNoRows) {
		return Brand{}, fmt.Errorf("brand %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Brand{}, fmt.Errorf("get brand %s: %w", id, err)
	}
	return b, nil
}

// Parent loads the direct parent of the given brand, if any. The hierarchy
// walk never goes deeper than one level.
func (r BrandRepo) Parent(ctx context.Context, brand Brand) (Brand, bool, error) {
	if brand.ParentBrandID == "" {
		return Brand{}, false, nil
	}
	parent, err := r.Get(ctx, brand.ParentBrandID)
	if errors.Is(err, ErrNotFound) {
		return Brand{}, false, nil
	}
	if err != nil {
		return Brand{}, false, err
	}
	return parent, true, nil
}
