package pricing

import (
	"errors"
	"fmt"

	"github.com/virginus01/afobata-core/internal/currency"
)

var (
	// ErrMissingInput is returned when a required pricing input is absent.
	ErrMissingInput = errors.New("pricing: missing required input")
	// ErrInvalidDuration is returned when a package product carries an
	// unrecognised billing period. No partial price is ever produced.
	ErrInvalidDuration = errors.New("pricing: invalid package duration")
	// ErrSubUnitPrice is returned when a paid product resolves below one
	// currency unit.
	ErrSubUnitPrice = errors.New("pricing: price below minimum unit")
)

// OrderLine carries the order-side pricing inputs. Rates is the exchange-rate
// snapshot pinned when the order was placed; replaying the same order always
// reprices identically.
type OrderLine struct {
	Quantity int            `json:"quantity"`
	Duration string         `json:"duration,omitempty"`
	Amount   float64        `json:"amount,omitempty"`
	Rates    currency.Table `json:"rates,omitempty"`
}

// Invoice is the checkout-time snapshot. Its rates override the order's.
type Invoice struct {
	Currency string         `json:"currency" validate:"required"`
	Rates    currency.Table `json:"rates,omitempty"`
}

// Quote is the order-currency price pair produced by the calculator.
type Quote struct {
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
}

// Calculator computes final order prices. LegacyQtyMultiply preserves the
// historical behaviour of applying the quantity multiplier a second time on
// the way out; billing parity depends on it, so it defaults on and is only
// switched deliberately (see DESIGN.md).
type Calculator struct {
	LegacyQtyMultiply bool
}

// FinalPrice expresses the resolved product price in the invoice currency,
// applying package-duration or face-value multipliers as the product type
// demands. It fails hard on missing inputs; callers surface that as a bad
// request, never a silent default.
func (c Calculator) FinalPrice(p PricedProduct, order OrderLine, inv Invoice) (Quote, error) {
	if p.ID == "" || p.Currency == "" {
		return Quote{}, fmt.Errorf("%w: product", ErrMissingInput)
	}
	if inv.Currency == "" {
		return Quote{}, fmt.Errorf("%w: invoice currency", ErrMissingInput)
	}

	qty := order.Quantity
	if qty < 1 {
		qty = 1
	}

	price := p.Price * float64(qty)
	original := p.OriginalPrice * float64(qty)
	scaledByQty := true

	switch p.Type {
	case TypePackage:
		var ok bool
		price, ok = PackagePrice(p.Price, 0, order.Duration)
		if !ok {
			return Quote{}, fmt.Errorf("%w: %q", ErrInvalidDuration, order.Duration)
		}
		original, ok = PackagePrice(p.OriginalPrice, 0, order.Duration)
		if !ok {
			return Quote{}, fmt.Errorf("%w: %q", ErrInvalidDuration, order.Duration)
		}
		scaledByQty = false
	case TypeAirtime, TypeElectric:
		price *= order.Amount
		original *= order.Amount
	}

	if (price < 1 || original < 1) && !p.IsFree {
		return Quote{}, fmt.Errorf("%w: price=%v originalPrice=%v", ErrSubUnitPrice, price, original)
	}

	rates := currency.Merge(order.Rates, inv.Rates)
	converted, err := currency.Convert(price, rates, p.Currency, inv.Currency)
	if err != nil {
		return Quote{}, err
	}
	convertedOriginal, err := currency.Convert(original, rates, p.Currency, inv.Currency)
	if err != nil {
		return Quote{}, err
	}

	// The legacy path multiplies by quantity once more even though the line
	// amounts were already scaled above. The corrected path only applies the
	// quantity here for package products, whose duration pricing replaced the
	// scaled amounts.
	if c.LegacyQtyMultiply || !scaledByQty {
		converted *= float64(qty)
		convertedOriginal *= float64(qty)
	}

	return Quote{Price: converted, OriginalPrice: convertedOriginal}, nil
}
