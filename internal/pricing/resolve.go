package pricing

import "math"

// Resolve computes the reseller-facing sell price and the seller's profit
// margin for a product. The input is never mutated.
//
// The reseller's requested margin is signed (negative for a decrease) and
// clamped to [-resellerDiscount, 100]: a reseller can never discount deeper
// than the floor the owning brand configured, and an increase caps at 100%.
func Resolve(p Product) PricedProduct {
	out := PricedProduct{Product: p, OriginalPrice: p.Price}

	if !p.HasResellerMargin() {
		return out
	}
	rule := p.Rules.Reseller
	if rule == nil {
		return out
	}

	requested := rule.Value
	if rule.Direction == DirectionDecrease {
		requested = -requested
	}
	margin := math.Abs(clamp(requested, -p.ResellerDiscount, 100))

	if rule.Direction == DirectionDecrease {
		out.Price = p.Price - (margin/100)*p.Price
		// the unclaimed share of the allowed discount becomes the seller's profit
		out.SellerProfit = math.Max(0, p.ResellerDiscount-margin)
	} else {
		out.Price = p.Price + (margin/100)*p.Price
		out.SellerProfit = p.ResellerDiscount + margin
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
