package pricing

import "strings"

// Subscription durations supported for package products, in months.
var durationMonths = map[string]float64{
	"monthly":    1,
	"quarterly":  3,
	"biannually": 6,
	"yearly":     12,
}

// PackagePrice computes the price of a subscription package for the given
// duration. The base price is per month; discount is a percentage taken off
// the multiplied total. ok is false when the duration is not a recognised
// billing period, in which case no price is usable.
func PackagePrice(price, discount float64, duration string) (float64, bool) {
	months, ok := durationMonths[strings.ToLower(strings.TrimSpace(duration))]
	if !ok || price < 0 {
		return 0, false
	}
	total := price * months
	if discount > 0 {
		if discount > 100 {
			discount = 100
		}
		total -= (discount / 100) * total
	}
	return total, true
}
