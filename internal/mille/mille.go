// Package mille normalises raw ad-view balances into whole thousand-view
// units. Payouts are only ever granted for whole mille; fractional views roll
// over to the next withdrawal cycle.
package mille

import "math"

// UnitSize is the number of views that make up one mille.
const UnitSize = 1000

// NearestThousandBelow rounds a raw view balance down to the nearest whole
// thousand. Negative balances floor to zero.
func NearestThousandBelow(views float64) float64 {
	if views <= 0 || math.IsNaN(views) {
		return 0
	}
	return math.Floor(views/UnitSize) * UnitSize
}

// Whole returns the count of complete mille contained in the raw balance.
func Whole(views float64) int64 {
	if views <= 0 || math.IsNaN(views) {
		return 0
	}
	return int64(math.Floor(views / UnitSize))
}
