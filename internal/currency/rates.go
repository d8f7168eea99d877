package currency

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRateUnavailable is returned when a currency code has no usable rate.
// Callers must treat it as a hard failure: converting with a silent zero would
// corrupt commission totals downstream.
var ErrRateUnavailable = errors.New("currency: exchange rate unavailable")

// Table maps upper-case currency codes to their rate relative to a fixed base
// currency (units of the code per one unit of base).
type Table map[string]float64

// Rate returns the rate for the provided code, normalising case.
func (t Table) Rate(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	rate, ok := t[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// Merge overlays override onto base, returning a new table. Override entries
// win: the invoice snapshot is the authoritative, latest capture at checkout.
func Merge(base, override Table) Table {
	merged := make(Table, len(base)+len(override))
	for code, rate := range base {
		merged[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	for code, rate := range override {
		merged[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return merged
}

// Convert expresses amount given in the from currency as an amount in the to
// currency using the cross rate through the table's base. Identity conversions
// return the amount unchanged with no floating drift.
func Convert(amount float64, rates Table, from, to string) (float64, error) {
	fromCode := strings.ToUpper(strings.TrimSpace(from))
	toCode := strings.ToUpper(strings.TrimSpace(to))
	if fromCode == "" || toCode == "" {
		return 0, fmt.Errorf("%w: empty currency code", ErrRateUnavailable)
	}
	if fromCode == toCode {
		return amount, nil
	}
	fromRate, ok := rates.Rate(fromCode)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrRateUnavailable, fromCode)
	}
	toRate, ok := rates.Rate(toCode)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrRateUnavailable, toCode)
	}
	return amount / fromRate * toRate, nil
}
