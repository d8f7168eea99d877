// Package commission distributes a sale's value across the brand hierarchy:
// the order brand, its direct parent, the product brand, its direct parent,
// and the master brand. The walk is fixed at two levels per leg.
package commission

import (
	"fmt"

	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/pricing"
)

// PartyDetails is one party's slice of a settlement. Commission is expressed
// in the party's own currency; CommissionStatus is false until paid out.
type PartyDetails struct {
	BrandID          string  `json:"brandId,omitempty"`
	CurrencyCode     string  `json:"currencyCode,omitempty"`
	SalesCommission  float64 `json:"salesCommission,omitempty"`
	Commission       float64 `json:"commission,omitempty"`
	CommissionStatus bool    `json:"commissionStatus"`
}

// Input carries everything a split needs. Rates are fetched at settlement
// time, not the order snapshot: settlement happens after order placement and
// reflects near-current rates.
type Input struct {
	OrderID            string                `json:"orderId" validate:"required"`
	InvoiceCurrency    string                `json:"invoiceCurrency" validate:"required"`
	Product            pricing.PricedProduct `json:"product"`
	Rates              currency.Table        `json:"rates"`
	OrderBrand         PartyDetails          `json:"orderBrand"`
	OrderParentBrand   PartyDetails          `json:"orderParentBrand"`
	ProductBrand       PartyDetails          `json:"productBrand"`
	ProductParentBrand PartyDetails          `json:"productParentBrand"`
	MasterBrand        PartyDetails          `json:"masterBrand"`
}

// Result holds the five commission slots of a completed split. The master
// slot is always empty: its cut is reserved for a separate path and this
// split deliberately never computes it.
type Result struct {
	OrderBrand         PartyDetails `json:"orderBrandCommission"`
	OrderParentBrand   PartyDetails `json:"orderParentBrandCommission"`
	ProductBrand       PartyDetails `json:"productBrandCommission"`
	ProductParentBrand PartyDetails `json:"productParentBrandCommission"`
	MasterBrand        PartyDetails `json:"masterBrandCommission"`
}

// SplitError wraps a failed split with enough context for reconciliation.
// Without it an aborted split is indistinguishable from "nothing to settle".
type SplitError struct {
	OrderID   string
	ProductID string
	Err       error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("commission: split aborted for order %s product %s: %v", e.OrderID, e.ProductID, e.Err)
}

func (e *SplitError) Unwrap() error { return e.Err }

// Split computes all five commission slots or none: a partial split must
// never be persisted as if it were real settlement data, so any conversion
// failure aborts the whole result.
func Split(in Input) (Result, error) {
	product := in.Product

	// strip out the discount the original seller already gave before the
	// product-side split
	base := product.OriginalPrice - (product.ResellerDiscount/100)*product.OriginalPrice

	orderSide := (product.SellerProfit / 100) * product.OriginalPrice
	orderParentCut := (in.OrderParentBrand.SalesCommission / 100) * orderSide
	orderBrandKeeps := orderSide - orderParentCut

	productParentCut := (in.ProductParentBrand.SalesCommission / 100) * base
	productBrandKeeps := base - productParentCut

	var out Result
	var err error
	if out.OrderBrand, err = finalize(in.OrderBrand, orderBrandKeeps, in.InvoiceCurrency, in.Rates); err != nil {
		return Result{}, &SplitError{OrderID: in.OrderID, ProductID: product.ID, Err: err}
	}
	if out.OrderParentBrand, err = finalize(in.OrderParentBrand, orderParentCut, in.InvoiceCurrency, in.Rates); err != nil {
		return Result{}, &SplitError{OrderID: in.OrderID, ProductID: product.ID, Err: err}
	}
	if out.ProductBrand, err = finalize(in.ProductBrand, productBrandKeeps, in.InvoiceCurrency, in.Rates); err != nil {
		return Result{}, &SplitError{OrderID: in.OrderID, ProductID: product.ID, Err: err}
	}
	if out.ProductParentBrand, err = finalize(in.ProductParentBrand, productParentCut, in.InvoiceCurrency, in.Rates); err != nil {
		return Result{}, &SplitError{OrderID: in.OrderID, ProductID: product.ID, Err: err}
	}
	// master slot stays empty by construction
	out.MasterBrand = PartyDetails{}
	return out, nil
}

// finalize converts a party's cut into its own settlement currency. Newly
// computed commissions are always unpaid. Parties without a settlement
// currency take no cut and settle empty.
func finalize(party PartyDetails, amount float64, fromCurrency string, rates currency.Table) (PartyDetails, error) {
	if party.CurrencyCode == "" {
		return PartyDetails{}, nil
	}
	converted, err := currency.Convert(amount, rates, fromCurrency, party.CurrencyCode)
	if err != nil {
		return PartyDetails{}, err
	}
	out := party
	out.Commission = converted
	out.CommissionStatus = false
	return out, nil
}
