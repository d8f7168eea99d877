// Package pricing implements the product pricing pipeline: reseller margin
// resolution, subscription-duration pricing, and final order-currency quotes.
package pricing

import "strings"

// Product types with dedicated pricing rules.
const (
	TypePackage  = "package"
	TypeAirtime  = "airtime"
	TypeElectric = "electric"
)

// ServiceUtility marks products fulfilled through utility aggregators; they
// carry reseller margins even without a parent product.
const ServiceUtility = "utility"

// Direction values for a reseller rule.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// ResellerRule describes how a reseller's price deviates from the base price.
// Value is a percentage magnitude; Direction signs it.
type ResellerRule struct {
	Direction string  `json:"direction" validate:"omitempty,oneof=increase decrease"`
	Value     float64 `json:"value"`
}

// Rules groups the per-product rule set.
type Rules struct {
	Reseller *ResellerRule `json:"reseller,omitempty"`
}

// Product is a catalog product before reseller margins are applied. Price is
// the base price in the product's own currency; ResellerDiscount is the
// maximum discount magnitude (0-100) the owning brand allows resellers.
type Product struct {
	ID               string  `json:"id" validate:"required"`
	Price            float64 `json:"price"`
	ResellerDiscount float64 `json:"resellerDiscount"`
	ParentID         string  `json:"parentId,omitempty"`
	ServiceType      string  `json:"serviceType,omitempty"`
	Type             string  `json:"type"`
	Currency         string  `json:"currency" validate:"required"`
	BrandID          string  `json:"brandId"`
	IsFree           bool    `json:"isFree"`
	Rules            Rules   `json:"rules"`
}

// PricedProduct is a Product after margin resolution. OriginalPrice snapshots
// the pre-markup price; SellerProfit is the reseller's margin percentage used
// later by the commission split. Constructed only by Resolve, never by hand.
type PricedProduct struct {
	Product
	OriginalPrice float64 `json:"originalPrice"`
	SellerProfit  float64 `json:"sellerProfit"`
}

// HasResellerMargin reports whether reseller pricing applies to this product:
// either it is a reseller's copy of a parent product or a utility service.
func (p Product) HasResellerMargin() bool {
	return p.ParentID != "" || strings.EqualFold(p.ServiceType, ServiceUtility)
}
