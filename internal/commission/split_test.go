package commission

import (
	"errors"
	"math"
	"testing"

	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/pricing"
)

func splitFixture() Input {
	product := pricing.Resolve(pricing.Product{
		ID:               "prod-1",
		Price:            1000,
		Currency:         "NGN",
		ResellerDiscount: 20,
		ParentID:         "parent-prod",
		Rules:            Rules(),
	})
	return Input{
		OrderID:         "order-1",
		InvoiceCurrency: "NGN",
		Product:         product,
		Rates:           currency.Table{"NGN": 1500, "USD": 1, "GHS": 15},
		OrderBrand:      PartyDetails{BrandID: "ob", CurrencyCode: "NGN"},
		OrderParentBrand: PartyDetails{
			BrandID: "obp", CurrencyCode: "USD", SalesCommission: 10,
		},
		ProductBrand: PartyDetails{BrandID: "pb", CurrencyCode: "NGN"},
		ProductParentBrand: PartyDetails{
			BrandID: "pbp", CurrencyCode: "GHS", SalesCommission: 20,
		},
		MasterBrand: PartyDetails{BrandID: "master", CurrencyCode: "USD"},
	}
}

// Rules returns the reseller rule used across split fixtures: a 10% decrease
// against a 20% allowed discount, leaving a 10% seller profit.
func Rules() pricing.Rules {
	return pricing.Rules{Reseller: &pricing.ResellerRule{Direction: pricing.DirectionDecrease, Value: 10}}
}

func TestSplitAmounts(t *testing.T) {
	in := splitFixture()
	got, err := Split(in)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	// order side: 10% of 1000 = 100; parent takes 10% of that
	if math.Abs(got.OrderBrand.Commission-90) > 1e-9 {
		t.Fatalf("order brand commission = %v, want 90", got.OrderBrand.Commission)
	}
	// parent cut of 10 NGN in USD at 1500/1
	if math.Abs(got.OrderParentBrand.Commission-10.0/1500) > 1e-12 {
		t.Fatalf("order parent commission = %v, want %v", got.OrderParentBrand.Commission, 10.0/1500)
	}
	// product side base: 1000 - 20% = 800; parent takes 20% = 160, brand keeps 640
	if math.Abs(got.ProductBrand.Commission-640) > 1e-9 {
		t.Fatalf("product brand commission = %v, want 640", got.ProductBrand.Commission)
	}
	if math.Abs(got.ProductParentBrand.Commission-160.0/100) > 1e-9 {
		t.Fatalf("product parent commission = %v, want 1.6", got.ProductParentBrand.Commission)
	}
}

func TestSplitMasterSlotAlwaysEmpty(t *testing.T) {
	got, err := Split(splitFixture())
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if got.MasterBrand != (PartyDetails{}) {
		t.Fatalf("master slot must stay empty, got %+v", got.MasterBrand)
	}
}

func TestSplitNewCommissionsAreUnpaid(t *testing.T) {
	in := splitFixture()
	in.OrderBrand.CommissionStatus = true // stale input flag must not leak through
	got, err := Split(in)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	for name, party := range map[string]PartyDetails{
		"orderBrand":         got.OrderBrand,
		"orderParentBrand":   got.OrderParentBrand,
		"productBrand":       got.ProductBrand,
		"productParentBrand": got.ProductParentBrand,
	} {
		if party.CommissionStatus {
			t.Fatalf("%s settled as already paid", name)
		}
	}
}

func TestSplitAllOrNothing(t *testing.T) {
	in := splitFixture()
	// product parent settles in a currency with no rate: the whole split aborts
	in.ProductParentBrand.CurrencyCode = "KES"
	got, err := Split(in)
	if err == nil {
		t.Fatal("expected split error")
	}
	var splitErr *SplitError
	if !errors.As(err, &splitErr) {
		t.Fatalf("expected *SplitError, got %T", err)
	}
	if splitErr.OrderID != "order-1" || splitErr.ProductID != "prod-1" {
		t.Fatalf("split error missing context: %+v", splitErr)
	}
	if !errors.Is(err, currency.ErrRateUnavailable) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if got != (Result{}) {
		t.Fatalf("partial result leaked: %+v", got)
	}
}

func TestSplitPartyWithoutCurrencySettlesEmpty(t *testing.T) {
	in := splitFixture()
	in.OrderParentBrand = PartyDetails{}
	got, err := Split(in)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if got.OrderParentBrand != (PartyDetails{}) {
		t.Fatalf("absent parent should settle empty, got %+v", got.OrderParentBrand)
	}
	// with no parent commission percentage the order brand keeps the full side
	if math.Abs(got.OrderBrand.Commission-100) > 1e-9 {
		t.Fatalf("order brand commission = %v, want 100", got.OrderBrand.Commission)
	}
}
