package pricing

import (
	"math/rand"
	"testing"
)

func TestResolveDecrease(t *testing.T) {
	p := Product{
		ID:               "p1",
		Price:            1000,
		Currency:         "NGN",
		ResellerDiscount: 20,
		ParentID:         "parent",
		Rules:            Rules{Reseller: &ResellerRule{Direction: DirectionDecrease, Value: 10}},
	}
	got := Resolve(p)
	if got.Price != 900 {
		t.Fatalf("price = %v, want 900", got.Price)
	}
	if got.OriginalPrice != 1000 {
		t.Fatalf("originalPrice = %v, want 1000", got.OriginalPrice)
	}
	if got.SellerProfit != 10 {
		t.Fatalf("sellerProfit = %v, want 10", got.SellerProfit)
	}
}

func TestResolveIncrease(t *testing.T) {
	p := Product{
		ID:               "p1",
		Price:            200,
		Currency:         "NGN",
		ResellerDiscount: 15,
		ServiceType:      ServiceUtility,
		Rules:            Rules{Reseller: &ResellerRule{Direction: DirectionIncrease, Value: 30}},
	}
	got := Resolve(p)
	if got.Price != 260 {
		t.Fatalf("price = %v, want 260", got.Price)
	}
	if got.SellerProfit != 45 {
		t.Fatalf("sellerProfit = %v, want 45", got.SellerProfit)
	}
}

func TestResolveDecreaseClampedToAllowedDiscount(t *testing.T) {
	p := Product{
		ID:               "p1",
		Price:            1000,
		Currency:         "NGN",
		ResellerDiscount: 20,
		ParentID:         "parent",
		Rules:            Rules{Reseller: &ResellerRule{Direction: DirectionDecrease, Value: 80}},
	}
	got := Resolve(p)
	// the requested 80% discount clamps to the 20% ceiling
	if got.Price != 800 {
		t.Fatalf("price = %v, want 800", got.Price)
	}
	if got.SellerProfit != 0 {
		t.Fatalf("sellerProfit = %v, want 0", got.SellerProfit)
	}
}

func TestResolveIncreaseCappedAt100(t *testing.T) {
	p := Product{
		ID:               "p1",
		Price:            100,
		Currency:         "NGN",
		ResellerDiscount: 10,
		ParentID:         "parent",
		Rules:            Rules{Reseller: &ResellerRule{Direction: DirectionIncrease, Value: 400}},
	}
	got := Resolve(p)
	if got.Price != 200 {
		t.Fatalf("price = %v, want 200", got.Price)
	}
	if got.SellerProfit != 110 {
		t.Fatalf("sellerProfit = %v, want 110", got.SellerProfit)
	}
}

func TestResolveNoRuleLeavesPriceUnchanged(t *testing.T) {
	p := Product{ID: "p1", Price: 500, Currency: "NGN", ParentID: "parent", ResellerDiscount: 25}
	got := Resolve(p)
	if got.Price != 500 || got.OriginalPrice != 500 || got.SellerProfit != 0 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestResolveNoMarginForPlainProduct(t *testing.T) {
	p := Product{
		ID:               "p1",
		Price:            500,
		Currency:         "NGN",
		ResellerDiscount: 25,
		Rules:            Rules{Reseller: &ResellerRule{Direction: DirectionDecrease, Value: 10}},
	}
	got := Resolve(p)
	if got.Price != 500 {
		t.Fatalf("plain product must not take a reseller margin, got %v", got.Price)
	}
}

func TestResolveBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		discount := rng.Float64() * 100
		value := rng.Float64()*2000 - 1000
		direction := DirectionIncrease
		if rng.Intn(2) == 0 {
			direction = DirectionDecrease
		}
		p := Product{
			ID:               "p",
			Price:            rng.Float64() * 1e6,
			Currency:         "NGN",
			ResellerDiscount: discount,
			ParentID:         "parent",
			Rules:            Rules{Reseller: &ResellerRule{Direction: direction, Value: value}},
		}
		got := Resolve(p)
		if got.Price < 0 {
			t.Fatalf("price went negative: %+v -> %v", p, got.Price)
		}
		if got.SellerProfit < 0 || got.SellerProfit > discount+100 {
			t.Fatalf("sellerProfit out of bounds: discount=%v value=%v dir=%s profit=%v",
				discount, value, direction, got.SellerProfit)
		}
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	rule := ResellerRule{Direction: DirectionDecrease, Value: 10}
	p := Product{ID: "p1", Price: 1000, Currency: "NGN", ParentID: "x", ResellerDiscount: 20, Rules: Rules{Reseller: &rule}}
	_ = Resolve(p)
	if p.Price != 1000 || rule.Value != 10 {
		t.Fatal("input mutated")
	}
}
