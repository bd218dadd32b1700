package asset

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestValue_PerKind(t *testing.T) {
	maturity := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		asset Asset
		want  float64
	}{
		{"stock is price times shares", NewStock("ABC", d(50), d(100), d(0.02), d(1)), 5000},
		{"bond is price times face value", NewBond("T-Bill", d(98.5), d(10), d(0.04), maturity), 985},
		{"generic is quoted price", NewGeneric("Property", d(250)), 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.asset.Value(); !got.Equal(d(tt.want)) {
				t.Errorf("got %s want %v", got, tt.want)
			}
		})
	}
}

func TestBond_CouponAndMaturity(t *testing.T) {
	maturity := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	bond := NewBond("Corporate Bond", d(75), d(1), d(0.04), maturity)

	if coupon := bond.CouponPayment(); !coupon.Equal(d(3)) {
		t.Errorf("expected coupon 3, got %s", coupon)
	}
	if mv := bond.MaturityValue(); !mv.Equal(d(78)) {
		t.Errorf("expected maturity value 78, got %s", mv)
	}
}

func TestCoupon_ZeroForNonBonds(t *testing.T) {
	stock := NewStock("ABC", d(50), d(100), d(0.02), d(1))
	if !stock.CouponPayment().IsZero() {
		t.Error("stock coupon payment should be zero")
	}
	if !stock.MaturityValue().IsZero() {
		t.Error("stock maturity value should be zero")
	}
}

func TestPosition_MarketValue(t *testing.T) {
	p := Position{Asset: NewGeneric("ABC", d(50)), Quantity: d(50)}
	if mv := p.MarketValue(); !mv.Equal(d(2500)) {
		t.Errorf("expected 2500, got %s", mv)
	}
}

func TestPosition_Delta(t *testing.T) {
	stockPos := Position{Asset: NewStock("ABC", d(50), d(1), d(0), d(0.6)), Quantity: d(100)}
	if delta := stockPos.Delta(); !delta.Equal(d(60)) {
		t.Errorf("expected delta 60, got %s", delta)
	}

	bondPos := Position{
		Asset:    NewBond("T", d(100), d(1), d(0.04), time.Time{}),
		Quantity: d(100),
	}
	if !bondPos.Delta().IsZero() {
		t.Error("non-stock positions should contribute zero delta")
	}
}
