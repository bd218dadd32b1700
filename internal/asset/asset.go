// Package asset defines tradable instruments held by pension funds and the
// positions wrapping them. Instruments are a tagged variant (stock, bond,
// generic) with a uniform valuation operation, so callers never branch on
// runtime types.
//
// All monetary values use shopspring/decimal — never float64 for money.
package asset

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the instrument variant carried by an Asset.
type Kind string

const (
	KindStock   Kind = "stock"
	KindBond    Kind = "bond"
	KindGeneric Kind = "generic"
)

// Asset is an immutable snapshot of a tradable instrument. Only the fields
// belonging to the tagged Kind are meaningful; the rest stay zero.
type Asset struct {
	Identifier string          `json:"identifier"`
	Kind       Kind            `json:"kind"`
	Price      decimal.Decimal `json:"price"`

	// Stock fields.
	Shares        decimal.Decimal `json:"shares,omitempty"`
	DividendYield decimal.Decimal `json:"dividend_yield,omitempty"`
	Delta         decimal.Decimal `json:"delta,omitempty"` // per-share price sensitivity

	// Bond fields.
	FaceValue  decimal.Decimal `json:"face_value,omitempty"`
	CouponRate decimal.Decimal `json:"coupon_rate,omitempty"`
	Maturity   time.Time       `json:"maturity,omitempty"`
}

// NewStock creates a stock instrument.
func NewStock(ticker string, price, shares, dividendYield, delta decimal.Decimal) Asset {
	return Asset{
		Identifier:    ticker,
		Kind:          KindStock,
		Price:         price,
		Shares:        shares,
		DividendYield: dividendYield,
		Delta:         delta,
	}
}

// NewBond creates a bond instrument.
func NewBond(identifier string, price, faceValue, couponRate decimal.Decimal, maturity time.Time) Asset {
	return Asset{
		Identifier: identifier,
		Kind:       KindBond,
		Price:      price,
		FaceValue:  faceValue,
		CouponRate: couponRate,
		Maturity:   maturity,
	}
}

// NewGeneric creates an instrument valued at its quoted price alone.
func NewGeneric(identifier string, price decimal.Decimal) Asset {
	return Asset{
		Identifier: identifier,
		Kind:       KindGeneric,
		Price:      price,
	}
}

// Value returns the kind-specific market value of the instrument:
// price × shares for stocks, price × face value for bonds, and the quoted
// price for everything else.
func (a Asset) Value() decimal.Decimal {
	switch a.Kind {
	case KindStock:
		return a.Price.Mul(a.Shares)
	case KindBond:
		return a.Price.Mul(a.FaceValue)
	default:
		return a.Price
	}
}

// CouponPayment returns price × coupon rate for bonds, zero otherwise.
func (a Asset) CouponPayment() decimal.Decimal {
	if a.Kind != KindBond {
		return decimal.Zero
	}
	return a.Price.Mul(a.CouponRate)
}

// MaturityValue returns the bond price plus its coupon payment, zero for
// non-bond instruments.
func (a Asset) MaturityValue() decimal.Decimal {
	if a.Kind != KindBond {
		return decimal.Zero
	}
	return a.Price.Add(a.CouponPayment())
}

// Position is a quantity of an instrument held by a fund.
type Position struct {
	Asset    Asset           `json:"asset"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MarketValue returns the quoted price times the quantity held.
func (p Position) MarketValue() decimal.Decimal {
	return p.Asset.Price.Mul(p.Quantity)
}

// Delta returns the position's sensitivity to underlying price movement:
// quantity × per-share delta for stock positions. All other kinds carry no
// delta and contribute zero.
func (p Position) Delta() decimal.Decimal {
	if p.Asset.Kind != KindStock {
		return decimal.Zero
	}
	return p.Quantity.Mul(p.Asset.Delta)
}
