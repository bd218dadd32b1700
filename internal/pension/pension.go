// Package pension values IORP holdings and derives their risk profile,
// solvency standing, and risk-mitigation actions.
//
// All monetary values use shopspring/decimal — never float64 for money.
package pension

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

var (
	// ErrUnknownStrategy is returned for mitigation strategies other than
	// "stop-loss" and "hedging".
	ErrUnknownStrategy = errors.New("pension: unknown risk mitigation strategy")

	// ErrInvalidProvisions is returned when technical provisions are not
	// positive, which would make the solvency ratio undefined.
	ErrInvalidProvisions = errors.New("pension: technical provisions must be positive")
)

// MinimumSolvencyRatio is the floor required of an IORP under IORP II.
var MinimumSolvencyRatio = decimal.NewFromFloat(1.5)

// Supported mitigation strategies.
const (
	StrategyStopLoss = "stop-loss"
	StrategyHedging  = "hedging"
)

// Mitigation actions reported by Mitigate.
const (
	ActionNone        = "none"
	ActionSell        = "sell"
	ActionBuyOptions  = "buy_options"
	ActionSellOptions = "sell_options"
)

// Risk bucket thresholds for the solvency×diversification×industry score.
var (
	lowRiskBound    = decimal.NewFromFloat(0.5)
	mediumRiskBound = decimal.NewFromFloat(0.75)
)

// NAV returns the net asset value of the fund: the sum of quoted prices
// across its holdings. Quantities are not applied here; MarketValue is the
// notional-scaled figure.
func NAV(iorp *model.IORP) decimal.Decimal {
	nav := decimal.Zero
	for _, a := range iorp.Assets {
		nav = nav.Add(a.Price)
	}
	return nav
}

// MarketValue returns the kind-scaled market value of the fund's holdings:
// price×shares for stocks, price×face value for bonds, quoted price
// otherwise.
func MarketValue(iorp *model.IORP) decimal.Decimal {
	total := decimal.Zero
	for _, a := range iorp.Assets {
		total = total.Add(a.Value())
	}
	return total
}

// NetDelta sums position deltas across the fund. Only stock positions
// carry delta; everything else contributes zero.
func NetDelta(iorp *model.IORP) decimal.Decimal {
	net := decimal.Zero
	for _, p := range iorp.Positions {
		net = net.Add(p.Delta())
	}
	return net
}

// RiskProfile buckets solvencyRatio × assetDiversification × industryRisk:
// below 0.5 low, below 0.75 medium, high otherwise.
func RiskProfile(iorp *model.IORP) model.RiskProfile {
	return RiskProfileFromScore(
		iorp.SolvencyRatio.Mul(iorp.AssetDiversification).Mul(iorp.IndustryRisk))
}

// RiskProfileFromScore buckets a precomputed risk score.
func RiskProfileFromScore(score decimal.Decimal) model.RiskProfile {
	switch {
	case score.LessThan(lowRiskBound):
		return model.RiskLow
	case score.LessThan(mediumRiskBound):
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// High-risk categories used by coverage-based risk scoring.
var (
	highRiskEmployees = map[string]bool{
		"construction workers": true,
		"oil rig workers":      true,
		"mining workers":       true,
	}
	highRiskLocations = map[string]bool{
		"earthquake prone areas": true,
		"hurricane prone areas":  true,
		"flood prone areas":      true,
	}
	highRiskIndustries = map[string]bool{
		"construction": true,
		"oil and gas":  true,
		"mining":       true,
	}
)

// CoverageRiskProfile scores an IORP by what it covers: one point per
// high-risk employee type, per high-risk operating location, and for a
// high-risk industry. Three or more points is high, one or two medium,
// zero low.
func CoverageRiskProfile(employees, locations []string, industry string) model.RiskProfile {
	score := 0
	for _, e := range employees {
		if highRiskEmployees[e] {
			score++
		}
	}
	for _, l := range locations {
		if highRiskLocations[l] {
			score++
		}
	}
	if highRiskIndustries[industry] {
		score++
	}

	switch {
	case score >= 3:
		return model.RiskHigh
	case score >= 1:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// SolvencyRatio returns total assets over technical provisions, the IORP II
// solvency measure.
func SolvencyRatio(totalAssets, technicalProvisions decimal.Decimal) (decimal.Decimal, error) {
	if technicalProvisions.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidProvisions, technicalProvisions)
	}
	return totalAssets.Div(technicalProvisions), nil
}

// MeetsIORPII reports whether a solvency ratio satisfies the IORP II
// minimum of 1.5.
func MeetsIORPII(solvencyRatio decimal.Decimal) bool {
	return solvencyRatio.GreaterThanOrEqual(MinimumSolvencyRatio)
}

// MitigationReport describes the action a mitigation strategy would take.
// Positions are never mutated; the report is advisory.
type MitigationReport struct {
	Strategy    string          `json:"strategy"`
	Action      string          `json:"action"`
	MarketValue decimal.Decimal `json:"market_value"`
	Threshold   decimal.Decimal `json:"threshold,omitempty"`
	NetDelta    decimal.Decimal `json:"net_delta,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty"` // option investment
}

// Mitigate evaluates a risk mitigation strategy against the fund.
//
// "stop-loss" compares the current market value to the threshold and
// reports a sell when the value has fallen below it.
//
// "hedging" computes the net delta across positions and an option
// investment bounded by min(|netΔ|×hedgeRatio, marketValue×hedgeRatio),
// selling options for positive delta and buying for negative.
func Mitigate(iorp *model.IORP, strategy string, threshold decimal.Decimal) (*MitigationReport, error) {
	switch strategy {
	case StrategyStopLoss:
		marketValue := MarketValue(iorp)
		report := &MitigationReport{
			Strategy:    strategy,
			Action:      ActionNone,
			MarketValue: marketValue,
			Threshold:   threshold,
		}
		if marketValue.LessThan(threshold) {
			report.Action = ActionSell
		}
		return report, nil

	case StrategyHedging:
		marketValue := MarketValue(iorp)
		netDelta := NetDelta(iorp)

		maxInvestment := marketValue.Mul(iorp.HedgeRatio)
		investment := netDelta.Abs().Mul(iorp.HedgeRatio)
		if investment.GreaterThan(maxInvestment) {
			investment = maxInvestment
		}

		report := &MitigationReport{
			Strategy:    strategy,
			Action:      ActionNone,
			MarketValue: marketValue,
			NetDelta:    netDelta,
		}
		switch {
		case netDelta.IsPositive():
			report.Action = ActionSellOptions
			report.Amount = investment
		case netDelta.IsNegative():
			report.Action = ActionBuyOptions
			report.Amount = investment
		}
		return report, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}
