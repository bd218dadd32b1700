// Package solvency computes regulatory capital figures for an insurance
// company: the Solvency Capital Requirement (SCR), the Minimum Capital
// Requirement (MCR), and their stressed variants.
//
// All monetary values use shopspring/decimal — never float64 for money.
package solvency

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidOwnFunds is returned when own funds are not positive.
	ErrInvalidOwnFunds = errors.New("solvency: own funds must be positive")

	// ErrInvalidFactor is returned when a risk factor is not positive.
	ErrInvalidFactor = errors.New("solvency: risk factors must be positive")

	// ErrInvalidBalance is returned when assets plus liabilities is not
	// positive, which would make the stressed SCR factor undefined.
	ErrInvalidBalance = errors.New("solvency: assets plus liabilities must be positive")
)

// mcrDivisor is the fixed regulatory divisor relating MCR to SCR.
var mcrDivisor = decimal.NewFromFloat(0.4)

// Stress scenario names returned by StressTestSCR.
const (
	ScenarioLowMarketRisk       = "low_market_risk_scr"
	ScenarioHighMarketRisk      = "high_market_risk_scr"
	ScenarioLowOperationalRisk  = "low_operational_risk_scr"
	ScenarioHighOperationalRisk = "high_operational_risk_scr"
)

// StressFactors holds the substitute risk factors applied one at a time
// during stress testing.
type StressFactors struct {
	LowMarketRisk       decimal.Decimal `json:"low_market_risk"`
	HighMarketRisk      decimal.Decimal `json:"high_market_risk"`
	LowOperationalRisk  decimal.Decimal `json:"low_operational_risk"`
	HighOperationalRisk decimal.Decimal `json:"high_operational_risk"`
}

// DefaultStressFactors returns the standard stress substitutions.
func DefaultStressFactors() StressFactors {
	return StressFactors{
		LowMarketRisk:       decimal.NewFromFloat(0.8),
		HighMarketRisk:      decimal.NewFromFloat(2.0),
		LowOperationalRisk:  decimal.NewFromFloat(0.9),
		HighOperationalRisk: decimal.NewFromFloat(2.5),
	}
}

// Calculator derives capital requirements from an insurer's own funds and
// its market/operational risk factors. It is stateless with respect to
// computations: every method is a pure function of the stored factors.
type Calculator struct {
	ownFunds        decimal.Decimal
	marketRisk      decimal.Decimal
	operationalRisk decimal.Decimal
	stress          StressFactors
}

// NewCalculator validates the inputs and returns a Calculator.
func NewCalculator(ownFunds, marketRisk, operationalRisk decimal.Decimal, stress StressFactors) (*Calculator, error) {
	if ownFunds.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidOwnFunds
	}
	for _, f := range []decimal.Decimal{
		marketRisk, operationalRisk,
		stress.LowMarketRisk, stress.HighMarketRisk,
		stress.LowOperationalRisk, stress.HighOperationalRisk,
	} {
		if f.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidFactor
		}
	}
	return &Calculator{
		ownFunds:        ownFunds,
		marketRisk:      marketRisk,
		operationalRisk: operationalRisk,
		stress:          stress,
	}, nil
}

// SCR returns own funds × market risk factor × operational risk factor.
func (c *Calculator) SCR() decimal.Decimal {
	return c.ownFunds.Mul(c.marketRisk).Mul(c.operationalRisk)
}

// MCR returns the minimum capital requirement: SCR / 0.4.
func (c *Calculator) MCR() decimal.Decimal {
	return c.SCR().Div(mcrDivisor)
}

// StressTestSCR recomputes the SCR four times, substituting one stored
// low/high factor per scenario against the otherwise-unchanged factor.
// The result always contains exactly the four named scenarios.
func (c *Calculator) StressTestSCR() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		ScenarioLowMarketRisk:       c.ownFunds.Mul(c.stress.LowMarketRisk).Mul(c.operationalRisk),
		ScenarioHighMarketRisk:      c.ownFunds.Mul(c.stress.HighMarketRisk).Mul(c.operationalRisk),
		ScenarioLowOperationalRisk:  c.ownFunds.Mul(c.marketRisk).Mul(c.stress.LowOperationalRisk),
		ScenarioHighOperationalRisk: c.ownFunds.Mul(c.marketRisk).Mul(c.stress.HighOperationalRisk),
	}
}

// Metrics computes the MCR and SCR for an arbitrary balance sheet:
//
//	MCR = (assets + liabilities + ownFunds) × scrFactor
//	SCR = MCR × marketRisk × operationalRisk × creditRisk
//
// Pure function, no stored state.
func Metrics(assets, liabilities, ownFunds, scrFactor, marketRisk, creditRisk, operationalRisk decimal.Decimal) (mcr, scr decimal.Decimal) {
	mcr = assets.Add(liabilities).Add(ownFunds).Mul(scrFactor)
	scr = mcr.Mul(marketRisk).Mul(operationalRisk).Mul(creditRisk)
	return mcr, scr
}

// SCRUnderStress derives an SCR factor per stress scenario:
//
//	factor = capitalRequirement / (assets + liabilities)
//
// Every scenario in the input is processed; the result has one entry per
// scenario name.
func SCRUnderStress(assets, liabilities decimal.Decimal, scenarios map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	denom := assets.Add(liabilities)
	if denom.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidBalance, denom)
	}

	factors := make(map[string]decimal.Decimal, len(scenarios))
	for scenario, capitalRequirement := range scenarios {
		factors[scenario] = capitalRequirement.Div(denom)
	}
	return factors, nil
}
