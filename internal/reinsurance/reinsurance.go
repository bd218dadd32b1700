// Package reinsurance negotiates customized reinsurance coverage for
// pension funds: the base amount from the fund's size and risk profile,
// term bonuses, the reinsurance premium, and interest/inflation-driven
// updates to contract terms.
//
// All monetary values use shopspring/decimal — never float64 for money.
package reinsurance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

// ErrUnknownRiskProfile is returned for risk profiles outside
// low/medium/high.
var ErrUnknownRiskProfile = errors.New("reinsurance: unknown risk profile")

// ExclusionInflation is the exclusion toggled by UpdateTerms when the
// inflation rate crosses its thresholds.
const ExclusionInflation = "inflation"

// DefaultSizeThreshold separates large funds from small ones when tiering
// the base reinsurance amount. Size is measured in covered members.
const DefaultSizeThreshold = int64(100_000)

// Coverage share of the base reinsurance amount by (size tier, profile).
// Small high-risk funds get no coverage.
var (
	largeTierShares = map[model.RiskProfile]decimal.Decimal{
		model.RiskLow:    decimal.NewFromInt(1),
		model.RiskMedium: decimal.NewFromFloat(0.75),
		model.RiskHigh:   decimal.NewFromFloat(0.50),
	}
	smallTierShares = map[model.RiskProfile]decimal.Decimal{
		model.RiskLow:    decimal.NewFromFloat(0.50),
		model.RiskMedium: decimal.NewFromFloat(0.25),
		model.RiskHigh:   decimal.Zero,
	}
)

// premiumRates maps a risk profile to its premium share of coverage.
var premiumRates = map[model.RiskProfile]decimal.Decimal{
	model.RiskLow:    decimal.NewFromFloat(0.05),
	model.RiskMedium: decimal.NewFromFloat(0.10),
	model.RiskHigh:   decimal.NewFromFloat(0.15),
}

// Terms are the contract terms of a reinsurance agreement. Terms values
// are treated as immutable; UpdateTerms returns an adjusted copy.
type Terms struct {
	ContractLength decimal.Decimal `json:"contract_length"` // years
	Exclusions     []string        `json:"exclusions"`
}

// clone deep-copies the terms so adjustments never alias the input.
func (t Terms) clone() Terms {
	return Terms{
		ContractLength: t.ContractLength,
		Exclusions:     slices.Clone(t.Exclusions),
	}
}

// Engine negotiates reinsurance amounts against a configured size
// threshold.
type Engine struct {
	sizeThreshold int64
}

// NewEngine creates a reinsurance engine. A non-positive threshold falls
// back to DefaultSizeThreshold.
func NewEngine(sizeThreshold int64) *Engine {
	if sizeThreshold <= 0 {
		sizeThreshold = DefaultSizeThreshold
	}
	return &Engine{sizeThreshold: sizeThreshold}
}

// CustomizedAmount computes the reinsurance amount offered to a fund.
//
// The base amount is the requested coverage scaled by a (size tier, risk
// profile) share: funds above the size threshold get 100%/75%/50% for
// low/medium/high profiles, funds at or below it get 50%/25%/0%. The
// amount is then scaled ×1.10 when the contract runs longer than five
// years with no exclusions, and ×1.05 when exactly one of those holds.
func (e *Engine) CustomizedAmount(coverage decimal.Decimal, size int64, profile model.RiskProfile, terms Terms) (decimal.Decimal, error) {
	shares := smallTierShares
	if size > e.sizeThreshold {
		shares = largeTierShares
	}
	share, ok := shares[profile]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownRiskProfile, profile)
	}

	amount := coverage.Mul(share)

	longContract := terms.ContractLength.GreaterThan(decimal.NewFromInt(5))
	noExclusions := len(terms.Exclusions) == 0
	switch {
	case longContract && noExclusions:
		amount = amount.Mul(decimal.NewFromFloat(1.10))
	case longContract || noExclusions:
		amount = amount.Mul(decimal.NewFromFloat(1.05))
	}

	return amount, nil
}

// Premium returns the reinsurance premium for a coverage amount: 5%, 10%,
// or 15% of coverage for low, medium, and high risk profiles.
func Premium(profile model.RiskProfile, coverage decimal.Decimal) (decimal.Decimal, error) {
	rate, ok := premiumRates[profile]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownRiskProfile, profile)
	}
	return coverage.Mul(rate), nil
}

// UpdateTerms returns terms adjusted for the current rate environment:
// the contract length shrinks 10% when the interest rate exceeds 3 and
// grows 10% when it drops below 1; the "inflation" exclusion is added
// when the inflation rate exceeds 3 and removed when it drops below 1.
// The input terms are left untouched.
func UpdateTerms(interestRate, inflationRate decimal.Decimal, terms Terms) Terms {
	updated := terms.clone()

	three := decimal.NewFromInt(3)
	one := decimal.NewFromInt(1)

	if interestRate.GreaterThan(three) {
		updated.ContractLength = updated.ContractLength.Mul(decimal.NewFromFloat(0.9))
	} else if interestRate.LessThan(one) {
		updated.ContractLength = updated.ContractLength.Mul(decimal.NewFromFloat(1.1))
	}

	if inflationRate.GreaterThan(three) {
		if !slices.Contains(updated.Exclusions, ExclusionInflation) {
			updated.Exclusions = append(updated.Exclusions, ExclusionInflation)
		}
	} else if inflationRate.LessThan(one) {
		updated.Exclusions = slices.DeleteFunc(updated.Exclusions, func(s string) bool {
			return s == ExclusionInflation
		})
	}

	return updated
}
