// Package pricing prices SME credit-risk coverage: an additive risk
// profile score, coverage caps, claim probability and severity, and the
// resulting premium. Lookup tables are injected as configuration so tests
// can substitute them.
//
// All monetary values use shopspring/decimal — never float64 for money.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

var (
	// ErrUnknownRating is returned when a credit rating is outside A–D.
	ErrUnknownRating = errors.New("pricing: unknown credit rating")

	// ErrUnknownIndustry is returned when the industry risk-factor table
	// has no entry for the SME's industry. This is a configuration gap,
	// not a property of the SME itself.
	ErrUnknownIndustry = errors.New("pricing: industry missing from risk-factor table")

	// ErrInvalidAnnuity is returned when the annuity inputs make the
	// accumulation factor (1+rate)^term − 1 vanish.
	ErrInvalidAnnuity = errors.New("pricing: (1+rate)^term must differ from 1")
)

// Config holds the fixed lookup tables the pricing formulas consult.
type Config struct {
	// IndustryRiskFactors scales claim severity per industry.
	IndustryRiskFactors map[string]decimal.Decimal

	// CoverageCaps maps a credit rating to its base maximum coverage.
	// Ratings without an entry fall back to DefaultCoverageCap.
	CoverageCaps       map[string]decimal.Decimal
	DefaultCoverageCap decimal.Decimal

	// ClaimProbabilityBases maps a credit rating to its base claim
	// probability. Ratings without an entry fall back to
	// DefaultClaimProbability.
	ClaimProbabilityBases   map[string]decimal.Decimal
	DefaultClaimProbability decimal.Decimal
}

// DefaultConfig returns the standard underwriting tables.
func DefaultConfig() Config {
	return Config{
		IndustryRiskFactors: map[string]decimal.Decimal{
			"manufacturing": decimal.NewFromFloat(1.2),
			"construction":  decimal.NewFromFloat(1.5),
			"retail":        decimal.NewFromFloat(1.0),
			"finance":       decimal.NewFromFloat(0.8),
			"technology":    decimal.NewFromFloat(0.9),
		},
		CoverageCaps: map[string]decimal.Decimal{
			"A": decimal.NewFromInt(1_000_000),
			"B": decimal.NewFromInt(500_000),
		},
		DefaultCoverageCap: decimal.NewFromInt(100_000),
		ClaimProbabilityBases: map[string]decimal.Decimal{
			"A": decimal.NewFromFloat(0.01),
			"B": decimal.NewFromFloat(0.03),
		},
		DefaultClaimProbability: decimal.NewFromFloat(0.05),
	}
}

// ratingScores is the additive risk-profile contribution per credit rating.
var ratingScores = map[string]decimal.Decimal{
	"A": decimal.NewFromFloat(-0.1),
	"B": decimal.NewFromFloat(0.1),
	"C": decimal.NewFromFloat(0.2),
	"D": decimal.NewFromFloat(0.3),
}

// scoreBrackets ranks credit-score brackets; only the first match applies.
var scoreBrackets = []struct {
	above int
	score decimal.Decimal
}{
	{800, decimal.NewFromFloat(-0.1)},
	{700, decimal.NewFromFloat(0.1)},
	{600, decimal.NewFromFloat(0.2)},
	{500, decimal.NewFromFloat(0.3)},
}

var pointOne = decimal.NewFromFloat(0.1)

// Engine prices SME coverage against its configured tables.
type Engine struct {
	cfg Config
}

// NewEngine creates a pricing engine with the given tables.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// RiskProfile computes the additive risk score for an SME, starting at
// zero: credit rating and credit-score bracket contributions, minus 0.1
// for positive net income (plus 0.1 otherwise), minus 0.1 for positive
// balance-sheet assets (plus 0.1 otherwise). The result may be negative,
// which reduces premium and claim probability multiplicatively.
func (e *Engine) RiskProfile(sme *model.SME) (decimal.Decimal, error) {
	ratingScore, ok := ratingScores[sme.CreditRating]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownRating, sme.CreditRating)
	}

	profile := ratingScore
	for _, bracket := range scoreBrackets {
		if sme.CreditScore > bracket.above {
			profile = profile.Add(bracket.score)
			break
		}
	}

	if sme.Statements.Income.NetIncome.IsPositive() {
		profile = profile.Sub(pointOne)
	} else {
		profile = profile.Add(pointOne)
	}

	if sme.Statements.Balance.Assets.IsPositive() {
		profile = profile.Sub(pointOne)
	} else {
		profile = profile.Add(pointOne)
	}

	return profile, nil
}

// MaximumCoverage returns the coverage cap for an SME: the rating base
// scaled by (1 + riskProfile), then reduced 10% for debt/equity above 1
// and another 10% for a current ratio below 1. The multipliers compound
// in that order.
func (e *Engine) MaximumCoverage(sme *model.SME, riskProfile decimal.Decimal) (decimal.Decimal, error) {
	base, ok := e.cfg.CoverageCaps[sme.CreditRating]
	if !ok {
		base = e.cfg.DefaultCoverageCap
	}

	debtToEquity, err := sme.DebtToEquity()
	if err != nil {
		return decimal.Zero, err
	}
	currentRatio, err := sme.CurrentRatio()
	if err != nil {
		return decimal.Zero, err
	}

	one := decimal.NewFromInt(1)
	coverage := base.Mul(one.Add(riskProfile))
	if debtToEquity.GreaterThan(one) {
		coverage = coverage.Mul(decimal.NewFromFloat(0.9))
	}
	if currentRatio.LessThan(one) {
		coverage = coverage.Mul(decimal.NewFromFloat(0.9))
	}
	return coverage, nil
}

// ProbabilityOfClaim returns the claim probability for an SME: the rating
// base scaled by (1 + riskProfile), increased 10% for debt/equity above 1
// and another 10% for a current ratio below 1.
func (e *Engine) ProbabilityOfClaim(sme *model.SME, riskProfile decimal.Decimal) (decimal.Decimal, error) {
	base, ok := e.cfg.ClaimProbabilityBases[sme.CreditRating]
	if !ok {
		base = e.cfg.DefaultClaimProbability
	}

	debtToEquity, err := sme.DebtToEquity()
	if err != nil {
		return decimal.Zero, err
	}
	currentRatio, err := sme.CurrentRatio()
	if err != nil {
		return decimal.Zero, err
	}

	one := decimal.NewFromInt(1)
	probability := base.Mul(one.Add(riskProfile))
	if debtToEquity.GreaterThan(one) {
		probability = probability.Mul(decimal.NewFromFloat(1.1))
	}
	if currentRatio.LessThan(one) {
		probability = probability.Mul(decimal.NewFromFloat(1.1))
	}
	return probability, nil
}

// SeverityOfClaim returns the potential claim severity: the industry risk
// factor times the SME's financial risk (debt/equity × current ratio).
func (e *Engine) SeverityOfClaim(sme *model.SME) (decimal.Decimal, error) {
	factor, ok := e.cfg.IndustryRiskFactors[sme.Industry]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownIndustry, sme.Industry)
	}

	debtToEquity, err := sme.DebtToEquity()
	if err != nil {
		return decimal.Zero, err
	}
	currentRatio, err := sme.CurrentRatio()
	if err != nil {
		return decimal.Zero, err
	}

	return factor.Mul(debtToEquity.Mul(currentRatio)), nil
}

// Quote bundles every figure produced when pricing an SME.
type Quote struct {
	RiskProfile        decimal.Decimal `json:"risk_profile"`
	MaximumCoverage    decimal.Decimal `json:"maximum_coverage"`
	ProbabilityOfClaim decimal.Decimal `json:"probability_of_claim"`
	SeverityOfClaim    decimal.Decimal `json:"severity_of_claim"`
	Premium            decimal.Decimal `json:"premium"`
}

// Price runs the full pricing pipeline for an SME. The premium is
// maximum coverage × probability of claim × severity of claim.
func (e *Engine) Price(sme *model.SME) (*Quote, error) {
	riskProfile, err := e.RiskProfile(sme)
	if err != nil {
		return nil, err
	}
	coverage, err := e.MaximumCoverage(sme, riskProfile)
	if err != nil {
		return nil, err
	}
	probability, err := e.ProbabilityOfClaim(sme, riskProfile)
	if err != nil {
		return nil, err
	}
	severity, err := e.SeverityOfClaim(sme)
	if err != nil {
		return nil, err
	}

	return &Quote{
		RiskProfile:        riskProfile,
		MaximumCoverage:    coverage,
		ProbabilityOfClaim: probability,
		SeverityOfClaim:    severity,
		Premium:            coverage.Mul(probability).Mul(severity),
	}, nil
}

// AnnuityPremium prices an annuity:
//
//	premium = amount × (1+rate)^term / ((1+rate)^term − 1) / (1+inflation)^term
//
// A zero rate (or zero term) makes the accumulation factor vanish and is
// rejected instead of faulting.
func AnnuityPremium(amount decimal.Decimal, term int, interestRate, inflationRate decimal.Decimal) (decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	termExp := decimal.NewFromInt(int64(term))

	growth := one.Add(interestRate).Pow(termExp)
	accumulation := growth.Sub(one)
	if accumulation.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: rate=%s term=%d", ErrInvalidAnnuity, interestRate, term)
	}

	inflationGrowth := one.Add(inflationRate).Pow(termExp)
	return amount.Mul(growth).Div(accumulation).Div(inflationGrowth), nil
}
