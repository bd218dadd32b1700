// Package model defines the core domain types shared across the solvency
// engine. All monetary values use shopspring/decimal — never float64 for
// money.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/asset"
)

// ErrInvalidInput is returned when a computation would divide by a
// non-positive denominator or was handed an unknown categorical key.
var ErrInvalidInput = errors.New("model: invalid input")

// RiskProfile buckets an entity's riskiness for pricing purposes.
type RiskProfile string

const (
	RiskLow    RiskProfile = "low"
	RiskMedium RiskProfile = "medium"
	RiskHigh   RiskProfile = "high"
)

// ParseRiskProfile validates a risk profile string.
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch RiskProfile(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskProfile(s), nil
	}
	return "", fmt.Errorf("%w: unknown risk profile %q", ErrInvalidInput, s)
}

// IncomeStatement holds the income-statement section of an SME's
// financial statements.
type IncomeStatement struct {
	Revenue   decimal.Decimal `json:"revenue" db:"revenue"`
	Expenses  decimal.Decimal `json:"expenses" db:"expenses"`
	NetIncome decimal.Decimal `json:"net_income" db:"net_income"`
}

// BalanceSheet holds the balance-sheet section of an SME's financial
// statements.
type BalanceSheet struct {
	Assets      decimal.Decimal `json:"assets" db:"bs_assets"`
	Liabilities decimal.Decimal `json:"liabilities" db:"bs_liabilities"`
	Equity      decimal.Decimal `json:"equity" db:"equity"`
}

// FinancialStatements nests the two statement sections underwriters read.
type FinancialStatements struct {
	Income  IncomeStatement `json:"income_statement"`
	Balance BalanceSheet    `json:"balance_sheet"`
}

// SME is the counterparty being underwritten: a small/medium enterprise
// with a credit standing and financial statements.
type SME struct {
	ID           string              `json:"id" db:"id"`
	Name         string              `json:"name" db:"name"`
	CreditRating string              `json:"credit_rating" db:"credit_rating"` // "A".."D"
	CreditScore  int                 `json:"credit_score" db:"credit_score"`
	Industry     string              `json:"industry" db:"industry"`
	Assets       decimal.Decimal     `json:"assets" db:"assets"`
	Liabilities  decimal.Decimal     `json:"liabilities" db:"liabilities"`
	Statements   FinancialStatements `json:"financial_statements"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
}

// DebtToEquity returns total liabilities over balance-sheet equity.
// Zero equity is rejected rather than allowed to fault.
func (s *SME) DebtToEquity() (decimal.Decimal, error) {
	if s.Statements.Balance.Equity.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: balance-sheet equity is zero", ErrInvalidInput)
	}
	return s.Liabilities.Div(s.Statements.Balance.Equity), nil
}

// CurrentRatio returns balance-sheet assets over balance-sheet liabilities.
func (s *SME) CurrentRatio() (decimal.Decimal, error) {
	if s.Statements.Balance.Liabilities.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: balance-sheet liabilities are zero", ErrInvalidInput)
	}
	return s.Statements.Balance.Assets.Div(s.Statements.Balance.Liabilities), nil
}

// IORP is an Institution for Occupational Retirement Provision — the
// pension fund entity being valued and reinsured. ReinsuranceAmount is the
// only field mutated after creation, and only through the store's explicit
// UpdateIORPReinsurance transition.
type IORP struct {
	ID                   string           `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Assets               []asset.Asset    `json:"assets"`
	Positions            []asset.Position `json:"positions"`
	SolvencyRatio        decimal.Decimal  `json:"solvency_ratio" db:"solvency_ratio"`
	AssetDiversification decimal.Decimal  `json:"asset_diversification" db:"asset_diversification"`
	IndustryRisk         decimal.Decimal  `json:"industry_risk" db:"industry_risk"`
	TotalAssets          decimal.Decimal  `json:"total_assets" db:"total_assets"`
	TotalLiabilities     decimal.Decimal  `json:"total_liabilities" db:"total_liabilities"`
	NumEmployees         int64            `json:"num_employees" db:"num_employees"`
	Location             string           `json:"geographical_location" db:"location"`
	Sector               string           `json:"industry_sector" db:"sector"`
	HedgeRatio           decimal.Decimal  `json:"hedge_ratio" db:"hedge_ratio"`
	ReinsuranceAmount    decimal.Decimal  `json:"reinsurance_amount" db:"reinsurance_amount"`
	TermsUpdated         bool             `json:"reinsurance_terms_updated" db:"terms_updated"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
}

// Quote kinds recorded in the immutable quote ledger.
const (
	QuoteKindSMEPremium  = "sme_premium"
	QuoteKindAnnuity     = "annuity"
	QuoteKindReinsurance = "reinsurance"
)

// QuoteRecord is an immutable record of a priced quote. Once created,
// these are never modified or deleted.
type QuoteRecord struct {
	ID          string          `json:"id" db:"id"`
	EntityID    string          `json:"entity_id" db:"entity_id"`
	Kind        string          `json:"kind" db:"kind"`
	Sector      string          `json:"sector" db:"sector"`
	RiskProfile RiskProfile     `json:"risk_profile" db:"risk_profile"`
	Coverage    decimal.Decimal `json:"coverage" db:"coverage"`
	Amount      decimal.Decimal `json:"amount" db:"amount"` // premium or reinsurance amount
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
