// Package capacity enforces reinsurance capacity limits that account for
// sector concentration.
//
// A reinsurer covering twenty pension funds in the same industry sector
// carries correlated risk: one sector downturn hits all of them. This
// package enforces a per-fund ceiling plus an aggregate ceiling across
// funds sharing an industry sector.
package capacity

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrFundLimitExceeded is returned when a grant would push a single
	// fund's reinsurance exposure beyond the per-fund maximum.
	ErrFundLimitExceeded = errors.New("capacity: per-fund reinsurance limit exceeded")

	// ErrSectorLimitExceeded is returned when a grant would push the
	// aggregate exposure across one industry sector beyond the sector
	// maximum.
	ErrSectorLimitExceeded = errors.New("capacity: sector exposure limit exceeded")
)

// Limiter enforces reinsurance capacity limits with sector awareness.
type Limiter struct {
	// MaxPerFund is the maximum reinsurance exposure to any single fund.
	MaxPerFund decimal.Decimal

	// MaxPerSector is the maximum aggregate exposure across all funds in
	// one industry sector.
	MaxPerSector decimal.Decimal
}

// NewLimiter creates a limiter with the given per-fund and per-sector
// exposure limits.
func NewLimiter(maxPerFund, maxPerSector decimal.Decimal) *Limiter {
	return &Limiter{
		MaxPerFund:   maxPerFund,
		MaxPerSector: maxPerSector,
	}
}

// Check validates whether granting `amount` of reinsurance respects the
// capacity limits.
//
// Parameters:
//   - amount: the reinsurance amount about to be granted
//   - fundExposure: the fund's current reinsurance exposure
//   - sector: industry sector of the fund being covered
//   - sectorExposures: map of sector → current aggregate exposure
//
// Returns nil if the grant is within limits, or an error describing the
// violation.
func (l *Limiter) Check(
	amount, fundExposure decimal.Decimal,
	sector string,
	sectorExposures map[string]decimal.Decimal,
) error {
	// 1. Per-fund limit.
	newExposure := fundExposure.Add(amount)
	if newExposure.GreaterThan(l.MaxPerFund) {
		return ErrFundLimitExceeded
	}

	// 2. Sector concentration limit.
	newSectorTotal := sectorExposures[sector].Add(amount)
	if newSectorTotal.GreaterThan(l.MaxPerSector) {
		return ErrSectorLimitExceeded
	}

	return nil
}
