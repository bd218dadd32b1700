// Package store defines the persistence interface for the solvency engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Entity profiles ---

	// SaveSME persists a new SME profile.
	SaveSME(ctx context.Context, sme *model.SME) error

	// GetSME retrieves an SME profile by its ID.
	GetSME(ctx context.Context, id string) (*model.SME, error)

	// ListSMEs returns all registered SME profiles.
	ListSMEs(ctx context.Context) ([]model.SME, error)

	// SaveIORP persists a new IORP profile.
	SaveIORP(ctx context.Context, iorp *model.IORP) error

	// GetIORP retrieves an IORP profile by its ID.
	GetIORP(ctx context.Context, id string) (*model.IORP, error)

	// UpdateIORPReinsurance records a granted reinsurance amount on the
	// fund. This is the only mutation applied to a stored profile.
	UpdateIORPReinsurance(ctx context.Context, id string, amount decimal.Decimal) error

	// --- Immutable quote ledger ---

	// InsertQuote appends an immutable quote record.
	InsertQuote(ctx context.Context, quote *model.QuoteRecord) error

	// QuotesByEntity returns all quotes issued for an entity.
	QuotesByEntity(ctx context.Context, entityID string) ([]model.QuoteRecord, error)

	// --- Exposure queries (feed the capacity limiter) ---

	// ReinsuranceExposure returns the total reinsurance amount granted to
	// one entity.
	ReinsuranceExposure(ctx context.Context, entityID string) (decimal.Decimal, error)

	// SectorExposures returns aggregate reinsurance exposure per industry
	// sector.
	SectorExposures(ctx context.Context) (map[string]decimal.Decimal, error)
}
