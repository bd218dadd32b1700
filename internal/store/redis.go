package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, prime or invalidate cache) ---

func (s *CachedStore) SaveSME(ctx context.Context, sme *model.SME) error {
	if err := s.primary.SaveSME(ctx, sme); err != nil {
		return err
	}
	s.cacheJSON(ctx, smeKey(sme.ID), sme)
	return nil
}

func (s *CachedStore) SaveIORP(ctx context.Context, iorp *model.IORP) error {
	if err := s.primary.SaveIORP(ctx, iorp); err != nil {
		return err
	}
	s.cacheJSON(ctx, iorpKey(iorp.ID), iorp)
	return nil
}

func (s *CachedStore) UpdateIORPReinsurance(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := s.primary.UpdateIORPReinsurance(ctx, id, amount); err != nil {
		return err
	}
	// Invalidate cache; next read will re-populate.
	s.rdb.Del(ctx, iorpKey(id))
	return nil
}

func (s *CachedStore) InsertQuote(ctx context.Context, quote *model.QuoteRecord) error {
	if err := s.primary.InsertQuote(ctx, quote); err != nil {
		return err
	}
	// Invalidate quote history for this entity.
	s.rdb.Del(ctx, quotesKey(quote.EntityID))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetSME(ctx context.Context, id string) (*model.SME, error) {
	data, err := s.rdb.Get(ctx, smeKey(id)).Bytes()
	if err == nil {
		var sme model.SME
		if json.Unmarshal(data, &sme) == nil {
			return &sme, nil
		}
	}

	// Cache miss: read from primary.
	sme, err := s.primary.GetSME(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheJSON(ctx, smeKey(id), sme)
	return sme, nil
}

func (s *CachedStore) GetIORP(ctx context.Context, id string) (*model.IORP, error) {
	data, err := s.rdb.Get(ctx, iorpKey(id)).Bytes()
	if err == nil {
		var iorp model.IORP
		if json.Unmarshal(data, &iorp) == nil {
			return &iorp, nil
		}
	}

	iorp, err := s.primary.GetIORP(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheJSON(ctx, iorpKey(id), iorp)
	return iorp, nil
}

func (s *CachedStore) QuotesByEntity(ctx context.Context, entityID string) ([]model.QuoteRecord, error) {
	data, err := s.rdb.Get(ctx, quotesKey(entityID)).Bytes()
	if err == nil {
		var quotes []model.QuoteRecord
		if json.Unmarshal(data, &quotes) == nil {
			return quotes, nil
		}
	}

	quotes, err := s.primary.QuotesByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(quotes); err == nil {
		s.rdb.Set(ctx, quotesKey(entityID), data, s.ttl)
	}
	return quotes, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListSMEs(ctx context.Context) ([]model.SME, error) {
	return s.primary.ListSMEs(ctx)
}

func (s *CachedStore) ReinsuranceExposure(ctx context.Context, entityID string) (decimal.Decimal, error) {
	return s.primary.ReinsuranceExposure(ctx, entityID)
}

func (s *CachedStore) SectorExposures(ctx context.Context) (map[string]decimal.Decimal, error) {
	return s.primary.SectorExposures(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cacheJSON(ctx context.Context, key string, v any) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

func smeKey(id string) string { return fmt.Sprintf("sme:%s", id) }

func iorpKey(id string) string { return fmt.Sprintf("iorp:%s", id) }

func quotesKey(entity string) string { return fmt.Sprintf("quotes:%s", entity) }
