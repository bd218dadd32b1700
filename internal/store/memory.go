package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu     sync.RWMutex
	smes   map[string]*model.SME
	iorps  map[string]*model.IORP
	quotes []model.QuoteRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		smes:  make(map[string]*model.SME),
		iorps: make(map[string]*model.IORP),
	}
}

func (s *MemoryStore) SaveSME(_ context.Context, sme *model.SME) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.smes[sme.ID]; exists {
		return fmt.Errorf("sme %s already exists", sme.ID)
	}

	// Store a copy to avoid external mutation.
	copy := *sme
	s.smes[sme.ID] = &copy
	return nil
}

func (s *MemoryStore) GetSME(_ context.Context, id string) (*model.SME, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sme, ok := s.smes[id]
	if !ok {
		return nil, fmt.Errorf("sme %s not found", id)
	}
	copy := *sme
	return &copy, nil
}

func (s *MemoryStore) ListSMEs(_ context.Context) ([]model.SME, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	smes := make([]model.SME, 0, len(s.smes))
	for _, sme := range s.smes {
		smes = append(smes, *sme)
	}
	return smes, nil
}

func (s *MemoryStore) SaveIORP(_ context.Context, iorp *model.IORP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.iorps[iorp.ID]; exists {
		return fmt.Errorf("iorp %s already exists", iorp.ID)
	}

	copy := *iorp
	s.iorps[iorp.ID] = &copy
	return nil
}

func (s *MemoryStore) GetIORP(_ context.Context, id string) (*model.IORP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iorp, ok := s.iorps[id]
	if !ok {
		return nil, fmt.Errorf("iorp %s not found", id)
	}
	copy := *iorp
	return &copy, nil
}

func (s *MemoryStore) UpdateIORPReinsurance(_ context.Context, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	iorp, ok := s.iorps[id]
	if !ok {
		return fmt.Errorf("iorp %s not found", id)
	}
	iorp.ReinsuranceAmount = amount
	iorp.TermsUpdated = true
	return nil
}

func (s *MemoryStore) InsertQuote(_ context.Context, quote *model.QuoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, *quote)
	return nil
}

func (s *MemoryStore) QuotesByEntity(_ context.Context, entityID string) ([]model.QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.QuoteRecord
	for _, q := range s.quotes {
		if q.EntityID == entityID {
			result = append(result, q)
		}
	}
	return result, nil
}

func (s *MemoryStore) ReinsuranceExposure(_ context.Context, entityID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, q := range s.quotes {
		if q.EntityID == entityID && q.Kind == model.QuoteKindReinsurance {
			total = total.Add(q.Amount)
		}
	}
	return total, nil
}

func (s *MemoryStore) SectorExposures(_ context.Context) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exposures := make(map[string]decimal.Decimal)
	for _, q := range s.quotes {
		if q.Kind == model.QuoteKindReinsurance && q.Sector != "" {
			exposures[q.Sector] = exposures[q.Sector].Add(q.Amount)
		}
	}
	return exposures, nil
}
