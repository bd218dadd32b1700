// Package quote provides the HTTP handlers and business logic for
// registering entity profiles, pricing SME coverage and annuities,
// computing solvency metrics, and negotiating reinsurance.
//
// All monetary values use shopspring/decimal — never float64 for money.
package quote

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/capacity"
	"github.com/solvx/solvency-engine/internal/metrics"
	"github.com/solvx/solvency-engine/internal/model"
	"github.com/solvx/solvency-engine/internal/pension"
	"github.com/solvx/solvency-engine/internal/pricing"
	"github.com/solvx/solvency-engine/internal/reinsurance"
	"github.com/solvx/solvency-engine/internal/solvency"
	"github.com/solvx/solvency-engine/internal/store"
)

// Service handles quoting operations. Uses a mutex to serialize
// reinsurance grants (single-instance). For horizontal scaling, replace
// with distributed locking or database-level optimistic concurrency.
type Service struct {
	store   store.Store
	pricer  *pricing.Engine
	reins   *reinsurance.Engine
	limiter *capacity.Limiter
	mu      sync.Mutex
	wsHub   *WSHub // optional WebSocket hub for real-time broadcasts
}

// NewService creates a new quote service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, pricer *pricing.Engine, reins *reinsurance.Engine, limiter *capacity.Limiter, hub *WSHub) *Service {
	return &Service{
		store:   st,
		pricer:  pricer,
		reins:   reins,
		limiter: limiter,
		wsHub:   hub,
	}
}

// Routes returns the /api/v1 route tree for the service.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/sme", s.RegisterSME)
	r.Get("/sme/{smeID}", s.GetSME)
	r.Post("/sme/{smeID}/quote", s.QuoteSME)

	r.Post("/annuity/quote", s.QuoteAnnuity)

	r.Post("/solvency/metrics", s.SolvencyMetrics)
	r.Post("/solvency/capital", s.CapitalRequirements)
	r.Post("/solvency/stress", s.SolvencyStress)

	r.Post("/iorp", s.RegisterIORP)
	r.Post("/iorp/risk-profile", s.CoverageRisk)
	r.Get("/iorp/{iorpID}", s.GetIORP)
	r.Get("/iorp/{iorpID}/valuation", s.IORPValuation)
	r.Post("/iorp/{iorpID}/mitigation", s.Mitigation)
	r.Post("/iorp/{iorpID}/reinsurance", s.GrantReinsurance)

	r.Post("/reinsurance/terms", s.UpdateReinsuranceTerms)

	r.Get("/quotes/{entityID}", s.ListQuotes)

	return r
}

// --- Request/Response types ---

// SMEQuoteResponse is the JSON body returned from POST /sme/{smeID}/quote.
type SMEQuoteResponse struct {
	QuoteID string         `json:"quote_id"`
	SMEID   string         `json:"sme_id"`
	Quote   *pricing.Quote `json:"quote"`
}

// AnnuityRequest is the JSON body for POST /annuity/quote.
type AnnuityRequest struct {
	EntityID      string          `json:"entity_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Term          int             `json:"term"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	InflationRate decimal.Decimal `json:"inflation_rate"`
}

// SolvencyMetricsRequest is the JSON body for POST /solvency/metrics.
type SolvencyMetricsRequest struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	OwnFunds         decimal.Decimal `json:"own_funds"`
	SCRFactor        decimal.Decimal `json:"scr_factor"`
	MarketRisk       decimal.Decimal `json:"market_risk"`
	CreditRisk       decimal.Decimal `json:"credit_risk"`
	OperationalRisk  decimal.Decimal `json:"operational_risk"`
}

// CapitalRequest is the JSON body for POST /solvency/capital.
type CapitalRequest struct {
	OwnFunds        decimal.Decimal         `json:"own_funds"`
	MarketRisk      decimal.Decimal         `json:"market_risk"`
	OperationalRisk decimal.Decimal         `json:"operational_risk"`
	Stress          *solvency.StressFactors `json:"stress,omitempty"` // defaults applied when nil
}

// StressRequest is the JSON body for POST /solvency/stress.
type StressRequest struct {
	TotalAssets      decimal.Decimal            `json:"total_assets"`
	TotalLiabilities decimal.Decimal            `json:"total_liabilities"`
	Scenarios        map[string]decimal.Decimal `json:"scenarios"` // scenario name to capital requirement
}

// MitigationRequest is the JSON body for POST /iorp/{iorpID}/mitigation.
type MitigationRequest struct {
	Strategy  string          `json:"strategy"`
	Threshold decimal.Decimal `json:"threshold"`
}

// ReinsuranceRequest is the JSON body for POST /iorp/{iorpID}/reinsurance.
type ReinsuranceRequest struct {
	CoverageAmount decimal.Decimal   `json:"coverage_amount"`
	Terms          reinsurance.Terms `json:"terms"`
}

// ReinsuranceResponse is the JSON body returned from a reinsurance grant.
type ReinsuranceResponse struct {
	QuoteID           string            `json:"quote_id"`
	IORPID            string            `json:"iorp_id"`
	RiskProfile       model.RiskProfile `json:"risk_profile"`
	ReinsuranceAmount decimal.Decimal   `json:"reinsurance_amount"`
	Premium           decimal.Decimal   `json:"premium"`
}

// TermsUpdateRequest is the JSON body for POST /reinsurance/terms.
type TermsUpdateRequest struct {
	InterestRate  decimal.Decimal   `json:"interest_rate"`
	InflationRate decimal.Decimal   `json:"inflation_rate"`
	Terms         reinsurance.Terms `json:"terms"`
}

// CoverageRiskRequest is the JSON body for POST /iorp/risk-profile.
type CoverageRiskRequest struct {
	Employees []string `json:"employees"`
	Locations []string `json:"locations"`
	Industry  string   `json:"industry"`
}

// --- Entity registration handlers ---

// RegisterSME handles POST /api/v1/sme
func (s *Service) RegisterSME(w http.ResponseWriter, r *http.Request) {
	var sme model.SME
	if err := json.NewDecoder(r.Body).Decode(&sme); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if sme.Name == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	// Reject unknown ratings up front rather than at quote time.
	if _, err := s.pricer.RiskProfile(&sme); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sme.ID = uuid.New().String()
	sme.CreatedAt = time.Now().UTC()

	if err := s.store.SaveSME(r.Context(), &sme); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	metrics.RegisteredProfiles.WithLabelValues("sme").Inc()

	slog.Info("sme registered",
		"id", sme.ID,
		"name", sme.Name,
		"rating", sme.CreditRating,
		"industry", sme.Industry,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sme)
}

// GetSME handles GET /api/v1/sme/{smeID}
func (s *Service) GetSME(w http.ResponseWriter, r *http.Request) {
	smeID := chi.URLParam(r, "smeID")

	sme, err := s.store.GetSME(r.Context(), smeID)
	if err != nil {
		writeError(w, "sme not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sme)
}

// RegisterIORP handles POST /api/v1/iorp
func (s *Service) RegisterIORP(w http.ResponseWriter, r *http.Request) {
	var iorp model.IORP
	if err := json.NewDecoder(r.Body).Decode(&iorp); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if iorp.Name == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	iorp.ID = uuid.New().String()
	iorp.ReinsuranceAmount = decimal.Zero
	iorp.TermsUpdated = false
	iorp.CreatedAt = time.Now().UTC()

	if err := s.store.SaveIORP(r.Context(), &iorp); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	metrics.RegisteredProfiles.WithLabelValues("iorp").Inc()

	slog.Info("iorp registered",
		"id", iorp.ID,
		"name", iorp.Name,
		"sector", iorp.Sector,
		"employees", iorp.NumEmployees,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(iorp)
}

// GetIORP handles GET /api/v1/iorp/{iorpID}
func (s *Service) GetIORP(w http.ResponseWriter, r *http.Request) {
	iorpID := chi.URLParam(r, "iorpID")

	iorp, err := s.store.GetIORP(r.Context(), iorpID)
	if err != nil {
		writeError(w, "iorp not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(iorp)
}

// --- Pricing handlers ---

// QuoteSME handles POST /api/v1/sme/{smeID}/quote
// Runs the full pricing pipeline and records the quote in the ledger.
func (s *Service) QuoteSME(w http.ResponseWriter, r *http.Request) {
	smeID := chi.URLParam(r, "smeID")
	ctx := r.Context()
	start := time.Now()

	sme, err := s.store.GetSME(ctx, smeID)
	if err != nil {
		writeError(w, "sme not found", http.StatusNotFound)
		return
	}

	q, err := s.pricer.Price(sme)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, pricing.ErrUnknownIndustry) {
			// Configuration gap, not a bad request.
			status = http.StatusInternalServerError
		}
		writeError(w, err.Error(), status)
		return
	}

	record := &model.QuoteRecord{
		ID:        uuid.New().String(),
		EntityID:  sme.ID,
		Kind:      model.QuoteKindSMEPremium,
		Sector:    sme.Industry,
		Coverage:  q.MaximumCoverage,
		Amount:    q.Premium,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertQuote(ctx, record); err != nil {
		writeError(w, "failed to record quote", http.StatusInternalServerError)
		return
	}

	metrics.QuotesTotal.WithLabelValues(model.QuoteKindSMEPremium).Inc()
	metrics.QuoteLatency.WithLabelValues(model.QuoteKindSMEPremium).Observe(time.Since(start).Seconds())

	slog.Info("sme quote issued",
		"quote_id", record.ID,
		"sme", sme.ID,
		"premium", q.Premium.String(),
		"coverage", q.MaximumCoverage.String(),
	)

	s.broadcastQuote(record)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SMEQuoteResponse{
		QuoteID: record.ID,
		SMEID:   sme.ID,
		Quote:   q,
	})
}

// QuoteAnnuity handles POST /api/v1/annuity/quote
func (s *Service) QuoteAnnuity(w http.ResponseWriter, r *http.Request) {
	var req AnnuityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		writeError(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	premium, err := pricing.AnnuityPremium(req.Amount, req.Term, req.InterestRate, req.InflationRate)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]decimal.Decimal{"premium": premium}

	// Record against an entity only when one was named.
	if req.EntityID != "" {
		record := &model.QuoteRecord{
			ID:        uuid.New().String(),
			EntityID:  req.EntityID,
			Kind:      model.QuoteKindAnnuity,
			Coverage:  req.Amount,
			Amount:    premium,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.InsertQuote(r.Context(), record); err != nil {
			writeError(w, "failed to record quote", http.StatusInternalServerError)
			return
		}
		s.broadcastQuote(record)
	}
	metrics.QuotesTotal.WithLabelValues(model.QuoteKindAnnuity).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Solvency handlers ---

// SolvencyMetrics handles POST /api/v1/solvency/metrics
// Pure computation; nothing is persisted.
func (s *Service) SolvencyMetrics(w http.ResponseWriter, r *http.Request) {
	var req SolvencyMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	mcr, scr := solvency.Metrics(req.TotalAssets, req.TotalLiabilities, req.OwnFunds,
		req.SCRFactor, req.MarketRisk, req.CreditRisk, req.OperationalRisk)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]decimal.Decimal{
		"mcr": mcr,
		"scr": scr,
	})
}

// CapitalRequirements handles POST /api/v1/solvency/capital
// Returns SCR, MCR, and the four stress scenarios for an insurer.
func (s *Service) CapitalRequirements(w http.ResponseWriter, r *http.Request) {
	var req CapitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	stress := solvency.DefaultStressFactors()
	if req.Stress != nil {
		stress = *req.Stress
	}

	calc, err := solvency.NewCalculator(req.OwnFunds, req.MarketRisk, req.OperationalRisk, stress)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"scr":         calc.SCR(),
		"mcr":         calc.MCR(),
		"stress_test": calc.StressTestSCR(),
	})
}

// SolvencyStress handles POST /api/v1/solvency/stress
// Returns an SCR factor per stress scenario; every scenario is processed.
func (s *Service) SolvencyStress(w http.ResponseWriter, r *http.Request) {
	var req StressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	factors, err := solvency.SCRUnderStress(req.TotalAssets, req.TotalLiabilities, req.Scenarios)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.StressScenariosTotal.Add(float64(len(factors)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(factors)
}

// --- IORP handlers ---

// IORPValuation handles GET /api/v1/iorp/{iorpID}/valuation
func (s *Service) IORPValuation(w http.ResponseWriter, r *http.Request) {
	iorpID := chi.URLParam(r, "iorpID")

	iorp, err := s.store.GetIORP(r.Context(), iorpID)
	if err != nil {
		writeError(w, "iorp not found", http.StatusNotFound)
		return
	}

	solvencyRatio, err := pension.SolvencyRatio(iorp.TotalAssets, iorp.TotalLiabilities)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"nav":            pension.NAV(iorp),
		"market_value":   pension.MarketValue(iorp),
		"net_delta":      pension.NetDelta(iorp),
		"risk_profile":   pension.RiskProfile(iorp),
		"solvency_ratio": solvencyRatio,
		"meets_iorp_ii":  pension.MeetsIORPII(solvencyRatio),
	})
}

// Mitigation handles POST /api/v1/iorp/{iorpID}/mitigation
func (s *Service) Mitigation(w http.ResponseWriter, r *http.Request) {
	iorpID := chi.URLParam(r, "iorpID")

	var req MitigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	iorp, err := s.store.GetIORP(r.Context(), iorpID)
	if err != nil {
		writeError(w, "iorp not found", http.StatusNotFound)
		return
	}

	report, err := pension.Mitigate(iorp, req.Strategy, req.Threshold)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("risk mitigation evaluated",
		"iorp", iorp.ID,
		"strategy", report.Strategy,
		"action", report.Action,
		"market_value", report.MarketValue.String(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// CoverageRisk handles POST /api/v1/iorp/risk-profile
// Scores a fund's risk profile from what it covers, without a stored
// profile.
func (s *Service) CoverageRisk(w http.ResponseWriter, r *http.Request) {
	var req CoverageRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile := pension.CoverageRiskProfile(req.Employees, req.Locations, req.Industry)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]model.RiskProfile{"risk_profile": profile})
}

// --- Reinsurance handlers ---

// GrantReinsurance handles POST /api/v1/iorp/{iorpID}/reinsurance
// Negotiates a customized reinsurance amount, enforces capacity limits,
// records the quote, and applies the amount to the fund.
func (s *Service) GrantReinsurance(w http.ResponseWriter, r *http.Request) {
	iorpID := chi.URLParam(r, "iorpID")
	ctx := r.Context()
	start := time.Now()

	var req ReinsuranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CoverageAmount.LessThanOrEqual(decimal.Zero) {
		writeError(w, "coverage_amount must be positive", http.StatusBadRequest)
		return
	}

	// Serialize grants so capacity checks see a consistent exposure view.
	s.mu.Lock()
	defer s.mu.Unlock()

	iorp, err := s.store.GetIORP(ctx, iorpID)
	if err != nil {
		writeError(w, "iorp not found", http.StatusNotFound)
		return
	}

	profile := pension.RiskProfile(iorp)

	amount, err := s.reins.CustomizedAmount(req.CoverageAmount, iorp.NumEmployees, profile, req.Terms)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	premium, err := reinsurance.Premium(profile, amount)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// --- Capacity limit check ---
	fundExposure, err := s.store.ReinsuranceExposure(ctx, iorp.ID)
	if err != nil {
		writeError(w, "failed to check capacity limits", http.StatusInternalServerError)
		return
	}
	sectorExposures, err := s.store.SectorExposures(ctx)
	if err != nil {
		writeError(w, "failed to check capacity limits", http.StatusInternalServerError)
		return
	}
	if err := s.limiter.Check(amount, fundExposure, iorp.Sector, sectorExposures); err != nil {
		metrics.CapacityRejections.Inc()
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	// Create immutable quote record.
	record := &model.QuoteRecord{
		ID:          uuid.New().String(),
		EntityID:    iorp.ID,
		Kind:        model.QuoteKindReinsurance,
		Sector:      iorp.Sector,
		RiskProfile: profile,
		Coverage:    req.CoverageAmount,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertQuote(ctx, record); err != nil {
		writeError(w, "failed to record quote", http.StatusInternalServerError)
		return
	}

	// Apply the granted amount to the stored fund profile. This is the
	// only profile mutation after registration.
	if err := s.store.UpdateIORPReinsurance(ctx, iorp.ID, amount); err != nil {
		writeError(w, "failed to update reinsurance amount", http.StatusInternalServerError)
		return
	}

	metrics.QuotesTotal.WithLabelValues(model.QuoteKindReinsurance).Inc()
	metrics.QuoteLatency.WithLabelValues(model.QuoteKindReinsurance).Observe(time.Since(start).Seconds())

	slog.Info("reinsurance granted",
		"quote_id", record.ID,
		"iorp", iorp.ID,
		"risk_profile", string(profile),
		"coverage", req.CoverageAmount.String(),
		"amount", amount.String(),
		"premium", premium.String(),
	)

	s.broadcastQuote(record)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReinsuranceResponse{
		QuoteID:           record.ID,
		IORPID:            iorp.ID,
		RiskProfile:       profile,
		ReinsuranceAmount: amount,
		Premium:           premium,
	})
}

// UpdateReinsuranceTerms handles POST /api/v1/reinsurance/terms
// Pure transition: returns the adjusted terms without storing anything.
func (s *Service) UpdateReinsuranceTerms(w http.ResponseWriter, r *http.Request) {
	var req TermsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated := reinsurance.UpdateTerms(req.InterestRate, req.InflationRate, req.Terms)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// --- Quote history ---

// ListQuotes handles GET /api/v1/quotes/{entityID}
func (s *Service) ListQuotes(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")

	quotes, err := s.store.QuotesByEntity(r.Context(), entityID)
	if err != nil {
		writeError(w, "failed to list quotes", http.StatusInternalServerError)
		return
	}
	if quotes == nil {
		quotes = []model.QuoteRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quotes)
}

// broadcastQuote pushes a quote event to WebSocket subscribers.
func (s *Service) broadcastQuote(record *model.QuoteRecord) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Broadcast(WSMessage{
		Type:        "quote_issued",
		QuoteID:     record.ID,
		EntityID:    record.EntityID,
		Kind:        record.Kind,
		Sector:      record.Sector,
		RiskProfile: string(record.RiskProfile),
		Amount:      record.Amount.String(),
		Coverage:    record.Coverage.String(),
	})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
