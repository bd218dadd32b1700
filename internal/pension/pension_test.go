package pension

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/asset"
	"github.com/solvx/solvency-engine/internal/model"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func newTestIORP() *model.IORP {
	maturity := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &model.IORP{
		ID:   "iorp-1",
		Name: "ABC Pension Plan",
		Assets: []asset.Asset{
			asset.NewStock("AAPL", d(100), d(10), d(0.005), d(1)),
			asset.NewBond("US Treasury", d(50), d(2), d(0.04), maturity),
			asset.NewGeneric("Commercial Property", d(250)),
		},
		Positions: []asset.Position{
			{Asset: asset.NewStock("AAPL", d(100), d(10), d(0.005), d(1)), Quantity: d(50)},
			{Asset: asset.NewGeneric("Commercial Property", d(250)), Quantity: d(2)},
		},
		SolvencyRatio:        d(0.8),
		AssetDiversification: d(0.7),
		IndustryRisk:         d(0.9),
		TotalAssets:          d(10_000_000),
		TotalLiabilities:     d(5_000_000),
		NumEmployees:         1000,
		Location:             "Europe",
		Sector:               "finance",
		HedgeRatio:           d(0.1),
	}
}

// --- Valuation tests ---

func TestNAV_SumsQuotedPrices(t *testing.T) {
	iorp := newTestIORP()
	// 100 + 50 + 250 — quantities and notionals are not applied to NAV.
	if nav := NAV(iorp); !nav.Equal(d(400)) {
		t.Errorf("expected NAV 400, got %s", nav)
	}
}

func TestMarketValue_AppliesKindScaling(t *testing.T) {
	iorp := newTestIORP()
	// stock 100×10 + bond 50×2 + generic 250 = 1350
	if mv := MarketValue(iorp); !mv.Equal(d(1350)) {
		t.Errorf("expected market value 1350, got %s", mv)
	}
}

func TestNetDelta_OnlyStockPositionsContribute(t *testing.T) {
	iorp := newTestIORP()
	// stock position: 50 × delta 1 = 50; generic position contributes 0.
	if nd := NetDelta(iorp); !nd.Equal(d(50)) {
		t.Errorf("expected net delta 50, got %s", nd)
	}
}

// --- Risk profile tests ---

func TestRiskProfile_Buckets(t *testing.T) {
	tests := []struct {
		name                          string
		solvency, diversity, industry float64
		want                          model.RiskProfile
	}{
		{"low", 0.8, 0.7, 0.5, model.RiskLow},       // 0.28
		{"medium", 0.8, 0.9, 0.9, model.RiskMedium}, // 0.648
		{"high", 1.0, 0.9, 0.9, model.RiskHigh},     // 0.81
		{"boundary 0.5 is medium", 1.0, 1.0, 0.5, model.RiskMedium},
		{"boundary 0.75 is high", 1.0, 1.0, 0.75, model.RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iorp := newTestIORP()
			iorp.SolvencyRatio = d(tt.solvency)
			iorp.AssetDiversification = d(tt.diversity)
			iorp.IndustryRisk = d(tt.industry)
			if got := RiskProfile(iorp); got != tt.want {
				t.Errorf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestCoverageRiskProfile(t *testing.T) {
	tests := []struct {
		name      string
		employees []string
		locations []string
		industry  string
		want      model.RiskProfile
	}{
		{"no risk factors", []string{"office workers"}, []string{"inland plains"}, "retail", model.RiskLow},
		{"one factor is medium", []string{"construction workers"}, nil, "retail", model.RiskMedium},
		{"three factors is high", []string{"oil rig workers"}, []string{"hurricane prone areas"}, "mining", model.RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverageRiskProfile(tt.employees, tt.locations, tt.industry)
			if got != tt.want {
				t.Errorf("got %s want %s", got, tt.want)
			}
		})
	}
}

// --- Solvency ratio tests ---

func TestSolvencyRatio(t *testing.T) {
	ratio, err := SolvencyRatio(d(100_000_000), d(80_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ratio.Equal(d(1.25)) {
		t.Errorf("expected 1.25, got %s", ratio)
	}
	if MeetsIORPII(ratio) {
		t.Error("ratio 1.25 should not meet the IORP II minimum of 1.5")
	}
	if !MeetsIORPII(d(1.5)) {
		t.Error("ratio 1.5 should meet the IORP II minimum")
	}
}

func TestSolvencyRatio_ZeroProvisions(t *testing.T) {
	_, err := SolvencyRatio(d(100), d(0))
	if !errors.Is(err, ErrInvalidProvisions) {
		t.Errorf("expected ErrInvalidProvisions, got %v", err)
	}
}

// --- Mitigation tests ---

func TestMitigate_StopLossBelowThreshold(t *testing.T) {
	iorp := newTestIORP() // market value 1350

	report, err := Mitigate(iorp, StrategyStopLoss, d(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Action != ActionSell {
		t.Errorf("expected sell action below threshold, got %s", report.Action)
	}
	if !report.MarketValue.Equal(d(1350)) {
		t.Errorf("expected market value 1350, got %s", report.MarketValue)
	}
}

func TestMitigate_StopLossAboveThreshold(t *testing.T) {
	iorp := newTestIORP()

	report, err := Mitigate(iorp, StrategyStopLoss, d(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Action != ActionNone {
		t.Errorf("expected no action above threshold, got %s", report.Action)
	}
}

func TestMitigate_StopLossDoesNotMutatePositions(t *testing.T) {
	iorp := newTestIORP()
	before := len(iorp.Positions)

	if _, err := Mitigate(iorp, StrategyStopLoss, d(2000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(iorp.Positions) != before {
		t.Errorf("mitigation must not mutate positions: %d → %d", before, len(iorp.Positions))
	}
}

func TestMitigate_HedgingPositiveDelta(t *testing.T) {
	iorp := newTestIORP() // net delta +50, market value 1350, hedge ratio 0.1

	report, err := Mitigate(iorp, StrategyHedging, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Action != ActionSellOptions {
		t.Errorf("positive delta should sell options, got %s", report.Action)
	}
	// min(|50|×0.1, 1350×0.1) = 5
	if !report.Amount.Equal(d(5)) {
		t.Errorf("expected option investment 5, got %s", report.Amount)
	}
}

func TestMitigate_HedgingNegativeDelta(t *testing.T) {
	iorp := newTestIORP()
	iorp.Positions = []asset.Position{
		{Asset: asset.NewStock("SHORT", d(100), d(10), decimal.Zero, d(-1)), Quantity: d(30)},
	}

	report, err := Mitigate(iorp, StrategyHedging, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Action != ActionBuyOptions {
		t.Errorf("negative delta should buy options, got %s", report.Action)
	}
	if !report.NetDelta.Equal(d(-30)) {
		t.Errorf("expected net delta -30, got %s", report.NetDelta)
	}
}

func TestMitigate_HedgingCapsAtMarketValueBound(t *testing.T) {
	iorp := newTestIORP()
	// Huge delta so |netΔ|×hedgeRatio exceeds marketValue×hedgeRatio.
	iorp.Positions = []asset.Position{
		{Asset: asset.NewStock("BIG", d(100), d(10), decimal.Zero, d(1000)), Quantity: d(1000)},
	}

	report, err := Mitigate(iorp, StrategyHedging, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Bounded by market value 1350 × 0.1 = 135.
	if !report.Amount.Equal(d(135)) {
		t.Errorf("expected investment capped at 135, got %s", report.Amount)
	}
}

func TestMitigate_HedgingZeroDelta(t *testing.T) {
	iorp := newTestIORP()
	iorp.Positions = nil

	report, err := Mitigate(iorp, StrategyHedging, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Action != ActionNone {
		t.Errorf("zero delta should require no action, got %s", report.Action)
	}
}

func TestMitigate_UnknownStrategy(t *testing.T) {
	_, err := Mitigate(newTestIORP(), "diversify", decimal.Zero)
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}
