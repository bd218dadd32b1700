package reinsurance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/model"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// plainTerms keeps the base amount free of term bonuses: short contract,
// one exclusion.
func plainTerms() Terms {
	return Terms{ContractLength: d(3), Exclusions: []string{"natural disasters"}}
}

// --- Tier table tests ---

func TestCustomizedAmount_TierTable(t *testing.T) {
	e := NewEngine(100_000)
	coverage := d(500_000)

	tests := []struct {
		name    string
		size    int64
		profile model.RiskProfile
		want    float64
	}{
		{"large low", 200_000, model.RiskLow, 500_000},
		{"large medium", 200_000, model.RiskMedium, 375_000},
		{"large high", 200_000, model.RiskHigh, 250_000},
		{"small low", 100_000, model.RiskLow, 250_000},
		{"small medium", 50_000, model.RiskMedium, 125_000},
		{"small high gets nothing", 50_000, model.RiskHigh, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := e.CustomizedAmount(coverage, tt.size, tt.profile, plainTerms())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !amount.Equal(d(tt.want)) {
				t.Errorf("got %s want %v", amount, tt.want)
			}
		})
	}
}

func TestCustomizedAmount_UnknownProfile(t *testing.T) {
	e := NewEngine(0)
	_, err := e.CustomizedAmount(d(1000), 200_000, "extreme", plainTerms())
	if !errors.Is(err, ErrUnknownRiskProfile) {
		t.Errorf("expected ErrUnknownRiskProfile, got %v", err)
	}
}

// --- Term bonus tests ---

func TestCustomizedAmount_TermBonuses(t *testing.T) {
	e := NewEngine(100_000)
	coverage := d(100_000)

	tests := []struct {
		name  string
		terms Terms
		want  float64
	}{
		{
			"long contract and no exclusions",
			Terms{ContractLength: d(10)},
			110_000,
		},
		{
			"long contract with exclusions",
			Terms{ContractLength: d(10), Exclusions: []string{"natural disasters"}},
			105_000,
		},
		{
			"short contract and no exclusions",
			Terms{ContractLength: d(3)},
			105_000,
		},
		{
			"short contract with exclusions",
			Terms{ContractLength: d(3), Exclusions: []string{"natural disasters"}},
			100_000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Large fund, low profile: base share is the full coverage.
			amount, err := e.CustomizedAmount(coverage, 200_000, model.RiskLow, tt.terms)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !amount.Equal(d(tt.want)) {
				t.Errorf("got %s want %v", amount, tt.want)
			}
		})
	}
}

// --- Premium tests ---

func TestPremium_Rates(t *testing.T) {
	coverage := d(1_000_000)

	tests := []struct {
		profile model.RiskProfile
		want    float64
	}{
		{model.RiskLow, 50_000},
		{model.RiskMedium, 100_000},
		{model.RiskHigh, 150_000},
	}
	for _, tt := range tests {
		premium, err := Premium(tt.profile, coverage)
		if err != nil {
			t.Fatalf("profile %s: unexpected error: %v", tt.profile, err)
		}
		if !premium.Equal(d(tt.want)) {
			t.Errorf("profile %s: got %s want %v", tt.profile, premium, tt.want)
		}
	}
}

func TestPremium_UnknownProfile(t *testing.T) {
	_, err := Premium("extreme", d(1000))
	if !errors.Is(err, ErrUnknownRiskProfile) {
		t.Errorf("expected ErrUnknownRiskProfile, got %v", err)
	}
}

// --- Term update tests ---

func TestUpdateTerms_HighInterestShortensContract(t *testing.T) {
	terms := Terms{ContractLength: d(10)}
	updated := UpdateTerms(d(3.5), d(2), terms)
	if !updated.ContractLength.Equal(d(9)) {
		t.Errorf("expected contract length 9, got %s", updated.ContractLength)
	}
}

func TestUpdateTerms_LowInterestLengthensContract(t *testing.T) {
	terms := Terms{ContractLength: d(10)}
	updated := UpdateTerms(d(0.5), d(2), terms)
	if !updated.ContractLength.Equal(d(11)) {
		t.Errorf("expected contract length 11, got %s", updated.ContractLength)
	}
}

func TestUpdateTerms_ModerateRatesLeaveLengthAlone(t *testing.T) {
	terms := Terms{ContractLength: d(10)}
	updated := UpdateTerms(d(2), d(2), terms)
	if !updated.ContractLength.Equal(d(10)) {
		t.Errorf("expected contract length unchanged, got %s", updated.ContractLength)
	}
}

func TestUpdateTerms_HighInflationAddsExclusion(t *testing.T) {
	terms := Terms{ContractLength: d(10), Exclusions: []string{"natural disasters"}}
	updated := UpdateTerms(d(2), d(4), terms)

	want := []string{"natural disasters", ExclusionInflation}
	if len(updated.Exclusions) != 2 || updated.Exclusions[1] != ExclusionInflation {
		t.Errorf("expected exclusions %v, got %v", want, updated.Exclusions)
	}

	// Re-applying does not duplicate the exclusion.
	again := UpdateTerms(d(2), d(4), updated)
	if len(again.Exclusions) != 2 {
		t.Errorf("inflation exclusion duplicated: %v", again.Exclusions)
	}
}

func TestUpdateTerms_LowInflationRemovesExclusion(t *testing.T) {
	terms := Terms{ContractLength: d(10), Exclusions: []string{ExclusionInflation, "natural disasters"}}
	updated := UpdateTerms(d(2), d(0.5), terms)

	if len(updated.Exclusions) != 1 || updated.Exclusions[0] != "natural disasters" {
		t.Errorf("expected only natural disasters exclusion, got %v", updated.Exclusions)
	}
}

func TestUpdateTerms_InputUntouched(t *testing.T) {
	terms := Terms{ContractLength: d(10), Exclusions: []string{"natural disasters"}}

	_ = UpdateTerms(d(3.5), d(4), terms)

	if !terms.ContractLength.Equal(d(10)) {
		t.Errorf("input contract length mutated: %s", terms.ContractLength)
	}
	if len(terms.Exclusions) != 1 || terms.Exclusions[0] != "natural disasters" {
		t.Errorf("input exclusions mutated: %v", terms.Exclusions)
	}
}
