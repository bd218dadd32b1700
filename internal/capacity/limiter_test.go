package capacity

import (
	"testing"

	"github.com/shopspring/decimal"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestCheck_WithinLimits(t *testing.T) {
	l := NewLimiter(d(1000), d(5000))

	err := l.Check(d(500), d(200), "finance", map[string]decimal.Decimal{"finance": d(3000)})
	if err != nil {
		t.Errorf("grant within limits should be accepted, got %v", err)
	}
}

func TestCheck_FundLimit(t *testing.T) {
	l := NewLimiter(d(1000), d(5000))

	err := l.Check(d(900), d(200), "finance", nil)
	if err != ErrFundLimitExceeded {
		t.Errorf("expected ErrFundLimitExceeded, got %v", err)
	}
}

func TestCheck_FundLimitBoundary(t *testing.T) {
	l := NewLimiter(d(1000), d(5000))

	// Exactly at the limit is allowed.
	if err := l.Check(d(800), d(200), "finance", nil); err != nil {
		t.Errorf("grant exactly at the per-fund limit should be accepted, got %v", err)
	}
}

func TestCheck_SectorLimit(t *testing.T) {
	l := NewLimiter(d(1000), d(5000))

	err := l.Check(d(500), d(0), "finance", map[string]decimal.Decimal{"finance": d(4800)})
	if err != ErrSectorLimitExceeded {
		t.Errorf("expected ErrSectorLimitExceeded, got %v", err)
	}
}

func TestCheck_OtherSectorsDoNotCount(t *testing.T) {
	l := NewLimiter(d(1000), d(5000))

	exposures := map[string]decimal.Decimal{
		"manufacturing": d(4900),
		"finance":       d(100),
	}
	if err := l.Check(d(500), d(0), "finance", exposures); err != nil {
		t.Errorf("exposure in other sectors should not count, got %v", err)
	}
}

func TestCheck_UnknownSectorStartsAtZero(t *testing.T) {
	l := NewLimiter(d(1000), d(5000))

	if err := l.Check(d(1000), d(0), "technology", map[string]decimal.Decimal{}); err != nil {
		t.Errorf("first grant in a sector should be accepted, got %v", err)
	}
}
