package service

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func amounts(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = dec(v)
	}
	return out
}

// workedExample is the documented 14-installment half-yearly chit won at
// installment 5 with a 100,000 bid.
func workedExample() domain.ChitFundInput {
	return domain.ChitFundInput{
		TotalInstallments:        14,
		CurrentInstallmentNumber: 5,
		FullChitValue:            dec(700000),
		ChitFrequencyPerYear:     domain.HalfYearly,
		PreviousInstallments:     amounts(42000, 40000, 40000, 43000),
		BidAmount:                dec(100000),
	}
}

func mustConfig(t *testing.T, in domain.ChitFundInput) domain.ChitFundConfig {
	t.Helper()
	cfg, err := domain.NewChitFundConfig(in)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
