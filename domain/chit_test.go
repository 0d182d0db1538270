package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amounts(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func validInput() ChitFundInput {
	return ChitFundInput{
		TotalInstallments:        14,
		CurrentInstallmentNumber: 5,
		FullChitValue:            decimal.NewFromInt(700000),
		ChitFrequencyPerYear:     HalfYearly,
		PreviousInstallments:     amounts(42000, 40000, 40000, 43000),
		BidAmount:                decimal.NewFromInt(100000),
	}
}

func TestNewChitFundConfig_Valid(t *testing.T) {
	cfg, err := NewChitFundConfig(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TotalInstallments() != 14 || cfg.CurrentInstallmentNumber() != 5 {
		t.Errorf("unexpected installments: %d/%d", cfg.CurrentInstallmentNumber(), cfg.TotalInstallments())
	}
	if cfg.RemainingCycles() != 10 {
		t.Errorf("expected 10 remaining cycles, got %d", cfg.RemainingCycles())
	}
	if _, ok := cfg.WinnerInstallmentAmount(); ok {
		t.Errorf("winner installment should be absent")
	}
}

func TestNewChitFundConfig_Invariants(t *testing.T) {
	w := func(v int64) *decimal.Decimal { d := decimal.NewFromInt(v); return &d }

	tests := []struct {
		name   string
		mutate func(*ChitFundInput)
		field  string
	}{
		{"zero total", func(in *ChitFundInput) { in.TotalInstallments = 0 }, "total_installments"},
		{"total too large", func(in *ChitFundInput) { in.TotalInstallments = MaxTotalInstallments + 1 }, "total_installments"},
		{"current zero", func(in *ChitFundInput) { in.CurrentInstallmentNumber = 0 }, "current_installment_number"},
		{"current beyond total", func(in *ChitFundInput) {
			in.CurrentInstallmentNumber = 15
			in.PreviousInstallments = make([]decimal.Decimal, 14)
		}, "current_installment_number"},
		{"previous too short", func(in *ChitFundInput) { in.PreviousInstallments = amounts(42000) }, "previous_installments"},
		{"previous negative", func(in *ChitFundInput) { in.PreviousInstallments = amounts(42000, -1, 40000, 43000) }, "previous_installments[1]"},
		{"full value zero", func(in *ChitFundInput) { in.FullChitValue = decimal.Zero }, "full_chit_value"},
		{"frequency zero", func(in *ChitFundInput) { in.ChitFrequencyPerYear = 0 }, "chit_frequency_per_year"},
		{"frequency 13", func(in *ChitFundInput) { in.ChitFrequencyPerYear = 13 }, "chit_frequency_per_year"},
		{"bid negative", func(in *ChitFundInput) { in.BidAmount = decimal.NewFromInt(-1) }, "bid_amount"},
		{"bid equals full", func(in *ChitFundInput) { in.BidAmount = decimal.NewFromInt(700000) }, "bid_amount"},
		{"winner negative", func(in *ChitFundInput) { in.WinnerInstallmentAmount = w(-5) }, "winner_installment_amount"},
		{"winner drains pool", func(in *ChitFundInput) { in.WinnerInstallmentAmount = w(70001) }, "winner_installment_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := NewChitFundConfig(in)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected errors.Is(err, ErrInvalidConfig)")
			}
		})
	}
}

func TestNewChitFundConfig_WinnerAtPoolLimit(t *testing.T) {
	in := validInput()
	limit := decimal.NewFromInt(70000)
	in.WinnerInstallmentAmount = &limit

	cfg, err := NewChitFundConfig(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := cfg.WinnerInstallmentAmount()
	if !ok || !got.Equal(limit) {
		t.Errorf("expected winner installment %s, got %s (%v)", limit, got, ok)
	}
}

func TestNewChitFundConfig_SingleCycleFund(t *testing.T) {
	in := ChitFundInput{
		TotalInstallments:        1,
		CurrentInstallmentNumber: 1,
		FullChitValue:            decimal.NewFromInt(100000),
		ChitFrequencyPerYear:     Monthly,
	}
	if _, err := NewChitFundConfig(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChitFundConfig_IsolatedFromCaller(t *testing.T) {
	in := validInput()
	cfg, err := NewChitFundConfig(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in.PreviousInstallments[0] = decimal.NewFromInt(1)
	prev := cfg.PreviousInstallments()
	if !prev[0].Equal(decimal.NewFromInt(42000)) {
		t.Errorf("config changed through the input slice: %s", prev[0])
	}

	prev[1] = decimal.NewFromInt(1)
	if !cfg.PreviousInstallments()[1].Equal(decimal.NewFromInt(40000)) {
		t.Errorf("config changed through the getter slice")
	}
}

func TestChitFundConfig_WithBid(t *testing.T) {
	cfg, err := NewChitFundConfig(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, err := cfg.WithBid(decimal.NewFromInt(150000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.BidAmount().Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected new bid, got %s", next.BidAmount())
	}
	if !cfg.BidAmount().Equal(decimal.NewFromInt(100000)) {
		t.Errorf("original config was modified: %s", cfg.BidAmount())
	}

	if _, err := cfg.WithBid(decimal.NewFromInt(800000)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected validation error for bid above full value, got %v", err)
	}
	if _, err := cfg.WithFrequency(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected validation error for frequency 0, got %v", err)
	}
}

func TestRate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Rate `json:"a"`
		B Rate `json:"b"`
	}{A: DefinedRate(0.25)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"a":0.25,"b":null}` {
		t.Errorf("unexpected encoding: %s", b)
	}

	var decoded struct {
		A Rate `json:"a"`
		B Rate `json:"b"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decoded.A.Defined || decoded.A.Value != 0.25 || decoded.B.Defined {
		t.Errorf("unexpected decoding: %+v", decoded)
	}
}

func TestScenarioError_Unwrap(t *testing.T) {
	inner := &ValidationError{Field: "bid_amount", Constraint: "must not be negative"}
	err := error(&ScenarioError{Index: 2, Bid: decimal.NewFromInt(-1), Err: inner})

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected scenario error to wrap the validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "bid_amount" {
		t.Errorf("expected errors.As to find the validation error")
	}
}

func TestChitFundAnalysisResult_IRRErr(t *testing.T) {
	defined := ChitFundAnalysisResult{AnnualIRR: DefinedRate(0.2)}
	if err := defined.IRRErr(); err != nil {
		t.Errorf("expected nil for a defined rate, got %v", err)
	}

	undefined := ChitFundAnalysisResult{UndefinedReason: "cashflows never change sign"}
	err := undefined.IRRErr()
	if !errors.Is(err, ErrUndefinedRate) {
		t.Fatalf("expected ErrUndefinedRate, got %v", err)
	}
	if err.Error() != ErrUndefinedRate.Error()+": cashflows never change sign" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if err := (ChitFundAnalysisResult{}).IRRErr(); err != ErrUndefinedRate {
		t.Errorf("expected bare ErrUndefinedRate without a reason, got %v", err)
	}
}
