package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

// NonWinnerInstallment is what each member pays in a cycle where the prize is
// auctioned at discount bid. The divisor counts the remaining cycles including
// the current one.
func NonWinnerInstallment(fullChitValue, bid decimal.Decimal, totalInstallments, currentInstallment int) (decimal.Decimal, error) {
	remaining := totalInstallments - currentInstallment + 1
	if remaining <= 0 {
		return decimal.Zero, &domain.CalculationError{
			Op:     "NonWinnerInstallment",
			Reason: fmt.Sprintf("no remaining cycles (total %d, current %d)", totalInstallments, currentInstallment),
		}
	}
	return fullChitValue.Sub(bid).Div(decimal.NewFromInt(int64(remaining))), nil
}

// DefaultWinnerInstallment is what the prize taker pays per cycle when no
// explicit amount is configured. Winning the last cycle leaves nothing owed.
func DefaultWinnerInstallment(cfg domain.ChitFundConfig) (decimal.Decimal, error) {
	if cfg.CurrentInstallmentNumber() == cfg.TotalInstallments() {
		return decimal.Zero, nil
	}
	return NonWinnerInstallment(cfg.FullChitValue(), cfg.BidAmount(),
		cfg.TotalInstallments(), cfg.CurrentInstallmentNumber())
}

// ImpliedBid recovers the discount from the amount a member paid in a cycle.
// Never negative.
func ImpliedBid(fullChitValue, amountPaid decimal.Decimal, totalInstallments int) decimal.Decimal {
	bid := fullChitValue.Sub(amountPaid.Mul(decimal.NewFromInt(int64(totalInstallments))))
	if bid.IsNegative() {
		return decimal.Zero
	}
	return bid
}

// GenerateBidRange expands a BidSpec into concrete bids. Range forms are
// ascending and inclusive of max when the step lands on it.
func GenerateBidRange(spec domain.BidSpec) ([]decimal.Decimal, error) {
	hasList := len(spec.Amounts) > 0
	hasStep := !spec.Step.IsZero()
	hasCount := spec.Count != 0

	forms := 0
	for _, b := range []bool{hasList, hasStep, hasCount} {
		if b {
			forms++
		}
	}
	if forms != 1 {
		return nil, &domain.ValidationError{Field: "bids", Constraint: "exactly one of amounts, step or count is required"}
	}

	if hasList {
		if len(spec.Amounts) > MaxScenarios {
			return nil, &domain.ValidationError{Field: "bids.amounts",
				Constraint: fmt.Sprintf("at most %d bids per request", MaxScenarios), Value: len(spec.Amounts)}
		}
		out := make([]decimal.Decimal, len(spec.Amounts))
		copy(out, spec.Amounts)
		return out, nil
	}

	if spec.MinBid.IsNegative() {
		return nil, &domain.ValidationError{Field: "bids.min_bid", Constraint: "must not be negative", Value: spec.MinBid}
	}
	if spec.MinBid.GreaterThan(spec.MaxBid) {
		return nil, &domain.ValidationError{Field: "bids.min_bid",
			Constraint: fmt.Sprintf("must not exceed max_bid (%s)", spec.MaxBid), Value: spec.MinBid}
	}

	if hasStep {
		if !spec.Step.IsPositive() {
			return nil, &domain.ValidationError{Field: "bids.step", Constraint: "must be positive", Value: spec.Step}
		}
		steps := spec.MaxBid.Sub(spec.MinBid).Div(spec.Step).Floor()
		if steps.GreaterThanOrEqual(decimal.NewFromInt(MaxScenarios)) {
			return nil, &domain.ValidationError{Field: "bids.step",
				Constraint: fmt.Sprintf("range yields %s bids, at most %d allowed", steps.Add(decimal.NewFromInt(1)), MaxScenarios), Value: spec.Step}
		}
		n := steps.IntPart() + 1
		out := make([]decimal.Decimal, 0, n)
		for i := int64(0); i < n; i++ {
			out = append(out, spec.MinBid.Add(spec.Step.Mul(decimal.NewFromInt(i))))
		}
		return out, nil
	}

	if spec.Count < 1 || spec.Count > MaxScenarios {
		return nil, &domain.ValidationError{Field: "bids.count",
			Constraint: fmt.Sprintf("must be between 1 and %d", MaxScenarios), Value: spec.Count}
	}
	if spec.Count == 1 {
		return []decimal.Decimal{spec.MinBid}, nil
	}
	width := spec.MaxBid.Sub(spec.MinBid)
	last := decimal.NewFromInt(int64(spec.Count - 1))
	out := make([]decimal.Decimal, spec.Count)
	for i := range out {
		out[i] = spec.MinBid.Add(width.Mul(decimal.NewFromInt(int64(i))).Div(last))
	}
	out[spec.Count-1] = spec.MaxBid
	return out, nil
}

var frequencyLabels = map[int]string{
	domain.Yearly:      "Yearly",
	domain.HalfYearly:  "Half-Yearly",
	domain.FourMonthly: "Every 4 Months",
	domain.Quarterly:   "Quarterly",
	domain.BiMonthly:   "Bi-Monthly",
	domain.Monthly:     "Monthly",
}

// FrequencyLabel names a frequency; unnamed ones read "N times per year".
func FrequencyLabel(frequencyPerYear int) string {
	if l, ok := frequencyLabels[frequencyPerYear]; ok {
		return l
	}
	return fmt.Sprintf("%d times per year", frequencyPerYear)
}
