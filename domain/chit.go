package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Installment frequencies per year.
const (
	Yearly      = 1
	HalfYearly  = 2
	FourMonthly = 3
	Quarterly   = 4
	BiMonthly   = 6
	Monthly     = 12
)

const (
	// MaxTotalInstallments bounds the fund's lifetime (50 years of monthly cycles).
	MaxTotalInstallments = 600
	MinFrequencyPerYear  = Yearly
	MaxFrequencyPerYear  = Monthly
)

// ChitFundInput carries the raw, unvalidated fields of one chit analysis request.
type ChitFundInput struct {
	TotalInstallments        int               `json:"total_installments"`
	CurrentInstallmentNumber int               `json:"current_installment_number"`
	FullChitValue            decimal.Decimal   `json:"full_chit_value"`
	ChitFrequencyPerYear     int               `json:"chit_frequency_per_year"`
	PreviousInstallments     []decimal.Decimal `json:"previous_installments"`
	BidAmount                decimal.Decimal   `json:"bid_amount"`
	WinnerInstallmentAmount  *decimal.Decimal  `json:"winner_installment_amount,omitempty"`
}

// ChitFundConfig is a validated chit fund plus one participant's bid scenario.
// It can only be built through NewChitFundConfig and is never mutated afterwards.
type ChitFundConfig struct {
	totalInstallments int
	currentNumber     int
	fullChitValue     decimal.Decimal
	frequencyPerYear  int
	previous          []decimal.Decimal
	bidAmount         decimal.Decimal
	winnerInstallment *decimal.Decimal
}

// NewChitFundConfig checks every invariant and returns the first violation as a
// *ValidationError. No partially built config is ever returned.
func NewChitFundConfig(in ChitFundInput) (ChitFundConfig, error) {
	if in.TotalInstallments <= 0 {
		return ChitFundConfig{}, invalid("total_installments", "must be positive", in.TotalInstallments)
	}
	if in.TotalInstallments > MaxTotalInstallments {
		return ChitFundConfig{}, invalid("total_installments",
			fmt.Sprintf("must not exceed %d", MaxTotalInstallments), in.TotalInstallments)
	}
	if in.CurrentInstallmentNumber < 1 {
		return ChitFundConfig{}, invalid("current_installment_number", "must be at least 1", in.CurrentInstallmentNumber)
	}
	if in.CurrentInstallmentNumber > in.TotalInstallments {
		return ChitFundConfig{}, invalid("current_installment_number",
			fmt.Sprintf("cannot exceed total installments (%d)", in.TotalInstallments), in.CurrentInstallmentNumber)
	}
	if want := in.CurrentInstallmentNumber - 1; len(in.PreviousInstallments) != want {
		return ChitFundConfig{}, invalid("previous_installments",
			fmt.Sprintf("expected %d amounts for current installment %d", want, in.CurrentInstallmentNumber),
			len(in.PreviousInstallments))
	}
	for i, amt := range in.PreviousInstallments {
		if amt.IsNegative() {
			return ChitFundConfig{}, invalid(fmt.Sprintf("previous_installments[%d]", i), "must not be negative", amt)
		}
	}
	if !in.FullChitValue.IsPositive() {
		return ChitFundConfig{}, invalid("full_chit_value", "must be positive", in.FullChitValue)
	}
	if in.ChitFrequencyPerYear < MinFrequencyPerYear || in.ChitFrequencyPerYear > MaxFrequencyPerYear {
		return ChitFundConfig{}, invalid("chit_frequency_per_year",
			fmt.Sprintf("must be between %d and %d", MinFrequencyPerYear, MaxFrequencyPerYear), in.ChitFrequencyPerYear)
	}
	if in.BidAmount.IsNegative() {
		return ChitFundConfig{}, invalid("bid_amount", "must not be negative", in.BidAmount)
	}
	if in.BidAmount.GreaterThanOrEqual(in.FullChitValue) {
		return ChitFundConfig{}, invalid("bid_amount",
			fmt.Sprintf("must be less than full chit value (%s)", in.FullChitValue), in.BidAmount)
	}

	var winner *decimal.Decimal
	if in.WinnerInstallmentAmount != nil {
		w := *in.WinnerInstallmentAmount
		if w.IsNegative() {
			return ChitFundConfig{}, invalid("winner_installment_amount", "must not be negative", w)
		}
		cycles := decimal.NewFromInt(int64(in.TotalInstallments - in.CurrentInstallmentNumber + 1))
		if w.Mul(cycles).GreaterThan(in.FullChitValue) {
			return ChitFundConfig{}, invalid("winner_installment_amount",
				fmt.Sprintf("times %s remaining cycles exceeds full chit value (%s)", cycles, in.FullChitValue), w)
		}
		winner = &w
	}

	return ChitFundConfig{
		totalInstallments: in.TotalInstallments,
		currentNumber:     in.CurrentInstallmentNumber,
		fullChitValue:     in.FullChitValue,
		frequencyPerYear:  in.ChitFrequencyPerYear,
		previous:          cloneAmounts(in.PreviousInstallments),
		bidAmount:         in.BidAmount,
		winnerInstallment: winner,
	}, nil
}

func (c ChitFundConfig) TotalInstallments() int { return c.totalInstallments }

func (c ChitFundConfig) CurrentInstallmentNumber() int { return c.currentNumber }

func (c ChitFundConfig) FullChitValue() decimal.Decimal { return c.fullChitValue }

func (c ChitFundConfig) FrequencyPerYear() int { return c.frequencyPerYear }

func (c ChitFundConfig) BidAmount() decimal.Decimal { return c.bidAmount }

// RemainingCycles counts the cycles the winner pays for, the winning cycle included.
func (c ChitFundConfig) RemainingCycles() int { return c.totalInstallments - c.currentNumber + 1 }

// PreviousInstallments returns a copy of the amounts paid before the winning cycle.
func (c ChitFundConfig) PreviousInstallments() []decimal.Decimal {
	return cloneAmounts(c.previous)
}

// WinnerInstallmentAmount returns the explicit winner installment, if one was supplied.
func (c ChitFundConfig) WinnerInstallmentAmount() (decimal.Decimal, bool) {
	if c.winnerInstallment == nil {
		return decimal.Zero, false
	}
	return *c.winnerInstallment, true
}

// Input returns a copy of the raw fields, suitable for building a variant.
func (c ChitFundConfig) Input() ChitFundInput {
	in := ChitFundInput{
		TotalInstallments:        c.totalInstallments,
		CurrentInstallmentNumber: c.currentNumber,
		FullChitValue:            c.fullChitValue,
		ChitFrequencyPerYear:     c.frequencyPerYear,
		PreviousInstallments:     cloneAmounts(c.previous),
		BidAmount:                c.bidAmount,
	}
	if c.winnerInstallment != nil {
		w := *c.winnerInstallment
		in.WinnerInstallmentAmount = &w
	}
	return in
}

// WithBid builds a new config with bid_amount replaced; all other fields are held.
func (c ChitFundConfig) WithBid(bid decimal.Decimal) (ChitFundConfig, error) {
	in := c.Input()
	in.BidAmount = bid
	return NewChitFundConfig(in)
}

// WithFrequency builds a new config with chit_frequency_per_year replaced.
func (c ChitFundConfig) WithFrequency(frequency int) (ChitFundConfig, error) {
	in := c.Input()
	in.ChitFrequencyPerYear = frequency
	return NewChitFundConfig(in)
}

func cloneAmounts(in []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(in))
	copy(out, in)
	return out
}
