package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a periodic or annual rate of return. When Defined is false no real
// positive IRR exists for the cashflows; it encodes as JSON null.
type Rate struct {
	Value   float64
	Defined bool
}

func DefinedRate(v float64) Rate { return Rate{Value: v, Defined: true} }

// Float returns the value and whether it is defined.
func (r Rate) Float() (float64, bool) { return r.Value, r.Defined }

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Rate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = DefinedRate(v)
	return nil
}

// ChitFundAnalysisResult is an immutable snapshot of one (config, bid) analysis.
type ChitFundAnalysisResult struct {
	BidAmount                decimal.Decimal   `json:"bid_amount"`
	PrizeAmount              decimal.Decimal   `json:"prize_amount"`
	WinnerInstallmentAmount  decimal.Decimal   `json:"winner_installment_amount"`
	TotalPaid                decimal.Decimal   `json:"total_paid"`
	NetInterestCost          decimal.Decimal   `json:"net_interest_cost"`
	EffectiveInterestRate    decimal.Decimal   `json:"effective_interest_rate"`
	Cashflows                []decimal.Decimal `json:"cashflows"`
	PeriodIRR                Rate              `json:"period_irr"`
	AnnualIRR                Rate              `json:"annual_irr"`
	UndefinedReason          string            `json:"undefined_reason,omitempty"`
	FrequencyPerYear         int               `json:"frequency_per_year"`
	TotalInstallments        int               `json:"total_installments"`
	CurrentInstallmentNumber int               `json:"current_installment_number"`
}

// IRRErr returns nil when the annual IRR is defined, otherwise an error
// wrapping ErrUndefinedRate with the solver's reason.
func (r ChitFundAnalysisResult) IRRErr() error {
	if r.AnnualIRR.Defined {
		return nil
	}
	if r.UndefinedReason == "" {
		return ErrUndefinedRate
	}
	return fmt.Errorf("%w: %s", ErrUndefinedRate, r.UndefinedReason)
}

// ScenarioOutcome is one entry of a sweep: either a result or a *ScenarioError.
type ScenarioOutcome struct {
	Index  int
	Bid    decimal.Decimal
	Result *ChitFundAnalysisResult
	Err    error
}

func (o ScenarioOutcome) OK() bool { return o.Err == nil && o.Result != nil }

func (o ScenarioOutcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Index  int                     `json:"index"`
		Bid    decimal.Decimal         `json:"bid_amount"`
		Result *ChitFundAnalysisResult `json:"result,omitempty"`
		Error  string                  `json:"error,omitempty"`
	}{Index: o.Index, Bid: o.Bid, Result: o.Result}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// BidSpec selects the bids of a sweep. Exactly one form must be used:
// an explicit list, a stepped range, or an evenly spaced count.
type BidSpec struct {
	Amounts []decimal.Decimal `json:"amounts,omitempty"`
	MinBid  decimal.Decimal   `json:"min_bid"`
	MaxBid  decimal.Decimal   `json:"max_bid"`
	Step    decimal.Decimal   `json:"step"`
	Count   int               `json:"count,omitempty"`
}

// ObjectiveKind names what FindOptimal looks for.
type ObjectiveKind string

const (
	MinimizeAnnualIRR ObjectiveKind = "minimize_annual_irr"
	TargetAnnualIRR   ObjectiveKind = "target_annual_irr"
)

type Objective struct {
	Kind      ObjectiveKind `json:"kind"`
	Target    float64       `json:"target,omitempty"`
	Tolerance float64       `json:"tolerance,omitempty"`
}

// SweepSummary aggregates a sweep. Scenarios with undefined IRR count towards
// Evaluated but never become Best or Worst.
type SweepSummary struct {
	Total     int                     `json:"total"`
	Evaluated int                     `json:"evaluated"`
	Failed    int                     `json:"failed"`
	Undefined int                     `json:"undefined"`
	Best      *ChitFundAnalysisResult `json:"best,omitempty"`
	Worst     *ChitFundAnalysisResult `json:"worst,omitempty"`
	IRR       *IRRStats               `json:"irr_stats,omitempty"`
	MinBid    decimal.Decimal         `json:"min_bid"`
	MaxBid    decimal.Decimal         `json:"max_bid"`
	MinPrize  decimal.Decimal         `json:"min_prize"`
	MaxPrize  decimal.Decimal         `json:"max_prize"`
}

type IRRStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}
