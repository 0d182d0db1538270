package domain

import "github.com/shopspring/decimal"

// ComparisonInput describes a chit and the three strategies to weigh against
// each other: winning early and reinvesting the prize, winning at the last
// installment, and skipping the chit for a SIP of the same installments.
type ComparisonInput struct {
	Name                 string            `json:"name,omitempty"`
	TotalInstallments    int               `json:"total_installments"`
	FullChitValue        decimal.Decimal   `json:"full_chit_value"`
	FrequencyPerYear     int               `json:"chit_frequency_per_year"`
	PreviousInstallments []decimal.Decimal `json:"previous_installments"`

	WinInstallment int             `json:"win_installment"`
	WinBidAmount   decimal.Decimal `json:"win_bid_amount"`
	LumpSumRate    *float64        `json:"lumpsum_rate,omitempty"` // nil uses the default reinvestment rate

	LateMinInstallment decimal.Decimal `json:"late_min_installment"`
	LateMaxInstallment decimal.Decimal `json:"late_max_installment"`

	SIPRate *float64 `json:"sip_rate,omitempty"` // nil uses the default SIP return
}

type ComparisonScenario struct {
	Name          string            `json:"name"`
	Cashflows     []decimal.Decimal `json:"cashflows"`
	AnnualIRR     Rate              `json:"annual_irr"`
	FinalValue    decimal.Decimal   `json:"final_value"`
	TotalInvested decimal.Decimal   `json:"total_invested"`
	NetGain       decimal.Decimal   `json:"net_gain"`
	Details       map[string]any    `json:"details,omitempty"`
}

type ComparisonResult struct {
	Name              string               `json:"name,omitempty"`
	TotalInstallments int                  `json:"total_installments"`
	FullChitValue     decimal.Decimal      `json:"full_chit_value"`
	FrequencyPerYear  int                  `json:"chit_frequency_per_year"`
	Scenarios         []ComparisonScenario `json:"scenarios"`
	BestScenario      string               `json:"best_scenario"`
	Advantage         decimal.Decimal      `json:"advantage"`
}
