package service

import (
	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

// BuildCashflows lays out the participant's signed cashflows, one per cycle.
// Payments are negative; the winning cycle nets the prize against that
// cycle's installment.
func BuildCashflows(cfg domain.ChitFundConfig, prize, winnerInstallment decimal.Decimal) []decimal.Decimal {
	total := cfg.TotalInstallments()
	current := cfg.CurrentInstallmentNumber()

	flows := make([]decimal.Decimal, 0, total)
	for _, paid := range cfg.PreviousInstallments() {
		flows = append(flows, paid.Neg())
	}
	flows = append(flows, prize.Sub(winnerInstallment))
	for cycle := current + 1; cycle <= total; cycle++ {
		flows = append(flows, winnerInstallment.Neg())
	}
	return flows
}

// sumAmounts adds up a slice of decimals.
func sumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
