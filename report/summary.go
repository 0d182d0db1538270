package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

// Summary renders one analysis as a short human-readable block.
func Summary(r domain.ChitFundAnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Winning installment %d of %d (%d per year)\n",
		r.CurrentInstallmentNumber, r.TotalInstallments, r.FrequencyPerYear)
	fmt.Fprintf(&b, "  Bid amount:            %s\n", FormatINR(r.BidAmount))
	fmt.Fprintf(&b, "  Prize received:        %s\n", FormatINR(r.PrizeAmount))
	fmt.Fprintf(&b, "  Winner installment:    %s\n", FormatINR(r.WinnerInstallmentAmount))
	fmt.Fprintf(&b, "  Total paid:            %s\n", FormatINR(r.TotalPaid))
	fmt.Fprintf(&b, "  Net interest cost:     %s\n", FormatINR(r.NetInterestCost))
	fmt.Fprintf(&b, "  Effective interest:    %s\n", FormatPercent(r.EffectiveInterestRate))
	fmt.Fprintf(&b, "  Period IRR:            %s\n", FormatRate(r.PeriodIRR))
	fmt.Fprintf(&b, "  Annual IRR:            %s\n", FormatRate(r.AnnualIRR))
	if err := r.IRRErr(); err != nil {
		fmt.Fprintf(&b, "  Note:                  %v\n", err)
	}
	return b.String()
}

// SweepSummary renders the aggregate view of a sweep.
func SweepSummary(s domain.SweepSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenarios: %d total, %d evaluated, %d failed, %d with undefined IRR\n",
		s.Total, s.Evaluated, s.Failed, s.Undefined)
	if s.Evaluated > 0 {
		fmt.Fprintf(&b, "Bids:   %s to %s\n", FormatINR(s.MinBid), FormatINR(s.MaxBid))
		fmt.Fprintf(&b, "Prizes: %s to %s\n", FormatINR(s.MinPrize), FormatINR(s.MaxPrize))
	}
	if s.IRR != nil {
		fmt.Fprintf(&b, "Annual IRR: min %s, max %s, mean %s, median %s\n",
			pct(s.IRR.Min), pct(s.IRR.Max), pct(s.IRR.Mean), pct(s.IRR.Median))
	}
	if s.Best != nil {
		fmt.Fprintf(&b, "Cheapest bid: %s at %s annual\n", FormatINR(s.Best.BidAmount), FormatRate(s.Best.AnnualIRR))
	}
	if s.Worst != nil {
		fmt.Fprintf(&b, "Costliest bid: %s at %s annual\n", FormatINR(s.Worst.BidAmount), FormatRate(s.Worst.AnnualIRR))
	}
	return b.String()
}

// ComparisonSummary renders a three-way comparison and names the winner.
func ComparisonSummary(c domain.ComparisonResult) string {
	var b strings.Builder
	for _, s := range c.Scenarios {
		fmt.Fprintf(&b, "%s\n", s.Name)
		fmt.Fprintf(&b, "  Final value:    %s\n", FormatINR(s.FinalValue))
		fmt.Fprintf(&b, "  Total invested: %s\n", FormatINR(s.TotalInvested))
		fmt.Fprintf(&b, "  Net gain:       %s\n", FormatINR(s.NetGain))
		fmt.Fprintf(&b, "  Annual IRR:     %s\n", FormatRate(s.AnnualIRR))
	}
	fmt.Fprintf(&b, "Best: %s, ahead by %s\n", c.BestScenario, FormatINR(c.Advantage))
	return b.String()
}

func pct(v float64) string {
	return FormatPercent(decimal.NewFromFloat(v))
}
