package service

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

const (
	ScenarioEarlyWin = "Early Win + Lump Sum"
	ScenarioLateWin  = "Late Win (Last Installment)"
	ScenarioSIP      = "SIP Investment"
)

// ComparativeAnalyzer weighs winning the chit early, winning it last, and
// investing the same installments in a SIP.
type ComparativeAnalyzer struct {
	analyzer *Analyzer
	solver   *IRRSolver
}

func NewComparativeAnalyzer(analyzer *Analyzer, solver *IRRSolver) *ComparativeAnalyzer {
	if solver == nil {
		solver = NewIRRSolver(DefaultSolverConfig())
	}
	if analyzer == nil {
		analyzer = NewAnalyzer(solver)
	}
	return &ComparativeAnalyzer{analyzer: analyzer, solver: solver}
}

// Compare runs all three strategies and names the one with the highest final value.
func (c *ComparativeAnalyzer) Compare(in domain.ComparisonInput) (domain.ComparisonResult, error) {
	if err := validateComparison(in); err != nil {
		return domain.ComparisonResult{}, err
	}
	in = withDefaultRates(in)

	early, err := c.earlyWin(in)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("early win scenario: %w", err)
	}
	late, err := c.lateWin(in)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("late win scenario: %w", err)
	}
	sip, err := c.sip(in)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("sip scenario: %w", err)
	}

	scenarios := []domain.ComparisonScenario{early, late, sip}
	best, second := 0, -1
	for i := 1; i < len(scenarios); i++ {
		if scenarios[i].FinalValue.GreaterThan(scenarios[best].FinalValue) {
			best, second = i, best
		} else if second < 0 || scenarios[i].FinalValue.GreaterThan(scenarios[second].FinalValue) {
			second = i
		}
	}

	return domain.ComparisonResult{
		Name:              in.Name,
		TotalInstallments: in.TotalInstallments,
		FullChitValue:     in.FullChitValue,
		FrequencyPerYear:  in.FrequencyPerYear,
		Scenarios:         scenarios,
		BestScenario:      scenarios[best].Name,
		Advantage:         scenarios[best].FinalValue.Sub(scenarios[second].FinalValue),
	}, nil
}

func validateComparison(in domain.ComparisonInput) error {
	if in.TotalInstallments < 2 {
		return &domain.ValidationError{Field: "total_installments", Constraint: "comparison needs at least 2 installments", Value: in.TotalInstallments}
	}
	if in.LateMinInstallment.IsNegative() {
		return &domain.ValidationError{Field: "late_min_installment", Constraint: "must not be negative", Value: in.LateMinInstallment}
	}
	if in.LateMinInstallment.GreaterThan(in.LateMaxInstallment) {
		return &domain.ValidationError{Field: "late_min_installment",
			Constraint: fmt.Sprintf("must not exceed late_max_installment (%s)", in.LateMaxInstallment), Value: in.LateMinInstallment}
	}
	if len(in.PreviousInstallments) >= in.TotalInstallments {
		return &domain.ValidationError{Field: "previous_installments",
			Constraint: fmt.Sprintf("at most %d amounts", in.TotalInstallments-1), Value: len(in.PreviousInstallments)}
	}
	if in.LumpSumRate != nil && !(*in.LumpSumRate > -1) {
		return &domain.ValidationError{Field: "lumpsum_rate", Constraint: "must be greater than -1", Value: *in.LumpSumRate}
	}
	if in.SIPRate != nil && !(*in.SIPRate > -1) {
		return &domain.ValidationError{Field: "sip_rate", Constraint: "must be greater than -1", Value: *in.SIPRate}
	}
	return nil
}

// withDefaultRates fills omitted return rates with DefaultReinvestRate and
// DefaultSIPReturnRate.
func withDefaultRates(in domain.ComparisonInput) domain.ComparisonInput {
	if in.LumpSumRate == nil {
		r := DefaultReinvestRate
		in.LumpSumRate = &r
	}
	if in.SIPRate == nil {
		r := DefaultSIPReturnRate
		in.SIPRate = &r
	}
	return in
}

// earlyWin takes the prize at WinInstallment, invests all of it as a lump sum
// until the end of the chit, and keeps paying the winner installment.
func (c *ComparativeAnalyzer) earlyWin(in domain.ComparisonInput) (domain.ComparisonScenario, error) {
	base := in.FullChitValue.Div(decimal.NewFromInt(int64(in.TotalInstallments)))

	var previous []decimal.Decimal
	for i := 0; i < in.WinInstallment-1; i++ {
		if i < len(in.PreviousInstallments) {
			previous = append(previous, in.PreviousInstallments[i])
		} else {
			previous = append(previous, base)
		}
	}

	cfg, err := domain.NewChitFundConfig(domain.ChitFundInput{
		TotalInstallments:        in.TotalInstallments,
		CurrentInstallmentNumber: in.WinInstallment,
		FullChitValue:            in.FullChitValue,
		ChitFrequencyPerYear:     in.FrequencyPerYear,
		PreviousInstallments:     previous,
		BidAmount:                in.WinBidAmount,
	})
	if err != nil {
		return domain.ComparisonScenario{}, err
	}
	res, err := c.analyzer.Analyze(cfg)
	if err != nil {
		return domain.ComparisonScenario{}, err
	}

	remaining := in.TotalInstallments - in.WinInstallment
	final := LumpSumFutureValue(res.PrizeAmount, *in.LumpSumRate, remaining, in.FrequencyPerYear)

	flows := make([]decimal.Decimal, 0, in.TotalInstallments)
	for _, p := range previous {
		flows = append(flows, p.Neg())
	}
	flows = append(flows, res.WinnerInstallmentAmount.Neg())
	for i := 0; i < remaining; i++ {
		flows = append(flows, res.WinnerInstallmentAmount.Neg())
	}
	flows[len(flows)-1] = flows[len(flows)-1].Add(final)

	annual, err := c.annualIRR(flows, in.FrequencyPerYear)
	if err != nil {
		return domain.ComparisonScenario{}, err
	}

	return domain.ComparisonScenario{
		Name:          ScenarioEarlyWin,
		Cashflows:     flows,
		AnnualIRR:     annual,
		FinalValue:    final,
		TotalInvested: res.TotalPaid,
		NetGain:       final.Sub(res.TotalPaid),
		Details: map[string]any{
			"win_installment":    in.WinInstallment,
			"bid_amount":         in.WinBidAmount,
			"prize_amount":       res.PrizeAmount,
			"winner_installment": res.WinnerInstallmentAmount,
			"lumpsum_rate":       *in.LumpSumRate,
			"remaining_periods":  remaining,
		},
	}, nil
}

// lateWin pays varying installments and takes the prize at the last
// installment with the minimal bid.
func (c *ComparativeAnalyzer) lateWin(in domain.ComparisonInput) (domain.ComparisonScenario, error) {
	paid := c.plannedInstallments(in, in.TotalInstallments-1)
	bid := decimal.NewFromFloat(MinimalLateBid)

	cfg, err := domain.NewChitFundConfig(domain.ChitFundInput{
		TotalInstallments:        in.TotalInstallments,
		CurrentInstallmentNumber: in.TotalInstallments,
		FullChitValue:            in.FullChitValue,
		ChitFrequencyPerYear:     in.FrequencyPerYear,
		PreviousInstallments:     paid,
		BidAmount:                bid,
	})
	if err != nil {
		return domain.ComparisonScenario{}, err
	}
	prize := cfg.FullChitValue().Sub(cfg.BidAmount())

	flows := make([]decimal.Decimal, 0, len(paid)+1)
	for _, p := range paid {
		flows = append(flows, p.Neg())
	}
	flows = append(flows, prize)

	annual, err := c.annualIRR(flows, in.FrequencyPerYear)
	if err != nil {
		return domain.ComparisonScenario{}, err
	}

	invested := sumAmounts(paid)
	return domain.ComparisonScenario{
		Name:          ScenarioLateWin,
		Cashflows:     flows,
		AnnualIRR:     annual,
		FinalValue:    prize,
		TotalInvested: invested,
		NetGain:       prize.Sub(invested),
		Details: map[string]any{
			"min_installment":         in.LateMinInstallment,
			"max_installment":         in.LateMaxInstallment,
			"total_installments_paid": len(paid),
			"bid_amount":              bid,
			"prize_amount":            prize,
		},
	}, nil
}

// sip invests every installment of the chit, paid or planned, at SIPRate.
func (c *ComparativeAnalyzer) sip(in domain.ComparisonInput) (domain.ComparisonScenario, error) {
	paid := c.plannedInstallments(in, in.TotalInstallments)
	maturity := SIPFutureValue(paid, *in.SIPRate, in.FrequencyPerYear)

	flows := make([]decimal.Decimal, 0, len(paid)+1)
	for _, p := range paid {
		flows = append(flows, p.Neg())
	}
	flows = append(flows, maturity)

	annual, err := c.annualIRR(flows, in.FrequencyPerYear)
	if err != nil {
		return domain.ComparisonScenario{}, err
	}

	invested := sumAmounts(paid)
	return domain.ComparisonScenario{
		Name:          ScenarioSIP,
		Cashflows:     flows,
		AnnualIRR:     annual,
		FinalValue:    maturity,
		TotalInvested: invested,
		NetGain:       maturity.Sub(invested),
		Details: map[string]any{
			"sip_rate":   *in.SIPRate,
			"total_sips": len(paid),
		},
	}, nil
}

// plannedInstallments returns n amounts: the ones already paid, then the
// interpolated late-win schedule, then its midpoint.
func (c *ComparativeAnalyzer) plannedInstallments(in domain.ComparisonInput, n int) []decimal.Decimal {
	varying := VaryingInstallments(in.TotalInstallments, in.LateMinInstallment, in.LateMaxInstallment)
	avg := in.LateMinInstallment.Add(in.LateMaxInstallment).Div(decimal.NewFromInt(2))

	out := make([]decimal.Decimal, 0, n)
	for i := 0; i < n; i++ {
		switch idx := i - len(in.PreviousInstallments); {
		case idx < 0:
			out = append(out, in.PreviousInstallments[i])
		case idx < len(varying):
			out = append(out, varying[idx])
		default:
			out = append(out, avg)
		}
	}
	return out
}

func (c *ComparativeAnalyzer) annualIRR(flows []decimal.Decimal, frequencyPerYear int) (domain.Rate, error) {
	period, _, err := c.solver.Solve(flows)
	if err != nil {
		return domain.Rate{}, err
	}
	return AnnualRate(period, frequencyPerYear)
}

// VaryingInstallments interpolates totalInstallments-1 amounts linearly from
// lo to hi, the installments paid before a last-cycle win.
func VaryingInstallments(totalInstallments int, lo, hi decimal.Decimal) []decimal.Decimal {
	n := totalInstallments - 1
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []decimal.Decimal{lo}
	}
	step := hi.Sub(lo).Div(decimal.NewFromInt(int64(n - 1)))
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = lo.Add(step.Mul(decimal.NewFromInt(int64(i))))
	}
	out[n-1] = hi
	return out
}

// SIPFutureValue compounds each installment at annualRate/frequencyPerYear
// per period until the period of the last installment.
func SIPFutureValue(installments []decimal.Decimal, annualRate float64, frequencyPerYear int) decimal.Decimal {
	periodRate := annualRate / float64(frequencyPerYear)
	total := decimal.Zero
	for i, amt := range installments {
		periods := len(installments) - 1 - i
		total = total.Add(amt.Mul(decimal.NewFromFloat(math.Pow(1+periodRate, float64(periods)))))
	}
	return total.Round(2)
}

// LumpSumFutureValue compounds principal at annualRate/frequencyPerYear for periods.
func LumpSumFutureValue(principal decimal.Decimal, annualRate float64, periods, frequencyPerYear int) decimal.Decimal {
	growth := math.Pow(1+annualRate/float64(frequencyPerYear), float64(periods))
	return principal.Mul(decimal.NewFromFloat(growth)).Round(2)
}
