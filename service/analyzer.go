package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

// Analyzer turns one validated configuration into a ChitFundAnalysisResult.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	solver *IRRSolver
}

func NewAnalyzer(solver *IRRSolver) *Analyzer {
	if solver == nil {
		solver = NewIRRSolver(DefaultSolverConfig())
	}
	return &Analyzer{solver: solver}
}

// Analyze computes prize, cashflows, costs and IRR for cfg. An undefined IRR is
// reported on the result; only numeric failures return an error.
func (a *Analyzer) Analyze(cfg domain.ChitFundConfig) (domain.ChitFundAnalysisResult, error) {
	prize := cfg.FullChitValue().Sub(cfg.BidAmount())

	winner, ok := cfg.WinnerInstallmentAmount()
	if !ok {
		var err error
		winner, err = DefaultWinnerInstallment(cfg)
		if err != nil {
			return domain.ChitFundAnalysisResult{}, err
		}
	}

	cashflows := BuildCashflows(cfg, prize, winner)

	period, reason, err := a.solver.Solve(cashflows)
	if err != nil {
		return domain.ChitFundAnalysisResult{}, fmt.Errorf("analyze bid %s: %w", cfg.BidAmount(), err)
	}
	annual, err := AnnualRate(period, cfg.FrequencyPerYear())
	if err != nil {
		return domain.ChitFundAnalysisResult{}, fmt.Errorf("analyze bid %s: %w", cfg.BidAmount(), err)
	}

	totalPaid := sumAmounts(cfg.PreviousInstallments()).
		Add(winner.Mul(decimal.NewFromInt(int64(cfg.RemainingCycles()))))
	netCost := totalPaid.Sub(prize)

	return domain.ChitFundAnalysisResult{
		BidAmount:                cfg.BidAmount(),
		PrizeAmount:              prize,
		WinnerInstallmentAmount:  winner,
		TotalPaid:                totalPaid,
		NetInterestCost:          netCost,
		EffectiveInterestRate:    netCost.Div(cfg.FullChitValue()),
		Cashflows:                cashflows,
		PeriodIRR:                period,
		AnnualIRR:                annual,
		UndefinedReason:          reason,
		FrequencyPerYear:         cfg.FrequencyPerYear(),
		TotalInstallments:        cfg.TotalInstallments(),
		CurrentInstallmentNumber: cfg.CurrentInstallmentNumber(),
	}, nil
}
