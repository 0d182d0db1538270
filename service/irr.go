package service

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

// Reasons reported alongside an undefined rate.
const (
	ReasonTooFewCashflows = "at least two cashflows are required"
	ReasonNoSignChange    = "cashflows never change sign"
	ReasonNoPositiveRoot  = "no positive rate sets the net present value to zero"
)

// SolverConfig tunes the IRR root search.
type SolverConfig struct {
	MinRate       float64 `json:"min_rate"`
	MaxRate       float64 `json:"max_rate"`
	ScanPoints    int     `json:"scan_points"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
}

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MinRate:       1e-9,
		MaxRate:       1e4,
		ScanPoints:    1200,
		Tolerance:     1e-12,
		MaxIterations: 200,
	}
}

// IRRSolver finds the smallest positive periodic rate r with
// sum(cf[t] / (1+r)^t) == 0.
type IRRSolver struct {
	cfg SolverConfig
}

// NewIRRSolver fills unset or nonsensical fields from DefaultSolverConfig.
func NewIRRSolver(cfg SolverConfig) *IRRSolver {
	def := DefaultSolverConfig()
	if cfg.MinRate <= 0 {
		cfg.MinRate = def.MinRate
	}
	if cfg.MaxRate <= cfg.MinRate {
		cfg.MaxRate = def.MaxRate
	}
	if cfg.ScanPoints < 2 {
		cfg.ScanPoints = def.ScanPoints
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	return &IRRSolver{cfg: cfg}
}

func (s *IRRSolver) Config() SolverConfig { return s.cfg }

// Solve returns the periodic IRR. An undefined rate comes back with a reason
// and a nil error; the error is reserved for numeric failure.
func (s *IRRSolver) Solve(cashflows []decimal.Decimal) (domain.Rate, string, error) {
	if len(cashflows) < 2 {
		return domain.Rate{}, ReasonTooFewCashflows, nil
	}

	cf := make([]float64, len(cashflows))
	hasPos, hasNeg := false, false
	for i, c := range cashflows {
		cf[i] = c.InexactFloat64()
		switch c.Sign() {
		case 1:
			hasPos = true
		case -1:
			hasNeg = true
		}
	}
	if !hasPos || !hasNeg {
		return domain.Rate{}, ReasonNoSignChange, nil
	}

	growth := math.Pow(s.cfg.MaxRate/s.cfg.MinRate, 1/float64(s.cfg.ScanPoints-1))
	prevRate := s.cfg.MinRate
	prevNPV, err := npv(cf, prevRate)
	if err != nil {
		return domain.Rate{}, "", err
	}
	if prevNPV == 0 {
		return domain.DefinedRate(prevRate), "", nil
	}

	for i := 1; i < s.cfg.ScanPoints; i++ {
		rate := s.cfg.MinRate * math.Pow(growth, float64(i))
		if i == s.cfg.ScanPoints-1 {
			rate = s.cfg.MaxRate
		}
		v, err := npv(cf, rate)
		if err != nil {
			return domain.Rate{}, "", err
		}
		if v == 0 {
			return domain.DefinedRate(rate), "", nil
		}
		if (v > 0) != (prevNPV > 0) {
			root, err := s.bisect(cf, prevRate, rate, prevNPV)
			if err != nil {
				return domain.Rate{}, "", err
			}
			return domain.DefinedRate(root), "", nil
		}
		prevRate, prevNPV = rate, v
	}

	return domain.Rate{}, ReasonNoPositiveRoot, nil
}

func (s *IRRSolver) bisect(cf []float64, lo, hi, fLo float64) (float64, error) {
	for i := 0; i < s.cfg.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		fMid, err := npv(cf, mid)
		if err != nil {
			return 0, err
		}
		if fMid == 0 || (hi-lo)/2 <= s.cfg.Tolerance*(1+math.Abs(mid)) {
			return mid, nil
		}
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0, &domain.CalculationError{
		Op:     "IRRSolver.Solve",
		Reason: fmt.Sprintf("bisection did not converge in %d iterations", s.cfg.MaxIterations),
	}
}

// AnnualRate compounds a periodic rate over frequencyPerYear periods.
func AnnualRate(period domain.Rate, frequencyPerYear int) (domain.Rate, error) {
	if !period.Defined {
		return domain.Rate{}, nil
	}
	annual := math.Pow(1+period.Value, float64(frequencyPerYear)) - 1
	if math.IsNaN(annual) || math.IsInf(annual, 0) {
		return domain.Rate{}, &domain.CalculationError{
			Op:     "AnnualRate",
			Reason: fmt.Sprintf("annualizing %g over %d periods is not finite", period.Value, frequencyPerYear),
		}
	}
	return domain.DefinedRate(annual), nil
}

// npv evaluates the cashflows as a polynomial in 1/(1+rate) by Horner's rule.
func npv(cf []float64, rate float64) (float64, error) {
	x := 1 / (1 + rate)
	acc := cf[len(cf)-1]
	for t := len(cf) - 2; t >= 0; t-- {
		acc = acc*x + cf[t]
	}
	if math.IsNaN(acc) || math.IsInf(acc, 0) {
		return 0, &domain.CalculationError{
			Op:     "IRRSolver.Solve",
			Reason: fmt.Sprintf("net present value is not finite at rate %g", rate),
		}
	}
	return acc, nil
}
