package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"chit-fund-analyzer/domain"
)

// DefaultFrequencies are compared when the caller names none.
var DefaultFrequencies = []int{
	domain.Yearly, domain.HalfYearly, domain.FourMonthly,
	domain.Quarterly, domain.BiMonthly, domain.Monthly,
}

// ScenarioEngine runs many analyses that differ only in bid or frequency.
type ScenarioEngine struct {
	analyzer *Analyzer
	workers  int
	trace    bool
}

// NewScenarioEngine evaluates scenarios on up to workers goroutines; workers
// <= 0 means one per CPU. trace logs every evaluated scenario.
func NewScenarioEngine(analyzer *Analyzer, workers int, trace bool) *ScenarioEngine {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &ScenarioEngine{analyzer: analyzer, workers: workers, trace: trace}
}

// Sweep analyzes template once per bid of spec. Outcomes keep request order.
// A bid that breaks a config invariant fails only its own outcome.
func (e *ScenarioEngine) Sweep(
	ctx context.Context,
	template domain.ChitFundConfig,
	spec domain.BidSpec,
) ([]domain.ScenarioOutcome, error) {
	bids, err := GenerateBidRange(spec)
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.ScenarioOutcome, len(bids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, bid := range bids {
		if gctx.Err() != nil {
			break
		}
		i, bid := i, bid // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.evaluate(template, i, bid)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (e *ScenarioEngine) evaluate(template domain.ChitFundConfig, index int, bid decimal.Decimal) domain.ScenarioOutcome {
	out := domain.ScenarioOutcome{Index: index, Bid: bid}

	cfg, err := template.WithBid(bid)
	if err == nil {
		var res domain.ChitFundAnalysisResult
		res, err = e.analyzer.Analyze(cfg)
		if err == nil {
			out.Result = &res
		}
	}
	if err != nil {
		out.Err = &domain.ScenarioError{Index: index, Bid: bid, Err: err}
	}

	if e.trace {
		if out.Err != nil {
			log.Printf("scenario %d bid=%s failed: %v", index, bid, err)
		} else {
			log.Printf("scenario %d bid=%s annual_irr=%v", index, bid, out.Result.AnnualIRR)
		}
	}
	return out
}

// FindOptimal sweeps spec and picks the outcome that best meets objective.
func (e *ScenarioEngine) FindOptimal(
	ctx context.Context,
	template domain.ChitFundConfig,
	spec domain.BidSpec,
	objective domain.Objective,
) (domain.ChitFundAnalysisResult, error) {
	if err := ValidateObjective(objective); err != nil {
		return domain.ChitFundAnalysisResult{}, err
	}
	outcomes, err := e.Sweep(ctx, template, spec)
	if err != nil {
		return domain.ChitFundAnalysisResult{}, err
	}
	return SelectOptimal(outcomes, objective)
}

// ValidateObjective rejects unknown kinds and negative tolerances. An empty
// kind means MinimizeAnnualIRR.
func ValidateObjective(objective domain.Objective) error {
	switch objective.Kind {
	case "", domain.MinimizeAnnualIRR:
		return nil
	case domain.TargetAnnualIRR:
		if objective.Tolerance < 0 || math.IsNaN(objective.Tolerance) {
			return &domain.ValidationError{Field: "objective.tolerance", Constraint: "must not be negative", Value: objective.Tolerance}
		}
		if math.IsNaN(objective.Target) || math.IsInf(objective.Target, 0) {
			return &domain.ValidationError{Field: "objective.target", Constraint: "must be finite", Value: objective.Target}
		}
		return nil
	}
	return &domain.ValidationError{Field: "objective.kind",
		Constraint: fmt.Sprintf("must be %q or %q", domain.MinimizeAnnualIRR, domain.TargetAnnualIRR), Value: objective.Kind}
}

// SelectOptimal scans outcomes linearly. Failed and undefined-IRR outcomes
// never qualify; ties go to the lower bid.
func SelectOptimal(outcomes []domain.ScenarioOutcome, objective domain.Objective) (domain.ChitFundAnalysisResult, error) {
	if err := ValidateObjective(objective); err != nil {
		return domain.ChitFundAnalysisResult{}, err
	}

	var best *domain.ChitFundAnalysisResult
	bestScore := math.Inf(1)
	for _, o := range outcomes {
		if !o.OK() || !o.Result.AnnualIRR.Defined {
			continue
		}
		annual := o.Result.AnnualIRR.Value

		score := annual
		if objective.Kind == domain.TargetAnnualIRR {
			score = math.Abs(annual - objective.Target)
			if score > objective.Tolerance+RateEpsilon {
				continue
			}
		}

		switch {
		case best == nil, score < bestScore-RateEpsilon:
			best, bestScore = o.Result, score
		case math.Abs(score-bestScore) <= RateEpsilon && o.Result.BidAmount.LessThan(best.BidAmount):
			best, bestScore = o.Result, score
		}
	}

	if best == nil {
		return domain.ChitFundAnalysisResult{}, domain.ErrNoOptimalScenario
	}
	return *best, nil
}

// CompareFrequencies analyzes template at bid once per frequency.
func (e *ScenarioEngine) CompareFrequencies(
	ctx context.Context,
	template domain.ChitFundConfig,
	bid decimal.Decimal,
	frequencies []int,
) (map[int]domain.ChitFundAnalysisResult, error) {
	if len(frequencies) == 0 {
		frequencies = DefaultFrequencies
	}

	base, err := template.WithBid(bid)
	if err != nil {
		return nil, err
	}

	results := make(map[int]domain.ChitFundAnalysisResult, len(frequencies))
	for _, f := range frequencies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg, err := base.WithFrequency(f)
		if err != nil {
			return nil, err
		}
		res, err := e.analyzer.Analyze(cfg)
		if err != nil {
			return nil, fmt.Errorf("frequency %d: %w", f, err)
		}
		results[f] = res
	}
	return results, nil
}

// SummarizeOutcomes reports counts, extremes and IRR statistics for a sweep.
func SummarizeOutcomes(outcomes []domain.ScenarioOutcome) domain.SweepSummary {
	s := domain.SweepSummary{Total: len(outcomes)}

	var irrs []float64
	first := true
	for _, o := range outcomes {
		if !o.OK() {
			s.Failed++
			continue
		}
		s.Evaluated++
		r := o.Result

		if first {
			s.MinBid, s.MaxBid = r.BidAmount, r.BidAmount
			s.MinPrize, s.MaxPrize = r.PrizeAmount, r.PrizeAmount
			first = false
		}
		s.MinBid = decimal.Min(s.MinBid, r.BidAmount)
		s.MaxBid = decimal.Max(s.MaxBid, r.BidAmount)
		s.MinPrize = decimal.Min(s.MinPrize, r.PrizeAmount)
		s.MaxPrize = decimal.Max(s.MaxPrize, r.PrizeAmount)

		if !r.AnnualIRR.Defined {
			s.Undefined++
			continue
		}
		irrs = append(irrs, r.AnnualIRR.Value)
		if s.Best == nil || better(r, s.Best, true) {
			s.Best = r
		}
		if s.Worst == nil || better(r, s.Worst, false) {
			s.Worst = r
		}
	}

	if len(irrs) > 0 {
		s.IRR = irrStats(irrs)
	}
	return s
}

// better reports whether a beats b: lower annual IRR when low is set, higher
// otherwise, with ties broken by the lower bid.
func better(a, b *domain.ChitFundAnalysisResult, low bool) bool {
	d := a.AnnualIRR.Value - b.AnnualIRR.Value
	if math.Abs(d) <= RateEpsilon {
		return a.BidAmount.LessThan(b.BidAmount)
	}
	if low {
		return d < 0
	}
	return d > 0
}

func irrStats(values []float64) *domain.IRRStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return &domain.IRRStats{
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   sum / float64(n),
		Median: median,
	}
}
