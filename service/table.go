package service

import (
	"sort"

	"chit-fund-analyzer/domain"
)

var resultColumns = []string{
	domain.ColBidAmount,
	domain.ColPrizeAmount,
	domain.ColWinnerInstallment,
	domain.ColTotalPaid,
	domain.ColNetInterestCost,
	domain.ColEffectiveInterest,
	domain.ColPeriodIRR,
	domain.ColAnnualIRR,
	domain.ColFrequency,
}

// ToTable projects results into rows, one per result, in input order.
// Undefined rates become nil cells.
func ToTable(results []domain.ChitFundAnalysisResult) domain.Table {
	t := domain.Table{Columns: append([]string(nil), resultColumns...), Rows: make([]domain.Row, 0, len(results))}
	for i := range results {
		t.Rows = append(t.Rows, resultRow(&results[i]))
	}
	return t
}

// OutcomeTable is ToTable for a sweep. Failed scenarios keep their bid and
// carry the failure in the Error column.
func OutcomeTable(outcomes []domain.ScenarioOutcome) domain.Table {
	t := domain.Table{
		Columns: append(append([]string(nil), resultColumns...), domain.ColError),
		Rows:    make([]domain.Row, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		if o.OK() {
			row := resultRow(o.Result)
			row[domain.ColError] = nil
			t.Rows = append(t.Rows, row)
			continue
		}
		row := domain.Row{}
		for _, c := range resultColumns {
			row[c] = nil
		}
		row[domain.ColBidAmount] = o.Bid
		if o.Err != nil {
			row[domain.ColError] = o.Err.Error()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FrequencyTable orders a frequency comparison by ascending frequency.
func FrequencyTable(results map[int]domain.ChitFundAnalysisResult) domain.Table {
	freqs := make([]int, 0, len(results))
	for f := range results {
		freqs = append(freqs, f)
	}
	sort.Ints(freqs)

	ordered := make([]domain.ChitFundAnalysisResult, 0, len(freqs))
	for _, f := range freqs {
		ordered = append(ordered, results[f])
	}
	return ToTable(ordered)
}

func resultRow(r *domain.ChitFundAnalysisResult) domain.Row {
	return domain.Row{
		domain.ColBidAmount:         r.BidAmount,
		domain.ColPrizeAmount:       r.PrizeAmount,
		domain.ColWinnerInstallment: r.WinnerInstallmentAmount,
		domain.ColTotalPaid:         r.TotalPaid,
		domain.ColNetInterestCost:   r.NetInterestCost,
		domain.ColEffectiveInterest: r.EffectiveInterestRate,
		domain.ColPeriodIRR:         rateCell(r.PeriodIRR),
		domain.ColAnnualIRR:         rateCell(r.AnnualIRR),
		domain.ColFrequency:         r.FrequencyPerYear,
	}
}

func rateCell(r domain.Rate) any {
	if !r.Defined {
		return nil
	}
	return r.Value
}
