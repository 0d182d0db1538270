package report

import (
	"errors"

	"github.com/vicanso/go-charts/v2"

	"chit-fund-analyzer/domain"
)

var ErrNotEnoughPoints = errors.New("not enough scenarios with a defined IRR to chart")

// RenderIRRChart draws annual IRR (%) against bid amount for a sweep as a PNG.
// Failed and undefined scenarios are skipped.
func RenderIRRChart(title string, outcomes []domain.ScenarioOutcome) ([]byte, error) {
	var (
		labels []string
		values []float64
	)
	for _, o := range outcomes {
		if !o.OK() || !o.Result.AnnualIRR.Defined {
			continue
		}
		labels = append(labels, FormatINRCompact(o.Result.BidAmount))
		values = append(values, o.Result.AnnualIRR.Value*100)
	}
	if len(values) < 2 {
		return nil, ErrNotEnoughPoints
	}

	yMin, yMax := values[0], values[0]
	for _, v := range values[1:] {
		if v < yMin {
			yMin = v
		}
		if v > yMax {
			yMax = v
		}
	}
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	yMin -= pad
	yMax += pad

	split := len(labels)
	if split > 10 {
		split = 10
	}
	if title == "" {
		title = "Annual IRR by bid"
	}

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}
