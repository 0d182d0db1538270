package http

import (
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
	"chit-fund-analyzer/report"
	"chit-fund-analyzer/service"
)

type ScenarioHandler struct {
	engine  *service.ScenarioEngine
	advisor *service.AdvisorService
}

func NewScenarioHandler(engine *service.ScenarioEngine, advisor *service.AdvisorService) *ScenarioHandler {
	return &ScenarioHandler{engine: engine, advisor: advisor}
}

type sweepRequest struct {
	Config domain.ChitFundInput `json:"config"`
	Bids   domain.BidSpec       `json:"bids"`
}

type sweepResponse struct {
	Outcomes []domain.ScenarioOutcome `json:"outcomes"`
	Summary  domain.SweepSummary      `json:"summary"`
	Table    domain.Table             `json:"table"`
}

type optimalRequest struct {
	Config    domain.ChitFundInput `json:"config"`
	Bids      domain.BidSpec       `json:"bids"`
	Objective domain.Objective     `json:"objective"`
}

type optimalResponse struct {
	Optimal     domain.ChitFundAnalysisResult `json:"optimal"`
	Summary     domain.SweepSummary           `json:"summary"`
	Explanation string                        `json:"explanation"`
}

type frequencyRequest struct {
	Config      domain.ChitFundInput `json:"config"`
	BidAmount   *decimal.Decimal     `json:"bid_amount,omitempty"`
	Frequencies []int                `json:"frequencies,omitempty"`
}

type frequencyResponse struct {
	Results map[string]domain.ChitFundAnalysisResult `json:"results"`
	Table   domain.Table                             `json:"table"`
}

func (h *ScenarioHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	outcomes, err := h.sweep(r, req.Config, req.Bids)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{
		Outcomes: outcomes,
		Summary:  service.SummarizeOutcomes(outcomes),
		Table:    service.OutcomeTable(outcomes),
	})
}

func (h *ScenarioHandler) Optimal(w http.ResponseWriter, r *http.Request) {
	var req optimalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := service.ValidateObjective(req.Objective); err != nil {
		writeError(w, err)
		return
	}

	outcomes, err := h.sweep(r, req.Config, req.Bids)
	if err != nil {
		writeError(w, err)
		return
	}
	best, err := service.SelectOptimal(outcomes, req.Objective)
	if err != nil {
		writeError(w, err)
		return
	}

	summary := service.SummarizeOutcomes(outcomes)
	writeJSON(w, http.StatusOK, optimalResponse{
		Optimal:     best,
		Summary:     summary,
		Explanation: h.advisor.ExplainOptimal(r.Context(), best, summary, req.Objective),
	})
}

// Export renders a sweep as CSV (default) or as a PNG chart of annual IRR by bid.
func (h *ScenarioHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "png" {
		http.Error(w, "format must be csv or png", http.StatusBadRequest)
		return
	}

	var req sweepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	outcomes, err := h.sweep(r, req.Config, req.Bids)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "png":
		img, err := report.RenderIRRChart("", outcomes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		buf.Write(img)
		contentType = "image/png"
	default:
		if err := report.WriteCSV(&buf, service.OutcomeTable(outcomes)); err != nil {
			writeError(w, err)
			return
		}
		contentType = "text/csv"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="scenarios.`+format+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing export: %v", err)
	}
}

func (h *ScenarioHandler) Frequencies(w http.ResponseWriter, r *http.Request) {
	var req frequencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	template, err := domain.NewChitFundConfig(req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	bid := template.BidAmount()
	if req.BidAmount != nil {
		bid = *req.BidAmount
	}

	results, err := h.engine.CompareFrequencies(r.Context(), template, bid, req.Frequencies)
	if err != nil {
		writeError(w, err)
		return
	}

	byName := make(map[string]domain.ChitFundAnalysisResult, len(results))
	for f, res := range results {
		byName[strconv.Itoa(f)] = res
	}
	writeJSON(w, http.StatusOK, frequencyResponse{Results: byName, Table: service.FrequencyTable(results)})
}

func (h *ScenarioHandler) sweep(r *http.Request, input domain.ChitFundInput, bids domain.BidSpec) ([]domain.ScenarioOutcome, error) {
	template, err := domain.NewChitFundConfig(input)
	if err != nil {
		return nil, err
	}
	return h.engine.Sweep(r.Context(), template, bids)
}
