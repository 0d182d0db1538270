package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
	"chit-fund-analyzer/repository"
	"chit-fund-analyzer/service"
)

const workedExampleJSON = `{
	"total_installments": 14,
	"current_installment_number": 5,
	"full_chit_value": 700000,
	"chit_frequency_per_year": 2,
	"previous_installments": [42000, 40000, 40000, 43000],
	"bid_amount": 100000
}`

func newTestHandlers() Handlers {
	analyzer := service.NewAnalyzer(nil)
	chit := service.NewChitService(repository.NewAnalysisRepositoryMemory(), repository.NewMockCache(), analyzer)
	engine := service.NewScenarioEngine(analyzer, 2, false)
	return Handlers{
		Analysis: NewAnalysisHandler(chit),
		Scenario: NewScenarioHandler(engine, service.NewAdvisorService("", "", 0)),
		Compare:  NewCompareHandler(service.NewComparativeAnalyzer(analyzer, nil)),
	}
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAnalyzeHandler_OK(t *testing.T) {

	handler := newTestHandlers().Analysis

	w := httptest.NewRecorder()
	handler.Analyze(w, postJSON("/chit/analyze", workedExampleJSON))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result domain.ChitFundAnalysisResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.PrizeAmount.Equal(decimal.NewFromInt(600000)) {
		t.Errorf("expected prize 600000, got %s", result.PrizeAmount)
	}
	if !result.AnnualIRR.Defined {
		t.Errorf("expected a defined annual IRR")
	}
}

func TestAnalyzeHandler_MethodNotAllowed(t *testing.T) {

	handler := newTestHandlers().Analysis

	req := httptest.NewRequest(http.MethodGet, "/chit/analyze", nil)
	w := httptest.NewRecorder()

	handler.Analyze(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestAnalyzeHandler_UnsupportedMediaType(t *testing.T) {

	handler := newTestHandlers().Analysis

	req := httptest.NewRequest(http.MethodPost, "/chit/analyze", bytes.NewBufferString(workedExampleJSON))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	handler.Analyze(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestAnalyzeHandler_BadRequest(t *testing.T) {

	handler := newTestHandlers().Analysis

	w := httptest.NewRecorder()
	handler.Analyze(w, postJSON("/chit/analyze", `{invalid-json}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeHandler_ValidationError(t *testing.T) {

	handler := newTestHandlers().Analysis

	body := strings.Replace(workedExampleJSON, `"bid_amount": 100000`, `"bid_amount": 700000`, 1)
	w := httptest.NewRecorder()
	handler.Analyze(w, postJSON("/chit/analyze", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Field != "bid_amount" {
		t.Errorf("expected field bid_amount, got %q", resp.Field)
	}
}

func TestHistoryHandler(t *testing.T) {

	handler := newTestHandlers().Analysis

	handler.Analyze(httptest.NewRecorder(), postJSON("/chit/analyze", workedExampleJSON))

	w := httptest.NewRecorder()
	handler.History(w, httptest.NewRequest(http.MethodGet, "/chit/analyses?limit=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var records []domain.AnalysisRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}

	bad := httptest.NewRecorder()
	handler.History(bad, httptest.NewRequest(http.MethodGet, "/chit/analyses?limit=x", nil))
	if bad.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad limit, got %d", bad.Code)
	}
}

func TestInstallmentHandler(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   int64
	}{
		{"from bid", `{"full_chit_value":1000000,"total_installments":12,"current_installment_number":1,"bid_amount":400000}`, http.StatusOK, 50000},
		{"from amount paid", `{"full_chit_value":1000000,"total_installments":20,"current_installment_number":1,"amount_paid":45000}`, http.StatusOK, 45000},
		{"both given", `{"full_chit_value":1000000,"total_installments":12,"current_installment_number":1,"bid_amount":1,"amount_paid":1}`, http.StatusBadRequest, 0},
		{"bid too high", `{"full_chit_value":1000,"total_installments":12,"current_installment_number":1,"bid_amount":1000}`, http.StatusBadRequest, 0},
	}

	handler := newTestHandlers().Analysis
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Installment(w, postJSON("/chit/installment", tt.body))

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp installmentResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !resp.NonWinnerInstallment.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("expected %d, got %s", tt.want, resp.NonWinnerInstallment)
			}
		})
	}
}

func TestSweepHandler(t *testing.T) {

	handler := newTestHandlers().Scenario

	body := `{"config": ` + workedExampleJSON + `, "bids": {"amounts": [0, 100000, 700000]}}`
	w := httptest.NewRecorder()
	handler.Sweep(w, postJSON("/chit/scenarios", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Outcomes []struct {
			Index int    `json:"index"`
			Error string `json:"error"`
		} `json:"outcomes"`
		Summary domain.SweepSummary `json:"summary"`
		Table   domain.Table        `json:"table"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Outcomes) != 3 || resp.Outcomes[2].Error == "" {
		t.Errorf("expected the third bid to fail, got %+v", resp.Outcomes)
	}
	if resp.Summary.Failed != 1 || resp.Summary.Evaluated != 2 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
	if len(resp.Table.Rows) != 3 {
		t.Errorf("expected 3 table rows, got %d", len(resp.Table.Rows))
	}
}

func TestOptimalHandler(t *testing.T) {

	handler := newTestHandlers().Scenario

	body := `{"config": ` + workedExampleJSON + `, "bids": {"min_bid": 0, "max_bid": 200000, "step": 50000}}`
	w := httptest.NewRecorder()
	handler.Optimal(w, postJSON("/chit/scenarios/optimal", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp optimalResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Optimal.BidAmount.IsZero() {
		t.Errorf("expected bid 0 to be optimal, got %s", resp.Optimal.BidAmount)
	}
	if resp.Explanation == "" {
		t.Errorf("expected an explanation")
	}
}

func TestOptimalHandler_NoScenario(t *testing.T) {

	handler := newTestHandlers().Scenario

	body := `{"config": ` + workedExampleJSON + `, "bids": {"amounts": [700000]}}`
	w := httptest.NewRecorder()
	handler.Optimal(w, postJSON("/chit/scenarios/optimal", body))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_CSV(t *testing.T) {

	handler := newTestHandlers().Scenario

	body := `{"config": ` + workedExampleJSON + `, "bids": {"amounts": [0, 100000]}}`
	w := httptest.NewRecorder()
	handler.Export(w, postJSON("/chit/scenarios/export?format=csv", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], domain.ColBidAmount) {
		t.Errorf("unexpected csv:\n%s", w.Body.String())
	}
}

func TestExportHandler_UnknownFormat(t *testing.T) {

	handler := newTestHandlers().Scenario

	w := httptest.NewRecorder()
	handler.Export(w, postJSON("/chit/scenarios/export?format=xlsx", `{}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFrequenciesHandler(t *testing.T) {

	handler := newTestHandlers().Scenario

	body := `{"config": ` + workedExampleJSON + `, "frequencies": [12, 2]}`
	w := httptest.NewRecorder()
	handler.Frequencies(w, postJSON("/chit/frequencies", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp frequencyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Results["12"]; !ok || len(resp.Results) != 2 {
		t.Errorf("unexpected results %v", resp.Results)
	}
}

func TestCompareHandler(t *testing.T) {

	handler := newTestHandlers().Compare

	body := `{
		"total_installments": 10,
		"full_chit_value": 500000,
		"chit_frequency_per_year": 12,
		"win_installment": 3,
		"win_bid_amount": 50000,
		"lumpsum_rate": 0.12,
		"late_min_installment": 40000,
		"late_max_installment": 60000,
		"sip_rate": 0.12
	}`
	w := httptest.NewRecorder()
	handler.Compare(w, postJSON("/chit/compare", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp domain.ComparisonResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Scenarios) != 3 || resp.BestScenario == "" {
		t.Errorf("unexpected comparison %+v", resp)
	}
}

func TestRouter_HealthAndRateLimit(t *testing.T) {

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(1, time.Minute, func() time.Time { return clock })
	router := NewRouter(newTestHandlers(), RouterOptions{Limiter: limiter})

	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", health.Code)
	}

	first := httptest.NewRecorder()
	router.ServeHTTP(first, postJSON("/chit/analyze", workedExampleJSON))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, postJSON("/chit/analyze", workedExampleJSON))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", second.Header().Get("Retry-After"))
	}
}
