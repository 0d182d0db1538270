package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
	"chit-fund-analyzer/service"
)

type AnalysisHandler struct {
	service *service.ChitService
}

func NewAnalysisHandler(service *service.ChitService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var input domain.ChitFundInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.service.Analyze(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History lists stored analyses, newest first. ?limit caps the count.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.service.History(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type installmentRequest struct {
	FullChitValue            decimal.Decimal  `json:"full_chit_value"`
	TotalInstallments        int              `json:"total_installments"`
	CurrentInstallmentNumber int              `json:"current_installment_number"`
	BidAmount                *decimal.Decimal `json:"bid_amount,omitempty"`
	AmountPaid               *decimal.Decimal `json:"amount_paid,omitempty"`
}

type installmentResponse struct {
	BidAmount            decimal.Decimal  `json:"bid_amount"`
	NonWinnerInstallment decimal.Decimal  `json:"non_winner_installment"`
	ImpliedBid           *decimal.Decimal `json:"implied_bid,omitempty"`
}

// Installment computes the non-winner installment for a bid, or recovers the
// bid from an amount paid.
func (h *AnalysisHandler) Installment(w http.ResponseWriter, r *http.Request) {
	var req installmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !req.FullChitValue.IsPositive() {
		writeError(w, &domain.ValidationError{Field: "full_chit_value", Constraint: "must be positive", Value: req.FullChitValue})
		return
	}
	if req.TotalInstallments <= 0 {
		writeError(w, &domain.ValidationError{Field: "total_installments", Constraint: "must be positive", Value: req.TotalInstallments})
		return
	}
	if req.CurrentInstallmentNumber < 1 || req.CurrentInstallmentNumber > req.TotalInstallments {
		writeError(w, &domain.ValidationError{Field: "current_installment_number",
			Constraint: "must be between 1 and total_installments", Value: req.CurrentInstallmentNumber})
		return
	}
	if (req.BidAmount == nil) == (req.AmountPaid == nil) {
		writeError(w, &domain.ValidationError{Field: "bid_amount", Constraint: "exactly one of bid_amount or amount_paid is required"})
		return
	}

	var resp installmentResponse
	if req.AmountPaid != nil {
		bid := service.ImpliedBid(req.FullChitValue, *req.AmountPaid, req.TotalInstallments)
		resp.BidAmount, resp.ImpliedBid = bid, &bid
	} else {
		resp.BidAmount = *req.BidAmount
	}
	if resp.BidAmount.IsNegative() || resp.BidAmount.GreaterThanOrEqual(req.FullChitValue) {
		writeError(w, &domain.ValidationError{Field: "bid_amount", Constraint: "must be in [0, full_chit_value)", Value: resp.BidAmount})
		return
	}

	amount, err := service.NonWinnerInstallment(req.FullChitValue, resp.BidAmount, req.TotalInstallments, req.CurrentInstallmentNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	resp.NonWinnerInstallment = amount
	writeJSON(w, http.StatusOK, resp)
}
