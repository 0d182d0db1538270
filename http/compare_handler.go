package http

import (
	"net/http"

	"chit-fund-analyzer/domain"
	"chit-fund-analyzer/service"
)

type CompareHandler struct {
	service *service.ComparativeAnalyzer
}

func NewCompareHandler(service *service.ComparativeAnalyzer) *CompareHandler {
	return &CompareHandler{service: service}
}

func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var input domain.ComparisonInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.service.Compare(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
