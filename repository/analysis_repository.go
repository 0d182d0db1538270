package repository

import "chit-fund-analyzer/domain"

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

type AnalysisRepository interface {
	Save(input domain.ChitFundInput, result domain.ChitFundAnalysisResult) error
	// List returns the most recent records first.
	List(limit int) ([]domain.AnalysisRecord, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
