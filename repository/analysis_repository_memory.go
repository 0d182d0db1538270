package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chit-fund-analyzer/domain"
)

// AnalysisRepositoryMemory is an in-memory implementation of AnalysisRepository.
type AnalysisRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.AnalysisRecord
	now  func() time.Time
}

// NewAnalysisRepositoryMemory creates a new in-memory analysis repository.
func NewAnalysisRepositoryMemory() *AnalysisRepositoryMemory {
	return &AnalysisRepositoryMemory{
		data: []domain.AnalysisRecord{},
		now:  time.Now,
	}
}

// Save stores the analysis in memory.
func (r *AnalysisRepositoryMemory) Save(
	input domain.ChitFundInput,
	result domain.ChitFundAnalysisResult,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, domain.AnalysisRecord{
		ID:        uuid.New(),
		CreatedAt: r.now().UTC(),
		Input:     input,
		Result:    result,
	})
	return nil
}

func (r *AnalysisRepositoryMemory) List(limit int) ([]domain.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit = normalizeLimit(limit)
	out := make([]domain.AnalysisRecord, 0, min(limit, len(r.data)))
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
