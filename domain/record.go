package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is a persisted analysis together with the request that produced it.
type AnalysisRecord struct {
	ID        uuid.UUID              `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Input     ChitFundInput          `json:"input"`
	Result    ChitFundAnalysisResult `json:"result"`
}
