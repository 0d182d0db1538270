package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"chit-fund-analyzer/domain"
	"chit-fund-analyzer/repository"
)

const cacheKeyPrefix = "chit:analysis:"

type ChitService struct {
	repo     repository.AnalysisRepository
	cache    repository.CacheRepository
	analyzer *Analyzer
}

// NewChitService creates a new ChitService with the given repository and cache.
func NewChitService(repo repository.AnalysisRepository,
	cache repository.CacheRepository,
	analyzer *Analyzer,
) *ChitService {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	return &ChitService{repo: repo, cache: cache, analyzer: analyzer}
}

// Analyze validates input and analyzes it, serving repeated requests from
// the cache. Cache and repository failures are logged, never returned.
func (s *ChitService) Analyze(
	input domain.ChitFundInput,
) (domain.ChitFundAnalysisResult, error) {

	cfg, err := domain.NewChitFundConfig(input)
	if err != nil {
		return domain.ChitFundAnalysisResult{}, err
	}

	key, keyErr := s.cacheKey(input)
	if keyErr != nil {
		log.Printf("Warning: failed to build cache key: %v", keyErr)
	} else if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			var result domain.ChitFundAnalysisResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result, nil
			}
			log.Printf("Warning: discarding unreadable cache entry %s", key)
		}
	}

	result, err := s.analyzer.Analyze(cfg)
	if err != nil {
		return domain.ChitFundAnalysisResult{}, err
	}

	// Saving is not critical
	if s.repo != nil {
		if err := s.repo.Save(input, result); err != nil {
			log.Printf("Warning: failed to save chit analysis: %v", err)
		}
	}

	if s.cache != nil && keyErr == nil {
		if payload, err := json.Marshal(result); err != nil {
			log.Printf("Warning: failed to encode analysis for cache: %v", err)
		} else if err := s.cache.Set(key, string(payload)); err != nil {
			log.Printf("Warning: failed to cache chit analysis: %v", err)
		}
	}

	return result, nil
}

// History lists the most recent stored analyses.
func (s *ChitService) History(limit int) ([]domain.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	records, err := s.repo.List(limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return records, nil
}

// cacheKey hashes the request together with the solver settings, which also
// determine the result.
func (s *ChitService) cacheKey(input domain.ChitFundInput) (string, error) {
	payload, err := json.Marshal(struct {
		Input  domain.ChitFundInput `json:"input"`
		Solver SolverConfig         `json:"solver"`
	}{input, s.analyzer.solver.Config()})
	if err != nil {
		return "", err
	}
	return cacheKeyPrefix + strconv.FormatUint(xxhash.Sum64(payload), 16), nil
}
