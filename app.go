package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"chit-fund-analyzer/config"
	"chit-fund-analyzer/repository"
	"chit-fund-analyzer/service"
)

// app holds the services shared by the CLI commands and the HTTP API.
type app struct {
	chit        *service.ChitService
	engine      *service.ScenarioEngine
	comparative *service.ComparativeAnalyzer
	advisor     *service.AdvisorService

	closers []func() error
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{}

	solver := service.NewIRRSolver(solverConfig(cfg.Solver))
	analyzer := service.NewAnalyzer(solver)

	repo, err := a.openRepository(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.chit = service.NewChitService(repo, a.openCache(cfg.Cache), analyzer)
	a.engine = service.NewScenarioEngine(analyzer, cfg.Scenario.Workers, cfg.Logging.Debug())
	a.comparative = service.NewComparativeAnalyzer(analyzer, solver)
	a.advisor = service.NewAdvisorService(cfg.Advisor.OpenAIKey, cfg.Advisor.Model,
		time.Duration(cfg.Advisor.TimeoutSec)*time.Second)
	return a, nil
}

// solverConfig maps the solver section of the config file onto the solver.
func solverConfig(sc config.SolverConfig) service.SolverConfig {
	return service.SolverConfig{
		MinRate:       sc.MinRate,
		MaxRate:       sc.MaxRate,
		ScanPoints:    sc.ScanPoints,
		Tolerance:     sc.Tolerance,
		MaxIterations: sc.MaxIterations,
	}
}

func (a *app) openRepository(sc config.StorageConfig) (repository.AnalysisRepository, error) {
	switch sc.Driver {
	case "", "memory":
		return repository.NewAnalysisRepositoryMemory(), nil
	case repository.DriverSQLite, repository.DriverPostgres:
		db, err := repository.OpenSQL(sc.Driver, sc.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", sc.Driver, err)
		}
		a.closers = append(a.closers, db.Close)
		if err := repository.InitSchema(db); err != nil {
			return nil, fmt.Errorf("init %s schema: %w", sc.Driver, err)
		}
		return repository.NewSQLAnalysisRepository(db, sc.Driver), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", sc.Driver)
}

// openCache falls back to the in-process cache when Redis is unreachable.
func (a *app) openCache(cc config.CacheConfig) repository.CacheRepository {
	if cc.Provider != "redis" {
		return repository.NewMockCache()
	}

	rc := repository.NewRedisCache(cc.RedisAddr, cc.RedisPass, cc.RedisDB, cc.KeyPrefix,
		time.Duration(cc.TTLSeconds)*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Printf("Warning: redis at %s unavailable, using in-memory cache: %v", cc.RedisAddr, err)
		rc.Close()
		return repository.NewMockCache()
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: close failed: %v", err)
		}
	}
	a.closers = nil
}
