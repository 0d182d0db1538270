package main

import (
	"os"
	"path/filepath"
	"testing"

	"chit-fund-analyzer/config"
	"chit-fund-analyzer/service"
)

func TestSolverConfig_FromFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "solver:\n  min_rate: 0.000001\n  max_rate: 50\n  scan_points: 300\n  tolerance: 0.0000001\n  max_iterations: 80\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	got := service.NewIRRSolver(solverConfig(cfg.Solver)).Config()

	want := service.SolverConfig{MinRate: 1e-6, MaxRate: 50, ScanPoints: 300, Tolerance: 1e-7, MaxIterations: 80}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSolverConfig_DefaultsMatchSolver(t *testing.T) {

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := solverConfig(cfg.Solver); got != service.DefaultSolverConfig() {
		t.Errorf("config defaults %+v differ from solver defaults %+v", got, service.DefaultSolverConfig())
	}
}
