package service

const (
	MaxScenarios = 1000 // bids evaluated per sweep request
	MaxWorkers   = 64

	// Comparative analysis defaults.
	MinimalLateBid         = 1000.0 // bid assumed when winning at the last installment
	DefaultReinvestRate    = 0.12   // annual return on the reinvested lump sum
	DefaultSIPReturnRate   = 0.12   // annual return of the SIP alternative
	MaxComparisonScenarios = 3

	// Tolerance used when comparing annual IRRs for ties.
	RateEpsilon = 1e-12
)
