package engine

import (
	"math/rand"

	"github.com/aion-lab/aion-trading/internal/types"
)

// NormalSource yields standard-normal draws. The production source is a
// seeded *rand.Rand; tests inject a zero source for determinism.
type NormalSource interface {
	NormFloat64() float64
}

// zeroSource disables the stochastic perturbation entirely.
type zeroSource struct{}

func (zeroSource) NormFloat64() float64 { return 0 }

// ZeroSource returns a NormalSource that always draws zero.
func ZeroSource() NormalSource { return zeroSource{} }

// NewRandSource returns a seeded pseudo-random source.
func NewRandSource(seed int64) NormalSource {
	return rand.New(rand.NewSource(seed))
}

// OutcomeEstimator produces a bounded simulated profit for an accepted
// signal. It is the only stochastic element in the system and never mutates
// balance itself; the ledger applies the result.
type OutcomeEstimator struct {
	cfg *Config
	rng NormalSource
}

// NewOutcomeEstimator creates an estimator with the given random source.
func NewOutcomeEstimator(cfg *Config, rng NormalSource) *OutcomeEstimator {
	if rng == nil {
		rng = ZeroSource()
	}

	return &OutcomeEstimator{cfg: cfg, rng: rng}
}

// Estimate computes the simulated profit for a signal and notional:
//
//	return = base_return(strategy) + (confidence-0.5)*slope + perturbation
//	return *= compoundingFactor
//	profit = notional * return, clamped to [-MaxLossFraction, +MaxProfitFraction] of notional
//
// The perturbation is a zero-mean gaussian scaled by the symbol volatility
// factor and truncated at three standard deviations, so realized profit
// tracks base_return + confidence_term in expectation.
func (e *OutcomeEstimator) Estimate(signal types.Signal, notional, compoundingFactor float64) float64 {
	baseReturn := e.cfg.BaseReturn(signal.Strategy)
	confidenceTerm := (signal.Confidence - 0.5) * e.cfg.ConfidenceSlope

	sigma := e.cfg.PerturbationStdDev * e.cfg.VolatilityFactor(signal.Symbol)
	perturbation := e.rng.NormFloat64() * sigma

	if limit := 3 * sigma; perturbation > limit {
		perturbation = limit
	} else if perturbation < -limit {
		perturbation = -limit
	}

	totalReturn := (baseReturn + confidenceTerm + perturbation) * compoundingFactor

	profit := notional * totalReturn

	maxProfit := notional * e.cfg.MaxProfitFraction
	maxLoss := -notional * e.cfg.MaxLossFraction

	if profit > maxProfit {
		profit = maxProfit
	}

	if profit < maxLoss {
		profit = maxLoss
	}

	return profit
}
