package engine

import (
	"sync"

	"github.com/aion-lab/aion-trading/internal/types"
)

// Weight multipliers applied per outcome. Each update intentionally drifts the
// weights; renormalization keeps the sum-to-one invariant.
const (
	weightBoost = 1.01
	weightDecay = 0.99
)

// AdaptiveLearner owns the strategy weights and the compounding factor. It is
// the only component that mutates them.
type AdaptiveLearner struct {
	cfg *Config

	mu          sync.Mutex
	weights     types.StrategyWeights
	compounding float64
	// outcomes is the rolling win/loss window driving the compounding factor.
	outcomes []bool
}

// NewAdaptiveLearner creates a learner with uniform strategy weights and the
// lowest compounding step.
func NewAdaptiveLearner(cfg *Config) *AdaptiveLearner {
	weights := make(types.StrategyWeights)
	for _, s := range types.AllStrategies() {
		weights[s] = 1
	}

	weights.Normalize()

	return &AdaptiveLearner{
		cfg:         cfg,
		weights:     weights,
		compounding: 1.03,
	}
}

// Restore replaces the learner state with persisted values.
func (a *AdaptiveLearner) Restore(weights types.StrategyWeights, compounding float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(weights) > 0 {
		a.weights = weights.Clone()
		a.weights.Normalize()
	}

	if compounding >= 1 {
		a.compounding = compounding
	}
}

// Update adjusts the weight of the trade's strategy (up on profit, down on
// loss), renormalizes, and recomputes the compounding factor from the rolling
// win rate.
func (a *AdaptiveLearner) Update(trade types.Trade) {
	a.mu.Lock()
	defer a.mu.Unlock()

	factor := weightDecay
	if trade.IsWin() {
		factor = weightBoost
	}

	if _, ok := a.weights[trade.Strategy]; ok {
		a.weights[trade.Strategy] *= factor
	}

	a.weights.Normalize()

	a.outcomes = append(a.outcomes, trade.IsWin())
	if len(a.outcomes) > a.cfg.CompoundingWindow {
		a.outcomes = a.outcomes[len(a.outcomes)-a.cfg.CompoundingWindow:]
	}

	a.compounding = compoundingFor(a.winRateLocked())
}

// Weights returns a copy of the current strategy weights.
func (a *AdaptiveLearner) Weights() types.StrategyWeights {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.weights.Clone()
}

// CompoundingFactor returns the current compounding factor.
func (a *AdaptiveLearner) CompoundingFactor() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.compounding
}

func (a *AdaptiveLearner) winRateLocked() float64 {
	if len(a.outcomes) == 0 {
		return 0
	}

	wins := 0

	for _, w := range a.outcomes {
		if w {
			wins++
		}
	}

	return float64(wins) / float64(len(a.outcomes))
}

// compoundingFor maps the rolling win rate to a compounding factor through a
// monotonic step function bounded to [1.03, 1.12].
func compoundingFor(winRate float64) float64 {
	switch {
	case winRate < 0.40:
		return 1.03
	case winRate < 0.50:
		return 1.05
	case winRate < 0.60:
		return 1.08
	default:
		return 1.12
	}
}
