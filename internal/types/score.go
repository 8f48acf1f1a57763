package types

import "time"

// IntelligenceScore is a composite 0-100 metric summarizing recent decision
// quality. It is recomputed wholesale from a rolling trade window, never
// patched incrementally.
type IntelligenceScore struct {
	Score              float64 `yaml:"score" json:"score"`
	LearningRate       float64 `yaml:"learning_rate" json:"learning_rate"`
	PatternRecognition float64 `yaml:"pattern_recognition" json:"pattern_recognition"`
	RiskAdjustment     float64 `yaml:"risk_adjustment" json:"risk_adjustment"`
	MarketAdaptation   float64 `yaml:"market_adaptation" json:"market_adaptation"`
}

// StrategyWeights maps each strategy to its adaptive weight.
// Invariant: weights are non-negative and sum to 1 at every observation point.
type StrategyWeights map[Strategy]float64

// Sum returns the total of all weights.
func (w StrategyWeights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}

	return total
}

// Normalize rescales the weights in place so they sum to 1. A degenerate
// all-zero map is reset to uniform weights.
func (w StrategyWeights) Normalize() {
	total := w.Sum()
	if total <= 0 {
		uniform := 1.0 / float64(len(w))
		for k := range w {
			w[k] = uniform
		}

		return
	}

	for k := range w {
		w[k] /= total
	}
}

// Clone returns an independent copy of the weights.
func (w StrategyWeights) Clone() StrategyWeights {
	out := make(StrategyWeights, len(w))
	for k, v := range w {
		out[k] = v
	}

	return out
}

// GoalProgress is a pure function result of balance/time against the
// capital-growth goal.
type GoalProgress struct {
	ProgressPercent float64 `yaml:"progress_percent" json:"progress_percent"`
	DaysRemaining   int     `yaml:"days_remaining" json:"days_remaining"`
	// RequiredDailyReturn is the daily compounding rate (percent) needed to
	// reach the target from the current balance in the remaining days.
	RequiredDailyReturn float64 `yaml:"required_daily" json:"required_daily"`
	CurrentBalance      float64 `yaml:"current_balance" json:"current_balance"`
	TargetBalance       float64 `yaml:"target_balance" json:"target_balance"`
	InitialBalance      float64 `yaml:"initial_balance" json:"initial_balance"`
}

// EngineSnapshot is the persisted state of the engine, written by the core
// and loaded once at startup to resume a prior session.
type EngineSnapshot struct {
	Balance           float64               `yaml:"balance" json:"balance"`
	Trades            []Trade               `yaml:"trades" json:"trades"`
	Memory            []Trade               `yaml:"memory" json:"memory"`
	Performance       PerformanceSummary    `yaml:"performance" json:"performance"`
	BalanceHistory    []BalanceHistoryPoint `yaml:"balance_history" json:"balance_history"`
	Intelligence      IntelligenceScore     `yaml:"intelligence" json:"intelligence"`
	StrategyWeights   StrategyWeights       `yaml:"strategy_weights" json:"strategy_weights"`
	CompoundingFactor float64               `yaml:"compounding_factor" json:"compounding_factor"`
	LastUpdate        time.Time             `yaml:"last_update" json:"last_update"`
}
