package engine

import (
	"math"
	"sync"

	"github.com/aion-lab/aion-trading/internal/types"
)

// Composite weights for the intelligence score. They sum to 1 and match the
// original deployment: 40% pattern recognition, 30% risk adjustment, 30%
// market adaptation.
const (
	patternWeight = 0.40
	riskWeight    = 0.30
	marketWeight  = 0.30

	// neutralRiskScore is returned for zero-variance windows.
	neutralRiskScore = 50.0
)

// IntelligenceScorer owns the composite intelligence score. It only reads
// ledger state (via the trade window handed to Recompute) and never mutates
// it.
type IntelligenceScorer struct {
	cfg *Config

	mu    sync.Mutex
	score types.IntelligenceScore
}

// NewIntelligenceScorer creates a scorer with the neutral starting score.
func NewIntelligenceScorer(cfg *Config) *IntelligenceScorer {
	return &IntelligenceScorer{
		cfg: cfg,
		score: types.IntelligenceScore{
			Score: 50,
		},
	}
}

// Restore replaces the score with a persisted value.
func (s *IntelligenceScorer) Restore(score types.IntelligenceScore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.score = score
}

// Score returns the current composite score.
func (s *IntelligenceScorer) Score() types.IntelligenceScore {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.score
}

// Recompute fully replaces the score from a rolling trade window. An empty
// window leaves the prior score in place.
func (s *IntelligenceScorer) Recompute(window []types.Trade) types.IntelligenceScore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(window) == 0 {
		return s.score
	}

	winRate := windowWinRate(window)
	pattern := clampScore(winRate * 100)
	risk := riskAdjustment(window)
	market := marketAdaptation(window, len(s.cfg.Symbols))

	s.score = types.IntelligenceScore{
		Score:              clampScore(pattern*patternWeight + risk*riskWeight + market*marketWeight),
		LearningRate:       pattern,
		PatternRecognition: pattern,
		RiskAdjustment:     risk,
		MarketAdaptation:   market,
	}

	return s.score
}

func windowWinRate(window []types.Trade) float64 {
	wins := 0

	for _, t := range window {
		if t.IsWin() {
			wins++
		}
	}

	return float64(wins) / float64(len(window))
}

// riskAdjustment is a Sharpe-like stability measure: the ratio of mean profit
// to profit standard deviation, mapped around the neutral midpoint. A
// zero-variance window resolves to the neutral constant rather than dividing
// by zero.
func riskAdjustment(window []types.Trade) float64 {
	mean := 0.0
	for _, t := range window {
		mean += t.Profit
	}

	mean /= float64(len(window))

	variance := 0.0
	for _, t := range window {
		d := t.Profit - mean
		variance += d * d
	}

	std := math.Sqrt(variance / float64(len(window)))
	if std == 0 {
		return neutralRiskScore
	}

	return clampScore(neutralRiskScore + 10*mean/std)
}

// marketAdaptation combines symbol diversity with strategy-switch frequency,
// normalized to [0,100].
func marketAdaptation(window []types.Trade, universeSize int) float64 {
	symbols := make(map[string]struct{})
	switches := 0

	for i, t := range window {
		symbols[t.Symbol] = struct{}{}

		if i > 0 && t.Strategy != window[i-1].Strategy {
			switches++
		}
	}

	if universeSize <= 0 {
		universeSize = 1
	}

	diversity := float64(len(symbols)) / float64(universeSize)
	if diversity > 1 {
		diversity = 1
	}

	switchRate := 0.0
	if len(window) > 1 {
		switchRate = float64(switches) / float64(len(window)-1)
	}

	return clampScore(60*diversity + 40*switchRate)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 100 {
		return 100
	}

	return v
}
