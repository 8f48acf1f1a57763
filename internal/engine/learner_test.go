package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aion-lab/aion-trading/internal/types"
)

type AdaptiveLearnerTestSuite struct {
	suite.Suite
	cfg     Config
	learner *AdaptiveLearner
}

func TestAdaptiveLearnerTestSuite(t *testing.T) {
	suite.Run(t, new(AdaptiveLearnerTestSuite))
}

func (s *AdaptiveLearnerTestSuite) SetupTest() {
	s.cfg = DefaultConfig()
	s.learner = NewAdaptiveLearner(&s.cfg)
}

func tradeOutcome(strategy types.Strategy, profit float64) types.Trade {
	return types.Trade{
		ID:       "T-test",
		Symbol:   "BTCUSDT",
		Strategy: strategy,
		Profit:   profit,
	}
}

func (s *AdaptiveLearnerTestSuite) TestInitialWeightsAreUniform() {
	weights := s.learner.Weights()

	s.Require().Len(weights, len(types.AllStrategies()))
	s.Require().InDelta(1.0, weights.Sum(), 1e-9)

	for _, strategy := range types.AllStrategies() {
		s.Require().InDelta(1.0/float64(len(types.AllStrategies())), weights[strategy], 1e-9)
	}
}

func (s *AdaptiveLearnerTestSuite) TestWinBoostsStrategyWeight() {
	before := s.learner.Weights()

	s.learner.Update(tradeOutcome(types.StrategyMomentum, 1.5))

	after := s.learner.Weights()
	s.Require().Greater(after[types.StrategyMomentum], before[types.StrategyMomentum])
	s.Require().Less(after[types.StrategyScalping], before[types.StrategyScalping])
}

func (s *AdaptiveLearnerTestSuite) TestLossDecaysStrategyWeight() {
	before := s.learner.Weights()

	s.learner.Update(tradeOutcome(types.StrategyMomentum, -1.5))

	after := s.learner.Weights()
	s.Require().Less(after[types.StrategyMomentum], before[types.StrategyMomentum])
}

func (s *AdaptiveLearnerTestSuite) TestWeightSumInvariantUnderManyUpdates() {
	strategies := types.AllStrategies()

	for i := 0; i < 500; i++ {
		profit := 1.0
		if i%3 == 0 {
			profit = -1.0
		}

		s.learner.Update(tradeOutcome(strategies[i%len(strategies)], profit))
		s.Require().InDelta(1.0, s.learner.Weights().Sum(), 1e-9)
	}
}

func (s *AdaptiveLearnerTestSuite) TestCompoundingSteps() {
	cases := []struct {
		wins   int
		factor float64
	}{
		{wins: 0, factor: 1.03},
		{wins: 7, factor: 1.03},
		{wins: 9, factor: 1.05},
		{wins: 11, factor: 1.08},
		{wins: 15, factor: 1.12},
		{wins: 20, factor: 1.12},
	}

	for _, tc := range cases {
		learner := NewAdaptiveLearner(&s.cfg)

		for i := 0; i < s.cfg.CompoundingWindow; i++ {
			profit := -1.0
			if i < tc.wins {
				profit = 1.0
			}

			learner.Update(tradeOutcome(types.StrategyMomentum, profit))
		}

		s.Require().InDelta(tc.factor, learner.CompoundingFactor(), 1e-9)
	}
}

func (s *AdaptiveLearnerTestSuite) TestCompoundingWindowSlides() {
	// 20 losses then 20 wins: the loss window should be fully evicted.
	for i := 0; i < s.cfg.CompoundingWindow; i++ {
		s.learner.Update(tradeOutcome(types.StrategyMomentum, -1.0))
	}

	s.Require().InDelta(1.03, s.learner.CompoundingFactor(), 1e-9)

	for i := 0; i < s.cfg.CompoundingWindow; i++ {
		s.learner.Update(tradeOutcome(types.StrategyMomentum, 1.0))
	}

	s.Require().InDelta(1.12, s.learner.CompoundingFactor(), 1e-9)
}

func (s *AdaptiveLearnerTestSuite) TestRestoreNormalizes() {
	s.learner.Restore(types.StrategyWeights{
		types.StrategyMomentum:      3,
		types.StrategyMeanReversion: 1,
	}, 1.08)

	weights := s.learner.Weights()
	s.Require().InDelta(1.0, weights.Sum(), 1e-9)
	s.Require().InDelta(0.75, weights[types.StrategyMomentum], 1e-9)
	s.Require().InDelta(1.08, s.learner.CompoundingFactor(), 1e-9)
}
