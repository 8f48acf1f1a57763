package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StrategyWeightsTestSuite struct {
	suite.Suite
}

func TestStrategyWeightsTestSuite(t *testing.T) {
	suite.Run(t, new(StrategyWeightsTestSuite))
}

func (s *StrategyWeightsTestSuite) TestNormalize() {
	w := StrategyWeights{
		StrategyMomentum:      3,
		StrategyMeanReversion: 1,
	}

	w.Normalize()

	s.Require().InDelta(1.0, w.Sum(), 1e-9)
	s.Require().InDelta(0.75, w[StrategyMomentum], 1e-9)
}

func (s *StrategyWeightsTestSuite) TestNormalizeAllZeroResetsToUniform() {
	w := StrategyWeights{}
	for _, strategy := range AllStrategies() {
		w[strategy] = 0
	}

	w.Normalize()

	s.Require().InDelta(1.0, w.Sum(), 1e-9)
	for _, strategy := range AllStrategies() {
		s.Require().InDelta(1.0/float64(len(AllStrategies())), w[strategy], 1e-9)
	}
}

func (s *StrategyWeightsTestSuite) TestCloneIsIndependent() {
	w := StrategyWeights{StrategyMomentum: 1}
	c := w.Clone()
	c[StrategyMomentum] = 2

	s.Require().InDelta(1.0, w[StrategyMomentum], 1e-9)
}

type SignalValidationTestSuite struct {
	suite.Suite
}

func TestSignalValidationTestSuite(t *testing.T) {
	suite.Run(t, new(SignalValidationTestSuite))
}

func (s *SignalValidationTestSuite) TestValidSignal() {
	sig := Signal{
		Symbol:     "BTCUSDT",
		Action:     TradeActionBuy,
		Strategy:   StrategyMeanReversion,
		Confidence: 0.8,
		Price:      50000,
	}

	s.Require().NoError(sig.Validate())
}

func (s *SignalValidationTestSuite) TestRejectsUnknownStrategy() {
	sig := Signal{
		Symbol:     "BTCUSDT",
		Action:     TradeActionBuy,
		Strategy:   Strategy("martingale"),
		Confidence: 0.8,
		Price:      50000,
	}

	s.Require().Error(sig.Validate())
}

func (s *SignalValidationTestSuite) TestRejectsOutOfRangeConfidence() {
	sig := Signal{
		Symbol:     "BTCUSDT",
		Action:     TradeActionBuy,
		Strategy:   StrategyMeanReversion,
		Confidence: 1.5,
		Price:      50000,
	}

	s.Require().Error(sig.Validate())
}

func (s *SignalValidationTestSuite) TestStrategyEnumIsClosed() {
	s.Require().Len(AllStrategies(), 7)

	for _, strategy := range AllStrategies() {
		s.Require().True(strategy.Valid())
	}

	s.Require().False(Strategy("martingale").Valid())
}
