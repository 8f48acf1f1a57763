package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PositionSizerTestSuite struct {
	suite.Suite
	cfg   Config
	sizer *PositionSizer
}

func TestPositionSizerTestSuite(t *testing.T) {
	suite.Run(t, new(PositionSizerTestSuite))
}

func (s *PositionSizerTestSuite) SetupTest() {
	s.cfg = DefaultConfig()
	s.sizer = NewPositionSizer(&s.cfg)
}

func (s *PositionSizerTestSuite) TestFloorApplies() {
	// 1000 * 0.005 = 5, below the 10 floor.
	s.Require().InDelta(10.0, s.sizer.Size(1000, 0.5), 1e-9)
}

func (s *PositionSizerTestSuite) TestConfidenceScaling() {
	// 10000 * 0.005 = 50, scaled by 1.3 for confidence 0.8.
	s.Require().InDelta(65.0, s.sizer.Size(10000, 0.8), 1e-9)
}

func (s *PositionSizerTestSuite) TestLowConfidenceDoesNotScale() {
	s.Require().InDelta(50.0, s.sizer.Size(10000, 0.3), 1e-9)
	s.Require().InDelta(50.0, s.sizer.Size(10000, 0.5), 1e-9)
}

func (s *PositionSizerTestSuite) TestExposureCapWinsOverFloor() {
	// Balance 50: floor 10 exceeds the 10% cap of 5; the cap wins.
	s.Require().InDelta(5.0, s.sizer.Size(50, 0.9), 1e-9)
}

func (s *PositionSizerTestSuite) TestNeverExceedsExposureCap() {
	for _, balance := range []float64{20, 50, 100, 500, 1000, 5000, 100000} {
		for _, confidence := range []float64{0.0, 0.5, 0.7, 0.9, 1.0} {
			notional := s.sizer.Size(balance, confidence)
			s.Require().LessOrEqual(notional, balance*s.cfg.MaxExposureFraction+1e-9)
		}
	}
}
