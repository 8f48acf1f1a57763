package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GoalProgressTestSuite struct {
	suite.Suite
	start time.Time
}

func TestGoalProgressTestSuite(t *testing.T) {
	suite.Run(t, new(GoalProgressTestSuite))
}

func (s *GoalProgressTestSuite) SetupTest() {
	s.start = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func (s *GoalProgressTestSuite) TestHalfwayProgress() {
	progress := GoalProgress(2525, 50, 5000, s.start, 90, s.start.Add(24*time.Hour))

	s.Require().InDelta(50.0, progress.ProgressPercent, 1e-9)
	s.Require().Equal(89, progress.DaysRemaining)
}

func (s *GoalProgressTestSuite) TestProgressCappedAtHundred() {
	progress := GoalProgress(6000, 50, 5000, s.start, 90, s.start)

	s.Require().InDelta(100.0, progress.ProgressPercent, 1e-9)
	s.Require().InDelta(0.0, progress.RequiredDailyReturn, 1e-9)
}

func (s *GoalProgressTestSuite) TestRequiredDailyReturnAtStart() {
	progress := GoalProgress(50, 50, 5000, s.start, 90, s.start)

	// (5000/50)^(1/90) - 1 as a percentage.
	s.Require().InDelta(5.25, progress.RequiredDailyReturn, 0.01)
	s.Require().Equal(90, progress.DaysRemaining)
	s.Require().InDelta(0.0, progress.ProgressPercent, 1e-9)
}

func (s *GoalProgressTestSuite) TestHorizonElapsed() {
	progress := GoalProgress(100, 50, 5000, s.start, 90, s.start.Add(91*24*time.Hour))

	s.Require().Equal(0, progress.DaysRemaining)
	s.Require().InDelta(0.0, progress.RequiredDailyReturn, 1e-9)
}

func (s *GoalProgressTestSuite) TestNegativeProgressWhenBelowInitial() {
	progress := GoalProgress(40, 50, 5000, s.start, 90, s.start)

	s.Require().Less(progress.ProgressPercent, 0.0)
}
