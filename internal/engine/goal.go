package engine

import (
	"math"
	"time"

	"github.com/aion-lab/aion-trading/internal/types"
)

// GoalProgress computes progress toward the capital-growth goal. It is a pure
// function: no side effects, no shared state.
//
// Degenerate cases resolve to fixed values: zero days remaining yields a
// required daily return of 0, and progress is capped at 100%.
func GoalProgress(balance, initial, target float64, start time.Time, horizonDays int, now time.Time) types.GoalProgress {
	progress := (balance - initial) / (target - initial) * 100
	if progress > 100 {
		progress = 100
	}

	elapsedDays := int(now.Sub(start).Hours() / 24)

	daysRemaining := horizonDays - elapsedDays
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	requiredDaily := 0.0
	if daysRemaining > 0 && balance > 0 && target > balance {
		requiredDaily = (math.Pow(target/balance, 1/float64(daysRemaining)) - 1) * 100
	}

	return types.GoalProgress{
		ProgressPercent:     progress,
		DaysRemaining:       daysRemaining,
		RequiredDailyReturn: requiredDaily,
		CurrentBalance:      balance,
		TargetBalance:       target,
		InitialBalance:      initial,
	}
}
