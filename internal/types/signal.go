package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aion-lab/aion-trading/pkg/errors"
)

// TradeAction is the direction of a proposed trade.
type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Strategy is a closed enumeration of the decision rules the engine knows.
// Adding a strategy means extending this list, the base-return table and the
// generator's rule set together.
type Strategy string

const (
	StrategyMeanReversion  Strategy = "mean_reversion"
	StrategyMomentum       Strategy = "momentum"
	StrategyTrendFollowing Strategy = "trend_following"
	StrategyBreakout       Strategy = "breakout"
	StrategyQuickReversal  Strategy = "quick_reversal"
	StrategyQuickMomentum  Strategy = "quick_momentum"
	StrategyScalping       Strategy = "scalping"
)

// AllStrategies lists every known strategy in a stable order.
func AllStrategies() []Strategy {
	return []Strategy{
		StrategyMeanReversion,
		StrategyMomentum,
		StrategyTrendFollowing,
		StrategyBreakout,
		StrategyQuickReversal,
		StrategyQuickMomentum,
		StrategyScalping,
	}
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMeanReversion, StrategyMomentum, StrategyTrendFollowing,
		StrategyBreakout, StrategyQuickReversal, StrategyQuickMomentum, StrategyScalping:
		return true
	default:
		return false
	}
}

// Signal is a proposed trade action with an associated confidence, produced
// from indicator values. A signal is immutable once produced and consumed
// exactly once by the sizing/estimation pipeline that generated it.
type Signal struct {
	Symbol     string      `yaml:"symbol" json:"symbol" validate:"required"`
	Action     TradeAction `yaml:"action" json:"action" validate:"required,oneof=BUY SELL"`
	Strategy   Strategy    `yaml:"strategy" json:"strategy" validate:"required"`
	Confidence float64     `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	// Price is the reference price the signal was generated against.
	Price float64 `yaml:"price" json:"price" validate:"required,gt=0"`
	// RSI and MACDDiff are the supporting indicator values at generation time.
	RSI      float64 `yaml:"rsi" json:"rsi"`
	MACDDiff float64 `yaml:"macd_diff" json:"macd_diff"`
	// Reason is a human-readable rationale for the signal.
	Reason string    `yaml:"reason" json:"reason"`
	Time   time.Time `yaml:"time" json:"time"`
}

// Validate validates the Signal struct.
func (s *Signal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid signal", err)
	}

	if !s.Strategy.Valid() {
		return errors.Newf(errors.ErrCodeInvalidSignal, "unknown strategy %q", s.Strategy)
	}

	return nil
}
