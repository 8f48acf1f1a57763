package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/aion-lab/aion-trading/internal/indicator"
	"github.com/aion-lab/aion-trading/internal/types"
)

// SignalGenerator turns an indicator snapshot plus the current price into at
// most one trade signal. It is a pure function of its inputs and the static
// threshold configuration: no side effects, no shared state.
type SignalGenerator struct {
	cfg *Config
}

// NewSignalGenerator creates a signal generator bound to the given config.
func NewSignalGenerator(cfg *Config) *SignalGenerator {
	return &SignalGenerator{cfg: cfg}
}

// rule evaluates one strategy against a snapshot, yielding a candidate signal.
type rule func(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool)

// Generate applies the ordered monitoring rule set and returns the candidate
// with the highest confidence. Ties go to the earlier rule. Returns false when
// the price is implausible or no rule fires.
func (g *SignalGenerator) Generate(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if !g.plausible(symbol, price) {
		return types.Signal{}, false
	}

	rules := []rule{
		g.meanReversion,
		g.momentum,
		g.trendFollowing,
		g.breakout,
		g.scalping,
	}

	return bestCandidate(rules, symbol, snap, price, now)
}

// Quick applies the opportunity-scan rule set (aggressive oversold/overbought
// thresholds) used to rank symbols across the whole universe.
func (g *SignalGenerator) Quick(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if !g.plausible(symbol, price) {
		return types.Signal{}, false
	}

	rules := []rule{
		g.quickReversal,
		g.quickMomentum,
	}

	return bestCandidate(rules, symbol, snap, price, now)
}

// bestCandidate picks the highest-confidence firing rule; a strict comparison
// keeps the first rule on ties.
func bestCandidate(rules []rule, symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	var best types.Signal

	found := false

	for _, r := range rules {
		candidate, ok := r(symbol, snap, price, now)
		if !ok {
			continue
		}

		if !found || candidate.Confidence > best.Confidence {
			best = candidate
			found = true
		}
	}

	return best, found
}

// plausible rejects non-positive prices and quotes outside the configured
// per-symbol band. Symbols without a configured band are accepted.
func (g *SignalGenerator) plausible(symbol string, price float64) bool {
	if price <= 0 {
		return false
	}

	band, ok := g.cfg.PlausibilityBands[symbol]
	if !ok {
		return true
	}

	return band.Contains(price)
}

// meanReversion buys oversold RSI with positive MACD confirmation.
func (g *SignalGenerator) meanReversion(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if snap.RSI >= 35 || snap.MACDDiff <= 0 {
		return types.Signal{}, false
	}

	confidence := math.Min(0.85, 0.70+(35-snap.RSI)/35*0.3)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionBuy,
		Strategy:   types.StrategyMeanReversion,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("RSI oversold (%.1f) with positive MACD confirmation", snap.RSI),
		Time:       now,
	}, true
}

// momentum sells overbought RSI with negative MACD confirmation.
func (g *SignalGenerator) momentum(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if snap.RSI <= 65 || snap.MACDDiff >= 0 {
		return types.Signal{}, false
	}

	confidence := math.Min(0.82, 0.65+(snap.RSI-65)/35*0.3)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionSell,
		Strategy:   types.StrategyMomentum,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("RSI overbought (%.1f) with negative MACD confirmation", snap.RSI),
		Time:       now,
	}, true
}

// trendFollowing buys a confirmed uptrend that is not yet overbought.
func (g *SignalGenerator) trendFollowing(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if snap.EMAFast <= snap.EMASlow || snap.MACDDiff <= 0 {
		return types.Signal{}, false
	}

	if snap.RSI < 45 || snap.RSI > 62 {
		return types.Signal{}, false
	}

	spread := (snap.EMAFast - snap.EMASlow) / snap.EMASlow
	confidence := math.Min(0.80, 0.60+spread*20)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionBuy,
		Strategy:   types.StrategyTrendFollowing,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("EMA uptrend (spread %.2f%%) with MACD confirmation", spread*100),
		Time:       now,
	}, true
}

// breakout buys a close above the upper Bollinger band on a volume surge.
func (g *SignalGenerator) breakout(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if price <= snap.BollingerUpper || snap.VolumeRatio <= 1.5 {
		return types.Signal{}, false
	}

	confidence := math.Min(0.78, 0.62+(snap.VolumeRatio-1.5)*0.08)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionBuy,
		Strategy:   types.StrategyBreakout,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("Breakout above upper band on %.1fx volume", snap.VolumeRatio),
		Time:       now,
	}, true
}

// scalping buys a tight band squeeze with mid-range RSI and positive MACD.
func (g *SignalGenerator) scalping(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if snap.BollingerMiddle <= 0 || snap.MACDDiff <= 0 {
		return types.Signal{}, false
	}

	width := (snap.BollingerUpper - snap.BollingerLower) / snap.BollingerMiddle
	if width >= 0.02 {
		return types.Signal{}, false
	}

	if snap.RSI < 40 || snap.RSI > 60 {
		return types.Signal{}, false
	}

	confidence := math.Min(0.72, 0.58+(0.02-width)*5)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionBuy,
		Strategy:   types.StrategyScalping,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("Band squeeze (width %.2f%%) with positive MACD", width*100),
		Time:       now,
	}, true
}

// quickReversal buys deeply oversold RSI without waiting for MACD confirmation.
func (g *SignalGenerator) quickReversal(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if snap.RSI >= 30 {
		return types.Signal{}, false
	}

	confidence := math.Min(0.90, 0.72+(30-snap.RSI)/30*0.3)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionBuy,
		Strategy:   types.StrategyQuickReversal,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("Deep oversold RSI (%.1f)", snap.RSI),
		Time:       now,
	}, true
}

// quickMomentum sells deeply overbought RSI without waiting for MACD confirmation.
func (g *SignalGenerator) quickMomentum(symbol string, snap indicator.Snapshot, price float64, now time.Time) (types.Signal, bool) {
	if snap.RSI <= 70 {
		return types.Signal{}, false
	}

	confidence := math.Min(0.88, 0.70+(snap.RSI-70)/30*0.3)

	return types.Signal{
		Symbol:     symbol,
		Action:     types.TradeActionSell,
		Strategy:   types.StrategyQuickMomentum,
		Confidence: confidence,
		Price:      price,
		RSI:        snap.RSI,
		MACDDiff:   snap.MACDDiff,
		Reason:     fmt.Sprintf("Deep overbought RSI (%.1f)", snap.RSI),
		Time:       now,
	}, true
}
