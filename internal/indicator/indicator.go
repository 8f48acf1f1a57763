// Package indicator computes technical indicator values over candle series.
// It is a pure function of its inputs: candles in, a snapshot of scalar
// indicator values out.
package indicator

import (
	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

// MinimumHistory is the minimum number of candles required to produce a
// snapshot. Shorter series yield an insufficient-history error which callers
// treat as "no signal", not a failure.
const MinimumHistory = 50

// Default indicator windows.
const (
	DefaultRSIPeriod        = 14
	DefaultEMAFastPeriod    = 12
	DefaultEMASlowPeriod    = 26
	DefaultMACDSignalPeriod = 9
	DefaultBollingerPeriod  = 20
	DefaultBollingerDev     = 2.0
	volumeLookback          = 20
)

// Snapshot holds the scalar indicator values for a symbol at the time of the
// latest candle.
type Snapshot struct {
	Symbol string
	// Price is the close of the latest candle. Callers may override it with a
	// fresher live quote before signal generation.
	Price float64

	RSI        float64
	MACD       float64
	MACDSignal float64
	// MACDDiff is the MACD histogram value (macd - signal line).
	MACDDiff float64

	EMAFast float64
	EMASlow float64

	BollingerUpper  float64
	BollingerMiddle float64
	BollingerLower  float64

	// VolumeRatio is the latest volume relative to the trailing average.
	VolumeRatio float64
}

// Compute derives a Snapshot from a candle series. The series must be in
// chronological order and contain at least MinimumHistory candles.
func Compute(candles []types.Candle) (Snapshot, error) {
	if len(candles) < MinimumHistory {
		return Snapshot{}, errors.Newf(errors.ErrCodeInsufficientHistory,
			"need at least %d candles, got %d", MinimumHistory, len(candles))
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsi, err := RSI(closes, DefaultRSIPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	macd, signal, diff, err := MACD(closes, DefaultEMAFastPeriod, DefaultEMASlowPeriod, DefaultMACDSignalPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	emaFast, err := EMA(closes, DefaultEMAFastPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	emaSlow, err := EMA(closes, DefaultEMASlowPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	upper, middle, lower, err := Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerDev)
	if err != nil {
		return Snapshot{}, err
	}

	last := candles[len(candles)-1]

	return Snapshot{
		Symbol:          last.Symbol,
		Price:           last.Close,
		RSI:             rsi,
		MACD:            macd,
		MACDSignal:      signal,
		MACDDiff:        diff,
		EMAFast:         emaFast,
		EMASlow:         emaSlow,
		BollingerUpper:  upper,
		BollingerMiddle: middle,
		BollingerLower:  lower,
		VolumeRatio:     volumeRatio(candles, volumeLookback),
	}, nil
}

// volumeRatio compares the latest volume against the trailing average over
// the lookback window. Returns 1 when the average is zero.
func volumeRatio(candles []types.Candle, lookback int) float64 {
	if len(candles) < lookback+1 {
		return 1
	}

	total := 0.0
	for _, c := range candles[len(candles)-1-lookback : len(candles)-1] {
		total += c.Volume
	}

	avg := total / float64(lookback)
	if avg <= 0 {
		return 1
	}

	return candles[len(candles)-1].Volume / avg
}
