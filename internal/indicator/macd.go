package indicator

import "github.com/aion-lab/aion-trading/pkg/errors"

// MACD calculates the Moving Average Convergence Divergence line, its signal
// line and the histogram (macd - signal) for the close series.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, diff float64, err error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return 0, 0, 0, errors.New(errors.ErrCodeInvalidParameter, "MACD periods must be positive")
	}

	if fastPeriod >= slowPeriod {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInvalidParameter,
			"fast period %d must be shorter than slow period %d", fastPeriod, slowPeriod)
	}

	if len(closes) < slowPeriod+signalPeriod {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInsufficientHistory,
			"MACD needs %d closes, got %d", slowPeriod+signalPeriod, len(closes))
	}

	fastSeries, err := emaSeries(closes, fastPeriod)
	if err != nil {
		return 0, 0, 0, err
	}

	slowSeries, err := emaSeries(closes, slowPeriod)
	if err != nil {
		return 0, 0, 0, err
	}

	// Align the fast series to the slow series start.
	offset := slowPeriod - fastPeriod
	macdLine := make([]float64, len(slowSeries))

	for i := range slowSeries {
		macdLine[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries, err := emaSeries(macdLine, signalPeriod)
	if err != nil {
		return 0, 0, 0, err
	}

	macd = macdLine[len(macdLine)-1]
	signal = signalSeries[len(signalSeries)-1]

	return macd, signal, macd - signal, nil
}
