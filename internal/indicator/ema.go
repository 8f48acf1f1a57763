package indicator

import "github.com/aion-lab/aion-trading/pkg/errors"

// EMA calculates the Exponential Moving Average of the close series,
// returning the latest value. The series is seeded with a simple average of
// the first period closes.
func EMA(closes []float64, period int) (float64, error) {
	series, err := emaSeries(closes, period)
	if err != nil {
		return 0, err
	}

	return series[len(series)-1], nil
}

// emaSeries computes the full EMA series aligned to closes[period-1:].
func emaSeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "period must be positive, got %d", period)
	}

	if len(closes) < period {
		return nil, errors.Newf(errors.ErrCodeInsufficientHistory,
			"EMA needs %d closes, got %d", period, len(closes))
	}

	seed := 0.0
	for _, c := range closes[:period] {
		seed += c
	}

	seed /= float64(period)
	multiplier := 2.0 / float64(period+1)

	series := make([]float64, 0, len(closes)-period+1)
	series = append(series, seed)

	prev := seed
	for _, c := range closes[period:] {
		prev = (c-prev)*multiplier + prev
		series = append(series, prev)
	}

	return series, nil
}
