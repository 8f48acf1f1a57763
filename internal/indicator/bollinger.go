package indicator

import (
	"math"

	"github.com/aion-lab/aion-trading/pkg/errors"
)

// Bollinger calculates Bollinger Bands over the close series: a simple moving
// average middle band and upper/lower bands at dev standard deviations.
func Bollinger(closes []float64, period int, dev float64) (upper, middle, lower float64, err error) {
	if period <= 0 {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInvalidParameter, "period must be positive, got %d", period)
	}

	if len(closes) < period {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInsufficientHistory,
			"Bollinger needs %d closes, got %d", period, len(closes))
	}

	window := closes[len(closes)-period:]

	sum := 0.0
	for _, c := range window {
		sum += c
	}

	middle = sum / float64(period)

	variance := 0.0
	for _, c := range window {
		d := c - middle
		variance += d * d
	}

	std := math.Sqrt(variance / float64(period))

	return middle + dev*std, middle, middle - dev*std, nil
}
