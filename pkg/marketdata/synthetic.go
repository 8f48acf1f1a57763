package marketdata

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

const defaultSyntheticSeed = 42

// Reference prices for well-known symbols. Unknown symbols fall back to 100.
var syntheticBasePrices = map[string]float64{
	"BTCUSDT":  43000,
	"ETHUSDT":  2600,
	"SOLUSDT":  145,
	"BNBUSDT":  310,
	"XRPUSDT":  0.55,
	"ADAUSDT":  0.48,
	"DOGEUSDT": 0.12,
}

// SyntheticProvider generates a deterministic seeded price walk per symbol.
// The same seed, symbol and call sequence always produce the same candles, so
// simulations are reproducible.
type SyntheticProvider struct {
	seed  int64
	drift float64
	sigma float64

	mu    sync.Mutex
	calls map[string]int64
	clock func() time.Time
}

// NewSyntheticProvider creates a provider with a mild upward drift.
func NewSyntheticProvider(seed int64) *SyntheticProvider {
	return &SyntheticProvider{
		seed:  seed,
		drift: 0.0001,
		sigma: 0.004,
		calls: make(map[string]int64),
		clock: time.Now,
	}
}

// NewSyntheticProviderWithDrift creates a provider with a custom per-candle
// drift. A strongly negative drift pushes RSI into oversold territory, which
// is useful for exercising reversal rules.
func NewSyntheticProviderWithDrift(seed int64, drift float64) *SyntheticProvider {
	p := NewSyntheticProvider(seed)
	p.drift = drift

	return p
}

func (p *SyntheticProvider) Name() string { return string(ProviderSynthetic) }

// Candles generates limit candles for the symbol. Consecutive calls for the
// same symbol continue the same walk, so the feed evolves over time while
// staying fully reproducible.
func (p *SyntheticProvider) Candles(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "candle limit must be positive, got %d", limit)
	}

	p.mu.Lock()
	call := p.calls[symbol]
	p.calls[symbol]++
	now := p.clock()
	p.mu.Unlock()

	step := intervalDuration(interval)
	rng := rand.New(rand.NewSource(p.seed + int64(symbolHash(symbol))))

	price := basePrice(symbol)
	total := int64(limit) + call

	candles := make([]types.Candle, 0, limit)

	for i := int64(0); i < total; i++ {
		open := price
		ret := p.drift + rng.NormFloat64()*p.sigma
		price = open * (1 + ret)

		high := open
		if price > high {
			high = price
		}

		low := open
		if price < low {
			low = price
		}

		high *= 1 + rng.Float64()*0.001
		low *= 1 - rng.Float64()*0.001

		// Only the trailing window is returned; earlier candles just
		// advance the walk.
		if i < total-int64(limit) {
			continue
		}

		offset := time.Duration(total-1-i) * step

		candles = append(candles, types.Candle{
			Symbol: symbol,
			Time:   now.Add(-offset),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1000 + rng.Float64()*500,
		})
	}

	return candles, nil
}

// Quote returns the close of the walk's current candle.
func (p *SyntheticProvider) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	candles, err := p.Candles(ctx, symbol, "1m", 1)
	if err != nil {
		return types.Quote{}, err
	}

	last := candles[len(candles)-1]

	return types.Quote{
		Symbol: symbol,
		Price:  last.Close,
		Time:   last.Time,
	}, nil
}

func basePrice(symbol string) float64 {
	if p, ok := syntheticBasePrices[symbol]; ok {
		return p
	}

	return 100
}

func symbolHash(symbol string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))

	return h.Sum32()
}

func intervalDuration(interval string) time.Duration {
	if d, err := time.ParseDuration(interval); err == nil {
		return d
	}

	return time.Minute
}

var _ Provider = (*SyntheticProvider)(nil)
