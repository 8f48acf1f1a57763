package marketdata

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

// KlinesService abstracts the Binance kline endpoint for testing.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// ListPricesService abstracts the Binance ticker endpoint for testing.
type ListPricesService interface {
	Symbol(symbol string) ListPricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// BinanceAPI is the subset of the Binance client the provider uses.
type BinanceAPI interface {
	NewKlinesService() KlinesService
	NewListPricesService() ListPricesService
}

type realBinanceAPI struct {
	client *binance.Client
}

func (r *realBinanceAPI) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

func (r *realBinanceAPI) NewListPricesService() ListPricesService {
	return &realListPricesService{service: r.client.NewListPricesService()}
}

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type realListPricesService struct {
	service *binance.ListPricesService
}

func (s *realListPricesService) Symbol(symbol string) ListPricesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListPricesService) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return s.service.Do(ctx)
}

// BinanceProvider fetches candles and quotes from the Binance public API. It
// is stateless; every call goes straight to the API.
type BinanceProvider struct {
	client BinanceAPI
}

// NewBinanceProvider creates a provider. Keys may be empty since kline and
// ticker endpoints do not require authentication.
func NewBinanceProvider(apiKey, apiSecret string) *BinanceProvider {
	return &BinanceProvider{
		client: &realBinanceAPI{client: binance.NewClient(apiKey, apiSecret)},
	}
}

// newBinanceProviderWithAPI is used by tests to inject a mock API.
func newBinanceProviderWithAPI(api BinanceAPI) *BinanceProvider {
	return &BinanceProvider{client: api}
}

func (b *BinanceProvider) Name() string { return string(ProviderBinance) }

// Candles fetches the most recent klines for a symbol, oldest first.
func (b *BinanceProvider) Candles(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", symbol)
	}

	if len(klines) == 0 {
		return nil, errors.Newf(errors.ErrCodeMarketDataUnavailable, "no klines returned for %s", symbol)
	}

	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candles = append(candles, types.Candle{
			Symbol: symbol,
			Time:   time.UnixMilli(k.OpenTime),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return candles, nil
}

// Quote fetches the latest ticker price for a symbol.
func (b *BinanceProvider) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.Quote{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch ticker for %s", symbol)
	}

	if len(prices) == 0 {
		return types.Quote{}, errors.Newf(errors.ErrCodeMarketDataUnavailable, "no ticker returned for %s", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return types.Quote{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "invalid ticker price %q for %s", prices[0].Price, symbol)
	}

	return types.Quote{
		Symbol: symbol,
		Price:  price,
		Time:   time.Now(),
	}, nil
}

var _ Provider = (*BinanceProvider)(nil)
