// Package marketdata provides candle and quote feeds for the engine. The
// Binance provider serves live operation; the synthetic provider serves
// simulations and tests.
package marketdata

import (
	"context"

	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

// Provider is the market-data feed the engine consumes.
type Provider interface {
	// Candles returns up to limit most recent candles for the symbol,
	// oldest first.
	Candles(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error)
	// Quote returns the latest price for the symbol.
	Quote(ctx context.Context, symbol string) (types.Quote, error)
	// Name identifies the provider in logs and API responses.
	Name() string
}

type ProviderType string

const (
	ProviderBinance   ProviderType = "binance"
	ProviderSynthetic ProviderType = "synthetic"
)

// ProviderInfo is the metadata surfaced by the control API.
type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	IsSimulated bool   `json:"isSimulated"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderBinance: {
		Name:        string(ProviderBinance),
		DisplayName: "Binance",
		Description: "Binance public market data (klines and tickers, no order placement)",
		IsSimulated: false,
	},
	ProviderSynthetic: {
		Name:        string(ProviderSynthetic),
		DisplayName: "Synthetic",
		Description: "Deterministic seeded price walk for simulation and tests",
		IsSimulated: true,
	},
}

// SupportedProviders returns the names of the registered providers.
func SupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a provider.
func GetProviderInfo(name string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(name)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported market data provider: %s", name)
	}

	return info, nil
}

// NewProvider creates a provider by type. Binance credentials may be empty:
// kline and ticker endpoints are public.
func NewProvider(providerType ProviderType, apiKey, apiSecret string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider(apiKey, apiSecret), nil
	case ProviderSynthetic:
		return NewSyntheticProvider(defaultSyntheticSeed), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported market data provider: %s", providerType)
	}
}
