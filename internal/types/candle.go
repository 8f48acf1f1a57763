package types

import "time"

// Candle represents a single OHLCV bar for a symbol.
type Candle struct {
	Symbol string    `yaml:"symbol" json:"symbol"`
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// Quote is the latest live price for a symbol.
type Quote struct {
	Symbol string    `yaml:"symbol" json:"symbol"`
	Price  float64   `yaml:"price" json:"price"`
	Time   time.Time `yaml:"time" json:"time"`
}
