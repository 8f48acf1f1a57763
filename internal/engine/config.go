package engine

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

// PriceBand is the plausibility range for a symbol's quotes. Quotes outside
// the band are treated as untrustworthy feeds and discarded.
type PriceBand struct {
	Min float64 `yaml:"min" json:"min" jsonschema:"title=Minimum Price"`
	Max float64 `yaml:"max" json:"max" jsonschema:"title=Maximum Price"`
}

// Contains reports whether the price lies inside the band.
func (b PriceBand) Contains(price float64) bool {
	return price >= b.Min && price <= b.Max
}

// Config holds all tunables of the engine: goal, risk policy, admission
// invariants, history window sizes, strategy tables and task pacing.
type Config struct {
	// Goal settings.
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance" validate:"gt=0" jsonschema:"title=Initial Balance,description=Starting simulated balance in USD"`
	TargetBalance  float64 `yaml:"target_balance" json:"target_balance" validate:"gt=0" jsonschema:"title=Target Balance"`
	HorizonDays    int     `yaml:"horizon_days" json:"horizon_days" validate:"gt=0" jsonschema:"title=Horizon Days"`

	// Position sizing.
	RiskFraction        float64 `yaml:"risk_fraction" json:"risk_fraction" validate:"gt=0,lte=1" jsonschema:"title=Risk Fraction,description=Fraction of balance risked per trade"`
	MinTradeFloor       float64 `yaml:"min_trade_floor" json:"min_trade_floor" validate:"gt=0" jsonschema:"title=Minimum Trade Notional"`
	MaxExposureFraction float64 `yaml:"max_exposure_fraction" json:"max_exposure_fraction" validate:"gt=0,lte=1" jsonschema:"title=Maximum Exposure Fraction"`

	// Outcome estimation.
	MaxLossFraction    float64 `yaml:"max_loss_fraction" json:"max_loss_fraction" validate:"gt=0,lt=1" jsonschema:"title=Maximum Loss Fraction of Notional"`
	MaxProfitFraction  float64 `yaml:"max_profit_fraction" json:"max_profit_fraction" validate:"gt=0,lt=1" jsonschema:"title=Maximum Profit Fraction of Notional"`
	ConfidenceSlope    float64 `yaml:"confidence_slope" json:"confidence_slope" validate:"gte=0" jsonschema:"title=Confidence Return Slope"`
	PerturbationStdDev float64 `yaml:"perturbation_std_dev" json:"perturbation_std_dev" validate:"gte=0" jsonschema:"title=Perturbation Standard Deviation"`

	// Admission invariants.
	CooldownWindow time.Duration `yaml:"cooldown_window" json:"cooldown_window" validate:"gt=0" jsonschema:"title=Per-Symbol Cooldown"`
	MaxOpenTrades  int           `yaml:"max_open_trades" json:"max_open_trades" validate:"gt=0" jsonschema:"title=Open Trade Cap"`
	SolvencyFloor  float64       `yaml:"solvency_floor" json:"solvency_floor" validate:"gte=0" jsonschema:"title=Solvency Floor"`
	HoldingWindow  time.Duration `yaml:"holding_window" json:"holding_window" validate:"gt=0" jsonschema:"title=Trade Holding Window,description=Open trades older than this are settled"`

	// History windows.
	TradeHistorySize   int `yaml:"trade_history_size" json:"trade_history_size" validate:"gt=0" jsonschema:"title=Trade History Window"`
	BalanceHistorySize int `yaml:"balance_history_size" json:"balance_history_size" validate:"gt=0" jsonschema:"title=Balance History Window"`
	MemorySize         int `yaml:"memory_size" json:"memory_size" validate:"gt=0" jsonschema:"title=Rolling Memory Window"`
	ScoreWindow        int `yaml:"score_window" json:"score_window" validate:"gt=0" jsonschema:"title=Intelligence Score Window"`
	CompoundingWindow  int `yaml:"compounding_window" json:"compounding_window" validate:"gt=0" jsonschema:"title=Compounding Win-Rate Window"`

	// Task pacing.
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval" validate:"gt=0" jsonschema:"title=Polling Interval"`
	SymbolDelay  time.Duration `yaml:"symbol_delay" json:"symbol_delay" validate:"gte=0" jsonschema:"title=Inter-Symbol Delay"`
	ErrorBackoff time.Duration `yaml:"error_backoff" json:"error_backoff" validate:"gt=0" jsonschema:"title=Error Backoff"`
	ScanInterval time.Duration `yaml:"scan_interval" json:"scan_interval" validate:"gt=0" jsonschema:"title=Opportunity Scan Interval"`
	ScanTopN     int           `yaml:"scan_top_n" json:"scan_top_n" validate:"gt=0" jsonschema:"title=Opportunity Scan Top N"`

	// Universe and tables.
	Symbols           []string                   `yaml:"symbols" json:"symbols" validate:"min=1" jsonschema:"title=Tradable Symbols"`
	CandleInterval    string                     `yaml:"candle_interval" json:"candle_interval" jsonschema:"title=Candle Interval"`
	CandleLimit       int                        `yaml:"candle_limit" json:"candle_limit" validate:"gt=0" jsonschema:"title=Candle Fetch Limit"`
	PlausibilityBands map[string]PriceBand       `yaml:"plausibility_bands" json:"plausibility_bands" jsonschema:"title=Per-Symbol Plausibility Bands"`
	BaseReturns       map[types.Strategy]float64 `yaml:"base_returns" json:"base_returns" jsonschema:"title=Per-Strategy Base Returns"`
	VolatilityFactors map[string]float64         `yaml:"volatility_factors" json:"volatility_factors" jsonschema:"title=Per-Symbol Volatility Factors"`
}

// DefaultConfig returns the engine configuration with production defaults.
// The goal defaults mirror the original deployment: grow 50 USD to 5000 USD
// within 90 days.
func DefaultConfig() Config {
	return Config{
		InitialBalance: 50.0,
		TargetBalance:  5000.0,
		HorizonDays:    90,

		RiskFraction:        0.005,
		MinTradeFloor:       10.0,
		MaxExposureFraction: 0.10,

		MaxLossFraction:    0.01,
		MaxProfitFraction:  0.02,
		ConfidenceSlope:    0.01,
		PerturbationStdDev: 0.003,

		CooldownWindow: 5 * time.Minute,
		MaxOpenTrades:  3,
		SolvencyFloor:  10.0,
		HoldingWindow:  15 * time.Minute,

		TradeHistorySize:   50,
		BalanceHistorySize: 100,
		MemorySize:         100,
		ScoreWindow:        20,
		CompoundingWindow:  20,

		PollInterval: 30 * time.Second,
		SymbolDelay:  10 * time.Second,
		ErrorBackoff: 60 * time.Second,
		ScanInterval: 2 * time.Minute,
		ScanTopN:     2,

		Symbols:        []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT", "XRPUSDT"},
		CandleInterval: "1h",
		CandleLimit:    100,
		PlausibilityBands: map[string]PriceBand{
			"BTCUSDT": {Min: 10000, Max: 200000},
			"ETHUSDT": {Min: 500, Max: 20000},
			"BNBUSDT": {Min: 50, Max: 3000},
			"ADAUSDT": {Min: 0.1, Max: 10},
			"XRPUSDT": {Min: 0.1, Max: 10},
		},
		BaseReturns: map[types.Strategy]float64{
			types.StrategyMeanReversion:  0.008,
			types.StrategyMomentum:       0.006,
			types.StrategyTrendFollowing: 0.005,
			types.StrategyBreakout:       0.007,
			types.StrategyQuickReversal:  0.006,
			types.StrategyQuickMomentum:  0.005,
			types.StrategyScalping:       0.004,
		},
		VolatilityFactors: map[string]float64{},
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, "invalid engine config", err)
	}

	if c.TargetBalance <= c.InitialBalance {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"target balance %.2f must exceed initial balance %.2f", c.TargetBalance, c.InitialBalance)
	}

	// The sizer clamps to [MinTradeFloor, balance*MaxExposureFraction]; the
	// solvency floor must refuse trades before those bounds can cross.
	if c.SolvencyFloor < c.MinTradeFloor {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"solvency floor %.2f must be at least the minimum trade floor %.2f", c.SolvencyFloor, c.MinTradeFloor)
	}

	for strategy := range c.BaseReturns {
		if !strategy.Valid() {
			return errors.Newf(errors.ErrCodeInvalidConfig, "unknown strategy %q in base return table", strategy)
		}
	}

	return nil
}

// BaseReturn returns the expected base return for a strategy, falling back to
// a conservative default for strategies missing from the table.
func (c *Config) BaseReturn(strategy types.Strategy) float64 {
	if r, ok := c.BaseReturns[strategy]; ok {
		return r
	}

	return 0.005
}

// VolatilityFactor returns the perturbation scale for a symbol (1.0 when
// unconfigured).
func (c *Config) VolatilityFactor(symbol string) float64 {
	if f, ok := c.VolatilityFactors[symbol]; ok && f > 0 {
		return f
	}

	return 1.0
}

// GenerateSchema generates a JSON schema for the engine config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(c)
	schema.Title = "engine-config"
	schema.Description = "Configuration schema for the adaptive signal engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the engine config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
