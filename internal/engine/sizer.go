package engine

// PositionSizer turns balance, risk policy and signal confidence into a
// bounded trade notional.
type PositionSizer struct {
	cfg *Config
}

// NewPositionSizer creates a sizer bound to the given config.
func NewPositionSizer(cfg *Config) *PositionSizer {
	return &PositionSizer{cfg: cfg}
}

// Size computes the notional for a trade. The base amount is scaled linearly
// with confidence above 0.5 and clamped to
// [MinTradeFloor, balance*MaxExposureFraction]. When the balance is too small
// to satisfy both bounds the exposure cap wins; the ledger's solvency floor
// refuses such trades before sizing in normal operation.
func (s *PositionSizer) Size(balance, confidence float64) float64 {
	notional := balance * s.cfg.RiskFraction

	if confidence > 0.5 {
		notional *= 1 + (confidence - 0.5)
	}

	if notional < s.cfg.MinTradeFloor {
		notional = s.cfg.MinTradeFloor
	}

	if limit := balance * s.cfg.MaxExposureFraction; notional > limit {
		notional = limit
	}

	return notional
}
