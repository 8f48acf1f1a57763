package types

import "time"

// TradeStatus is the lifecycle state of a committed trade.
// The only legal transition is OPEN -> CLOSED and it is terminal.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "OPEN"
	TradeStatusClosed TradeStatus = "CLOSED"
)

// Trade is a committed simulated trade. Created atomically by the ledger when
// a signal is accepted; immutable thereafter except for the status transition.
type Trade struct {
	ID       string      `yaml:"id" json:"id"`
	Symbol   string      `yaml:"symbol" json:"symbol"`
	Action   TradeAction `yaml:"action" json:"action"`
	Strategy Strategy    `yaml:"strategy" json:"strategy"`
	// EntryPrice is the signal reference price at commit time.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price"`
	Quantity   float64 `yaml:"quantity" json:"quantity"`
	// Notional is the monetary size of the trade.
	Notional float64 `yaml:"notional" json:"notional"`
	// Profit is the realized simulated profit, applied to the balance at commit.
	Profit    float64 `yaml:"profit" json:"profit"`
	ProfitPct float64 `yaml:"profit_percentage" json:"profit_percentage"`

	Confidence  float64 `yaml:"confidence" json:"confidence"`
	Reason      string  `yaml:"reason" json:"reason"`
	RSIAtEntry  float64 `yaml:"rsi_at_entry" json:"rsi_at_entry"`
	MACDAtEntry float64 `yaml:"macd_at_entry" json:"macd_at_entry"`

	Status    TradeStatus `yaml:"status" json:"status"`
	EntryTime time.Time   `yaml:"entry_time" json:"entry_time"`

	BalanceBefore float64 `yaml:"balance_before" json:"balance_before"`
	BalanceAfter  float64 `yaml:"balance_after" json:"balance_after"`
}

// IsWin reports whether the trade realized a positive profit.
func (t *Trade) IsWin() bool {
	return t.Profit > 0
}

// BalanceHistoryPoint records the balance after a mutation.
type BalanceHistoryPoint struct {
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Balance   float64   `yaml:"balance" json:"balance"`
}

// PerformanceSummary is derived wholesale from the trade history, never
// mutated independently.
type PerformanceSummary struct {
	TotalTrades      int     `yaml:"total_trades" json:"total_trades"`
	SuccessfulTrades int     `yaml:"successful_trades" json:"successful_trades"`
	TotalProfit      float64 `yaml:"total_profit" json:"total_profit"`
	// WinRate is expressed as a percentage in [0,100].
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// CurrentStreak is the signed run-length of consecutive wins (positive)
	// or losses (negative).
	CurrentStreak int `yaml:"current_streak" json:"current_streak"`
}
