package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/logger"
	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

// Ledger is the single authoritative owner of the balance and the trade and
// balance histories. Every commit runs inside one critical section: admission
// check, balance mutation and history append are a single logical
// transaction, so two tasks can never pass admission against a stale balance.
type Ledger struct {
	cfg *Config
	log *logger.Logger

	mu             sync.Mutex
	balance        decimal.Decimal
	trades         []types.Trade
	memory         []types.Trade
	balanceHistory []types.BalanceHistoryPoint
	performance    types.PerformanceSummary
	lastCommit     map[string]time.Time

	// now is injectable for cooldown and eviction tests.
	now func() time.Time
}

// NewLedger creates a ledger starting from the configured initial balance.
func NewLedger(cfg *Config, log *logger.Logger) *Ledger {
	l := &Ledger{
		cfg:        cfg,
		log:        log,
		balance:    decimal.NewFromFloat(cfg.InitialBalance),
		lastCommit: make(map[string]time.Time),
		now:        time.Now,
	}

	l.balanceHistory = append(l.balanceHistory, types.BalanceHistoryPoint{
		Timestamp: l.now(),
		Balance:   cfg.InitialBalance,
	})

	return l
}

// Restore replaces the ledger state with a persisted snapshot.
func (l *Ledger) Restore(snap types.EngineSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if snap.Balance > 0 {
		l.balance = decimal.NewFromFloat(snap.Balance)
	}

	l.trades = append([]types.Trade(nil), snap.Trades...)
	l.memory = append([]types.Trade(nil), snap.Memory...)
	l.performance = snap.Performance

	if len(snap.BalanceHistory) > 0 {
		l.balanceHistory = append([]types.BalanceHistoryPoint(nil), snap.BalanceHistory...)
	}

	for _, t := range l.trades {
		if t.EntryTime.After(l.lastCommit[t.Symbol]) {
			l.lastCommit[t.Symbol] = t.EntryTime
		}
	}
}

// TryCommit atomically admits and records a trade for an accepted signal.
// Admission refusals come back as typed errors (cooldown, concurrency cap,
// solvency floor); they are normal operation, not failures.
func (l *Ledger) TryCommit(signal types.Signal, notional, profit float64) (types.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.lastCommit[signal.Symbol]; ok && now.Sub(last) < l.cfg.CooldownWindow {
		return types.Trade{}, errors.Newf(errors.ErrCodeCooldownActive,
			"symbol %s traded %s ago, cooldown %s", signal.Symbol, now.Sub(last).Round(time.Second), l.cfg.CooldownWindow)
	}

	if open := l.openCountLocked(); open >= l.cfg.MaxOpenTrades {
		return types.Trade{}, errors.Newf(errors.ErrCodeConcurrencyCap,
			"%d trades open, cap %d", open, l.cfg.MaxOpenTrades)
	}

	balanceBefore, _ := l.balance.Float64()
	if balanceBefore <= l.cfg.SolvencyFloor {
		return types.Trade{}, errors.Newf(errors.ErrCodeSolvencyFloor,
			"balance %.2f at or below floor %.2f", balanceBefore, l.cfg.SolvencyFloor)
	}

	l.balance = l.balance.Add(decimal.NewFromFloat(profit))
	balanceAfter, _ := l.balance.Float64()

	trade := types.Trade{
		ID:            newTradeID(now),
		Symbol:        signal.Symbol,
		Action:        signal.Action,
		Strategy:      signal.Strategy,
		EntryPrice:    signal.Price,
		Quantity:      notional / signal.Price,
		Notional:      notional,
		Profit:        profit,
		ProfitPct:     profit / notional * 100,
		Confidence:    signal.Confidence,
		Reason:        signal.Reason,
		RSIAtEntry:    signal.RSI,
		MACDAtEntry:   signal.MACDDiff,
		Status:        types.TradeStatusOpen,
		EntryTime:     now,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}

	l.trades = appendBounded(l.trades, trade, l.cfg.TradeHistorySize)
	l.memory = appendBounded(l.memory, trade, l.cfg.MemorySize)
	l.balanceHistory = appendBoundedHistory(l.balanceHistory, types.BalanceHistoryPoint{
		Timestamp: now,
		Balance:   balanceAfter,
	}, l.cfg.BalanceHistorySize)

	l.lastCommit[signal.Symbol] = now
	l.updatePerformanceLocked(trade)

	l.log.Debug("Trade committed",
		zap.String("id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("strategy", string(trade.Strategy)),
		zap.Float64("notional", notional),
		zap.Float64("profit", profit),
		zap.Float64("balance", balanceAfter),
	)

	return trade, nil
}

// CloseExpired settles OPEN trades older than the holding window. Settling is
// a pure status transition: realized profit was applied at commit time, so no
// balance change happens here.
func (l *Ledger) CloseExpired() []types.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.HoldingWindow)

	return l.closeLocked(func(t *types.Trade) bool {
		return t.EntryTime.Before(cutoff)
	})
}

// CloseAll settles every OPEN trade. Called on engine stop so no OPEN trade
// is ever left behind.
func (l *Ledger) CloseAll() []types.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closeLocked(func(*types.Trade) bool { return true })
}

func (l *Ledger) closeLocked(match func(*types.Trade) bool) []types.Trade {
	var closed []types.Trade

	for i := range l.trades {
		t := &l.trades[i]
		if t.Status == types.TradeStatusOpen && match(t) {
			t.Status = types.TradeStatusClosed
			closed = append(closed, *t)
		}
	}

	// Mirror the transition into the memory window so score recomputation
	// sees consistent statuses.
	for i := range l.memory {
		m := &l.memory[i]
		if m.Status == types.TradeStatusOpen && match(m) {
			m.Status = types.TradeStatusClosed
		}
	}

	return closed
}

// Balance returns the current balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal, _ := l.balance.Float64()

	return bal
}

// OpenTrades returns the currently OPEN trades, oldest first.
func (l *Ledger) OpenTrades() []types.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	var open []types.Trade

	for _, t := range l.trades {
		if t.Status == types.TradeStatusOpen {
			open = append(open, t)
		}
	}

	return open
}

// RecentTrades returns up to limit most recent trades, oldest first.
func (l *Ledger) RecentTrades(limit int) []types.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.trades) {
		limit = len(l.trades)
	}

	out := make([]types.Trade, limit)
	copy(out, l.trades[len(l.trades)-limit:])

	return out
}

// BalanceHistory returns a copy of the bounded balance history.
func (l *Ledger) BalanceHistory() []types.BalanceHistoryPoint {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.BalanceHistoryPoint, len(l.balanceHistory))
	copy(out, l.balanceHistory)

	return out
}

// Performance returns the current derived performance summary.
func (l *Ledger) Performance() types.PerformanceSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.performance
}

// MemoryWindow returns up to n most recent trades from the rolling memory,
// oldest first.
func (l *Ledger) MemoryWindow(n int) []types.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.memory) {
		n = len(l.memory)
	}

	out := make([]types.Trade, n)
	copy(out, l.memory[len(l.memory)-n:])

	return out
}

// Snapshot assembles a persistable snapshot of the ledger state combined
// with the learner and scorer state supplied by the engine.
func (l *Ledger) Snapshot(weights types.StrategyWeights, compounding float64, score types.IntelligenceScore) types.EngineSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal, _ := l.balance.Float64()

	snap := types.EngineSnapshot{
		Balance:           bal,
		Trades:            append([]types.Trade(nil), l.trades...),
		Memory:            append([]types.Trade(nil), l.memory...),
		Performance:       l.performance,
		BalanceHistory:    append([]types.BalanceHistoryPoint(nil), l.balanceHistory...),
		Intelligence:      score,
		StrategyWeights:   weights,
		CompoundingFactor: compounding,
		LastUpdate:        l.now(),
	}

	return snap
}

func (l *Ledger) openCountLocked() int {
	count := 0

	for _, t := range l.trades {
		if t.Status == types.TradeStatusOpen {
			count++
		}
	}

	return count
}

func (l *Ledger) updatePerformanceLocked(trade types.Trade) {
	l.performance.TotalTrades++
	l.performance.TotalProfit += trade.Profit

	if trade.IsWin() {
		l.performance.SuccessfulTrades++

		if l.performance.CurrentStreak < 0 {
			l.performance.CurrentStreak = 0
		}

		l.performance.CurrentStreak++
	} else {
		if l.performance.CurrentStreak > 0 {
			l.performance.CurrentStreak = 0
		}

		l.performance.CurrentStreak--
	}

	l.performance.WinRate = float64(l.performance.SuccessfulTrades) / float64(l.performance.TotalTrades) * 100
}

// newTradeID builds a time-derived, unique trade ID.
func newTradeID(now time.Time) string {
	suffix := strings.Split(uuid.New().String(), "-")[0]

	return fmt.Sprintf("T-%d-%s", now.UnixMilli(), suffix)
}

func appendBounded(history []types.Trade, t types.Trade, capacity int) []types.Trade {
	history = append(history, t)
	if len(history) > capacity {
		history = history[len(history)-capacity:]
	}

	return history
}

func appendBoundedHistory(history []types.BalanceHistoryPoint, p types.BalanceHistoryPoint, capacity int) []types.BalanceHistoryPoint {
	history = append(history, p)
	if len(history) > capacity {
		history = history[len(history)-capacity:]
	}

	return history
}
