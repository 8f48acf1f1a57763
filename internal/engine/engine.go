package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/indicator"
	"github.com/aion-lab/aion-trading/internal/logger"
	"github.com/aion-lab/aion-trading/internal/persistence"
	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
	"github.com/aion-lab/aion-trading/pkg/marketdata"
)

// Engine drives the signal, sizing, estimation and ledger pipeline over live
// market data. One monitor goroutine runs per symbol, plus an opportunity
// scanner and a housekeeping loop; all of them funnel commits through the
// ledger's single critical section.
type Engine struct {
	cfg      *Config
	log      *logger.Logger
	provider marketdata.Provider
	store    persistence.SnapshotStore

	ledger    *Ledger
	learner   *AdaptiveLearner
	scorer    *IntelligenceScorer
	signals   *SignalGenerator
	sizer     *PositionSizer
	estimator *OutcomeEstimator

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startTime time.Time
}

// NewEngine assembles an engine. The provider may be nil; Start will refuse
// to run until one is attached. The store may be nil for an ephemeral engine.
func NewEngine(cfg *Config, log *logger.Logger, provider marketdata.Provider, store persistence.SnapshotStore, rng NormalSource) *Engine {
	return &Engine{
		cfg:       cfg,
		log:       log,
		provider:  provider,
		store:     store,
		ledger:    NewLedger(cfg, log),
		learner:   NewAdaptiveLearner(cfg),
		scorer:    NewIntelligenceScorer(cfg),
		signals:   NewSignalGenerator(cfg),
		sizer:     NewPositionSizer(cfg),
		estimator: NewOutcomeEstimator(cfg, rng),
		startTime: time.Now(),
	}
}

// SetProvider attaches a market data provider. Only allowed while stopped.
func (e *Engine) SetProvider(provider marketdata.Provider) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return errors.New(errors.ErrCodeEngineAlreadyRunning, "cannot change provider while running")
	}

	e.provider = provider

	return nil
}

// Start restores persisted state and launches the monitor, scanner and
// housekeeping goroutines. It returns once they are launched.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.provider == nil {
		return errors.New(errors.ErrCodeEngineNotConnected, "no market data provider attached")
	}

	if e.running {
		return errors.New(errors.ErrCodeEngineAlreadyRunning, "engine is already running")
	}

	if e.store != nil {
		snapshot, found, err := e.store.Load()
		if err != nil {
			return errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to load snapshot", err)
		}

		if found {
			e.ledger.Restore(snapshot)
			e.learner.Restore(snapshot.StrategyWeights, snapshot.CompoundingFactor)
			e.scorer.Restore(snapshot.Intelligence)
			e.log.Info("Snapshot restored",
				zap.Float64("balance", snapshot.Balance),
				zap.Int("trades", len(snapshot.Trades)),
			)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true

	for _, symbol := range e.cfg.Symbols {
		e.wg.Add(1)

		go func(symbol string) {
			defer e.wg.Done()
			e.monitorSymbol(runCtx, symbol)
		}(symbol)
	}

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		e.scanOpportunities(runCtx)
	}()

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		e.housekeeping(runCtx)
	}()

	e.log.Info("Engine started",
		zap.String("provider", e.provider.Name()),
		zap.Strings("symbols", e.cfg.Symbols),
		zap.Float64("balance", e.ledger.Balance()),
	)

	return nil
}

// Stop cancels the run context, drains the workers, settles every open trade
// and saves a final snapshot.
func (e *Engine) Stop() error {
	e.mu.Lock()

	if !e.running {
		e.mu.Unlock()

		return errors.New(errors.ErrCodeEngineNotRunning, "engine is not running")
	}

	e.cancel()
	e.mu.Unlock()

	e.wg.Wait()

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()

	closed := e.ledger.CloseAll()
	if len(closed) > 0 {
		e.log.Info("Settled open trades on shutdown", zap.Int("count", len(closed)))
	}

	e.saveSnapshot()
	e.log.Info("Engine stopped", zap.Float64("balance", e.ledger.Balance()))

	return nil
}

// Running reports whether the engine loops are active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

// monitorSymbol runs the per-symbol trade loop: fetch, analyze, commit,
// learn, then sleep for the poll interval. Staggered by SymbolDelay so the
// symbols do not hammer the provider in lockstep.
func (e *Engine) monitorSymbol(ctx context.Context, symbol string) {
	index := e.symbolIndex(symbol)
	if !sleepCtx(ctx, time.Duration(index)*e.cfg.SymbolDelay) {
		return
	}

	for {
		if err := e.tradeCycle(ctx, symbol, false); err != nil {
			if ctx.Err() != nil {
				return
			}

			e.log.Warn("Trade cycle failed",
				zap.String("symbol", symbol),
				zap.Error(err),
			)

			if !sleepCtx(ctx, e.cfg.ErrorBackoff) {
				return
			}

			continue
		}

		if !sleepCtx(ctx, e.cfg.PollInterval) {
			return
		}
	}
}

// scanOpportunities periodically sweeps the whole universe with the quick
// reversal rules and commits the strongest few signals.
func (e *Engine) scanOpportunities(ctx context.Context) {
	for {
		if !sleepCtx(ctx, e.cfg.ScanInterval) {
			return
		}

		type candidate struct {
			symbol string
			signal types.Signal
		}

		var candidates []candidate

		for _, symbol := range e.cfg.Symbols {
			snapshot, err := e.analyze(ctx, symbol)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				e.log.Debug("Scan skipped symbol",
					zap.String("symbol", symbol),
					zap.Error(err),
				)

				continue
			}

			signal, ok := e.signals.Quick(symbol, snapshot, snapshot.Price, time.Now())
			if !ok {
				continue
			}

			candidates = append(candidates, candidate{symbol: symbol, signal: signal})
		}

		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].signal.Confidence > candidates[j].signal.Confidence
		})

		if len(candidates) > e.cfg.ScanTopN {
			candidates = candidates[:e.cfg.ScanTopN]
		}

		for _, c := range candidates {
			e.commitSignal(c.signal)
		}
	}
}

// housekeeping settles expired trades and saves snapshots on the poll cadence.
func (e *Engine) housekeeping(ctx context.Context) {
	for {
		if !sleepCtx(ctx, e.cfg.PollInterval) {
			return
		}

		if closed := e.ledger.CloseExpired(); len(closed) > 0 {
			e.log.Debug("Settled expired trades", zap.Int("count", len(closed)))
		}

		e.saveSnapshot()
	}
}

// tradeCycle runs one full pipeline pass for a symbol. An empty or too-short
// candle series is a no-signal cycle, not a failure: only provider and
// pipeline faults propagate to the caller's backoff path.
func (e *Engine) tradeCycle(ctx context.Context, symbol string, quick bool) error {
	snapshot, err := e.analyze(ctx, symbol)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInsufficientHistory) ||
			errors.HasCode(err, errors.ErrCodeMarketDataUnavailable) {
			e.log.Debug("No usable candle history",
				zap.String("symbol", symbol),
				zap.Error(err),
			)

			return nil
		}

		return err
	}

	var (
		signal types.Signal
		ok     bool
	)

	if quick {
		signal, ok = e.signals.Quick(symbol, snapshot, snapshot.Price, time.Now())
	} else {
		signal, ok = e.signals.Generate(symbol, snapshot, snapshot.Price, time.Now())
	}

	if !ok {
		return nil
	}

	e.commitSignal(signal)

	return nil
}

// analyze fetches candles, computes the indicator snapshot and overrides the
// stale candle close with the live quote when one is available.
func (e *Engine) analyze(ctx context.Context, symbol string) (indicator.Snapshot, error) {
	candles, err := e.provider.Candles(ctx, symbol, e.cfg.CandleInterval, e.cfg.CandleLimit)
	if err != nil {
		return indicator.Snapshot{}, err
	}

	snapshot, err := indicator.Compute(candles)
	if err != nil {
		return indicator.Snapshot{}, err
	}

	if quote, err := e.provider.Quote(ctx, symbol); err == nil && quote.Price > 0 {
		snapshot.Price = quote.Price
	}

	return snapshot, nil
}

// commitSignal sizes, estimates and commits a signal, then feeds the outcome
// back into the learner and the scorer. Admission refusals are logged at
// debug level and dropped.
func (e *Engine) commitSignal(signal types.Signal) {
	notional := e.sizer.Size(e.ledger.Balance(), signal.Confidence)
	profit := e.estimator.Estimate(signal, notional, e.learner.CompoundingFactor())

	trade, err := e.ledger.TryCommit(signal, notional, profit)
	if err != nil {
		if errors.IsAdmissionRefusal(errors.GetCode(err)) {
			e.log.Debug("Trade refused",
				zap.String("symbol", signal.Symbol),
				zap.Error(err),
			)

			return
		}

		e.log.Warn("Trade commit failed",
			zap.String("symbol", signal.Symbol),
			zap.Error(err),
		)

		return
	}

	e.learner.Update(trade)
	e.scorer.Recompute(e.ledger.MemoryWindow(e.cfg.ScoreWindow))
}

// Simulate runs the full pipeline over a deterministic synthetic feed
// without touching the live ledger. It returns the final state of the
// simulated run.
func (e *Engine) Simulate(ctx context.Context, cycles int) (types.EngineSnapshot, error) {
	if cycles <= 0 {
		return types.EngineSnapshot{}, errors.Newf(errors.ErrCodeInvalidParameter, "cycles must be positive, got %d", cycles)
	}

	provider := marketdata.NewSyntheticProviderWithDrift(defaultSimulationSeed, -0.004)

	sim := &Engine{
		cfg:       e.cfg,
		log:       e.log,
		provider:  provider,
		ledger:    NewLedger(e.cfg, e.log),
		learner:   NewAdaptiveLearner(e.cfg),
		scorer:    NewIntelligenceScorer(e.cfg),
		signals:   NewSignalGenerator(e.cfg),
		sizer:     NewPositionSizer(e.cfg),
		estimator: NewOutcomeEstimator(e.cfg, NewRandSource(defaultSimulationSeed)),
		startTime: time.Now(),
	}

	// Simulated cycles ignore the wall-clock cooldown by spacing commits
	// through an advancing virtual clock.
	virtualNow := time.Now()
	sim.ledger.now = func() time.Time { return virtualNow }

	for i := 0; i < cycles; i++ {
		if err := ctx.Err(); err != nil {
			return types.EngineSnapshot{}, err
		}

		for _, symbol := range e.cfg.Symbols {
			if err := sim.tradeCycle(ctx, symbol, true); err != nil {
				e.log.Debug("Simulation cycle skipped",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
			}

			virtualNow = virtualNow.Add(e.cfg.CooldownWindow)
		}

		// Settle trades aged past the holding window on the virtual clock,
		// matching the live housekeeping loop, so the open-trade cap does
		// not starve later cycles.
		sim.ledger.CloseExpired()
	}

	sim.ledger.CloseAll()

	return sim.Snapshot(), nil
}

const defaultSimulationSeed = 1337

// Snapshot assembles the full persistable engine state.
func (e *Engine) Snapshot() types.EngineSnapshot {
	return e.ledger.Snapshot(e.learner.Weights(), e.learner.CompoundingFactor(), e.scorer.Score())
}

// Balance returns the current ledger balance.
func (e *Engine) Balance() float64 { return e.ledger.Balance() }

// OpenTrades returns the currently open trades.
func (e *Engine) OpenTrades() []types.Trade { return e.ledger.OpenTrades() }

// RecentTrades returns up to limit most recent trades.
func (e *Engine) RecentTrades(limit int) []types.Trade { return e.ledger.RecentTrades(limit) }

// BalanceHistory returns the bounded balance history.
func (e *Engine) BalanceHistory() []types.BalanceHistoryPoint { return e.ledger.BalanceHistory() }

// Performance returns the derived performance summary.
func (e *Engine) Performance() types.PerformanceSummary { return e.ledger.Performance() }

// Intelligence returns the current composite intelligence score.
func (e *Engine) Intelligence() types.IntelligenceScore { return e.scorer.Score() }

// Weights returns a copy of the current strategy weights.
func (e *Engine) Weights() types.StrategyWeights { return e.learner.Weights() }

// CompoundingFactor returns the learner's current compounding factor.
func (e *Engine) CompoundingFactor() float64 { return e.learner.CompoundingFactor() }

// GoalProgress reports progress toward the capital-growth goal.
func (e *Engine) GoalProgress() types.GoalProgress {
	return GoalProgress(
		e.ledger.Balance(),
		e.cfg.InitialBalance,
		e.cfg.TargetBalance,
		e.startTime,
		e.cfg.HorizonDays,
		time.Now(),
	)
}

func (e *Engine) saveSnapshot() {
	if e.store == nil {
		return
	}

	if err := e.store.Save(e.Snapshot()); err != nil {
		e.log.Warn("Snapshot save failed", zap.Error(err))
	}
}

func (e *Engine) symbolIndex(symbol string) int {
	for i, s := range e.cfg.Symbols {
		if s == symbol {
			return i
		}
	}

	return 0
}

// sleepCtx sleeps for d or until the context is cancelled. It reports false
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
