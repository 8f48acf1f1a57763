package persistence

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/logger"
	"github.com/aion-lab/aion-trading/internal/types"
	"github.com/aion-lab/aion-trading/pkg/errors"
)

// State keys in the engine_state table.
const (
	stateKeyBalance         = "balance"
	stateKeyPerformance     = "performance"
	stateKeyIntelligence    = "intelligence"
	stateKeyStrategyWeights = "strategy_weights"
	stateKeyCompounding     = "compounding_factor"
	stateKeyLastUpdate      = "last_update"
)

// DuckDBStore persists snapshots in a DuckDB database file. Trades and
// balance history get their own tables; scalar and structured state lives in
// a key/value table as JSON.
type DuckDBStore struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
}

// NewDuckDBStore opens (or creates) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to open snapshot database", err)
	}

	s := &DuckDBStore{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log,
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *DuckDBStore) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			action TEXT,
			strategy TEXT,
			entry_price DOUBLE,
			quantity DOUBLE,
			notional DOUBLE,
			profit DOUBLE,
			profit_pct DOUBLE,
			confidence DOUBLE,
			reason TEXT,
			rsi_at_entry DOUBLE,
			macd_at_entry DOUBLE,
			status TEXT,
			entry_time TIMESTAMP,
			balance_before DOUBLE,
			balance_after DOUBLE,
			in_memory BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS balance_history (
			ts TIMESTAMP,
			balance DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS engine_state (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to create snapshot schema", err)
		}
	}

	return nil
}

// Save atomically replaces the stored snapshot.
func (s *DuckDBStore) Save(snapshot types.EngineSnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotSaveFailed, "failed to begin snapshot transaction", err)
	}

	for _, table := range []string{"trades", "balance_history", "engine_state"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeSnapshotSaveFailed, err, "failed to clear %s", table)
		}
	}

	memoryIDs := make(map[string]bool, len(snapshot.Memory))
	for _, t := range snapshot.Memory {
		memoryIDs[t.ID] = true
	}

	for _, t := range snapshot.Trades {
		insert := s.sq.
			Insert("trades").
			Columns("id", "symbol", "action", "strategy", "entry_price", "quantity",
				"notional", "profit", "profit_pct", "confidence", "reason",
				"rsi_at_entry", "macd_at_entry", "status", "entry_time",
				"balance_before", "balance_after", "in_memory").
			Values(t.ID, t.Symbol, string(t.Action), string(t.Strategy), t.EntryPrice, t.Quantity,
				t.Notional, t.Profit, t.ProfitPct, t.Confidence, t.Reason,
				t.RSIAtEntry, t.MACDAtEntry, string(t.Status), t.EntryTime,
				t.BalanceBefore, t.BalanceAfter, memoryIDs[t.ID])

		query, args, err := insert.ToSql()
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeSnapshotSaveFailed, "failed to build trade insert", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeSnapshotSaveFailed, err, "failed to insert trade %s", t.ID)
		}
	}

	for _, p := range snapshot.BalanceHistory {
		query, args, err := s.sq.
			Insert("balance_history").
			Columns("ts", "balance").
			Values(p.Timestamp, p.Balance).
			ToSql()
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeSnapshotSaveFailed, "failed to build balance insert", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeSnapshotSaveFailed, "failed to insert balance point", err)
		}
	}

	stateValues := map[string]any{
		stateKeyBalance:         snapshot.Balance,
		stateKeyPerformance:     snapshot.Performance,
		stateKeyIntelligence:    snapshot.Intelligence,
		stateKeyStrategyWeights: snapshot.StrategyWeights,
		stateKeyCompounding:     snapshot.CompoundingFactor,
		stateKeyLastUpdate:      snapshot.LastUpdate,
	}

	for key, value := range stateValues {
		encoded, err := json.Marshal(value)
		if err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeSnapshotSaveFailed, err, "failed to encode state key %s", key)
		}

		query, args, err := s.sq.
			Insert("engine_state").
			Columns("key", "value").
			Values(key, string(encoded)).
			ToSql()
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeSnapshotSaveFailed, "failed to build state insert", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeSnapshotSaveFailed, err, "failed to insert state key %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotSaveFailed, "failed to commit snapshot", err)
	}

	s.logger.Debug("Snapshot saved",
		zap.Int("trades", len(snapshot.Trades)),
		zap.Float64("balance", snapshot.Balance),
	)

	return nil
}

// Load reads the stored snapshot. An empty database is not an error: the
// second return value reports whether a snapshot existed.
func (s *DuckDBStore) Load() (types.EngineSnapshot, bool, error) {
	var snapshot types.EngineSnapshot

	state, err := s.loadState()
	if err != nil {
		return types.EngineSnapshot{}, false, err
	}

	if len(state) == 0 {
		return types.EngineSnapshot{}, false, nil
	}

	if err := decodeState(state, stateKeyBalance, &snapshot.Balance); err != nil {
		return types.EngineSnapshot{}, false, err
	}

	if err := decodeState(state, stateKeyPerformance, &snapshot.Performance); err != nil {
		return types.EngineSnapshot{}, false, err
	}

	if err := decodeState(state, stateKeyIntelligence, &snapshot.Intelligence); err != nil {
		return types.EngineSnapshot{}, false, err
	}

	if err := decodeState(state, stateKeyStrategyWeights, &snapshot.StrategyWeights); err != nil {
		return types.EngineSnapshot{}, false, err
	}

	if err := decodeState(state, stateKeyCompounding, &snapshot.CompoundingFactor); err != nil {
		return types.EngineSnapshot{}, false, err
	}

	if err := decodeState(state, stateKeyLastUpdate, &snapshot.LastUpdate); err != nil {
		return types.EngineSnapshot{}, false, err
	}

	trades, memory, err := s.loadTrades()
	if err != nil {
		return types.EngineSnapshot{}, false, err
	}

	snapshot.Trades = trades
	snapshot.Memory = memory

	history, err := s.loadBalanceHistory()
	if err != nil {
		return types.EngineSnapshot{}, false, err
	}

	snapshot.BalanceHistory = history

	return snapshot, true, nil
}

func (s *DuckDBStore) loadState() (map[string]string, error) {
	query, args, err := s.sq.
		Select("key", "value").
		From("engine_state").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to build state query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to query engine state", err)
	}
	defer rows.Close()

	state := make(map[string]string)

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to scan state row", err)
		}

		state[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to iterate state rows", err)
	}

	return state, nil
}

func decodeState[T any](state map[string]string, key string, out *T) error {
	raw, ok := state[key]
	if !ok {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.Wrapf(errors.ErrCodeSnapshotLoadFailed, err, "failed to decode state key %s", key)
	}

	return nil
}

func (s *DuckDBStore) loadTrades() (trades, memory []types.Trade, err error) {
	query, args, err := s.sq.
		Select("id", "symbol", "action", "strategy", "entry_price", "quantity",
			"notional", "profit", "profit_pct", "confidence", "reason",
			"rsi_at_entry", "macd_at_entry", "status", "entry_time",
			"balance_before", "balance_after", "in_memory").
		From("trades").
		OrderBy("entry_time ASC").
		ToSql()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to build trade query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to query trades", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                        types.Trade
			action, strategy, status string
			entryTime                time.Time
			inMemory                 bool
		)

		err := rows.Scan(&t.ID, &t.Symbol, &action, &strategy, &t.EntryPrice, &t.Quantity,
			&t.Notional, &t.Profit, &t.ProfitPct, &t.Confidence, &t.Reason,
			&t.RSIAtEntry, &t.MACDAtEntry, &status, &entryTime,
			&t.BalanceBefore, &t.BalanceAfter, &inMemory)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to scan trade row", err)
		}

		t.Action = types.TradeAction(action)
		t.Strategy = types.Strategy(strategy)
		t.Status = types.TradeStatus(status)
		t.EntryTime = entryTime

		trades = append(trades, t)

		if inMemory {
			memory = append(memory, t)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to iterate trade rows", err)
	}

	return trades, memory, nil
}

func (s *DuckDBStore) loadBalanceHistory() ([]types.BalanceHistoryPoint, error) {
	query, args, err := s.sq.
		Select("ts", "balance").
		From("balance_history").
		OrderBy("ts ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to build balance query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to query balance history", err)
	}
	defer rows.Close()

	var history []types.BalanceHistoryPoint

	for rows.Next() {
		var p types.BalanceHistoryPoint
		if err := rows.Scan(&p.Timestamp, &p.Balance); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to scan balance row", err)
		}

		history = append(history, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotLoadFailed, "failed to iterate balance rows", err)
	}

	return history, nil
}

// Close releases the database handle.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

var _ SnapshotStore = (*DuckDBStore)(nil)
