package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/logger"
	"github.com/aion-lab/aion-trading/internal/types"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
}

func TestDuckDBStoreTestSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (s *DuckDBStoreTestSuite) SetupTest() {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.OutputPaths = []string{}
	loggerConfig.ErrorOutputPaths = []string{}

	zapLogger, err := loggerConfig.Build()
	s.Require().NoError(err)

	store, err := NewDuckDBStore(":memory:", &logger.Logger{Logger: zapLogger})
	s.Require().NoError(err)
	s.store = store
}

func (s *DuckDBStoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *DuckDBStoreTestSuite) sampleSnapshot() types.EngineSnapshot {
	entry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	trades := []types.Trade{
		{
			ID:            "T-1",
			Symbol:        "BTCUSDT",
			Action:        types.TradeActionBuy,
			Strategy:      types.StrategyMeanReversion,
			EntryPrice:    50000,
			Quantity:      0.0002,
			Notional:      10,
			Profit:        0.11,
			ProfitPct:     1.1,
			Confidence:    0.8,
			Reason:        "RSI oversold",
			RSIAtEntry:    25,
			MACDAtEntry:   0.5,
			Status:        types.TradeStatusClosed,
			EntryTime:     entry,
			BalanceBefore: 50,
			BalanceAfter:  50.11,
		},
		{
			ID:            "T-2",
			Symbol:        "ETHUSDT",
			Action:        types.TradeActionSell,
			Strategy:      types.StrategyQuickMomentum,
			EntryPrice:    2600,
			Quantity:      0.004,
			Notional:      10,
			Profit:        -0.05,
			ProfitPct:     -0.5,
			Confidence:    0.75,
			Reason:        "RSI overbought",
			RSIAtEntry:    78,
			MACDAtEntry:   -0.2,
			Status:        types.TradeStatusOpen,
			EntryTime:     entry.Add(10 * time.Minute),
			BalanceBefore: 50.11,
			BalanceAfter:  50.06,
		},
	}

	return types.EngineSnapshot{
		Balance: 50.06,
		Trades:  trades,
		Memory:  trades[1:],
		Performance: types.PerformanceSummary{
			TotalTrades:      2,
			SuccessfulTrades: 1,
			TotalProfit:      0.06,
			WinRate:          50,
			CurrentStreak:    -1,
		},
		BalanceHistory: []types.BalanceHistoryPoint{
			{Timestamp: entry, Balance: 50},
			{Timestamp: entry.Add(10 * time.Minute), Balance: 50.06},
		},
		Intelligence: types.IntelligenceScore{
			Score:              58.6,
			LearningRate:       100,
			PatternRecognition: 100,
			RiskAdjustment:     50,
			MarketAdaptation:   12,
		},
		StrategyWeights: types.StrategyWeights{
			types.StrategyMeanReversion: 0.5,
			types.StrategyQuickMomentum: 0.5,
		},
		CompoundingFactor: 1.08,
		LastUpdate:        entry.Add(time.Hour),
	}
}

func (s *DuckDBStoreTestSuite) TestLoadFromEmptyStore() {
	_, found, err := s.store.Load()
	s.Require().NoError(err)
	s.Require().False(found)
}

func (s *DuckDBStoreTestSuite) TestSaveAndLoadRoundTrip() {
	snapshot := s.sampleSnapshot()
	s.Require().NoError(s.store.Save(snapshot))

	loaded, found, err := s.store.Load()
	s.Require().NoError(err)
	s.Require().True(found)

	s.Require().InDelta(snapshot.Balance, loaded.Balance, 1e-9)
	s.Require().Equal(snapshot.Performance, loaded.Performance)
	s.Require().Equal(snapshot.Intelligence, loaded.Intelligence)
	s.Require().InDelta(snapshot.CompoundingFactor, loaded.CompoundingFactor, 1e-9)
	s.Require().Equal(snapshot.LastUpdate.Unix(), loaded.LastUpdate.Unix())

	s.Require().Len(loaded.Trades, 2)
	s.Require().Equal("T-1", loaded.Trades[0].ID)
	s.Require().Equal(types.TradeStatusClosed, loaded.Trades[0].Status)
	s.Require().Equal(types.StrategyMeanReversion, loaded.Trades[0].Strategy)
	s.Require().InDelta(0.11, loaded.Trades[0].Profit, 1e-9)
	s.Require().Equal(snapshot.Trades[0].EntryTime.Unix(), loaded.Trades[0].EntryTime.Unix())

	s.Require().Len(loaded.Memory, 1)
	s.Require().Equal("T-2", loaded.Memory[0].ID)

	s.Require().Len(loaded.BalanceHistory, 2)
	s.Require().InDelta(50.0, loaded.BalanceHistory[0].Balance, 1e-9)

	s.Require().InDelta(0.5, loaded.StrategyWeights[types.StrategyMeanReversion], 1e-9)
	s.Require().InDelta(0.5, loaded.StrategyWeights[types.StrategyQuickMomentum], 1e-9)
}

func (s *DuckDBStoreTestSuite) TestSaveReplacesPreviousSnapshot() {
	snapshot := s.sampleSnapshot()
	s.Require().NoError(s.store.Save(snapshot))

	snapshot.Balance = 75
	snapshot.Trades = snapshot.Trades[:1]
	snapshot.Memory = nil
	s.Require().NoError(s.store.Save(snapshot))

	loaded, found, err := s.store.Load()
	s.Require().NoError(err)
	s.Require().True(found)
	s.Require().InDelta(75.0, loaded.Balance, 1e-9)
	s.Require().Len(loaded.Trades, 1)
	s.Require().Empty(loaded.Memory)
}
