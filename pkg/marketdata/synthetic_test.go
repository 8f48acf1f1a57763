package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aion-lab/aion-trading/pkg/errors"
)

type SyntheticProviderTestSuite struct {
	suite.Suite
}

func TestSyntheticProviderTestSuite(t *testing.T) {
	suite.Run(t, new(SyntheticProviderTestSuite))
}

func (s *SyntheticProviderTestSuite) TestDeterministicForSameSeed() {
	a := NewSyntheticProvider(7)
	b := NewSyntheticProvider(7)

	ctx := context.Background()

	candlesA, err := a.Candles(ctx, "BTCUSDT", "1m", 50)
	s.Require().NoError(err)

	candlesB, err := b.Candles(ctx, "BTCUSDT", "1m", 50)
	s.Require().NoError(err)

	s.Require().Len(candlesA, 50)

	for i := range candlesA {
		s.Require().InDelta(candlesA[i].Close, candlesB[i].Close, 1e-12)
		s.Require().InDelta(candlesA[i].Volume, candlesB[i].Volume, 1e-12)
	}
}

func (s *SyntheticProviderTestSuite) TestWalkAdvancesBetweenCalls() {
	p := NewSyntheticProvider(7)
	ctx := context.Background()

	first, err := p.Candles(ctx, "BTCUSDT", "1m", 10)
	s.Require().NoError(err)

	second, err := p.Candles(ctx, "BTCUSDT", "1m", 10)
	s.Require().NoError(err)

	// The second call's window is shifted by one step: its first nine
	// candles repeat the first call's last nine.
	s.Require().InDelta(first[1].Close, second[0].Close, 1e-12)
	s.Require().NotEqual(first[9].Close, second[9].Close)
}

func (s *SyntheticProviderTestSuite) TestPricesStayPositive() {
	p := NewSyntheticProviderWithDrift(1, -0.01)
	ctx := context.Background()

	candles, err := p.Candles(ctx, "ADAUSDT", "1m", 500)
	s.Require().NoError(err)

	for _, c := range candles {
		s.Require().Greater(c.Close, 0.0)
		s.Require().GreaterOrEqual(c.High, c.Low)
	}
}

func (s *SyntheticProviderTestSuite) TestQuote() {
	quote, err := NewSyntheticProvider(7).Quote(context.Background(), "ETHUSDT")
	s.Require().NoError(err)
	s.Require().Greater(quote.Price, 0.0)
	s.Require().Equal("ETHUSDT", quote.Symbol)
}

func (s *SyntheticProviderTestSuite) TestRejectsNonPositiveLimit() {
	_, err := NewSyntheticProvider(7).Candles(context.Background(), "BTCUSDT", "1m", 0)
	s.Require().Error(err)
	s.Require().True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *SyntheticProviderTestSuite) TestProviderRegistry() {
	names := SupportedProviders()
	s.Require().Len(names, 2)

	info, err := GetProviderInfo(string(ProviderSynthetic))
	s.Require().NoError(err)
	s.Require().True(info.IsSimulated)

	_, err = GetProviderInfo("nope")
	s.Require().Error(err)
}

func (s *SyntheticProviderTestSuite) TestFactory() {
	p, err := NewProvider(ProviderSynthetic, "", "")
	s.Require().NoError(err)
	s.Require().Equal(string(ProviderSynthetic), p.Name())

	b, err := NewProvider(ProviderBinance, "", "")
	s.Require().NoError(err)
	s.Require().Equal(string(ProviderBinance), b.Name())

	_, err = NewProvider("nope", "", "")
	s.Require().Error(err)
}
