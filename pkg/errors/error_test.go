package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (s *ErrorTestSuite) TestNewAndCode() {
	err := New(ErrCodeCooldownActive, "cooldown in effect")

	s.Require().Equal(ErrCodeCooldownActive, GetCode(err))
	s.Require().True(HasCode(err, ErrCodeCooldownActive))
	s.Require().False(HasCode(err, ErrCodeConcurrencyCap))
	s.Require().Contains(err.Error(), "cooldown in effect")
}

func (s *ErrorTestSuite) TestNewfFormats() {
	err := Newf(ErrCodeImplausiblePrice, "quote %.2f outside band", 1.23)
	s.Require().Contains(err.Error(), "quote 1.23 outside band")
}

func (s *ErrorTestSuite) TestWrapPreservesCause() {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeSnapshotSaveFailed, "failed to save snapshot", cause)

	s.Require().True(stderrors.Is(err, cause))
	s.Require().Equal(ErrCodeSnapshotSaveFailed, GetCode(err))
	s.Require().Contains(err.Error(), "disk full")
}

func (s *ErrorTestSuite) TestWrapfFormats() {
	cause := stderrors.New("connection refused")
	err := Wrapf(ErrCodeMarketDataFetchFailed, cause, "failed to fetch klines for %s", "BTCUSDT")

	s.Require().Contains(err.Error(), "BTCUSDT")
	s.Require().True(stderrors.Is(err, cause))
}

func (s *ErrorTestSuite) TestGetCodeOnForeignError() {
	s.Require().Equal(ErrCodeUnknown, GetCode(stderrors.New("plain")))
	s.Require().Equal(ErrCodeUnknown, GetCode(nil))
}

func (s *ErrorTestSuite) TestCodeExtractionThroughWrapping() {
	inner := New(ErrCodeSolvencyFloor, "balance at floor")
	outer := Wrap(ErrCodeInternal, "commit failed", inner)

	// The outermost code wins.
	s.Require().Equal(ErrCodeInternal, GetCode(outer))

	var e *Error
	s.Require().True(As(outer, &e))
}

func (s *ErrorTestSuite) TestIsAdmissionRefusal() {
	s.Require().True(IsAdmissionRefusal(ErrCodeCooldownActive))
	s.Require().True(IsAdmissionRefusal(ErrCodeConcurrencyCap))
	s.Require().True(IsAdmissionRefusal(ErrCodeSolvencyFloor))
	s.Require().False(IsAdmissionRefusal(ErrCodeInvalidSignal))
	s.Require().False(IsAdmissionRefusal(ErrCodeEngineNotRunning))
}
