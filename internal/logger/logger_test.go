package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (s *LoggerTestSuite) TestNewLogger() {
	log, err := NewLogger()
	s.Require().NoError(err)
	s.Require().NotNil(log)
	s.Require().NotNil(log.Logger)
}

func (s *LoggerTestSuite) TestNewProductionLogger() {
	log, err := NewProductionLogger()
	s.Require().NoError(err)
	s.Require().NotNil(log)
}

func (s *LoggerTestSuite) TestSyncOnNilInnerLogger() {
	log := &Logger{}
	s.Require().NoError(log.Sync())
}
