package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/credentials"
	"github.com/aion-lab/aion-trading/internal/engine"
	"github.com/aion-lab/aion-trading/internal/logger"
)

type ServerTestSuite struct {
	suite.Suite
	server *Server
	base   string
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.OutputPaths = []string{}
	loggerConfig.ErrorOutputPaths = []string{}

	zapLogger, err := loggerConfig.Build()
	s.Require().NoError(err)

	log := &logger.Logger{Logger: zapLogger}

	cfg := engine.DefaultConfig()
	eng := engine.NewEngine(&cfg, log, nil, nil, engine.ZeroSource())
	creds := credentials.NewStore(filepath.Join(s.T().TempDir(), "credentials.json"))

	s.server = NewServer("127.0.0.1:0", eng, creds, log)
	s.Require().NoError(s.server.Start())
	s.base = "http://" + s.server.Addr()
}

func (s *ServerTestSuite) TearDownTest() {
	if s.server != nil {
		s.Require().NoError(s.server.Shutdown(s.T().Context()))
	}
}

func (s *ServerTestSuite) getJSON(path string) (int, map[string]any) {
	resp, err := http.Get(s.base + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var payload map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&payload))

	return resp.StatusCode, payload
}

func (s *ServerTestSuite) postJSON(path string, body any) (int, map[string]any) {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(s.base+path, "application/json", bytes.NewReader(data))
	s.Require().NoError(err)
	defer resp.Body.Close()

	var payload map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&payload))

	return resp.StatusCode, payload
}

func (s *ServerTestSuite) TestStats() {
	status, payload := s.getJSON("/api/stats")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(false, payload["running"])
	s.Require().InDelta(50.0, payload["balance"].(float64), 1e-9)
}

func (s *ServerTestSuite) TestTradesEmpty() {
	status, payload := s.getJSON("/api/trades")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Contains(payload, "trades")
}

func (s *ServerTestSuite) TestIntelligence() {
	status, payload := s.getJSON("/api/intelligence")
	s.Require().Equal(http.StatusOK, status)
	s.Require().InDelta(50.0, payload["score"].(float64), 1e-9)
}

func (s *ServerTestSuite) TestProgress() {
	status, payload := s.getJSON("/api/progress")
	s.Require().Equal(http.StatusOK, status)
	s.Require().InDelta(5000.0, payload["target_balance"].(float64), 1e-9)
}

func (s *ServerTestSuite) TestProviders() {
	status, payload := s.getJSON("/api/providers")
	s.Require().Equal(http.StatusOK, status)

	providers, ok := payload["providers"].([]any)
	s.Require().True(ok)
	s.Require().Len(providers, 2)
}

func (s *ServerTestSuite) TestStartWithoutProviderConflicts() {
	status, payload := s.postJSON("/api/start", nil)
	s.Require().Equal(http.StatusConflict, status)
	s.Require().Contains(payload, "error")
}

func (s *ServerTestSuite) TestStopWhenNotRunningConflicts() {
	status, _ := s.postJSON("/api/stop", nil)
	s.Require().Equal(http.StatusConflict, status)
}

func (s *ServerTestSuite) TestSimulate() {
	status, payload := s.postJSON("/api/simulate", map[string]any{"cycles": 2})
	s.Require().Equal(http.StatusOK, status)
	s.Require().Greater(payload["final_balance"].(float64), 0.0)
}

func (s *ServerTestSuite) TestSimulateRejectsInvalidCycles() {
	status, _ := s.postJSON("/api/simulate", map[string]any{"cycles": -1})
	s.Require().Equal(http.StatusBadRequest, status)
}

func (s *ServerTestSuite) TestKeysClear() {
	status, payload := s.postJSON("/api/keys/clear", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(true, payload["cleared"])
}

func (s *ServerTestSuite) TestUnknownRouteIs404() {
	resp, err := http.Get(fmt.Sprintf("%s/api/nope", s.base))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}
