// Package server exposes the engine over a small JSON HTTP control surface.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/credentials"
	"github.com/aion-lab/aion-trading/internal/engine"
	"github.com/aion-lab/aion-trading/internal/logger"
	"github.com/aion-lab/aion-trading/pkg/errors"
	"github.com/aion-lab/aion-trading/pkg/marketdata"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	defaultTradeLimit = 50
)

// Server wires the engine and the credential store into HTTP handlers.
type Server struct {
	engine *engine.Engine
	creds  *credentials.Store
	log    *logger.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server listening on addr once Start is called.
func NewServer(addr string, eng *engine.Engine, creds *credentials.Store, log *logger.Logger) *Server {
	s := &Server{
		engine: eng,
		creds:  creds,
		log:    log,
	}

	router := mux.NewRouter()

	router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	router.HandleFunc("/api/trades", s.handleTrades).Methods("GET")
	router.HandleFunc("/api/live-trades", s.handleLiveTrades).Methods("GET")
	router.HandleFunc("/api/balance-history", s.handleBalanceHistory).Methods("GET")
	router.HandleFunc("/api/intelligence", s.handleIntelligence).Methods("GET")
	router.HandleFunc("/api/progress", s.handleProgress).Methods("GET")
	router.HandleFunc("/api/providers", s.handleProviders).Methods("GET")
	router.HandleFunc("/api/start", s.handleStart).Methods("POST")
	router.HandleFunc("/api/stop", s.handleStop).Methods("POST")
	router.HandleFunc("/api/simulate", s.handleSimulate).Methods("POST")
	router.HandleFunc("/api/keys/test", s.handleKeysTest).Methods("POST")
	router.HandleFunc("/api/keys/clear", s.handleKeysClear).Methods("POST")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to bind control API listener", err)
	}

	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Control API serve failed", zap.Error(err))
		}
	}()

	s.log.Info("Control API listening", zap.String("addr", listener.Addr().String()))

	return nil
}

// Addr returns the bound listener address. Useful when the configured port
// is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}

	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":            s.engine.Running(),
		"balance":            s.engine.Balance(),
		"performance":        s.engine.Performance(),
		"strategy_weights":   s.engine.Weights(),
		"compounding_factor": s.engine.CompoundingFactor(),
		"open_trades":        len(s.engine.OpenTrades()),
	})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"trades": s.engine.RecentTrades(defaultTradeLimit),
	})
}

func (s *Server) handleLiveTrades(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"trades": s.engine.OpenTrades(),
	})
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"history": s.engine.BalanceHistory(),
	})
}

func (s *Server) handleIntelligence(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Intelligence())
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.GoalProgress())
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := make([]marketdata.ProviderInfo, 0)

	for _, name := range marketdata.SupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			continue
		}

		providers = append(providers, info)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"providers": providers,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Start(context.Background()); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "started",
		"balance": s.engine.Balance(),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "stopped",
		"balance": s.engine.Balance(),
	})
}

type simulateRequest struct {
	Cycles int `json:"cycles"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req := simulateRequest{Cycles: 10}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid simulate request", err))

			return
		}
	}

	snapshot, err := s.engine.Simulate(r.Context(), req.Cycles)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"final_balance": snapshot.Balance,
		"total_trades":  snapshot.Performance.TotalTrades,
		"win_rate":      snapshot.Performance.WinRate,
		"intelligence":  snapshot.Intelligence,
	})
}

type keysRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

func (s *Server) handleKeysTest(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid keys request", err))

		return
	}

	if err := s.creds.Save(credentials.Credentials{
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
	}); err != nil {
		s.writeError(w, err)

		return
	}

	// Probe the provider with the saved keys. Kline endpoints are public,
	// so this verifies connectivity rather than key validity.
	provider := marketdata.NewBinanceProvider(req.APIKey, req.APISecret)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, probeErr := provider.Quote(ctx, "BTCUSDT")

	s.writeJSON(w, http.StatusOK, map[string]any{
		"saved":     true,
		"connected": probeErr == nil,
	})
}

func (s *Server) handleKeysClear(w http.ResponseWriter, r *http.Request) {
	if err := s.creds.Clear(); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"cleared": true,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeMissingParameter:
		status = http.StatusBadRequest
	case errors.ErrCodeEngineAlreadyRunning, errors.ErrCodeEngineNotRunning, errors.ErrCodeEngineNotConnected:
		status = http.StatusConflict
	}

	s.writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"code":  int(errors.GetCode(err)),
	})
}
