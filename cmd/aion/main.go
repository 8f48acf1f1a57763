package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/aion-lab/aion-trading/internal/credentials"
	"github.com/aion-lab/aion-trading/internal/engine"
	"github.com/aion-lab/aion-trading/internal/logger"
	"github.com/aion-lab/aion-trading/internal/persistence"
	"github.com/aion-lab/aion-trading/internal/server"
	"github.com/aion-lab/aion-trading/pkg/marketdata"
)

// runAction wires the configuration, provider, snapshot store, engine and
// control API together and runs until interrupted.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	statePath := cmd.String("state")
	credsPath := cmd.String("credentials")
	listenAddr := cmd.String("listen")
	providerName := cmd.String("provider")
	autostart := cmd.Bool("autostart")

	zapLogger, err := logger.NewProductionLogger()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	cfg := engine.DefaultConfig()

	if configPath != "" {
		cfg, err = engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	credStore := credentials.NewStore(credsPath)

	creds, err := credStore.Load()
	if err != nil {
		return err
	}

	provider, err := marketdata.NewProvider(marketdata.ProviderType(providerName), creds.APIKey, creds.APISecret)
	if err != nil {
		return err
	}

	store, err := persistence.NewDuckDBStore(statePath, zapLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	seed := time.Now().UnixNano()
	eng := engine.NewEngine(&cfg, zapLogger, provider, store, engine.NewRandSource(seed))

	srv := server.NewServer(listenAddr, eng, credStore, zapLogger)
	if err := srv.Start(); err != nil {
		return err
	}

	if autostart {
		if err := eng.Start(ctx); err != nil {
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLogger.Info("Shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	if eng.Running() {
		if err := eng.Stop(); err != nil {
			zapLogger.Warn("Engine stop failed", zap.Error(err))
		}
	}

	return srv.Shutdown(context.Background())
}

func main() {
	cmd := &cli.Command{
		Name:  "aion",
		Usage: "Adaptive signal and capital-allocation engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML configuration file (defaults apply when omitted)",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "state",
				Aliases:  []string{"s"},
				Usage:    "Path to the DuckDB state database",
				Value:    "aion_state.db",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "credentials",
				Aliases:  []string{"k"},
				Usage:    "Path to the exchange credentials file",
				Value:    "credentials.json",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "listen",
				Aliases:  []string{"l"},
				Usage:    "Control API listen address",
				Value:    ":8087",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "Market data provider (binance, synthetic)",
				Value:    string(marketdata.ProviderBinance),
				Required: false,
			},
			&cli.BoolFlag{
				Name:     "autostart",
				Usage:    "Start the engine immediately instead of waiting for the control API",
				Value:    true,
				Required: false,
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
