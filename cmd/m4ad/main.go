package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"m4aledger/config"
	"m4aledger/native/claims"
	"m4aledger/native/fees"
	"m4aledger/native/roles"
	"m4aledger/observability/logging"
	"m4aledger/observability/metrics"
	"m4aledger/state"
	"m4aledger/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Service, cfg.Environment, cfg.LogFile)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		logger.Error("failed to open ledger database", "dataDir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)

	rolesEngine := roles.NewEngine()
	rolesEngine.SetState(manager)

	feesEngine := fees.NewEngine()
	feesEngine.SetState(manager)
	feesEngine.SetAuthority(rolesEngine)
	if err := feesEngine.Bootstrap(cfg.FeeToken, cfg.FeeDecimals); err != nil {
		logger.Error("failed to seed fee token", "token", cfg.FeeToken, "error", err)
		os.Exit(1)
	}

	claimsEngine := claims.NewEngine()
	claimsEngine.SetState(manager)
	claimsEngine.SetAuthority(rolesEngine)
	claimsEngine.SetFeeSchedule(feesEngine)
	claimsEngine.SetEmitter(metrics.NewRecorder(nil))
	claimsEngine.SetDefaultQueueSizeLimit(cfg.QueueSizeLimit)
	claimsEngine.SetFlatFeeUSD(cfg.FlatFeeUSD)

	ledger := newLedgerServer(claimsEngine, rolesEngine, feesEngine, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ledger.register(mux)

	server := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger daemon listening", "address", cfg.MetricsAddress, "dataDir", cfg.DataDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
