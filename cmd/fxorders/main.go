package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finvex/fxorders/internal/config"
	"github.com/finvex/fxorders/internal/orders"
	"github.com/finvex/fxorders/internal/rates"
	"github.com/finvex/fxorders/internal/relay"
	"github.com/finvex/fxorders/internal/server"
	"github.com/finvex/fxorders/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	store := orders.NewStore()
	provider := rates.NewFixed()

	procCfg := orders.DefaultProcessorConfig()
	procCfg.Timeout = cfg.Processing.Timeout
	procCfg.ClawbackOdds = cfg.Processing.ClawbackOdds

	ordersSvc := orders.NewService(zapLogger, store, provider, procCfg, cfg.Relay.SourceBuffer)

	eventRelay := relay.New(zapLogger, ordersSvc.Events(), cfg.Relay.SubscriberBuffer)
	relayCtx, stopRelay := context.WithCancel(context.Background())
	go eventRelay.Run(relayCtx)

	srv := server.New(zapLogger, ordersSvc, eventRelay)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Router(),
	}

	go func() {
		zapLogger.Info("http server listening", zap.String("addr", cfg.Server.Addr()))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("http shutdown failed", zap.Error(err))
	}

	// Joins in-flight processors, then ends the event feed.
	ordersSvc.Close()
	stopRelay()
	<-eventRelay.Done()
	zapLogger.Info("stopped")
}
