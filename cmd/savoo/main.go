package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"savoo/internal/alerts"
	"savoo/internal/config"
	apphttp "savoo/internal/http"
	"savoo/internal/log"
	"savoo/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: "app",
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without a broker alerts are logged and throttled
	// locally instead of published.
	var (
		amqpClient *alerts.Client
		publisher  alerts.Publisher
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = alerts.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Budget alert publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - budget alerts will be logged locally")
	}

	notifier := alerts.NewNotifier(repo, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, repo, notifier)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting savoo server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Periodic sweep catches budgets that cross the threshold without a
	// new transaction, e.g. when a budget window rolls over.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.AlertSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := notifier.CheckAllBudgets(ctx); err != nil {
					logger.Warn("Budget alert sweep failed", "error", err)
				}
			}
		}
	})

	if amqpClient != nil {
		alertLog := logger.WithComponent("alerts")
		g.Go(func() error {
			err := amqpClient.ConsumeBudgetAlerts(ctx, func(msg *alerts.BudgetAlertMessage) error {
				alertLog.Info("Budget alert received",
					"budget_id", msg.BudgetID,
					"budget_name", msg.BudgetName,
					"spent_amount", msg.SpentAmount,
					"limit_amount", msg.LimitAmount,
					"over_limit", msg.OverLimit)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
