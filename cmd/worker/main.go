// Command worker consumes the redis delivery queue and sends broadcasts.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"conreach/config"
	"conreach/internal/app"
	"conreach/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Server).With("component", "worker")
	slog.SetDefault(logger)

	if cfg.Queue.Backend != "redis" {
		logger.Error("worker requires QUEUE_BACKEND=redis; the memory queue is consumed by the api process", "backend", cfg.Queue.Backend)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	conn, err := db.Open(ctx, cfg.DB.URL, db.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	queue, err := app.NewQueue(ctx, cfg.Queue)
	if err != nil {
		return err
	}
	defer queue.Close()

	providers, err := app.NewProviders(cfg, logger)
	if err != nil {
		return err
	}
	registry, m := app.NewRegistry()
	runner := app.NewDeliveryRunner(conn, queue, providers, cfg.Delivery, m, logger)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("delivery workers starting", "workers", cfg.Delivery.Workers, "queue", cfg.Queue.Key)
		return runner.Run(ctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
