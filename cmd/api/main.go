// Command api serves the opt-in, feed and broadcast HTTP API.
//
// @title Conreach API
// @version 1.0
// @description Booth opt-ins and vendor broadcasts for conventions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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
	_ "conreach/docs"
	"conreach/internal/adapters/auth"
	"conreach/internal/app"
	"conreach/internal/contact"
	"conreach/internal/db"
	httpdelivery "conreach/internal/delivery/http"
	"conreach/internal/delivery/http/controllers"
	"conreach/internal/delivery/http/middleware"
	"conreach/internal/domain"
	"conreach/internal/jobs"
	"conreach/internal/repository/postgres"
	"conreach/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Server)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api stopped", "err", err)
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

	registry, m := app.NewRegistry()

	queue, err := app.NewQueue(ctx, cfg.Queue)
	if err != nil {
		return err
	}
	defer queue.Close()

	verifier, err := auth.NewJWT(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(conn)
	vendorEventRepo := postgres.NewVendorEventRepository(conn)
	optInRepo := postgres.NewOptInRepository(conn)
	vendorOptInRepo := postgres.NewVendorOptInRepository(conn)
	broadcastRepo := postgres.NewBroadcastRepository(conn)
	tokens := services.NewTokenIssuer(postgres.NewTokenRepository(conn))

	// Services
	vendorEvents := services.NewVendorEventService(vendorEventRepo, eventRepo, tokens)
	resolver := services.NewOptInResolver(
		optInRepo,
		vendorOptInRepo,
		tokens,
		services.NewUserMatcher(postgres.NewUserRepository(conn)),
		contact.NewNormalizer(cfg.Contact.DefaultCountryCode),
		logger,
	)
	scans := services.NewScanService(vendorEvents, resolver, m, logger)
	checkIns := services.NewCheckInService(optInRepo)
	broadcasts := services.NewBroadcastService(
		vendorEventRepo,
		optInRepo,
		broadcastRepo,
		jobs.NewDeliveryQueue(queue),
		cfg.Broadcast.MaxMessageLength,
		cfg.Delivery.StallAfter,
		m,
		logger,
	)
	feed := services.NewFeedService(eventRepo, broadcastRepo)

	mux := httpdelivery.NewRouter(httpdelivery.Routes{
		OptIn:           controllers.NewOptInController(logger, vendorEvents, scans, checkIns),
		Feed:            controllers.NewFeedController(logger, feed),
		VendorEvents:    controllers.NewVendorEventController(logger, vendorEvents),
		Broadcasts:      controllers.NewBroadcastController(logger, broadcasts),
		RequireAuth:     middleware.RequireAuth(verifier, logger, domain.RoleVendor, domain.RoleOperator),
		RequireOperator: middleware.RequireAuth(verifier, logger, domain.RoleOperator),
		OptionalAuth:    middleware.OptionalAuth(verifier, logger),
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	handler := middleware.CORS(cfg.Server.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))
	server := &http.Server{Addr: ":" + cfg.Server.Port, Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Server.Port, "env", cfg.Server.Environment)
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

	// The memory queue is only visible to this process, so its consumers run here.
	if cfg.Queue.Backend == "memory" {
		providers, err := app.NewProviders(cfg, logger)
		if err != nil {
			return err
		}
		runner := app.NewDeliveryRunner(conn, queue, providers, cfg.Delivery, m, logger)
		g.Go(func() error {
			logger.Info("in-process delivery workers starting", "workers", cfg.Delivery.Workers)
			return runner.Run(ctx)
		})
	}

	return g.Wait()
}
