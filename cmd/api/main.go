package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/sidrxo/burner-ticketing/configs"
	"github.com/sidrxo/burner-ticketing/internal/app"
	"github.com/sidrxo/burner-ticketing/internal/audit"
	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/directory"
	"github.com/sidrxo/burner-ticketing/internal/gateway"
	"github.com/sidrxo/burner-ticketing/internal/ratelimit"
	"github.com/sidrxo/burner-ticketing/internal/storage/postgres"
	transporthttp "github.com/sidrxo/burner-ticketing/internal/transport/http"
	"github.com/sidrxo/burner-ticketing/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg, err := configs.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Logging.Format == "text" {
		log.SetFormatter(&log.TextFormatter{})
	}

	log.WithFields(log.Fields{
		"port":        cfg.Server.Port,
		"environment": cfg.Server.Environment,
	}).Info("starting burner-ticketing")

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("database ping failed")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}

	var sink audit.Sink
	if cfg.AMQP.URL != "" {
		amqpSink, err := audit.NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.WithError(err).Fatal("failed to connect audit sink")
		}
		defer func() {
			if err := amqpSink.Close(); err != nil {
				log.WithError(err).Error("failed to close audit sink")
			}
		}()
		sink = amqpSink
	} else {
		log.Warn("AMQP_URL not set, audit entries go to the log only")
		sink = audit.NewLogSink(nil)
	}

	clk := clock.NewSystem()
	gw := gateway.NewClient(cfg.Gateway.URL, cfg.Gateway.APIKey, cfg.Gateway.Timeout)
	dir := directory.NewClient(cfg.Identity.URL, cfg.Identity.APIKey, cfg.Gateway.Timeout)

	comp := app.NewCompensationManager(gw, sink, clk, log.StandardLogger())
	purchaseSvc := app.NewPurchaseService(postgres.NewIssuanceRepository(pool), gw, comp, sink, clk)

	limiter := ratelimit.NewLimiter(
		postgres.NewBucketRepository(pool),
		clk,
		cfg.RateLimit.ScanBurst,
		cfg.RateLimit.ScanRefillPerSec,
	)
	redemptionSvc := app.NewRedemptionService(postgres.NewRedemptionRepository(pool), limiter, sink, clk)
	transferSvc := app.NewTransferService(postgres.NewTransferRepository(pool), dir, sink, clk)
	adminSvc := app.NewAdminService(postgres.NewAdminRepository(pool), clk)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Auth:           transporthttp.NewAuthenticator(cfg.Auth.JWTSecret),
		Purchases:      purchaseSvc,
		Redemptions:    redemptionSvc,
		Transfers:      transferSvc,
		Admin:          adminSvc,
		DB:             pool,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server is running")
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
