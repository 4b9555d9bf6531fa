package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2024mt03579/ums-payment-service/config"
	"github.com/2024mt03579/ums-payment-service/internal/gateway"
	"github.com/2024mt03579/ums-payment-service/internal/payment/application"
	paymenthttp "github.com/2024mt03579/ums-payment-service/internal/payment/infrastructure/http"
	"github.com/2024mt03579/ums-payment-service/internal/payment/infrastructure/postgres"
	"github.com/2024mt03579/ums-payment-service/internal/payment/infrastructure/rabbitmq"
	"github.com/2024mt03579/ums-payment-service/pkg/background"
	"github.com/2024mt03579/ums-payment-service/pkg/logging"
	"github.com/2024mt03579/ums-payment-service/pkg/shutdown"
	"github.com/2024mt03579/ums-payment-service/pkg/tracing"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()

	tp, err := tracing.Init(ctx, "payment-service", cfg.OTLPURL, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres setup
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	// Wiring
	repo := postgres.NewRepository(log, pool)
	publisher := rabbitmq.NewPublisher(log, cfg.RabbitURL)
	gw := gateway.NewSimulator(log)
	tasks := background.NewPool(ctx, log, cfg.WorkerLimit)

	svc := application.NewService(log, repo, publisher, gw, tasks)
	processor := application.NewRegistrationProcessor(log, repo)

	// One consumer loop per process lifetime
	consumer := rabbitmq.NewConsumer(log, cfg.RabbitURL, cfg.QueueName, processor)
	consumer.Start(ctx)

	// HTTP server
	handler := paymenthttp.NewHandler(log, svc, pool)
	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	tasks.Wait()
	log.Info("payment-service shutdown complete")
}
