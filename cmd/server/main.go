package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/walletquest/gamification-service/internal/config"
	"github.com/walletquest/gamification-service/internal/httpapi"
	"github.com/walletquest/gamification-service/internal/ledger"
	"github.com/walletquest/gamification-service/internal/messaging"
	"github.com/walletquest/gamification-service/internal/platform/auth"
	"github.com/walletquest/gamification-service/internal/platform/logging"
	"github.com/walletquest/gamification-service/internal/platform/server"
)

const serviceName = "gamification-service"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName, cfg.LogLevel)

	repo, cleanup, err := newRepository(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}
	defer cleanup()

	ledgerService, err := ledger.NewService(repo, ledger.NewSystemClock(), ledger.NewUUIDGenerator(), cfg.Location)
	if err != nil {
		panic(fmt.Errorf("ledger service init error: %w", err))
	}

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     auth.Mode(cfg.Auth.Mode),
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	if cfg.RabbitMQ.URL != "" {
		consumer, err := messaging.NewConsumer(messaging.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			Queue:      cfg.RabbitMQ.Queue,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
		}, ledgerService, logger)
		if err != nil {
			panic(fmt.Errorf("rabbitmq consumer init error: %w", err))
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("rabbitmq consumer stopped", "error", err)
				stop()
			}
		}()
	}

	router := server.NewRouter(serviceName, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			httpapi.RegisterRoutes(r, ledgerService, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (ledger.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DatastoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		client, err := firestore.NewClientWithDatabase(ctx, cfg.Firestore.ProjectID, cfg.Firestore.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}

		return ledger.NewFirestoreRepository(client), func() { _ = client.Close() }, nil

	case config.DatastorePostgres:
		pool, err := ledger.NewPool(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}

		repo := ledger.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		logger.Warn("using in-memory datastore; data is lost on restart")
		return ledger.NewMemoryRepository(), func() {}, nil
	}
}
