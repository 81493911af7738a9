package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techstore-admin/config"
	"techstore-admin/internal/api"
	"techstore-admin/internal/broker"
	"techstore-admin/internal/redisclient"
	"techstore-admin/internal/seed"
	"techstore-admin/internal/service"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"
	"techstore-admin/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting techstore admin")

	tp, err := util.InitTracer("techstore-admin", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	backend, checks, err := openBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage backend", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	st := store.NewStore(backend, cfg.Storage.KeyPrefix)
	defer st.Close()
	logger.Info("Storage ready", zap.String("driver", cfg.Storage.Driver))

	ctx := context.Background()
	seeded, err := seed.Bootstrap(ctx, st, time.Now())
	if err != nil {
		logger.Fatal("Failed to seed default data", zap.Error(err))
	}
	if len(seeded) > 0 {
		logger.Info("Seeded default data", zap.Strings("collections", seeded))
	}

	var producer broker.Publisher
	if cfg.Kafka.Enabled {
		p := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer p.Close()
		producer = p
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))
	}
	eventPublisher := broker.NewEventPublisher(producer)

	svc := service.New(st, eventPublisher, service.Options{
		Locale:          language.Make(cfg.Business.Locale),
		PageSize:        cfg.Business.DefaultPageSize,
		LoginDelay:      cfg.Auth.LoginDelay,
		HashPasswords:   cfg.Auth.HashPasswords,
		DefaultPassword: cfg.Auth.DefaultUserPwd,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var derivedWorker *worker.DerivedDataWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		derivedWorker = worker.NewDerivedDataWorker(consumer, svc.Categories, cfg.Business.CountRefreshDebounce)
		go func() {
			if err := derivedWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Derived data worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(svc, api.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn), checks...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if derivedWorker != nil {
		if err := derivedWorker.Stop(); err != nil {
			logger.Error("Error stopping worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// openBackend opens the configured storage driver along with the readiness
// checks it needs.
func openBackend(cfg *config.Config) (store.Backend, []api.ReadyCheck, error) {
	switch cfg.Storage.Driver {
	case "memory", "":
		return store.NewMemoryBackend(), nil, nil

	case "redis":
		rc, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		ping := func(ctx context.Context) error { return rc.GetClient().Ping(ctx).Err() }
		return rc, []api.ReadyCheck{ping}, nil

	case "postgres":
		pg, err := store.NewPostgresBackend(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return pg, []api.ReadyCheck{pg.GetDB().PingContext}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
