package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opinionboard/opinion-service/internal/adapters/cache"
	eventadapter "github.com/opinionboard/opinion-service/internal/adapters/events"
	httpadapter "github.com/opinionboard/opinion-service/internal/adapters/http"
	"github.com/opinionboard/opinion-service/internal/adapters/memory"
	"github.com/opinionboard/opinion-service/internal/adapters/postgres"
	"github.com/opinionboard/opinion-service/internal/application"
	"github.com/opinionboard/opinion-service/internal/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var closers []io.Closer

	var posts ports.PostRepository
	var outboxRepo ports.OutboxRepository
	if cfg.DatabaseURL != "" {
		db, connErr := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if connErr != nil {
			return nil, connErr
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		if migErr := postgres.RunMigrations(ctx, db); migErr != nil {
			_ = sqlDB.Close()
			return nil, migErr
		}
		closers = append(closers, sqlDB)
		repos := postgres.NewRepositories(db)
		posts = repos.Posts
		outboxRepo = repos.Outbox
	} else {
		logger.WarnContext(ctx, "no database configured, using in-memory store")
		posts = memory.NewPostStore()
		outboxRepo = memory.NewOutboxStore()
	}

	notifier := ports.Notifier(eventadapter.NewLoggingNotifier(logger))
	cacheStore := ports.Cache(cache.Noop{})
	if cfg.RedisURL != "" {
		redisClient, redisErr := cache.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			closeAll(closers)
			return nil, redisErr
		}
		closers = append(closers, redisClient)
		notifier = eventadapter.NewRedisNotifier(redisClient, cfg.NotifyChannel)
		cacheStore = cache.NewRedisCache(redisClient)
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			application.EventNewOpinion:  cfg.KafkaTopicEngagement,
			application.EventEditOpinion: cfg.KafkaTopicEngagement,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceID,
			VoteRetryAttempts: cfg.VoteRetryAttempts,
			PostCacheTTL:      cfg.PostCacheTTL,
		},
		Posts:    posts,
		Outbox:   outboxRepo,
		Notifier: notifier,
		Cache:    cacheStore,
		Logger:   logger,
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler, logger, cfg.AllowedOrigin)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	outbox := eventadapter.NewOutboxWorker(logger, outboxRepo, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn: func(context.Context) {
			closeAll(closers)
		},
	}, nil
}

// Run serves HTTP and gRPC health, and drains the engagement outbox, until
// the process is signalled or one of the servers fails.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 3)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func closeAll(closers []io.Closer) {
	for _, closer := range closers {
		_ = closer.Close()
	}
}
