package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/trustgate/adapters/credentials"
	"github.com/layer-3/trustgate/adapters/events"
	"github.com/layer-3/trustgate/adapters/hasher"
	"github.com/layer-3/trustgate/adapters/kyc"
	"github.com/layer-3/trustgate/adapters/media"
	"github.com/layer-3/trustgate/adapters/postgres"
	"github.com/layer-3/trustgate/adapters/store"
	"github.com/layer-3/trustgate/adapters/tokenizer"
	"github.com/layer-3/trustgate/config"
	"github.com/layer-3/trustgate/jobs"
	"github.com/layer-3/trustgate/ports"
	"github.com/layer-3/trustgate/service"
	httptransport "github.com/layer-3/trustgate/transport/http"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var db *sql.DB
	if cfg.NeedsPostgres() {
		var err error
		db, err = postgres.Open(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		}
	}

	var (
		users    ports.CredentialStore
		kycStore ports.KYCStore
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		users = credentials.NewPostgresStore(db)
		kycStore = kyc.NewPostgresStore(db)
	default:
		memoryKYC := kyc.NewMemoryStore()
		users = credentials.NewMemoryStore(memoryKYC.Find)
		kycStore = memoryKYC
	}

	var revoked ports.Store
	switch cfg.RevocationBackend {
	case config.BackendRedis:
		revoked = store.NewRedisStore(redisClient, cfg.RevocationRetention)
	case config.BackendPostgres:
		// Swept by the worker
		revoked = store.NewPostgresStore(db, cfg.RevocationRetention)
	default:
		memoryStore := store.NewMemoryStore(cfg.RevocationRetention)
		sweep := jobs.NewSweepJob(memoryStore, cfg.RevocationRetention, logger.Named("sweep"))
		go sweep.RunEvery(ctx, cfg.SweepInterval)
		revoked = memoryStore
	}

	var eventPub ports.EventPublisher = events.NopPublisher{}
	if cfg.EventsEnabled {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return err
		}
		defer publisher.Close()
		eventPub = events.NewWatermillPublisher(publisher)
	}

	tok, err := tokenizer.NewJWTTokenizer(tokenizer.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	mediaStore := media.NewFileStore(cfg.MediaDir, cfg.MediaBaseURL)

	authService := service.NewAuthService(tok, revoked, users, hasher.NewBcrypt(cfg.BcryptCost), eventPub, logger.Named("auth"))
	userService := service.NewUserService(users)
	kycService := service.NewKYCService(kycStore, mediaStore, eventPub, logger.Named("kyc"))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.SetupRouter(httptransport.RouterConfig{
		Auth:          authService,
		Users:         userService,
		KYC:           kycService,
		Logger:        logger.Named("http"),
		Metrics:       httptransport.NewMetrics(),
		Production:    cfg.IsProduction(),
		MediaDir:      mediaStore.Root(),
		MediaBaseURL:  cfg.MediaBaseURL,
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageBackend),
			zap.String("revocation", cfg.RevocationBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
