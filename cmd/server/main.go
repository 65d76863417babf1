package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mylearnapp/quiz-platform/internal/config"
	httpdelivery "github.com/mylearnapp/quiz-platform/internal/delivery/http"
	"github.com/mylearnapp/quiz-platform/internal/infra/gemini"
	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	pgrepo "github.com/mylearnapp/quiz-platform/internal/infra/postgres/repository"
	"github.com/mylearnapp/quiz-platform/internal/infra/sqlite"
	"github.com/mylearnapp/quiz-platform/internal/logger"
	"github.com/mylearnapp/quiz-platform/internal/repository"
	"github.com/mylearnapp/quiz-platform/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, lg)
	stop()

	if err != nil {
		lg.Error("server stopped with error", zap.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
	lg.Info("server stopped")
	_ = lg.Sync()
}

// storage is the repository bundle selected by database.driver.
type storage struct {
	store  repository.Store
	tr     repository.Transactor
	health httpdelivery.HealthChecker
	close  func()
}

func openStorage(ctx context.Context, cfg config.DB) (*storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			store:  sqlite.NewStore(db),
			tr:     sqlite.NewTransactor(db, cfg.QueryTimeout),
			health: db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil

	default:
		dsn, err := cfg.DSN()
		if err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.MaxConnections),
			MaxConnLifetime: cfg.MaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			store:  pgrepo.NewStore(pool),
			tr:     pgrepo.NewUnitOfWork(postgres.NewTransactor(pool, cfg.QueryTimeout)),
			health: pool.Ping,
			close:  pool.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	st, err := openStorage(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.close()
	lg.Info("storage ready", zap.String("driver", cfg.DB.Driver))

	// Initialize services.
	attempts := service.NewAttemptService(st.store, st.tr, lg)
	generator := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.ModelID, cfg.Gemini.BaseURL, cfg.Gemini.Timeout)
	if cfg.Gemini.APIKey == "" {
		lg.Warn("gemini api key is not set, quiz generation requests will fail")
	}

	router := httpdelivery.NewRouter(httpdelivery.Services{
		Attempts:   attempts,
		Quizzes:    service.NewQuizService(st.store, st.tr, lg),
		Cascade:    service.NewCascadeDeleter(st.tr, lg),
		Users:      service.NewUserService(st.store, st.tr, lg),
		Topics:     service.NewTopicService(st.store, st.tr),
		Statistics: service.NewStatisticsService(st.store),
		Generation: service.NewGenerationService(st.store, generator, lg),
		Health:     st.health,
	}, httpdelivery.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.HTTP.WriteTimeout,
	}, lg)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Expiry.Enabled {
		expiry := service.NewExpiryService(st.store, attempts, cfg.Expiry.Schedule, cfg.Expiry.BatchSize, lg)
		g.Go(func() error {
			return expiry.Start(gctx)
		})
	}

	return g.Wait()
}
