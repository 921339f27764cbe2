package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"bookdoc/internal/book"
	"bookdoc/internal/config"
	apphttp "bookdoc/internal/http"
	"bookdoc/internal/httpx"
	"bookdoc/internal/platform/postgres"
	"bookdoc/internal/platform/redis"
	"bookdoc/internal/resource"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadEnvFiles()

	app := fx.New(appOptions())
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatalf("failed to stop: %v", err)
	}
}

func appOptions() fx.Option {
	return fx.Options(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			config.Load,
			newLogger,
			newPool,
			newRepository,
			newService,
			newPresenters,
			newMetrics,
			newRateLimiter,
			newRouter,
			newServer,
		),
		fx.Invoke(registerServerHooks),
	)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}

func newPool(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection OK", zap.String("dsn", config.RedactDSN(cfg.DatabaseDSN)))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

// newRepository returns the Postgres repository, behind a read-through cache
// when REDIS_ADDR is set.
func newRepository(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (book.Repository, error) {
	repo := book.NewPostgresRepo(pool, cfg.DBTimeout)
	if cfg.RedisAddr == "" {
		return repo, nil
	}

	cache := redis.NewCache(redis.NewClient(cfg.RedisAddr), cfg.CacheTTL)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		_ = cache.Close()
		return nil, err
	}
	logger.Info("book cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return cache.Close()
		},
	})
	return book.NewCachedRepository(repo, cache, logger), nil
}

func newService(repo book.Repository) *book.Service {
	return book.NewService(repo)
}

func newPresenters(cfg config.Config) map[resource.Version]resource.Presenter {
	return resource.All(cfg.PublicBaseURL)
}

func newMetrics() *httpx.Metrics {
	return httpx.NewMetrics("bookdoc")
}

func newRateLimiter(lc fx.Lifecycle, cfg config.Config) *httpx.RateLimiter {
	limiter := httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			limiter.Stop()
			return nil
		},
	})
	return limiter
}

type routerParams struct {
	fx.In

	Config      config.Config
	Service     *book.Service
	Presenters  map[resource.Version]resource.Presenter
	Pool        *pgxpool.Pool
	Logger      *zap.Logger
	Metrics     *httpx.Metrics
	RateLimiter *httpx.RateLimiter
}

func newRouter(p routerParams) http.Handler {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Service:      p.Service,
		Presenters:   p.Presenters,
		DB:           p.Pool,
		Logger:       p.Logger,
		Metrics:      p.Metrics,
		RateLimiter:  p.RateLimiter,
		CORSOrigins:  p.Config.CORSOrigins,
		EnableHSTS:   p.Config.EnableHSTS,
		TrustProxy:   p.Config.TrustProxy,
		MaxBodyBytes: p.Config.MaxBodyBytes,
	})
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerServerHooks(lc fx.Lifecycle, srv *http.Server, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info("starting server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}
