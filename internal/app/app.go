// Package app wires the application together: configuration, database,
// cache, service, background reconciler, and the HTTP server, all tied to a
// single lifecycle context.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/akovalyov/url-shortener/internal/api/http"
	cacheredis "github.com/akovalyov/url-shortener/internal/cache/redis"
	"github.com/akovalyov/url-shortener/internal/config"
	"github.com/akovalyov/url-shortener/internal/database/postgres"
	"github.com/akovalyov/url-shortener/internal/reconciler"
	"github.com/akovalyov/url-shortener/internal/service"
	pkgpostgres "github.com/akovalyov/url-shortener/pkg/postgres"
)

// Run starts the application and blocks until ctx is canceled or a fatal
// error occurs.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	db, err := pkgpostgres.New(
		ctx,
		cfg.Postgres.DSN(),
		pkgpostgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pkgpostgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pkgpostgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pkgpostgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := pkgpostgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	redisClient, err := cacheredis.New(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
	}
	defer redisClient.Close()

	urlRepo := postgres.NewURLRepository(db)
	urlCache := cacheredis.NewURLCache(redisClient)

	urlSvc := service.NewURLService(
		urlRepo,
		urlCache,
		logger.Logger,
		cfg.Shortener.CacheTTL,
		cfg.Shortener.RetentionMonths,
		cfg.ShortCodeLength,
	)

	rec := reconciler.New(
		urlRepo,
		urlCache,
		logger.Logger,
		cfg.Reconciler.ExpirationInterval,
		cfg.Reconciler.FlushInterval,
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        myhttp.NewRouter(logger, urlSvc),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rec.Run(ctx)
	})

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
