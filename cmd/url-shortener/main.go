package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-chi/httplog/v2"

	"github.com/akovalyov/url-shortener/internal/app"
	"github.com/akovalyov/url-shortener/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger := httplog.NewLogger("url-shortener", httplog.Options{
		JSON:    cfg.Env == config.EnvProd,
		Concise: cfg.Env != config.EnvProd,
	})

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped with error", "err", err)
		os.Exit(1)
	}
}
