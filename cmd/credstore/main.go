package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-session/credstore"
	"github.com/goliatone/go-session/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := credstore.LoadConfig(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "credstore"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "credstore",
	})
	log := logger.NewAdapter(zl)

	srv, err := credstore.New(ctx, cfg, log)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to start credential store")
	}

	go func() {
		log.Info("credential store listening", "addr", cfg.GetAddr())
		if err := srv.Listen(cfg.GetAddr()); err != nil {
			log.Error("credential store stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("credential store shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("credential store stopped")
}
