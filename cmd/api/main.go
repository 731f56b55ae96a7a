package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/api"
	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/crawler"
	"github.com/user/audio-harvester/internal/monitoring"
	"github.com/user/audio-harvester/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, "json")
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	metrics := monitoring.NewMetrics()

	// The plain harvester always exists; the rendering one only when
	// RENDER_PAGES is set, since it needs a local Chrome.
	plainCfg := *cfg
	plainCfg.RenderPages = false
	plain, _, err := crawler.Build(&plainCfg, metrics, log)
	if err != nil {
		log.Fatal("could not build harvester", zap.Error(err))
	}

	var rendered api.Runner
	closeBrowser := func() {}
	if cfg.RenderPages {
		h, closer, err := crawler.Build(cfg, metrics, log)
		if err != nil {
			log.Fatal("could not build rendering harvester", zap.Error(err))
		}
		rendered, closeBrowser = h, closer
	}
	defer closeBrowser()

	server := api.NewServer(cfg, plain, rendered, metrics, log)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("port", cfg.ServerPort), zap.Bool("render", cfg.RenderPages))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
