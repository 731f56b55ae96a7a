package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/crawler"
	"github.com/user/audio-harvester/internal/monitoring"
	"github.com/user/audio-harvester/internal/report"
	"github.com/user/audio-harvester/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns 0 for any completed harvest, even with failed items, 1 for
// bad input or configuration and 2 when the flags cannot be parsed.
func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		return 1
	}

	fs := pflag.NewFlagSet("crawler", pflag.ContinueOnError)
	link := fs.String("link", "", "URL of the page to crawl for .mp3 links")
	fs.IntVar(&cfg.LinkCount, "count", cfg.LinkCount, "maximum number of links to download")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory the files are written to")
	fs.StringVar(&cfg.FilePrefix, "prefix", cfg.FilePrefix, "prefix added to every file name")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel downloads")
	fs.StringVar(&cfg.CollisionPolicy, "collision", cfg.CollisionPolicy, "duplicate file names: overwrite, skip or rename")
	fs.BoolVar(&cfg.RenderPages, "render", cfg.RenderPages, "render the page in headless Chrome before extracting links")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *link == "" {
		fmt.Fprintln(os.Stderr, "--link is required")
		fs.Usage()
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		return 1
	}
	defer log.Sync()

	harvester, closeFn, err := crawler.Build(cfg, monitoring.NewMetrics(), log)
	if err != nil {
		log.Error("could not build harvester", zap.Error(err))
		return 1
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := harvester.Run(ctx, *link, cfg.LinkCount)
	if err != nil {
		log.Error("invalid input", zap.Error(err))
		return 1
	}

	report.NewPrinter(os.Stdout).Harvest(rep)
	return 0
}
