package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/audio"
	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/report"
	"github.com/user/audio-harvester/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		return 1
	}

	fs := pflag.NewFlagSet("classify", pflag.ContinueOnError)
	fs.StringVar(&cfg.OutputDir, "dir", cfg.OutputDir, "directory holding the .mp3 files")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		return 1
	}
	defer log.Sync()

	p := report.NewPrinter(os.Stdout)
	results, err := audio.ClassifyDir(cfg.OutputDir, nil)
	if err != nil {
		if errors.Is(err, audio.ErrFileNotFound) {
			p.FileNotFound(cfg.OutputDir)
			return 1
		}
		log.Error("could not read directory", zap.String("dir", cfg.OutputDir), zap.Error(err))
		return 1
	}
	p.Classifications(results)
	return 0
}
