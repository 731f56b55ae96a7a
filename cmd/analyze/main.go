package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

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

	fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	filename := fs.String("filename", "", "MP3 file to analyse")
	fs.StringVar(&cfg.ImagesDir, "images", cfg.ImagesDir, "directory the waveform/spectrum plot is written to")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *filename == "" {
		fmt.Fprintln(os.Stderr, "--filename is required")
		fs.Usage()
		return 1
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		return 1
	}
	defer log.Sync()

	p := report.NewPrinter(os.Stdout)

	title := ""
	meta, err := audio.ReadMetadata(*filename)
	switch {
	case errors.Is(err, audio.ErrFileNotFound):
		p.FileNotFound(*filename)
		return 1
	case errors.Is(err, audio.ErrNoTag):
		log.Warn("no metadata tag", zap.String("file", *filename))
	case err != nil:
		log.Error("could not read metadata", zap.String("file", *filename), zap.Error(err))
	default:
		p.Metadata(meta)
		title = meta.Title
	}

	a, err := audio.Analyze(*filename)
	if err != nil {
		log.Error("could not analyse audio", zap.String("file", *filename), zap.Error(err))
		return 1
	}
	p.Quality(a.Quality)

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(*filename), filepath.Ext(*filename))
	}
	out, err := audio.RenderPlot(a, title, cfg.ImagesDir)
	if err != nil {
		log.Error("could not render plot", zap.Error(err))
		return 1
	}
	log.Info("plot written", zap.String("path", out))
	return 0
}
