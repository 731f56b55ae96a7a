package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/domain"
	"github.com/user/audio-harvester/pkg/utils"
)

const (
	DefaultChunkSize = 8192
	DefaultTimeout   = 10 * time.Second

	filePerm = 0o644
	dirPerm  = 0o755
)

// Fetcher streams one remote file to a local path per call.
type Fetcher struct {
	client      *http.Client
	chunkSize   int
	idleTimeout time.Duration
	userAgent   func() string
	logger      *zap.Logger
}

// Option customises a Fetcher.
type Option func(*Fetcher)

func WithChunkSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// WithUserAgent sets a provider called once per request.
func WithUserAgent(ua func() string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher builds a Fetcher. client should not set an overall Timeout,
// otherwise long downloads are cut off; timeout bounds the idle gap
// between body reads.
func NewFetcher(client *http.Client, timeout time.Duration, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{Transport: NewTransport(timeout, nil)}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		client:      client,
		chunkSize:   DefaultChunkSize,
		idleTimeout: timeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads task.Link into task.Destination. It never panics or
// returns early without an outcome; failures are reported in the result.
func (f *Fetcher) Fetch(ctx context.Context, task domain.DownloadTask) domain.DownloadOutcome {
	start := time.Now()
	n, err := f.fetch(ctx, task)
	out := domain.DownloadOutcome{
		Task:     task,
		Bytes:    n,
		Duration: time.Since(start),
	}

	if err != nil {
		out.Status = domain.StatusFailed
		out.Err = err
		f.logger.Warn("download failed",
			zap.String("url", string(task.Link)),
			zap.String("destination", task.Destination),
			zap.Error(err))
		return out
	}

	out.Status = domain.StatusSucceeded
	f.logger.Info("download finished",
		zap.String("url", string(task.Link)),
		zap.String("destination", task.Destination),
		zap.Int64("bytes", n),
		zap.Duration("took", out.Duration))
	return out
}

func (f *Fetcher) fetch(ctx context.Context, task domain.DownloadTask) (int64, error) {
	if !utils.IsHTTPURL(string(task.Link)) {
		return 0, fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidTask, task.Link)
	}
	if task.Destination == "" {
		return 0, fmt.Errorf("%w: empty destination", ErrInvalidTask)
	}

	dir := filepath.Dir(task.Destination)
	if err := EnsureDir(dir); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(task.Link), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != nil {
		if ua := f.userAgent(); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := domain.CheckStatus(string(task.Link), resp.StatusCode); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(task.Destination)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	body := newIdleTimeoutReader(resp.Body, f.idleTimeout, cancel)
	defer body.Stop()

	// Hide ReaderFrom so the copy goes through the fixed-size buffer.
	buf := make([]byte, f.chunkSize)
	n, err := io.CopyBuffer(struct{ io.Writer }{tmp}, body, buf)
	if err != nil {
		return n, fmt.Errorf("failed to read body after %d bytes: %w", n, err)
	}

	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return n, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), task.Destination); err != nil {
		os.Remove(tmp.Name())
		return n, fmt.Errorf("failed to move file into place: %w", err)
	}
	committed = true
	return n, nil
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
