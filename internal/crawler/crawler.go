package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/audio-harvester/internal/domain"
	"github.com/user/audio-harvester/internal/download"
	"github.com/user/audio-harvester/internal/monitoring"
)

// Fetcher downloads a single task.
type Fetcher interface {
	Fetch(ctx context.Context, task domain.DownloadTask) domain.DownloadOutcome
}

// Harvester runs the crawl-and-download pipeline: extract once, plan once,
// then fetch every task. One failed task never stops the others.
type Harvester struct {
	extractor *Extractor
	planner   *download.Planner
	fetcher   Fetcher
	workers   int
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewHarvester(e *Extractor, p *download.Planner, f Fetcher, workers int, m *monitoring.Metrics, l *zap.Logger) *Harvester {
	if workers < 1 {
		workers = 1
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Harvester{
		extractor: e,
		planner:   p,
		fetcher:   f,
		workers:   workers,
		metrics:   m,
		logger:    l,
	}
}

// Run crawls pageURL for up to n links and downloads them. Only invalid
// input is returned as an error; page and download failures are recorded
// in the report.
func (h *Harvester) Run(ctx context.Context, pageURL string, n int) (*domain.HarvestReport, error) {
	report := &domain.HarvestReport{
		RunID:     uuid.NewString(),
		PageURL:   pageURL,
		StartedAt: time.Now(),
	}
	log := h.logger.With(zap.String("run_id", report.RunID))

	links, err := h.extractor.Extract(ctx, pageURL, n)
	if errors.Is(err, ErrInvalidCount) || errors.Is(err, ErrInvalidPageURL) {
		return nil, err
	}
	report.ExtractErr = err
	report.Links = links

	tasks, rejected := h.planner.Plan(links)
	report.Outcomes = make([]domain.DownloadOutcome, len(links))
	for _, o := range rejected {
		report.Outcomes[o.Task.Index] = o
	}

	log.Info("starting downloads",
		zap.String("page", pageURL),
		zap.Int("links", len(links)),
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", h.workers))

	if h.workers == 1 {
		h.runGroup(ctx, tasks, report.Outcomes)
	} else {
		var g errgroup.Group
		g.SetLimit(h.workers)
		for _, group := range groupByDestination(tasks) {
			g.Go(func() error {
				h.runGroup(ctx, group, report.Outcomes)
				return nil
			})
		}
		g.Wait()
	}

	for _, o := range report.Outcomes {
		if h.metrics != nil {
			h.metrics.ObserveDownload(string(o.Status), o.Bytes, o.Duration.Seconds())
		}
	}
	report.FinishedAt = time.Now()

	log.Info("harvest finished",
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
		zap.Int("skipped", report.Skipped()),
		zap.Int64("bytes", report.BytesWritten()),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

// runGroup fetches tasks in order. Each outcome slot belongs to exactly one
// task, so concurrent groups never write the same slot.
func (h *Harvester) runGroup(ctx context.Context, tasks []domain.DownloadTask, outcomes []domain.DownloadOutcome) {
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			outcomes[t.Index] = domain.DownloadOutcome{Task: t, Status: domain.StatusFailed, Err: err}
			continue
		}
		outcomes[t.Index] = h.fetcher.Fetch(ctx, t)
	}
}

// groupByDestination keeps tasks that write the same file together and in
// order, so last-write-wins still holds with several workers.
func groupByDestination(tasks []domain.DownloadTask) [][]domain.DownloadTask {
	var groups [][]domain.DownloadTask
	pos := make(map[string]int)
	for _, t := range tasks {
		i, ok := pos[t.Destination]
		if !ok {
			i = len(groups)
			pos[t.Destination] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], t)
	}
	return groups
}
