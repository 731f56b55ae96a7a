package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/domain"
	"github.com/user/audio-harvester/internal/monitoring"
	"github.com/user/audio-harvester/pkg/utils"
)

const (
	DefaultLinkCount = 10
	mediaExtension   = ".mp3"
)

var (
	ErrInvalidPageURL = errors.New("page URL must be an absolute http(s) URL")
	ErrInvalidCount   = errors.New("link count must not be negative")
	ErrPageFetch      = errors.New("failed to fetch page")
)

// Extractor fetches one page and picks its audio links.
type Extractor struct {
	source  PageSource
	timeout time.Duration
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewExtractor(source PageSource, timeout time.Duration, m *monitoring.Metrics, l *zap.Logger) *Extractor {
	if l == nil {
		l = zap.NewNop()
	}
	return &Extractor{source: source, timeout: timeout, metrics: m, logger: l}
}

// Extract returns up to n media links from pageURL in document order.
// Fetch failures yield an empty slice and an error wrapping ErrPageFetch;
// callers treat that as "nothing to download".
func (e *Extractor) Extract(ctx context.Context, pageURL string, n int) ([]domain.MediaLink, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if !utils.IsHTTPURL(pageURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageURL, pageURL)
	}
	if n == 0 {
		return []domain.MediaLink{}, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	page, err := e.source.Fetch(ctx, pageURL)
	if err != nil {
		e.incPages("error")
		e.logger.Warn("error accessing webpage", zap.String("url", pageURL), zap.Error(err))
		return []domain.MediaLink{}, fmt.Errorf("%w %s: %w", ErrPageFetch, pageURL, err)
	}
	e.incPages("ok")

	base := page.URL
	if base == "" {
		base = pageURL
	}
	links, err := ExtractMediaLinks(base, page.HTML, n)
	if err != nil {
		e.logger.Warn("error parsing webpage", zap.String("url", pageURL), zap.Error(err))
		return []domain.MediaLink{}, fmt.Errorf("%w %s: %w", ErrPageFetch, pageURL, err)
	}

	if e.metrics != nil {
		e.metrics.AddLinksExtracted(len(links))
	}
	e.logger.Info("extracted media links", zap.String("url", pageURL), zap.Int("count", len(links)))
	return links, nil
}

func (e *Extractor) incPages(result string) {
	if e.metrics != nil {
		e.metrics.IncPagesFetched(result)
	}
}

// ExtractMediaLinks parses HTML content and returns up to n anchor targets
// whose path ends in .mp3. Relative targets are resolved against the
// document's <base href> when present, otherwise against pageURL.
func ExtractMediaLinks(pageURL, htmlContent string, n int) ([]domain.MediaLink, error) {
	links := []domain.MediaLink{}
	if n <= 0 {
		return links, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.TrimSpace(href) == "" {
			return true
		}
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil || !utils.HasExtension(abs, mediaExtension) {
			return true
		}
		links = append(links, domain.MediaLink(abs))
		return len(links) < n
	})

	return links, nil
}
