package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/audio-harvester/internal/domain"
)

// maxPageSize caps how much of an index page is read into memory.
const maxPageSize = 10 << 20

var ErrPageTooLarge = errors.New("page exceeds size limit")

// Page is a fetched document. URL is where it was served from after
// redirects, which is the base for its relative links.
type Page struct {
	URL  string
	HTML string
}

// PageSource returns the HTML of a page.
type PageSource interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// HTTPSource fetches pages with a plain GET.
type HTTPSource struct {
	client    *http.Client
	userAgent func() string
	maxSize   int64
}

// NewHTTPSource wraps transport in a client whose total timeout bounds the
// whole page fetch.
func NewHTTPSource(transport http.RoundTripper, timeout time.Duration, userAgent func() string) *HTTPSource {
	return &HTTPSource{
		client:    &http.Client{Transport: transport, Timeout: timeout},
		userAgent: userAgent,
		maxSize:   maxPageSize,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.userAgent != nil {
		if ua := s.userAgent(); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := domain.CheckStatus(pageURL, resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}
	if int64(len(body)) > s.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPageTooLarge, s.maxSize)
	}

	final := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Page{URL: final, HTML: string(body)}, nil
}
