package crawler

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/user/audio-harvester/internal/domain"
)

// BrowserSource renders pages in headless Chrome so that links injected by
// JavaScript are present in the returned HTML.
type BrowserSource struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

func NewBrowserSource(timeout time.Duration, userAgent string) *BrowserSource {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BrowserSource{allocCtx: allocCtx, cancel: cancel, timeout: timeout}
}

func (b *BrowserSource) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	taskCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	// The browser context hangs off the allocator, so tie it to the caller.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(taskCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, err
	}
	if err := documentStatus(pageURL, resp); err != nil {
		return nil, err
	}

	var html, location string
	err = chromedp.Run(taskCtx,
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, err
	}
	if location == "" {
		location = pageURL
	}
	return &Page{URL: location, HTML: html}, nil
}

// documentStatus applies the same 2xx rule as HTTPSource to the main
// document response. A nil response means no network load happened.
func documentStatus(pageURL string, resp *network.Response) error {
	if resp == nil {
		return nil
	}
	return domain.CheckStatus(pageURL, int(resp.Status))
}

// Close shuts the browser down.
func (b *BrowserSource) Close() {
	b.cancel()
}
