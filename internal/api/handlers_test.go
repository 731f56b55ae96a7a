package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/crawler"
	"github.com/user/audio-harvester/internal/domain"
	"github.com/user/audio-harvester/internal/download"
	"github.com/user/audio-harvester/internal/monitoring"
)

type fakeRunner struct {
	gotURL   string
	gotCount int
	report   *domain.HarvestReport
	err      error
}

func (f *fakeRunner) Run(_ context.Context, pageURL string, n int) (*domain.HarvestReport, error) {
	f.gotURL, f.gotCount = pageURL, n
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestServer(plain, rendered Runner) *Server {
	cfg := &config.Config{ServerPort: "0", LinkCount: 10}
	return NewServer(cfg, plain, rendered, monitoring.NewMetrics(), zap.NewNop())
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(newTestServer(&fakeRunner{}, nil), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHarvestUsesDefaultCount(t *testing.T) {
	r := &fakeRunner{report: &domain.HarvestReport{RunID: "r1", PageURL: "http://example.com/"}}
	rec := do(newTestServer(r, nil), http.MethodPost, "/api/harvest", `{"url":"http://example.com/"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com/", r.gotURL)
	assert.Equal(t, 10, r.gotCount)

	var resp HarvestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "r1", resp.RunID)
	assert.Empty(t, resp.Links)
	assert.Empty(t, resp.ExtractError)
}

func TestHarvestExplicitCountAndExtractError(t *testing.T) {
	r := &fakeRunner{report: &domain.HarvestReport{
		RunID:      "r2",
		ExtractErr: fmt.Errorf("%w: connection refused", crawler.ErrPageFetch),
	}}
	rec := do(newTestServer(r, nil), http.MethodPost, "/api/harvest", `{"url":"http://example.com/","count":0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, r.gotCount)

	var resp HarvestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.ExtractError, "connection refused")
}

func TestHarvestBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"malformed json", `{"url":`, nil},
		{"missing url", `{"count":3}`, nil},
		{"render without browser", `{"url":"http://example.com/","render":true}`, nil},
		{"invalid url", `{"url":"not a url"}`, crawler.ErrInvalidPageURL},
		{"negative count", `{"url":"http://example.com/","count":-1}`, crawler.ErrInvalidCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(&fakeRunner{err: tt.err}, nil), http.MethodPost, "/api/harvest", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHarvestInternalError(t *testing.T) {
	rec := do(newTestServer(&fakeRunner{err: errors.New("boom")}, nil), http.MethodPost, "/api/harvest", `{"url":"http://example.com/"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHarvestRenderUsesRenderedRunner(t *testing.T) {
	plain := &fakeRunner{report: &domain.HarvestReport{RunID: "plain"}}
	rendered := &fakeRunner{report: &domain.HarvestReport{RunID: "rendered"}}
	rec := do(newTestServer(plain, rendered), http.MethodPost, "/api/harvest", `{"url":"http://example.com/","render":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com/", rendered.gotURL)
	assert.Empty(t, plain.gotURL)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	s := newTestServer(&fakeRunner{}, nil)
	do(s, http.MethodGet, "/api/health", "")

	rec := do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/health",status="200"} 1`)
}

func TestHarvestEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/files/one.mp3">1</a><a href="/files/missing.mp3">2</a></body></html>`)
	})
	mux.HandleFunc("/files/one.mp3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID3-audio-bytes"))
	})
	mux.HandleFunc("/files/missing.mp3", http.NotFound)
	site := httptest.NewServer(mux)
	defer site.Close()

	m := monitoring.NewMetrics()
	timeout := 2 * time.Second
	h := crawler.NewHarvester(
		crawler.NewExtractor(crawler.NewHTTPSource(http.DefaultTransport, timeout, nil), timeout, m, nil),
		download.NewPlanner(t.TempDir(), "audio_", config.CollisionOverwrite),
		download.NewFetcher(&http.Client{}, timeout),
		1, m, nil,
	)
	s := NewServer(&config.Config{LinkCount: 10}, h, nil, m, zap.NewNop())

	rec := do(s, http.MethodPost, "/api/harvest", fmt.Sprintf(`{"url":%q}`, site.URL+"/"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HarvestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Links, 2)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, int64(len("ID3-audio-bytes")), resp.BytesWritten)
}
