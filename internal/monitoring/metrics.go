package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched        *prometheus.CounterVec
	LinksExtracted      prometheus.Counter
	DownloadsTotal      *prometheus.CounterVec
	BytesDownloaded     prometheus.Counter
	DownloadDuration    prometheus.Histogram
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry so that several
// instances (tests, one-shot CLIs) never collide on the default one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PagesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_pages_fetched_total",
			Help: "Index pages fetched, by result",
		}, []string{"result"}), // "ok", "error"
		LinksExtracted: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_links_extracted_total",
			Help: "Media links extracted from index pages",
		}),
		DownloadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_downloads_total",
			Help: "Download tasks finished, by status",
		}, []string{"status"}),
		BytesDownloaded: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_bytes_downloaded_total",
			Help: "Bytes written by successful downloads",
		}),
		DownloadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_download_duration_seconds",
			Help:    "Duration of single downloads",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncPagesFetched(result string) {
	m.PagesFetched.WithLabelValues(result).Inc()
}

func (m *Metrics) AddLinksExtracted(n int) {
	m.LinksExtracted.Add(float64(n))
}

// ObserveDownload records one finished task.
func (m *Metrics) ObserveDownload(status string, bytes int64, seconds float64) {
	m.DownloadsTotal.WithLabelValues(status).Inc()
	if bytes > 0 && status == "succeeded" {
		m.BytesDownloaded.Add(float64(bytes))
	}
	m.DownloadDuration.Observe(seconds)
}
