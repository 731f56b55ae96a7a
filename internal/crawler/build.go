package crawler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/download"
	"github.com/user/audio-harvester/internal/monitoring"
	"github.com/user/audio-harvester/internal/proxy"
)

// Build wires a Harvester from configuration. The returned func releases
// the headless browser when page rendering is enabled.
func Build(cfg *config.Config, m *monitoring.Metrics, l *zap.Logger) (*Harvester, func(), error) {
	pm, err := proxy.NewManager(cfg.ProxyList(), cfg.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	transport := download.NewTransport(cfg.Timeout(), pm.ProxyFunc)

	var source PageSource
	closer := func() {}
	if cfg.RenderPages {
		bs := NewBrowserSource(cfg.Timeout(), cfg.UserAgent)
		source = bs
		closer = bs.Close
	} else {
		source = NewHTTPSource(transport, cfg.Timeout(), pm.GetUserAgent)
	}

	fetcher := download.NewFetcher(
		&http.Client{Transport: transport},
		cfg.Timeout(),
		download.WithChunkSize(cfg.ChunkSize),
		download.WithUserAgent(pm.GetUserAgent),
		download.WithLogger(l),
	)

	h := NewHarvester(
		NewExtractor(source, cfg.Timeout(), m, l),
		download.NewPlanner(cfg.OutputDir, cfg.FilePrefix, cfg.CollisionPolicy),
		fetcher,
		cfg.Workers,
		m,
		l,
	)
	return h, closer, nil
}
