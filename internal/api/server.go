package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/domain"
	"github.com/user/audio-harvester/internal/monitoring"
)

// harvestTimeout bounds one synchronous harvest request.
const harvestTimeout = 5 * time.Minute

// Runner runs one crawl-and-download pass. *crawler.Harvester satisfies it.
type Runner interface {
	Run(ctx context.Context, pageURL string, n int) (*domain.HarvestReport, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	plain      Runner
	rendered   Runner
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewServer builds the API. rendered may be nil, in which case requests
// asking for browser rendering are rejected.
func NewServer(cfg *config.Config, plain, rendered Runner, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:   cfg,
		plain:    plain,
		rendered: rendered,
		metrics:  m,
		logger:   l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: harvestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
