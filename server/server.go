// Package server exposes the log store and explorer over a local HTTP API
// plus the embedded browser UI.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omerfarukorc/ulog-analysis/config"
	"github.com/omerfarukorc/ulog-analysis/core/logger"
	"github.com/omerfarukorc/ulog-analysis/core/structure"
	"github.com/omerfarukorc/ulog-analysis/explorer"
)

// activityFeedSize bounds the in-memory event feed.
const activityFeedSize = 64

type (
	// ActivityEntry is one recent server event (upload, view, error).
	ActivityEntry struct {
		Time   time.Time `json:"time"`
		Kind   string    `json:"kind"`
		Detail string    `json:"detail"`
	}

	// Server routes API requests to the explorer and serves the UI.
	Server struct {
		cfg      config.ServerConfig
		exp      *explorer.Explorer
		activity *structure.RingBuffer[ActivityEntry]
		httpSrv  *http.Server
	}
)

func NewServer(cfg config.ServerConfig, exp *explorer.Explorer) *Server {
	s := &Server{
		cfg:      cfg,
		exp:      exp,
		activity: structure.NewRingBuffer[ActivityEntry](activityFeedSize),
	}

	router := httprouter.New()
	router.GET("/", s.handleIndex)
	router.GET("/api/files", s.handleListFiles)
	router.POST("/api/files", s.handleUpload)
	router.GET("/api/files/:name/info", s.handleInfo)
	router.GET("/api/files/:name/topics", s.handleTopics)
	router.GET("/api/files/:name/topics/:topic/fields", s.handleFields)
	router.GET("/api/files/:name/series", s.handleSeries)
	router.POST("/api/files/:name/stats", s.handleStats)
	router.GET("/api/files/:name/graphs", s.handleGraphs)
	router.GET("/api/activity", s.handleActivity)
	router.GET("/healthz", s.handleHealth)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.NotFound = http.HandlerFunc(s.handleNotFound)
	router.MethodNotAllowed = http.HandlerFunc(s.handleMethodNotAllowed)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           withMetrics(withRecovery(withRequestLog(router))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", s.cfg.URL())
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) recordActivity(kind, detail string) {
	s.activity.PushEvict(ActivityEntry{Time: time.Now(), Kind: kind, Detail: detail})
}
