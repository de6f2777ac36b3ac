// Package server exposes the pipeline and the briefing/campaign records
// over HTTP. The run endpoint speaks the external request/response shape;
// error responses distinguish "nothing found" (200, empty items) from
// "could not access source" (hard failure) from "extraction degraded"
// (200 with a warning field).
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
	"github.com/gaurav-prasanna/briefpipe/store"
)

// PipelineRunner is the slice of the pipeline the server needs.
type PipelineRunner interface {
	Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error)
}

// Server wires HTTP handlers to the pipeline and the record store.
type Server struct {
	runner PipelineRunner
	store  *store.Store
	log    zerolog.Logger
}

// New creates a Server.
func New(runner PipelineRunner, st *store.Store, log zerolog.Logger) *Server {
	return &Server{
		runner: runner,
		store:  st,
		log:    log.With().Str("component", "server").Logger(),
	}
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/runs", s.handleRun)

	mux.HandleFunc("POST /api/briefings", s.handleCreateBriefing)
	mux.HandleFunc("GET /api/briefings", s.handleListBriefings)
	mux.HandleFunc("GET /api/briefings/{id}", s.handleGetBriefing)
	mux.HandleFunc("DELETE /api/briefings/{id}", s.handleDeleteBriefing)
	mux.HandleFunc("POST /api/briefings/{id}/run", s.handleRunBriefing)
	mux.HandleFunc("GET /api/briefings/{id}/runs", s.handleListRuns)

	mux.HandleFunc("POST /api/campaigns", s.handleCreateCampaign)
	mux.HandleFunc("GET /api/campaigns", s.handleListCampaigns)

	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = withMetrics(handler)
	handler = withLogging(s.log, handler)
	return handler
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
