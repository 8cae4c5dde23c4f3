// Package api serves stored trajectories and their relative-motion transform
// over HTTP, as JSON and as interactive charts.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/orbits/internal/config"
	"github.com/banshee-data/orbits/internal/loader"
	"github.com/banshee-data/orbits/internal/monitoring"
	"github.com/banshee-data/orbits/internal/relative"
	"github.com/banshee-data/orbits/internal/render"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

var logf = monitoring.Prefixed("api")

type Server struct {
	loader loader.Loader
	charts *render.HTMLRenderer
}

// NewServer serves trajectories from l. Chart axes and units come from cfg;
// a nil cfg uses the defaults.
func NewServer(l loader.Loader, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.EmptyConfig()
	}
	return &Server{
		loader: l,
		charts: render.NewHTMLRenderer(cfg),
	}
}

// SetChartAssetsHost makes chart pages load their javascript from host
// instead of the go-echarts CDN.
func (s *Server) SetChartAssetsHost(host string) {
	s.charts.AssetsHost = host
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bodies", s.listBodies)
	mux.HandleFunc("GET /api/trajectories/{id}", s.showTrajectory)
	mux.HandleFunc("GET /api/relative", s.showRelative)
	mux.HandleFunc("GET /charts/trajectory", s.trajectoryChart)
	mux.HandleFunc("GET /charts/relative", s.relativeChart)
	return mux
}

// Start serves the mux on listen until ctx is cancelled. extra, when set,
// mounts additional routes (admin pages) on the same mux.
func (s *Server) Start(ctx context.Context, listen string, extra func(*http.ServeMux) error) error {
	mux := s.ServeMux()
	if extra != nil {
		if err := extra(mux); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              listen,
		Handler:           LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logf("listening on http://%s", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) listBodies(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.loader.(loader.Lister)
	if !ok {
		writeJSONError(w, http.StatusNotImplemented, "loader cannot list bodies")
		return
	}
	ids, err := lister.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"bodies": ids})
}

func (s *Server) showTrajectory(w http.ResponseWriter, r *http.Request) {
	t, err := s.loader.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// loadPair reads the ref and other query parameters and transforms the pair.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) loadPair(w http.ResponseWriter, r *http.Request) (pair relative.RelativePair, ok bool) {
	q := r.URL.Query()
	ref, other := q.Get("ref"), q.Get("other")
	if ref == "" || other == "" {
		writeJSONError(w, http.StatusBadRequest, "ref and other query parameters are required")
		return pair, false
	}

	trajs, err := loader.LoadAll(r.Context(), s.loader, ref, other)
	if err != nil {
		writeError(w, err)
		return pair, false
	}
	pair, err = relative.ComputeRelative(trajs[0], trajs[1])
	if err != nil {
		writeError(w, err)
		return pair, false
	}
	return pair, true
}

func (s *Server) showRelative(w http.ResponseWriter, r *http.Request) {
	pair, ok := s.loadPair(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) trajectoryChart(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}
	t, err := s.loader.Load(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeChart(w, t.String(), []render.Series{render.FromTrajectory(t)})
}

func (s *Server) relativeChart(w http.ResponseWriter, r *http.Request) {
	pair, ok := s.loadPair(w, r)
	if !ok {
		return
	}
	title := fmt.Sprintf("%s relative to %s", pair.Other.Body, pair.Reference.Body)
	s.writeChart(w, title, render.FromPair(pair))
}

// writeChart renders to a buffer first so a failed render still gets a JSON
// error instead of a truncated page.
func (s *Server) writeChart(w http.ResponseWriter, title string, series []render.Series) {
	var buf bytes.Buffer
	if err := s.charts.Render(&buf, title, series); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logf("failed to write chart: %v", err)
	}
}
