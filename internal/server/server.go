// Package server exposes the coordinator over HTTP: the enable flag, the
// processed-origin cache, the message protocol, run history and on-demand
// visits.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"nocookies/internal/agent"
	"nocookies/internal/config"
	"nocookies/internal/coordinator"
	"nocookies/internal/database"
	"nocookies/internal/sitememory"
)

// Coordinator is what the control surface needs from the coordinator.
type Coordinator interface {
	Send(ctx context.Context, req coordinator.Request) (coordinator.Response, error)
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	Origins(ctx context.Context) ([]sitememory.Record, error)
}

type Visitor interface {
	Visit(ctx context.Context, url string) (agent.Outcome, error)
}

type RunLister interface {
	ListRuns(ctx context.Context, limit, offset int) ([]database.ConsentRun, error)
}

type Server struct {
	cfg     *config.Cfg
	log     *zap.Logger
	coord   Coordinator
	visitor Visitor
	runs    RunLister
}

// New builds the server. visitor and runs may be nil; their endpoints then
// answer 503.
func New(cfg *config.Cfg, log *zap.Logger, coord Coordinator, visitor Visitor, runs RunLister) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		log:     log.Named("http"),
		coord:   coord,
		visitor: visitor,
		runs:    runs,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/enabled", s.getEnabled)
		r.Put("/enabled", s.putEnabled)
		r.Get("/processed", s.getProcessed)
		r.Post("/cache/clear", s.clearCache)
		r.Post("/messages", s.postMessage)
		r.Get("/runs", s.listRuns)
		r.Post("/visit", s.visit)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("HTTP",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) getEnabled(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.coord.Enabled(r.Context())
	if err != nil {
		s.log.Warn("read enable flag", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

func (s *Server) putEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"enabled\": bool}")
		return
	}
	if err := s.coord.SetEnabled(r.Context(), *req.Enabled); err != nil {
		s.log.Error("store enable flag", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store flag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

// getProcessed lists processed origins, or answers for one url when the
// url query parameter is given.
func (s *Server) getProcessed(w http.ResponseWriter, r *http.Request) {
	if u := r.URL.Query().Get("url"); u != "" {
		s.relay(w, r, coordinator.Request{Action: coordinator.ActionCheckIfProcessed, URL: u})
		return
	}
	origins, err := s.coord.Origins(r.Context())
	if err != nil {
		s.log.Warn("list origins", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if origins == nil {
		origins = []sitememory.Record{}
	}
	writeJSON(w, http.StatusOK, origins)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.relay(w, r, coordinator.Request{Action: coordinator.ActionClearCache})
}

// postMessage accepts the raw coordinator protocol.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req coordinator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message")
		return
	}
	s.relay(w, r, req)
}

func (s *Server) relay(w http.ResponseWriter, r *http.Request, req coordinator.Request) {
	resp, err := s.coord.Send(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, coordinator.ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, coordinator.Response{Error: err.Error()})
		return
	}
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run history needs a database")
		return
	}
	limit := queryInt(r, "limit", 50)
	if limit == 0 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	runs, err := s.runs.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

type visitResponse struct {
	URL            string   `json:"url"`
	Origin         string   `json:"origin"`
	State          string   `json:"state"`
	Trace          []string `json:"trace"`
	Clicks         int      `json:"clicks"`
	TogglesOff     int      `json:"togglesOff"`
	StorageRemoved int      `json:"storageRemoved"`
	DurationMS     int64    `json:"durationMs"`
}

func (s *Server) visit(w http.ResponseWriter, r *http.Request) {
	if s.visitor == nil {
		writeError(w, http.StatusServiceUnavailable, "no browser attached")
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"url\": string}")
		return
	}

	o, err := s.visitor.Visit(r.Context(), req.URL)
	if err != nil {
		s.log.Warn("visit failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	trace := make([]string, 0, len(o.Trace))
	for _, st := range o.Trace {
		trace = append(trace, string(st))
	}
	writeJSON(w, http.StatusOK, visitResponse{
		URL:            o.URL,
		Origin:         o.Origin,
		State:          string(o.State),
		Trace:          trace,
		Clicks:         o.Clicks,
		TogglesOff:     o.TogglesOff,
		StorageRemoved: o.StorageRemoved,
		DurationMS:     o.Duration.Milliseconds(),
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.HTTP.Host, s.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
