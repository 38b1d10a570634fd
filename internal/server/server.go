package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ChicagoDave/villageplanner/pkg/layout"
	"github.com/ChicagoDave/villageplanner/pkg/render"
	"github.com/ChicagoDave/villageplanner/pkg/store"
)

// Options configure a Server.
type Options struct {
	Port   int
	Canvas render.Options
	Seed   int64
	Store  *store.Store // nil disables the /api/saves endpoints
}

// Server is the local server for interactive village design.
type Server struct {
	session *layout.Session
	hub     *Hub
	store   *store.Store
	canvas  render.Options
	seed    int64
	port    int
}

// New creates a server around an existing session.
func New(session *layout.Session, opts Options) *Server {
	return &Server{
		session: session,
		hub:     NewHub(),
		store:   opts.Store,
		canvas:  opts.Canvas,
		seed:    opts.Seed,
		port:    opts.Port,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/scene.svg", s.handleSceneSVG)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/attractors", s.handleAddAttractor)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/debug", s.handleDebug)
	mux.HandleFunc("GET /api/document", s.handleGetDocument)
	mux.HandleFunc("POST /api/document", s.handlePutDocument)
	mux.HandleFunc("GET /api/weights", s.handleWeights)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("GET /api/saves", s.handleListSaves)
	mux.HandleFunc("POST /api/saves", s.handleSave)
	mux.HandleFunc("GET /api/saves/{id}", s.handleGetSave)
	mux.HandleFunc("POST /api/saves/{id}/restore", s.handleRestoreSave)
	mux.HandleFunc("DELETE /api/saves/{id}", s.handleDeleteSave)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return logRequests(mux)
}

// Start launches the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("villageplanner server starting", "url", "http://localhost"+addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("villageplanner server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

// broadcast pushes the current session state to websocket clients.
func (s *Server) broadcast() {
	s.hub.Broadcast(sceneMessage(s.session.Snapshot()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
