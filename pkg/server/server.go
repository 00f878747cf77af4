package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/movement"
	"github.com/matzehuels/nodecanvas/pkg/persist"
)

// maxBodySize bounds request bodies, including uploaded snapshots.
const maxBodySize = 10 << 20

// Options configures a [Server].
type Options struct {
	// Sink stores diagrams for the save and load routes. Nil disables
	// persistence; those routes then answer 501.
	Sink persist.Sink
	// Snap and Buffer configure the movement engine.
	Snap   float64
	Buffer float64
	// FrameInterval is the drag frame period. Zero selects
	// movement.DefaultFrameInterval.
	FrameInterval time.Duration
	Logger        *log.Logger
}

// Server serves one live canvas over HTTP.
//
// Every read or write of the canvas runs on the movement loop, so requests
// and drag frames never interleave. The graph and engine fields are only
// touched from inside loop.Do.
type Server struct {
	router chi.Router
	loop   *movement.Loop
	sink   persist.Sink
	logger *log.Logger

	snap   float64
	buffer float64

	graph  *graph.Graph
	engine *movement.Engine
}

// New creates a server for g and starts its movement loop. Call Close to
// stop the loop.
func New(g *graph.Graph, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		loop:   movement.NewLoop(opts.FrameInterval),
		sink:   opts.Sink,
		logger: logger,
		snap:   opts.Snap,
		buffer: opts.Buffer,
	}
	s.setGraph(g)
	s.router = s.buildRouter()
	return s
}

// setGraph replaces the live canvas. It must run on the loop, or before the
// server is shared.
func (s *Server) setGraph(g *graph.Graph) {
	if s.engine != nil {
		s.engine.Stop()
	}
	s.graph = g
	s.engine = movement.NewEngine(g, movement.Options{
		Snap:      s.snap,
		Buffer:    s.buffer,
		Scheduler: s.loop,
	})
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/version", s.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)

		r.Post("/nodes", s.handleAddNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Post("/nodes/{id}/anchors", s.handleAddAnchor)

		r.Post("/edges", s.handleConnect)
		r.Delete("/edges", s.handleDisconnect)

		r.Post("/selection", s.handleSelection)

		r.Post("/drag/start", s.handleDragStart)
		r.Post("/cursor", s.handleCursor)
		r.Post("/drag/end", s.handleDragEnd)

		r.Post("/connection/begin", s.handleConnectionBegin)
		r.Post("/connection/complete", s.handleConnectionComplete)
		r.Post("/connection/cancel", s.handleConnectionCancel)

		r.Post("/save/{name}", s.handleSave)
		r.Post("/load/{name}", s.handleLoad)

		r.Get("/export/dot", s.handleExportDOT)
		r.Get("/export/svg", s.handleExportSVG)
	})
	return r
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		_ = s.Close()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return err
}

// Close stops any drag and the movement loop.
func (s *Server) Close() error {
	_ = s.loop.Do(context.Background(), func() error {
		s.engine.Stop()
		return nil
	})
	return s.loop.Close()
}

// Do runs fn on the movement loop with exclusive access to the canvas.
func (s *Server) Do(ctx context.Context, fn func(g *graph.Graph, e *movement.Engine) error) error {
	return s.loop.Do(ctx, func() error { return fn(s.graph, s.engine) })
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
