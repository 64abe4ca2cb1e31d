package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jclee2044/faqwidget/assets"
	"github.com/jclee2044/faqwidget/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so a stalled client cannot
	// pin its handler goroutine. Must be <= shutdownTimeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	defaultTitle = "FAQ Widget Gallery"
)

// ErrUnknownWidget is returned by a [RefreshFunc] for a name it does not serve.
var ErrUnknownWidget = errors.New("unknown widget")

// RefreshFunc starts a new mount cycle for the named widget.
type RefreshFunc func(name string) error

// Server serves the preview gallery and its API.
//
// Routes:
//   - GET /: gallery index
//   - GET /widgets/{name}: the widget's host document
//   - GET /api/widgets: all snapshots as JSON
//   - GET /api/sse: Server-Sent Events stream of snapshots
//   - POST /api/widgets/{name}/refresh: remount a widget
//   - GET /healthz: liveness
//   - GET /metrics: Prometheus metrics, when a metrics handler is set
type Server struct {
	store      store.Store
	port       int
	title      string
	refresh    RefreshFunc
	metrics    http.Handler
	logger     *slog.Logger
	index      *template.Template
	router     chi.Router
	httpServer *http.Server
}

// NewServer creates a [Server]. refresh may be nil, in which case the
// refresh route answers 501. metrics may be nil to leave /metrics
// unrouted. The server is not started until [Server.Start].
func NewServer(st store.Store, port int, title string, refresh RefreshFunc, metrics http.Handler, logger *slog.Logger) (*Server, error) {
	if title == "" {
		title = defaultTitle
	}
	if logger == nil {
		logger = slog.Default()
	}

	index, err := template.ParseFS(assets.Files, "files/gallery.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse gallery template: %w", err)
	}

	s := &Server{
		store:   st,
		port:    port,
		title:   title,
		refresh: refresh,
		metrics: metrics,
		logger:  logger,
		index:   index,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/", s.handleIndex)
	r.Get("/widgets/{name}", s.handleWidget)

	r.Route("/api", func(r chi.Router) {
		r.Get("/widgets", s.handleWidgets)
		r.Get("/sse", s.handleSSE)
		r.Post("/widgets/{name}/refresh", s.handleRefresh)
	})

	return r
}

// Start begins serving in a background goroutine and returns once the port
// is bound. Cancelling ctx shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	// bind synchronously so port errors reach the caller
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type indexData struct {
	Title   string
	Widgets []store.Snapshot
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// html/template escapes the title and every snapshot field
	if err := s.index.Execute(w, indexData{Title: s.title, Widgets: s.store.GetAll()}); err != nil {
		s.logger.Error("failed to render gallery", "error", err)
	}
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Get(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(snap.HTML)); err != nil {
		s.logger.Error("failed to write widget response", "error", err)
	}
}

func (s *Server) handleWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.GetAll())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "refresh not supported"})
		return
	}

	name := chi.URLParam(r, "name")
	err := s.refresh(name)
	switch {
	case errors.Is(err, ErrUnknownWidget):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		s.logger.Error("refresh failed", "widget", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
	}
}

// handleSSE streams snapshots via Server-Sent Events.
//
// Each write carries a deadline so a slow or vanished client cannot block
// the handler past shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	send := func(snap store.Snapshot) error {
		// the stream carries state only; pages fetch markup from /widgets/{name}
		snap.HTML = ""
		data, err := json.Marshal(snap)
		if err != nil {
			return nil
		}
		return writeAndFlush(data)
	}

	for _, snap := range s.store.GetAll() {
		if err := send(snap); err != nil {
			return
		}
	}

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := send(snap); err != nil {
				return
			}
		case <-r.Context().Done():
			// fires on client disconnect and on server shutdown
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
