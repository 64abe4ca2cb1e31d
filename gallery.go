package faqwidget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jclee2044/faqwidget/internal/metrics"
	"github.com/jclee2044/faqwidget/internal/refresh"
	"github.com/jclee2044/faqwidget/internal/server"
	"github.com/jclee2044/faqwidget/internal/store"
)

const defaultPort = 8080

// ErrUnknownWidget is returned by [Gallery.Refresh] for a name the gallery
// does not hold.
var ErrUnknownWidget = server.ErrUnknownWidget

// ErrNotStarted is returned by [Gallery.Refresh] when the gallery is not
// running.
var ErrNotStarted = errors.New("gallery not started")

// Gallery mounts a set of named widgets and serves a live preview of them.
//
// The typical lifecycle is:
//
//	g, err := faqwidget.NewGallery(faqwidget.WithWidget("pricing", attrs))
//	if err != nil {
//	    slog.Error("failed to create gallery", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	g.Start(ctx) // blocks until ctx is cancelled
type Gallery struct {
	title   string
	port    int
	logger  *slog.Logger
	names   []string
	entries map[string]*galleryEntry
	store   *store.MemoryStore
	metrics *metrics.Recorder

	mu     sync.Mutex
	ctx    context.Context
	mounts sync.WaitGroup
}

type galleryEntry struct {
	attrs   Attributes
	widget  *Widget
	refresh time.Duration
}

// NewGallery creates a [Gallery].
//
// At least one widget must be configured. Widget names must be non-empty
// and unique. The port defaults to 8080.
func NewGallery(opts ...Option) (*Gallery, error) {
	cfg := &galleryConfig{port: defaultPort}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.widgets) == 0 {
		return nil, errors.New("at least one widget is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gallery{
		title:   cfg.title,
		port:    cfg.port,
		logger:  logger,
		entries: make(map[string]*galleryEntry, len(cfg.widgets)),
		store:   store.NewMemoryStore(),
		metrics: metrics.New(),
	}

	for i, nw := range cfg.widgets {
		name := strings.TrimSpace(nw.Name)
		if name == "" {
			return nil, fmt.Errorf("widgets[%d]: name is required", i)
		}
		if _, dup := g.entries[name]; dup {
			return nil, fmt.Errorf("duplicate widget name: %q", name)
		}

		if nw.RefreshInterval < 0 {
			return nil, fmt.Errorf("widgets[%d] (%s): refresh interval cannot be negative", i, name)
		}
		entry := &galleryEntry{attrs: nw.Attributes, refresh: nw.RefreshInterval}
		if entry.refresh == 0 {
			entry.refresh = cfg.refresh
		}
		wopts := append([]WidgetOption{}, cfg.widgetOptions...)
		wopts = append(wopts,
			WithWidgetName(name),
			WithWidgetLogger(logger),
			WithUpdateCallback(func(s Snapshot) { g.mirror(entry, s) }),
		)
		w, err := NewWidget(wopts...)
		if err != nil {
			return nil, fmt.Errorf("widget %q: %w", name, err)
		}
		entry.widget = w

		g.entries[name] = entry
		g.names = append(g.names, name)
	}

	return g, nil
}

// Start mounts every widget and serves the preview gallery.
//
// Start blocks until ctx is cancelled. Widgets are mounted concurrently;
// each widget's own requests stay strictly sequential. Returns nil on
// graceful shutdown, or an error if the HTTP server fails to start.
func (g *Gallery) Start(ctx context.Context) error {
	g.logger.Info("gallery starting", "widget_count", len(g.names))
	g.logger.Info("gallery available", "url", fmt.Sprintf("http://localhost:%d", g.port))

	if ctx.Err() != nil {
		return nil
	}

	for _, name := range g.names {
		entry := g.entries[name]
		g.mirror(entry, entry.widget.Snapshot())
	}

	srv, err := server.NewServer(g.store, g.port, g.title, g.Refresh, g.metrics.Handler(), g.logger)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	g.mu.Lock()
	g.ctx = ctx
	for _, name := range g.names {
		g.mount(ctx, name, g.entries[name])
	}
	g.mu.Unlock()

	scheduler := refresh.NewScheduler(g.refreshTargets(), g.Refresh, g.logger)
	if scheduler.Len() > 0 {
		g.logger.Info("periodic refresh enabled", "widget_count", scheduler.Len())
	}
	scheduler.Start(ctx)

	<-ctx.Done()
	scheduler.Stop()

	// no Refresh may add a mount once waiting begins
	g.mu.Lock()
	g.ctx = nil
	g.mu.Unlock()
	g.mounts.Wait()
	for _, name := range g.names {
		g.entries[name].widget.Close()
	}
	g.logger.Info("gallery stopped")
	return nil
}

// Refresh starts a new mount cycle for the named widget, superseding any
// cycle in progress. It returns without waiting for the cycle to finish.
func (g *Gallery) Refresh(name string) error {
	entry, ok := g.entries[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWidget, name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx == nil {
		return ErrNotStarted
	}
	if err := g.ctx.Err(); err != nil {
		return err
	}

	g.mount(g.ctx, name, entry)
	g.metrics.Refreshed(name)
	return nil
}

// Widget returns the named widget.
func (g *Gallery) Widget(name string) (*Widget, bool) {
	entry, ok := g.entries[name]
	if !ok {
		return nil, false
	}
	return entry.widget, true
}

// Names returns the widget names in configuration order.
func (g *Gallery) Names() []string {
	return append([]string(nil), g.names...)
}

// Port returns the configured HTTP port.
func (g *Gallery) Port() int {
	return g.port
}

// RefreshInterval returns the named widget's periodic refresh interval,
// zero when it is not refreshed.
func (g *Gallery) RefreshInterval(name string) time.Duration {
	entry, ok := g.entries[name]
	if !ok {
		return 0
	}
	return entry.refresh
}

func (g *Gallery) refreshTargets() []refresh.Target {
	targets := make([]refresh.Target, 0, len(g.names))
	for _, name := range g.names {
		targets = append(targets, refresh.Target{Name: name, Interval: g.entries[name].refresh})
	}
	return targets
}

// mount starts a cycle in the background. Must hold g.mu.
func (g *Gallery) mount(ctx context.Context, name string, entry *galleryEntry) {
	g.mounts.Add(1)
	go func() {
		defer g.mounts.Done()
		err := entry.widget.Mount(ctx, entry.attrs)
		switch {
		case err == nil, errors.Is(err, ErrSuperseded), ctx.Err() != nil:
			return
		default:
			// the widget shows the error; keep a gallery-level record
			g.logger.Debug("widget mount ended with error", "widget", name, "error", err)
		}
	}()
}

// mirror copies a widget snapshot into the preview store.
func (g *Gallery) mirror(entry *galleryEntry, s Snapshot) {
	doc := ""
	if entry.widget != nil {
		var err error
		if doc, err = entry.widget.HTML(); err != nil {
			g.logger.Warn("failed to render widget", "widget", s.Name, "error", err)
		}
	}
	accepted := g.store.Update(store.Snapshot{
		Name:        s.Name,
		Generation:  s.Generation,
		Phase:       s.Phase.String(),
		Attempt:     s.Attempt,
		MaxAttempts: s.MaxAttempts,
		Message:     s.Message,
		ItemCount:   len(s.FAQs),
		HTML:        doc,
		UpdatedAt:   time.Now(),
	})
	if accepted {
		g.metrics.Observe(s.Name, s.Generation, s.Phase.String(), s.Attempt, len(s.FAQs))
	}
}
