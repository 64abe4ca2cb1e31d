package faqwidget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/jclee2044/faqwidget/assets"
	"github.com/jclee2044/faqwidget/internal/accordion"
	"github.com/jclee2044/faqwidget/internal/acquire"
	"github.com/jclee2044/faqwidget/internal/faq"
	"github.com/jclee2044/faqwidget/internal/render"
	"github.com/jclee2044/faqwidget/internal/schema"
	"github.com/jclee2044/faqwidget/internal/styling"
)

// Widget is one mounted FAQ component.
//
// A Widget owns a host document, the <faq-widget> element inside it and
// that element's isolated rendering subtree. Every [Widget.Mount] starts a
// new cycle tagged with a generation; only the latest cycle may change the
// view, so a late response from an earlier cycle is discarded.
//
// All methods are safe for concurrent use.
type Widget struct {
	name      string
	id        string
	logger    *slog.Logger
	client    *acquire.Client
	resolver  *acquire.Resolver
	renderer  *render.Renderer
	callbacks []func(Snapshot)

	mu           sync.Mutex
	doc          *html.Node
	host         *html.Node
	root         *html.Node
	publisher    *schema.Publisher
	presentation styling.Presentation
	generation   uint64
	cancel       context.CancelFunc
	done         chan struct{}
	kind         render.Kind
	state        acquire.State
	message      string
	items        []faq.Item
	heading      string
	view         *render.View
	accordion    *accordion.Controller
}

// NewWidget creates an unmounted [Widget].
//
// Returns an error if an option is invalid or the host document cannot be
// parsed.
func NewWidget(opts ...WidgetOption) (*Widget, error) {
	cfg := &widgetConfig{
		requestTimeout: acquire.DefaultTimeout,
		retryDelay:     acquire.DefaultRetryDelay,
		maxAttempts:    acquire.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	document := cfg.hostDocument
	if document == "" {
		b, err := assets.Files.ReadFile("files/host.html")
		if err != nil {
			return nil, fmt.Errorf("failed to read default host document: %w", err)
		}
		document = string(b)
	}
	doc, host, err := render.ParseHost(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	logName := cfg.name
	if logName == "" {
		logName = id
	}
	logger = logger.With("widget", logName)

	client := acquire.NewClient(cfg.httpClient)
	resolver := acquire.NewResolver(client,
		acquire.WithMaxAttempts(cfg.maxAttempts),
		acquire.WithTimeout(cfg.requestTimeout),
		acquire.WithRetryDelay(cfg.retryDelay),
		acquire.WithLogger(logger),
	)

	return &Widget{
		name:      cfg.name,
		id:        id,
		logger:    logger,
		client:    client,
		resolver:  resolver,
		renderer:  render.New(assets.Stylesheet()),
		callbacks: cfg.updateCallbacks,
		doc:       doc,
		host:      host,
		root:      render.ShadowRoot(host),
		publisher: schema.NewPublisher(doc, id),
		kind:      render.KindNone,
		state:     acquire.State{Phase: acquire.PhaseIdle, MaxAttempts: resolver.MaxAttempts()},
		accordion: accordion.New(0),
	}, nil
}

// Name returns the name set with [WithWidgetName].
func (w *Widget) Name() string {
	return w.name
}

// ID returns the widget's instance id. It marks the structured-data block
// the widget owns in its host document.
func (w *Widget) ID() string {
	return w.id
}

// Mount runs one resolution cycle for attrs.
//
// A new cycle cancels the previous one and waits for its request to finish,
// so a widget never has more than one backend request in flight.
// Styling is applied first. Inline data, if valid, is displayed without any
// network call; otherwise the loading view is painted and the backend is
// polled under the retry budget, with status updates between attempts.
// The cycle ends in the content view or the error view.
//
// Mount blocks until the cycle ends. It returns nil when content is
// displayed, the resolution error when the error view is displayed,
// [ErrSuperseded] if a later Mount replaced this cycle, or ctx's error if
// ctx was cancelled (the view is then left as it was).
func (w *Widget) Mount(ctx context.Context, attrs Attributes) (err error) {
	attrs = attrs.withDefaults()

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen, prev, done := w.begin(attrs, cancel)
	defer close(done)
	log := w.logger.With("generation", gen)
	log.Debug("mounting widget", "url", attrs.URL, "inline", attrs.InlineData != "")

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			log.Error("mount panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("internal error (correlation_id: %s)", correlationID)
			msg := err.Error()
			if !w.mutate(gen, func() { w.paintError(msg, w.state.Attempt) }) {
				err = ErrSuperseded
			}
		}
	}()

	if prev != nil {
		select {
		case <-prev:
		case <-cctx.Done():
		}
	}

	observe := func(s acquire.State) { w.observe(gen, attrs.Heading, s) }
	result, resolveErr := w.resolver.Resolve(cctx, acquire.Request{
		Inline:   attrs.InlineData,
		APIBase:  attrs.APIBase,
		PageURL:  attrs.URL,
		Language: attrs.Language,
	}, observe)

	if resolveErr != nil && cctx.Err() != nil && errors.Is(resolveErr, cctx.Err()) {
		if !w.current(gen) {
			return ErrSuperseded
		}
		log.Debug("mount cancelled", "error", resolveErr)
		return resolveErr
	}

	painted := w.mutate(gen, func() {
		if resolveErr != nil {
			w.paintError(resolveErr.Error(), result.Attempts)
			return
		}
		w.paintContent(attrs.Heading, result)
	})
	if !painted {
		log.Debug("mount superseded")
		return ErrSuperseded
	}

	if resolveErr != nil {
		log.Warn("faq resolution failed", "url", attrs.URL, "error", resolveErr)
		return resolveErr
	}
	log.Debug("faqs displayed",
		"source", result.Source,
		"count", len(result.Items),
		"attempts", result.Attempts,
	)
	return nil
}

// Toggle expands item index, collapsing any other open item, or collapses
// it if it is already open. It reports whether anything changed.
func (w *Widget) Toggle(index int) bool {
	w.mu.Lock()
	if w.kind != render.KindContent {
		w.mu.Unlock()
		return false
	}
	changes := w.accordion.Toggle(index)
	if len(changes) == 0 {
		w.mu.Unlock()
		return false
	}
	w.applyChanges(changes)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
	return true
}

// HandleKey dispatches a key pressed on the question at index. Enter and
// Space toggle the item; ArrowDown and ArrowUp move focus cyclically. It
// reports whether the key was handled.
func (w *Widget) HandleKey(index int, key string) bool {
	w.mu.Lock()
	if w.kind != render.KindContent {
		w.mu.Unlock()
		return false
	}
	changes, focus, handled := w.accordion.HandleKey(index, key)
	if !handled {
		w.mu.Unlock()
		return false
	}
	w.applyChanges(changes)
	w.view.SetFocus(focus)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
	return true
}

// Snapshot returns a copy of the current view state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// HTML renders the whole host document, including the isolated subtree
// and any structured data.
func (w *Widget) HTML() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return render.RenderString(w.doc)
}

// ShadowHTML renders the content of the isolated subtree only.
func (w *Widget) ShadowHTML() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return render.RenderChildren(w.root)
}

// HostStyle returns the inline style of the host element: one CSS custom
// property per applied styling key.
func (w *Widget) HostStyle() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presentation.Style()
}

// StructuredData returns the published JSON-LD document, or nil when none
// is published.
func (w *Widget) StructuredData() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.publisher.Current()
}

// Markdown exports the displayed collection as Markdown. It returns
// [ErrNoContent] unless the content view is showing.
func (w *Widget) Markdown() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.kind != render.KindContent {
		return "", ErrNoContent
	}
	return render.Markdown(w.heading, w.items)
}

// Close releases idle backend connections.
func (w *Widget) Close() {
	w.client.Close()
}

// mutate runs fn under the lock if gen is still the current cycle, then
// notifies callbacks. It reports whether fn ran.
func (w *Widget) mutate(gen uint64, fn func()) bool {
	snap, ok := w.mutateLocked(gen, fn)
	if ok {
		w.notify(snap)
	}
	return ok
}

func (w *Widget) mutateLocked(gen uint64, fn func()) (Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		return Snapshot{}, false
	}
	fn()
	return w.snapshotLocked(), true
}

// begin cancels the running cycle, takes a new generation and applies the
// cycle's configuration. It returns the channel closed when the previous
// cycle ends, and the one the new cycle must close.
func (w *Widget) begin(attrs Attributes, cancel context.CancelFunc) (gen uint64, prev, done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	prev = w.done
	done = make(chan struct{})
	w.cancel, w.done = cancel, done
	w.generation++
	w.applyConfig(attrs.Config)
	w.publisher.SetEnabled(attrs.StructuredDataEnabled())
	return w.generation, prev, done
}

// observe applies a progress report of cycle gen. A retry only rewrites
// the status line unless the loading view is missing.
func (w *Widget) observe(gen uint64, heading string, s acquire.State) {
	w.mutate(gen, func() {
		switch s.Phase {
		case acquire.PhaseLoading:
			w.paintLoading(heading, s)
		case acquire.PhaseRetrying:
			if !w.renderer.UpdateStatus(w.root, s.Message) {
				w.paintLoading(heading, s)
				w.renderer.UpdateStatus(w.root, s.Message)
			}
			w.state = s
			w.message = s.Message
		}
	})
}

func (w *Widget) current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return gen == w.generation
}

// applyConfig resolves and overlays the styling payload. Must hold w.mu.
func (w *Widget) applyConfig(raw string) {
	cfg, err := styling.Resolve(raw)
	if err != nil {
		w.logger.Warn("widget config ignored", "error", err)
	}
	for _, k := range w.presentation.Apply(cfg) {
		w.logger.Warn("style value rejected", "key", string(k))
	}
	if style := w.presentation.Style(); style != "" {
		render.SetAttr(w.host, "style", style)
	}
}

// The paint helpers replace the isolated subtree and keep the structured
// data in step with it. They must hold w.mu.

func (w *Widget) paintLoading(heading string, s acquire.State) {
	w.renderer.Loading(w.root, heading)
	w.publisher.Retract()
	w.resetView(render.KindLoading)
	w.state = s
	w.message = render.LoadingMessage
}

func (w *Widget) paintContent(heading string, result acquire.Result) {
	view := w.renderer.Content(w.root, heading, result.Items)
	w.resetView(render.KindContent)
	w.view = view
	w.items = faq.Clone(result.Items)
	w.heading = heading
	w.accordion = accordion.New(len(result.Items))
	w.state = acquire.State{
		Phase:       acquire.PhaseResolved,
		Attempt:     result.Attempts,
		MaxAttempts: w.resolver.MaxAttempts(),
	}

	if len(result.Items) == 0 {
		w.publisher.Retract()
		return
	}
	if err := w.publisher.Publish(result.Items, heading); err != nil {
		w.logger.Warn("structured data not published", "error", err)
	}
}

func (w *Widget) paintError(message string, attempt int) {
	w.renderer.Error(w.root, message)
	w.publisher.Retract()
	w.resetView(render.KindError)
	w.state = acquire.State{
		Phase:       acquire.PhaseFailed,
		Attempt:     attempt,
		MaxAttempts: w.resolver.MaxAttempts(),
	}
	w.message = message
}

// resetView discards the previous view and its selection.
func (w *Widget) resetView(kind render.Kind) {
	w.kind = kind
	w.view = nil
	w.items = nil
	w.accordion = accordion.New(0)
	w.message = ""
}

func (w *Widget) applyChanges(changes []accordion.Change) {
	for _, ch := range changes {
		w.view.SetOpen(ch.Index, ch.Open)
	}
}

func (w *Widget) snapshotLocked() Snapshot {
	return Snapshot{
		Name:        w.name,
		Generation:  w.generation,
		Phase:       Phase(w.state.Phase),
		Attempt:     w.state.Attempt,
		MaxAttempts: w.state.MaxAttempts,
		Message:     w.message,
		FAQs:        toPublicFAQs(w.items),
		OpenIndex:   w.accordion.Open(),
		FocusIndex:  w.accordion.Focus(),
	}
}

func (w *Widget) notify(snap Snapshot) {
	for _, cb := range w.callbacks {
		invokeCallbackSafe(cb, snap, w.logger)
	}
}

// invokeCallbackSafe calls an update callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Snapshot), snap Snapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("update callback panicked",
				"panic", r,
				"generation", snap.Generation,
			)
		}
	}()
	cb(snap)
}
