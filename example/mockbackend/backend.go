// Package mockbackend is an in-process stand-in for the FAQ service the
// widget talks to.
//
// It reproduces the service's generation flow for GET /page-faqs:
//
//  1. The first request for a page "crawls" it and answers with an empty
//     list and just_crawled set, as if generation had only just started.
//  2. The next request finds the generated file but serves a stale cache
//     entry: an empty list with faq_file set.
//  3. A request with force_refresh=true, or any request once the cache is
//     warm, answers with the parsed FAQ file.
//
// Pages without an FAQ file answer with an empty list and no in-progress
// signal.
package mockbackend

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed faqs/*.md
var sampleFiles embed.FS

// storageDir is the path reported in faq_file.
const storageDir = "storage/datasets/faqs"

// Backend serves the mock FAQ API. It is safe for concurrent use.
type Backend struct {
	files  fs.FS
	logger *slog.Logger
	now    func() time.Time
	router chi.Router

	mu    sync.Mutex
	pages map[string]*page
}

type page struct {
	crawledAt time.Time
	cache     []FAQ
	warm      bool
}

// Option configures a [Backend].
type Option func(*Backend)

// WithFiles serves FAQ files from fsys instead of the bundled samples.
// Files live at the root of fsys and are named by [FileName].
func WithFiles(fsys fs.FS) Option {
	return func(b *Backend) {
		if fsys != nil {
			b.files = fsys
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a backend serving the bundled sample FAQs for example.com
// pages.
func New(opts ...Option) *Backend {
	samples, _ := fs.Sub(sampleFiles, "faqs")
	b := &Backend{
		files:  samples,
		logger: slog.Default(),
		now:    time.Now,
		pages:  make(map[string]*page),
	}
	for _, opt := range opts {
		opt(b)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Get("/page-faqs", b.handlePageFAQs)
	r.Get("/last-updated", b.handleLastUpdated)
	b.router = r

	return b
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

type pageFAQsResponse struct {
	URL         string  `json:"url"`
	LastUpdated *string `json:"last_updated"`
	FAQs        []FAQ   `json:"faqs"`
	FAQFile     string  `json:"faq_file,omitempty"`
	Message     string  `json:"message,omitempty"`
	JustCrawled bool    `json:"just_crawled"`
}

func (b *Backend) handlePageFAQs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageURL := q.Get("url")
	if pageURL == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "url query parameter is required"})
		return
	}
	force := q.Get("force_refresh") == "true"
	log := b.logger.With("url", pageURL, "force_refresh", force)
	if lang := q.Get("target_language"); lang != "" {
		log = log.With("target_language", lang)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, seen := b.pages[pageURL]
	if !seen {
		p = &page{crawledAt: b.now()}
		b.pages[pageURL] = p
		log.Info("page crawled, generating faqs")
		writeJSON(w, http.StatusOK, pageFAQsResponse{
			URL:         pageURL,
			LastUpdated: p.lastUpdated(),
			FAQs:        []FAQ{},
			Message:     "FAQ generation in progress",
			JustCrawled: true,
		})
		return
	}

	name, ok := b.findFile(pageURL)
	if !ok {
		log.Info("no faq file for page")
		writeJSON(w, http.StatusOK, pageFAQsResponse{
			URL:         pageURL,
			LastUpdated: p.lastUpdated(),
			FAQs:        []FAQ{},
			Message:     "No FAQ file found for this URL",
		})
		return
	}

	resp := pageFAQsResponse{
		URL:         pageURL,
		LastUpdated: p.lastUpdated(),
		FAQFile:     path.Join(storageDir, name),
		FAQs:        []FAQ{},
	}
	switch {
	case force || p.warm:
		if force || p.cache == nil {
			data, err := fs.ReadFile(b.files, name)
			if err != nil {
				log.Error("failed to read faq file", "file", name, "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to read FAQ file"})
				return
			}
			p.cache = ParseFAQFile(string(data))
		}
		resp.FAQs = p.cache
		log.Info("serving faqs", "count", len(resp.FAQs))
	default:
		// the first read after generation hits a stale cache entry
		p.warm = true
		log.Info("serving stale cache entry")
	}
	writeJSON(w, http.StatusOK, resp)
}

type lastUpdatedResponse struct {
	URL            string  `json:"url"`
	LastUpdated    *string `json:"last_updated"`
	HasBeenCrawled bool    `json:"has_been_crawled"`
	JustCrawled    bool    `json:"just_crawled"`
}

func (b *Backend) handleLastUpdated(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "url query parameter is required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, seen := b.pages[pageURL]
	if !seen {
		p = &page{crawledAt: b.now()}
		b.pages[pageURL] = p
	}
	writeJSON(w, http.StatusOK, lastUpdatedResponse{
		URL:            pageURL,
		LastUpdated:    p.lastUpdated(),
		HasBeenCrawled: true,
		JustCrawled:    !seen,
	})
}

// findFile returns the FAQ file for pageURL: the exact name, or else the
// first file for the same domain.
func (b *Backend) findFile(pageURL string) (string, bool) {
	name := FileName(pageURL)
	if _, err := fs.Stat(b.files, name); err == nil {
		return name, true
	}

	prefix := DomainPrefix(pageURL)
	if prefix == "" {
		return "", false
	}
	matches, err := fs.Glob(b.files, prefix+"_*_faq.md")
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

func (p *page) lastUpdated() *string {
	s := p.crawledAt.UTC().Format(http.TimeFormat)
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Pages returns the URLs crawled so far, sorted.
func (b *Backend) Pages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	urls := make([]string, 0, len(b.pages))
	for u := range b.pages {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
