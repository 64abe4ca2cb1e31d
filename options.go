package faqwidget

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// NamedWidget pairs a gallery widget name with its attributes.
type NamedWidget struct {
	Name       string
	Attributes Attributes

	// RefreshInterval re-mounts the widget periodically while the gallery
	// runs. Zero uses the gallery default set by [WithRefreshInterval].
	RefreshInterval time.Duration
}

// galleryConfig holds mutable state during Gallery construction.
type galleryConfig struct {
	title         string
	widgets       []NamedWidget
	port          int
	logger        *slog.Logger
	widgetOptions []WidgetOption
	refresh       time.Duration
}

// Option configures a [Gallery] during construction.
//
// Option implements the functional options pattern. Options return an
// error if validation fails.
type Option func(*galleryConfig) error

// WithWidget adds a named widget to the gallery.
//
// Can be called multiple times. At least one widget must be configured
// for [NewGallery] to succeed.
//
// Example:
//
//	g, err := faqwidget.NewGallery(
//	    faqwidget.WithWidget("pricing", faqwidget.Attributes{URL: "https://example.com/pricing"}),
//	)
func WithWidget(name string, attrs Attributes) Option {
	return func(cfg *galleryConfig) error {
		cfg.widgets = append(cfg.widgets, NamedWidget{Name: name, Attributes: attrs})
		return nil
	}
}

// WithWidgets adds several named widgets. Equivalent to calling
// [WithWidget] for each.
func WithWidgets(widgets ...NamedWidget) Option {
	return func(cfg *galleryConfig) error {
		cfg.widgets = append(cfg.widgets, widgets...)
		return nil
	}
}

// WithPort sets the HTTP port of the preview server. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *galleryConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the gallery page title.
func WithTitle(title string) Option {
	return func(cfg *galleryConfig) error {
		cfg.title = strings.TrimSpace(title)
		return nil
	}
}

// WithLogger sets the logger for the gallery and its widgets. If not
// specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *galleryConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithWidgetOptions applies opts to every widget in the gallery, for
// example retry tuning or an update callback:
//
//	g, err := faqwidget.NewGallery(
//	    faqwidget.WithWidgets(widgets...),
//	    faqwidget.WithWidgetOptions(
//	        faqwidget.WithRetryDelay(time.Second),
//	        faqwidget.WithUpdateCallback(func(s faqwidget.Snapshot) {
//	            log.Printf("%s: %s", s.Name, s.Phase)
//	        }),
//	    ),
//	)
//
// The gallery sets each widget's name and logger itself.
func WithWidgetOptions(opts ...WidgetOption) Option {
	return func(cfg *galleryConfig) error {
		cfg.widgetOptions = append(cfg.widgetOptions, opts...)
		return nil
	}
}

// WithRefreshInterval re-mounts every widget that has no interval of its
// own each d while the gallery runs, picking up FAQs the backend
// regenerated. Zero, the default, disables periodic refresh.
//
// Returns an error if d is negative.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *galleryConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		cfg.refresh = d
		return nil
	}
}
