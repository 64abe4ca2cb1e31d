package faqwidget

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// widgetConfig holds mutable state during widget construction.
type widgetConfig struct {
	name            string
	logger          *slog.Logger
	hostDocument    string
	requestTimeout  time.Duration
	retryDelay      time.Duration
	maxAttempts     int
	httpClient      *http.Client
	updateCallbacks []func(Snapshot)
}

// WidgetOption configures a [Widget] during construction.
//
// Options return an error if validation fails.
type WidgetOption func(*widgetConfig) error

// WithWidgetName sets the name reported in snapshots and log records.
func WithWidgetName(name string) WidgetOption {
	return func(cfg *widgetConfig) error {
		cfg.name = strings.TrimSpace(name)
		return nil
	}
}

// WithWidgetLogger sets the widget's logger. Defaults to [slog.Default].
//
// Returns an error if the logger is nil.
func WithWidgetLogger(logger *slog.Logger) WidgetOption {
	return func(cfg *widgetConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithHostDocument sets the HTML document the widget mounts into. The
// widget uses the document's first <faq-widget> element, appending one to
// <body> if there is none. Structured data is written to the document's
// <head>.
//
// Defaults to a minimal embedded page.
func WithHostDocument(document string) WidgetOption {
	return func(cfg *widgetConfig) error {
		if strings.TrimSpace(document) == "" {
			return errors.New("host document cannot be empty")
		}
		cfg.hostDocument = document
		return nil
	}
}

// WithRequestTimeout sets the hard timeout of each backend request.
// Defaults to 8 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) WidgetOption {
	return func(cfg *widgetConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithRetryDelay sets the fixed wait between attempts. Defaults to 2 seconds.
//
// Returns an error if the duration is negative.
func WithRetryDelay(d time.Duration) WidgetOption {
	return func(cfg *widgetConfig) error {
		if d < 0 {
			return errors.New("retry delay cannot be negative")
		}
		cfg.retryDelay = d
		return nil
	}
}

// WithMaxAttempts sets the retry budget. Defaults to 3.
//
// Returns an error if n is less than 1.
func WithMaxAttempts(n int) WidgetOption {
	return func(cfg *widgetConfig) error {
		if n < 1 {
			return errors.New("max attempts must be at least 1")
		}
		cfg.maxAttempts = n
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for backend requests. Its
// cookie jar, if any, is not used.
//
// Returns an error if the client is nil.
func WithHTTPClient(c *http.Client) WidgetOption {
	return func(cfg *widgetConfig) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = c
		return nil
	}
}

// WithUpdateCallback registers a function called after every change to the
// widget's view: loading, status updates, content, error and accordion
// changes.
//
// Callbacks run synchronously on the goroutine that caused the change and
// must not block. They receive a copy of the state and may call the
// widget's read methods. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithUpdateCallback(cb func(Snapshot)) WidgetOption {
	return func(cfg *widgetConfig) error {
		if cb == nil {
			return nil
		}
		cfg.updateCallbacks = append(cfg.updateCallbacks, cb)
		return nil
	}
}
