package acquire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jclee2044/faqwidget/internal/faq"
	"github.com/jclee2044/faqwidget/internal/sanitize"
)

const (
	// DefaultMaxAttempts is the retry budget of one resolution.
	DefaultMaxAttempts = 3

	// DefaultTimeout is the hard per-request timeout.
	DefaultTimeout = 8 * time.Second

	// DefaultRetryDelay is the fixed backoff between attempts.
	DefaultRetryDelay = 2 * time.Second
)

var (
	// ErrNoSource is returned when neither embedded data nor a page URL is
	// available.
	ErrNoSource = errors.New("no source available")

	// ErrNoFAQs is returned for a valid, empty response that carries no
	// in-progress signal. It is terminal and never retried.
	ErrNoFAQs = errors.New("no FAQs available for this page")

	// ErrNotGenerated is returned when the backend kept reporting work in
	// progress until the retry budget was spent.
	ErrNotGenerated = errors.New("no FAQs generated after multiple attempts")

	// ErrTimeout is reported by a request cancelled by its own timeout.
	ErrTimeout = errors.New("request timeout")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// Phase is the stage of an acquisition.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhaseRetrying Phase = "retrying"
	PhaseResolved Phase = "resolved"
	PhaseFailed   Phase = "failed"
)

// State is the acquisition state reported to observers.
type State struct {
	Attempt     int
	MaxAttempts int
	Phase       Phase

	// Message is the user-facing status text for PhaseRetrying.
	Message string
}

// Request describes one resolution.
type Request struct {
	// Inline is the raw embedded data block. Empty means absent.
	Inline string

	APIBase  string
	PageURL  string
	Language string
}

// RemoteResponse is the backend's reply to a page-faqs request.
type RemoteResponse struct {
	FAQs         json.RawMessage `json:"faqs"`
	FAQFile      string          `json:"faq_file,omitempty"`
	JustCrawled  bool            `json:"just_crawled,omitempty"`
	FAQGenerated bool            `json:"faq_generated,omitempty"`
	Message      string          `json:"message,omitempty"`
}

// InProgress reports whether the response signals that the backend is still
// generating FAQs for the page.
func (r RemoteResponse) InProgress() bool {
	return r.FAQFile != "" ||
		r.JustCrawled ||
		r.FAQGenerated ||
		strings.Contains(strings.ToLower(r.Message), "generating")
}

// Source reports where a resolved collection came from.
type Source string

const (
	SourceInline Source = "inline"
	SourceRemote Source = "remote"
)

// Result is the outcome of a resolution. When Resolve returns an error only
// Attempts is set.
type Result struct {
	Items  []faq.Item
	Source Source

	// Attempts is the number of remote attempts used; zero for inline data.
	Attempts int
}

// Resolver implements the bounded retry state machine.
//
// A Resolver never has more than one request in flight for a single
// Resolve call: attempt N+1, including any forced-refresh variant of
// attempt N, starts only after attempt N's outcome is known. Resolve may be
// called concurrently for independent resolutions.
type Resolver struct {
	client      *Client
	maxAttempts int
	timeout     time.Duration
	retryDelay  time.Duration
	logger      *slog.Logger

	// sleep suspends between attempts; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithMaxAttempts sets the retry budget. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n >= 1 {
			r.maxAttempts = n
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetryDelay sets the fixed backoff. Negative values are ignored.
func WithRetryDelay(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.retryDelay = d
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a [Resolver] using client. If client is nil a
// default [Client] is created.
func NewResolver(client *Client, opts ...Option) *Resolver {
	if client == nil {
		client = NewClient(nil)
	}
	r := &Resolver{
		client:      client,
		maxAttempts: DefaultMaxAttempts,
		timeout:     DefaultTimeout,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxAttempts returns the configured retry budget.
func (r *Resolver) MaxAttempts() int {
	return r.maxAttempts
}

// Resolve produces a collection for req.
//
// Embedded data is tried first; a valid embedded array is sanitized and
// returned without any network call. Otherwise the remote API is attempted
// up to the retry budget. observe, if non-nil, is called with
// [PhaseLoading] when remote resolution begins and with [PhaseRetrying]
// before each backoff. Resolve returns early only if ctx is cancelled.
// On error the returned Result still reports the attempts consumed.
func (r *Resolver) Resolve(ctx context.Context, req Request, observe func(State)) (Result, error) {
	if observe == nil {
		observe = func(State) {}
	}

	if req.Inline != "" {
		items, err := sanitize.ParseInline(req.Inline)
		if err == nil {
			return Result{Items: items, Source: SourceInline}, nil
		}
		r.logger.Warn("inline faq data ignored", "error", err)
	}

	if strings.TrimSpace(req.PageURL) == "" {
		return Result{}, ErrNoSource
	}

	target, err := PageFAQsURL(req.APIBase, req.PageURL, req.Language, false)
	if err != nil {
		return Result{}, err
	}
	refresh, _ := PageFAQsURL(req.APIBase, req.PageURL, req.Language, true)

	state := State{MaxAttempts: r.maxAttempts, Phase: PhaseLoading}
	observe(state)

	var lastErr error
	for {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: state.Attempt}, err
		}

		items, outcome := r.attempt(ctx, target, refresh)
		switch {
		case outcome == nil:
			return Result{Items: items, Source: SourceRemote, Attempts: state.Attempt + 1}, nil
		case errors.Is(outcome, ErrNoFAQs):
			return Result{Attempts: state.Attempt + 1}, ErrNoFAQs
		case ctx.Err() != nil:
			return Result{Attempts: state.Attempt + 1}, ctx.Err()
		}

		state.Attempt++
		lastErr = outcome
		inProgress := errors.Is(outcome, errInProgress)

		r.logger.Debug("faq attempt did not resolve",
			"attempt", state.Attempt,
			"max_attempts", r.maxAttempts,
			"url", req.PageURL,
			"reason", outcome.Error(),
		)

		if state.Attempt >= r.maxAttempts {
			spent := Result{Attempts: state.Attempt}
			if inProgress {
				return spent, ErrNotGenerated
			}
			if errors.Is(lastErr, ErrTimeout) {
				return spent, ErrTimeout
			}
			return spent, fmt.Errorf("failed to load FAQs: %w", lastErr)
		}

		state.Phase = PhaseRetrying
		if inProgress {
			state.Message = fmt.Sprintf("FAQs are being generated, retry %d/%d...", state.Attempt, r.maxAttempts)
		} else {
			state.Message = fmt.Sprintf("Connection problem, retry %d/%d...", state.Attempt, r.maxAttempts)
			r.logger.Warn("faq request failed, retrying",
				"attempt", state.Attempt,
				"url", req.PageURL,
				"error", outcome,
			)
		}
		observe(state)

		if err := r.sleep(ctx, r.retryDelay); err != nil {
			return Result{Attempts: state.Attempt}, err
		}
	}
}

// errInProgress marks an empty response that carried an in-progress signal.
var errInProgress = errors.New("faqs still being generated")

// attempt performs one remote attempt, including the forced-refresh variant
// when the backend reports an FAQ file but no entries.
//
// It returns the sanitized items on success, ErrNoFAQs for a terminal empty
// response, errInProgress for a retryable empty response, and any other
// error for a retryable failure.
func (r *Resolver) attempt(ctx context.Context, target, refresh string) ([]faq.Item, error) {
	body, err := r.get(ctx, target)
	if err != nil {
		return nil, err
	}
	if items, ok := candidates(body.FAQs); ok {
		return items, nil
	}
	if !body.InProgress() {
		return nil, ErrNoFAQs
	}

	if body.FAQFile != "" {
		forced, err := r.get(ctx, refresh)
		if err != nil {
			r.logger.Debug("forced refresh failed", "error", err)
		} else if items, ok := candidates(forced.FAQs); ok {
			return items, nil
		}
	}
	return nil, errInProgress
}

// get fetches and decodes one response.
func (r *Resolver) get(ctx context.Context, target string) (RemoteResponse, error) {
	resp := r.client.Fetch(ctx, target, r.timeout)
	if resp.Error != nil {
		return RemoteResponse{}, resp.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RemoteResponse{}, &StatusError{Code: resp.StatusCode}
	}

	var body RemoteResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return RemoteResponse{}, fmt.Errorf("invalid response: %w", err)
	}
	return body, nil
}

// candidates decodes and sanitizes a faqs field. ok reports whether the
// backend sent a non-empty list; the sanitized result may still be empty.
func candidates(raw json.RawMessage) ([]faq.Item, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil, false
	}
	return sanitize.Normalize(list), true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
