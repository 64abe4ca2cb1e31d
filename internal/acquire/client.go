package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; a widget issues one request at a time
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// pageFAQsPath is the backend route serving per-page FAQs.
const pageFAQsPath = "/page-faqs"

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code. Zero if the request failed
	// before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	// A request cancelled by its own timeout reports [ErrTimeout].
	Error error
}

// Client fetches FAQ payloads from the backend.
//
// Requests accept JSON only and carry no credentials: the client has no
// cookie jar and sets no authorization headers. Timeouts are applied per
// request via context rather than a global client timeout.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a [Client]. If httpClient is nil a pooled client with
// no global timeout is used. A cookie jar on a supplied client is ignored.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		}
	} else {
		cp := *httpClient
		cp.Jar = nil
		httpClient = &cp
	}
	return &Client{httpClient: httpClient}
}

// PageFAQsURL builds the request URL for a page.
//
// apiBase may carry a trailing slash. language is omitted when empty and
// force_refresh is only added for the cache-bypassing variant.
func PageFAQsURL(apiBase, pageURL, language string, forceRefresh bool) (string, error) {
	base, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api base: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid api base %q: must be an absolute URL", apiBase)
	}

	base.Path += pageFAQsPath
	q := base.Query()
	q.Set("url", pageURL)
	if language != "" {
		q.Set("target_language", language)
	}
	if forceRefresh {
		q.Set("force_refresh", "true")
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// Fetch performs a GET request with the given timeout and returns a
// structured [Response].
//
// Fetch always returns a Response; errors are captured in the Error field
// rather than returned separately. Only the request itself is cancelled on
// timeout; the caller's context is left untouched.
func (c *Client) Fetch(ctx context.Context, rawURL string, timeout time.Duration) Response {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   classify(ctx, reqCtx, err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      classify(ctx, reqCtx, fmt.Errorf("failed to read response body: %w", err)),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// classify maps a request's own deadline to ErrTimeout. Cancellation of the
// parent context is passed through unchanged.
func classify(parent, reqCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("request failed: %w", err)
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times and on a nil receiver.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
