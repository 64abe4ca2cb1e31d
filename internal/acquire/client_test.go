package acquire

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/http/httptrace"
	"net/url"
	"testing"
	"time"
)

// TestClient_ConnectionReuse verifies that sequential requests to the same
// host reuse pooled connections.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"faqs":[]}`))
	}))
	defer server.Close()

	client := NewClient(nil)

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5
	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		resp := client.Fetch(ctx, server.URL, 5*time.Second)
		if resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	expectedMinReuse := numRequests - 2 // allow some tolerance
	if reusedCount < expectedMinReuse {
		t.Errorf("expected at least %d reused connections, got %d out of %d requests",
			expectedMinReuse, reusedCount, numRequests)
	}
}

func TestClient_Fetch_AcceptsJSONWithoutCredentials(t *testing.T) {
	var gotAccept, gotCookie, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotCookie = r.Header.Get("Cookie")
		gotAuth = r.Header.Get("Authorization")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "secret"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jar, _ := cookiejar.New(nil)
	u, _ := url.Parse(server.URL)
	jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "preset"}})

	client := NewClient(&http.Client{Jar: jar})
	for i := 0; i < 2; i++ {
		if resp := client.Fetch(context.Background(), server.URL, time.Second); resp.Error != nil {
			t.Fatalf("Fetch() error = %v", resp.Error)
		}
	}

	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if gotCookie != "" {
		t.Errorf("Cookie = %q, want none", gotCookie)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none", gotAuth)
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(nil)
	resp := client.Fetch(context.Background(), server.URL, 50*time.Millisecond)

	if !errors.Is(resp.Error, ErrTimeout) {
		t.Errorf("Fetch() error = %v, want ErrTimeout", resp.Error)
	}
}

func TestClient_Fetch_ParentCancelIsNotTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	resp := NewClient(nil).Fetch(ctx, server.URL, 5*time.Second)
	if resp.Error == nil {
		t.Fatal("Fetch() error = nil, want cancellation error")
	}
	if errors.Is(resp.Error, ErrTimeout) {
		t.Error("parent cancellation must not be reported as a request timeout")
	}
	if !errors.Is(resp.Error, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", resp.Error)
	}
}

func TestPageFAQsURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		page     string
		language string
		force    bool
		want     string
	}{
		{
			name: "plain",
			base: "http://localhost:8000",
			page: "https://example.com/a",
			want: "http://localhost:8000/page-faqs?url=https%3A%2F%2Fexample.com%2Fa",
		},
		{
			name:     "language and trailing slash",
			base:     "https://api.example.com/v1/",
			page:     "https://example.com/a?b=c",
			language: "fr",
			want:     "https://api.example.com/v1/page-faqs?target_language=fr&url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc",
		},
		{
			name:  "forced refresh",
			base:  "http://localhost:8000",
			page:  "https://example.com",
			force: true,
			want:  "http://localhost:8000/page-faqs?force_refresh=true&url=https%3A%2F%2Fexample.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageFAQsURL(tt.base, tt.page, tt.language, tt.force)
			if err != nil {
				t.Fatalf("PageFAQsURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PageFAQsURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageFAQsURL_InvalidBase(t *testing.T) {
	for _, base := range []string{"", "localhost:8000", "/relative", "http://[::1"} {
		if _, err := PageFAQsURL(base, "https://example.com", "", false); err == nil {
			t.Errorf("PageFAQsURL(%q) error = nil, want error", base)
		}
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient(nil)
	client.Close()
	client.Close()

	var nilClient *Client
	nilClient.Close()
}
