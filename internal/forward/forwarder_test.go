package forward

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"openai2local/internal/config"
	"openai2local/internal/core"
)

// countingLogger counts warnings so retry behavior is observable without
// timing assertions.
type countingLogger struct {
	core.NopLogger
	warns atomic.Int64
}

func (l *countingLogger) Warn(string, ...any) { l.warns.Add(1) }

func testSettings() config.HTTPClientSettings {
	s := config.DefaultHTTPClientSettings()
	s.RequestTimeout = 100 * time.Millisecond
	return s
}

func backendFor(url string) config.BackendSettings {
	return config.BackendSettings{Name: "test", URL: url, Enabled: true}
}

func TestForwardDeliversRequestAndStripsAuth(t *testing.T) {
	var gotAuth, gotCustom, gotContentType, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Custom")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	f := NewForwarder(backendFor(ts.URL), testSettings(), &core.NopLogger{})

	headers := http.Header{}
	headers.Set("Authorization", "Bearer client-secret")
	headers.Set("X-Custom", "kept")

	resp, err := f.Forward(context.Background(), http.MethodPost, "/v1/chat/completions", []byte(`{"model":"m"}`), headers, false)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if gotAuth != "" {
		t.Errorf("Authorization reached backend: %q", gotAuth)
	}
	if gotCustom != "kept" {
		t.Errorf("X-Custom = %q, want kept", gotCustom)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"model":"m"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestForwardUnsupportedMethod(t *testing.T) {
	f := NewForwarder(backendFor("http://127.0.0.1:1"), testSettings(), &core.NopLogger{})

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodHead} {
		_, err := f.Forward(context.Background(), method, "/anything", nil, nil, false)
		var methodErr *MethodError
		if !errors.As(err, &methodErr) {
			t.Errorf("%s: err = %v, want MethodError", method, err)
		}
	}
}

func TestForwardTimeoutNotRetried(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	backend := backendFor(ts.URL)
	backend.MaxRetries = 3

	logger := &countingLogger{}
	f := NewForwarder(backend, testSettings(), logger)

	_, err := f.Forward(context.Background(), http.MethodPost, "/v1/chat/completions", []byte(`{}`), nil, false)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if n := logger.warns.Load(); n != 0 {
		t.Errorf("timeout was retried %d times, want 0", n)
	}
}

func TestForwardStreamingIgnoresOverallTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(250 * time.Millisecond)
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer ts.Close()

	f := NewForwarder(backendFor(ts.URL), testSettings(), &core.NopLogger{})

	resp, err := f.Forward(context.Background(), http.MethodPost, "/v1/chat/completions", []byte(`{}`), nil, true)
	if err != nil {
		t.Fatalf("streaming request hit overall timeout: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
}

func TestForwardUnreachableRetriesThenFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	backend := backendFor(url)
	backend.MaxRetries = 2

	logger := &countingLogger{}
	f := NewForwarder(backend, testSettings(), logger)

	_, err := f.Forward(context.Background(), http.MethodGet, "/v1/models", nil, nil, false)

	var unreachableErr *UnreachableError
	if !errors.As(err, &unreachableErr) {
		t.Fatalf("err = %v, want UnreachableError", err)
	}
	if n := logger.warns.Load(); n != 2 {
		t.Errorf("retry warnings = %d, want 2", n)
	}
}

func TestForwardContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer ts.Close()

	f := NewForwarder(backendFor(ts.URL), testSettings(), &core.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := f.Forward(ctx, http.MethodGet, "/v1/models", nil, nil, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestForwardTrailingSlashNormalized(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer ts.Close()

	f := NewForwarder(backendFor(ts.URL+"/"), testSettings(), &core.NopLogger{})

	resp, err := f.Forward(context.Background(), http.MethodGet, "/v1/models", nil, nil, false)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if gotPath != "/v1/models" {
		t.Errorf("path = %q, want /v1/models", gotPath)
	}
}
