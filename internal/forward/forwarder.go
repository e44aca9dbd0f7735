// Package forward issues outbound calls to the configured backend, applying
// timeouts and classifying transport failures.
package forward

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"openai2local/internal/config"
	"openai2local/internal/core"
)

// Forwarder sends requests to the single configured backend target. Two
// pooled clients share one transport: the default client is bounded by the
// configured request timeout, the streaming client has no overall timeout so
// a long incremental response is never cut off mid-stream
// (connection-establishment timeouts still apply through the transport).
type Forwarder struct {
	baseURL      string
	client       *http.Client
	streamClient *http.Client
	maxRetries   int
	retryDelay   time.Duration
	logger       core.Logger
}

// NewForwarder creates a Forwarder for the given backend target.
func NewForwarder(backend config.BackendSettings, settings config.HTTPClientSettings, logger core.Logger) *Forwarder {
	transport := newPooledTransport(settings)

	timeout := settings.RequestTimeout
	if backend.Timeout > 0 {
		timeout = time.Duration(backend.Timeout) * time.Second
	}

	return &Forwarder{
		baseURL:      strings.TrimSuffix(backend.URL, "/"),
		client:       &http.Client{Transport: transport, Timeout: timeout},
		streamClient: &http.Client{Transport: transport},
		maxRetries:   backend.MaxRetries,
		retryDelay:   time.Duration(backend.RetryDelay) * time.Second,
		logger:       logger,
	}
}

func newPooledTransport(settings config.HTTPClientSettings) *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   settings.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          settings.MaxIdleConns,
		MaxIdleConnsPerHost:   settings.MaxIdleConnsPerHost,
		MaxConnsPerHost:       settings.MaxConnsPerHost,
		IdleConnTimeout:       settings.IdleConnTimeout,
		TLSHandshakeTimeout:   settings.TLSHandshakeTimeout,
		ExpectContinueTimeout: core.HTTPExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// Forward sends method/path/body to the backend and returns the raw response.
// The caller owns resp.Body. The inbound Authorization header is stripped so
// the external auth token never reaches the backend. Connection-level
// failures are retried up to the configured max_retries with retry_delay
// between attempts; timeouts and delivered responses are never retried.
func (f *Forwarder) Forward(ctx context.Context, method, path string, body []byte, headers http.Header, streaming bool) (*http.Response, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, &MethodError{Method: method}
	}

	url := f.baseURL + path

	client := f.client
	if streaming && method == http.MethodPost {
		client = f.streamClient
	}

	var lastErr error
	attempts := f.maxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			f.logger.Warn("Backend unreachable, retrying %s %s (attempt %d/%d)", method, path, attempt+1, attempts)
			if err := sleepCtx(ctx, f.retryDelay); err != nil {
				return nil, err
			}
		}

		req, err := f.buildRequest(ctx, method, url, body, headers)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			f.logger.Error("Timeout forwarding request to %s", url)
			return nil, &TimeoutError{URL: url, Cause: err}
		}

		lastErr = err
	}

	f.logger.Error("Error forwarding request to %s: %v", url, lastErr)
	return nil, &UnreachableError{URL: url, Cause: lastErr}
}

func (f *Forwarder) buildRequest(ctx context.Context, method, url string, body []byte, headers http.Header) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 && method == http.MethodPost {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	for key, values := range headers {
		if http.CanonicalHeaderKey(key) == core.HeaderAuthorization {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if reader != nil {
		req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	}

	return req, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
