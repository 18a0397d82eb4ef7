// ABOUTME: ProviderAdapter interface and shared HTTP plumbing for provider adapters.
// ABOUTME: BaseAdapter handles request building, auth headers, and retry-after parsing.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ProviderAdapter is the interface all LLM provider adapters implement. It
// provides a uniform way to send completion requests to different providers.
type ProviderAdapter interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
	Close() error
}

// AdapterTimeout configures HTTP timeouts for a provider adapter.
type AdapterTimeout struct {
	Request time.Duration
}

// DefaultAdapterTimeout returns the default adapter timeout of 120s per request.
// Full-document regenerations routinely run long.
func DefaultAdapterTimeout() AdapterTimeout {
	return AdapterTimeout{Request: 120 * time.Second}
}

// BaseAdapter provides common HTTP functionality shared across provider
// adapters. Provider-specific adapters embed BaseAdapter to reuse request
// building and header management.
type BaseAdapter struct {
	APIKey         string
	BaseURL        string
	DefaultHeaders map[string]string
	Timeout        AdapterTimeout
	HTTPClient     *http.Client
}

// NewBaseAdapter creates a BaseAdapter with the given API key, base URL, and
// timeout config.
func NewBaseAdapter(apiKey, baseURL string, timeout AdapterTimeout) *BaseAdapter {
	return &BaseAdapter{
		APIKey:         apiKey,
		BaseURL:        baseURL,
		DefaultHeaders: make(map[string]string),
		Timeout:        timeout,
		HTTPClient: &http.Client{
			Timeout: timeout.Request,
		},
	}
}

// DoRequest builds and executes an HTTP POST against the provider's API. It
// JSON-encodes the body, sets authorization and content type headers, then
// applies default headers. The request respects the provided context for
// timeout and cancellation.
func (b *BaseAdapter) DoRequest(ctx context.Context, path string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+path, bytes.NewBuffer(encoded))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if b.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.APIKey)
	}
	for k, v := range b.DefaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "request failed", Cause: err}}
	}
	return resp, nil
}

// RetryAfterHint parses a Retry-After header into seconds, if present.
func RetryAfterHint(resp *http.Response) *float64 {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &seconds
}

// Close releases adapter resources. The shared HTTP client holds none beyond
// idle connections.
func (b *BaseAdapter) Close() error {
	b.HTTPClient.CloseIdleConnections()
	return nil
}
