// ABOUTME: Client with provider routing for the unified LLM client.
// ABOUTME: Provides NewClient with functional options and environment-based construction.

package llm

import (
	"context"
	"os"
)

// Completer is the narrow calling surface consumed by pipeline stages.
// *Client implements it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Client is the primary entry point for making LLM API calls. It manages
// provider adapters and routes each request to the correct provider.
type Client struct {
	providers       map[string]ProviderAdapter
	defaultProvider string
	retry           RetryPolicy
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithProvider registers a ProviderAdapter under the given name. The first
// provider registered becomes the default unless one is set explicitly.
func WithProvider(name string, adapter ProviderAdapter) ClientOption {
	return func(c *Client) {
		c.providers[name] = adapter
		if c.defaultProvider == "" {
			c.defaultProvider = name
		}
	}
}

// WithDefaultProvider sets the provider used when a Request does not specify one.
func WithDefaultProvider(name string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = name
	}
}

// WithRetryPolicy overrides the client's transport retry policy.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient creates a new Client with the given options applied.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		providers: make(map[string]ProviderAdapter),
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromEnv creates a Client by detecting API keys in the environment. It checks
// ANTHROPIC_API_KEY and OPENAI_API_KEY; the first detected provider becomes the
// default. Extra options are applied after detection, so WithDefaultProvider
// can override the detection-order default. Returns a ConfigurationError if no
// keys are found, or if the chosen default provider has no key.
func FromEnv(opts ...ClientOption) (*Client, error) {
	var detected []ClientOption

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		detected = append(detected, WithProvider("anthropic", NewAnthropicAdapter(key)))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		detected = append(detected, WithProvider("openai", NewOpenAIAdapter(key)))
	}

	if len(detected) == 0 {
		return nil, &ConfigurationError{
			SDKError: SDKError{
				Message: "no API keys found in environment (checked ANTHROPIC_API_KEY, OPENAI_API_KEY)",
			},
		}
	}

	c := NewClient(append(detected, opts...)...)
	if _, ok := c.providers[c.defaultProvider]; !ok {
		return nil, &ConfigurationError{
			SDKError: SDKError{
				Message: "default provider " + c.defaultProvider + " has no API key in the environment",
			},
		}
	}
	return c, nil
}

// resolveProvider determines which ProviderAdapter should handle the request.
func (c *Client) resolveProvider(req Request) (ProviderAdapter, error) {
	name := req.Provider
	if name == "" {
		name = c.defaultProvider
	}
	adapter, ok := c.providers[name]
	if !ok {
		return nil, &ConfigurationError{
			SDKError: SDKError{Message: "no provider registered for " + name},
		}
	}
	return adapter, nil
}

// Complete routes the request to its provider and executes it under the
// client's transport retry policy. Retries here cover transient provider
// failures only; semantic validation retries live in the pipeline.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	adapter, err := c.resolveProvider(req)
	if err != nil {
		return nil, err
	}

	var resp *Response
	err = Retry(ctx, c.retry, func() error {
		var callErr error
		resp, callErr = adapter.Complete(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Close closes every registered provider adapter.
func (c *Client) Close() error {
	var firstErr error
	for _, adapter := range c.providers {
		if err := adapter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
