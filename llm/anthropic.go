// ABOUTME: Anthropic provider adapter implementing the ProviderAdapter interface.
// ABOUTME: Translates unified requests to/from the Anthropic Messages API (/v1/messages).

package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultVersion = "2023-06-01"
	anthropicDefaultMaxToks = 4096
)

// AnthropicAdapter implements ProviderAdapter for the Anthropic Messages API.
type AnthropicAdapter struct {
	*BaseAdapter
	version string
}

// AnthropicOption is a functional option for configuring an AnthropicAdapter.
type AnthropicOption func(*AnthropicAdapter)

// WithAnthropicBaseURL overrides the default Anthropic API base URL.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.BaseURL = url
	}
}

// WithAnthropicTimeout sets custom timeout values for the adapter.
func WithAnthropicTimeout(timeout AdapterTimeout) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.Timeout = timeout
		a.HTTPClient = &http.Client{Timeout: timeout.Request}
	}
}

// NewAnthropicAdapter creates an AnthropicAdapter with the given API key.
// Authentication uses the x-api-key header instead of Bearer auth, so the key
// is stored in DefaultHeaders rather than BaseAdapter.APIKey.
func NewAnthropicAdapter(apiKey string, opts ...AnthropicOption) *AnthropicAdapter {
	adapter := &AnthropicAdapter{
		BaseAdapter: NewBaseAdapter("", anthropicDefaultBaseURL, DefaultAdapterTimeout()),
		version:     anthropicDefaultVersion,
	}

	adapter.DefaultHeaders["x-api-key"] = apiKey
	adapter.DefaultHeaders["anthropic-version"] = adapter.version

	for _, opt := range opts {
		opt(adapter)
	}
	adapter.DefaultHeaders["anthropic-version"] = adapter.version

	return adapter
}

// Name returns the provider name "anthropic".
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Wire types for the Anthropic Messages API.

type anthropicContentBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a completion request to the Anthropic Messages API.
func (a *AnthropicAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	body := anthropicRequest{
		Model:       req.Model,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = anthropicDefaultMaxToks
	}

	for _, msg := range req.Messages {
		wire, err := toAnthropicMessage(msg)
		if err != nil {
			return nil, err
		}
		body.Messages = append(body.Messages, wire)
	}

	resp, err := a.DoRequest(ctx, "/v1/messages", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "reading response body", Cause: err}}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerErrorFromStatus("anthropic", resp.StatusCode, raw, RetryAfterHint(resp))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProviderError{
			SDKError: SDKError{Message: "decoding anthropic response", Cause: err},
			Provider: "anthropic",
			Raw:      json.RawMessage(raw),
		}
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Response{
		ID:       parsed.ID,
		Provider: "anthropic",
		Model:    parsed.Model,
		Message:  AssistantMessage(text),
		Usage: Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
			TotalTokens:  parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

func toAnthropicMessage(msg Message) (anthropicMessage, error) {
	wire := anthropicMessage{Role: string(msg.Role)}

	for _, part := range msg.Content {
		switch part.Kind {
		case ContentText:
			wire.Content = append(wire.Content, anthropicContentBlock{Type: "text", Text: part.Text})
		case ContentImage:
			if part.Image == nil {
				return wire, &InvalidRequestError{ProviderError: ProviderError{
					SDKError: SDKError{Message: "image content part has no image data"},
					Provider: "anthropic",
				}}
			}
			source := anthropicSource{}
			if len(part.Image.Data) > 0 {
				source.Type = "base64"
				source.MediaType = part.Image.MediaType
				source.Data = base64.StdEncoding.EncodeToString(part.Image.Data)
			} else {
				source.Type = "url"
				source.URL = part.Image.URL
			}
			wire.Content = append(wire.Content, anthropicContentBlock{Type: "image", Source: &source})
		default:
			return wire, &InvalidRequestError{ProviderError: ProviderError{
				SDKError: SDKError{Message: fmt.Sprintf("unsupported content kind %q", part.Kind)},
				Provider: "anthropic",
			}}
		}
	}

	return wire, nil
}
