// ABOUTME: OpenAI-compatible provider adapter implementing the ProviderAdapter interface.
// ABOUTME: Speaks the /v1/chat/completions wire format used by OpenAI and compatible gateways.

package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openaiDefaultBaseURL = "https://api.openai.com"

// OpenAIAdapter implements ProviderAdapter for the OpenAI Chat Completions API
// and any gateway exposing the same wire format.
type OpenAIAdapter struct {
	*BaseAdapter
	name string
}

// OpenAIOption is a functional option for configuring an OpenAIAdapter.
type OpenAIOption func(*OpenAIAdapter)

// WithOpenAIBaseURL sets the base URL, for OpenAI-compatible gateways.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.BaseURL = url
	}
}

// WithOpenAIName overrides the provider name reported by the adapter, for
// registering multiple compatible gateways side by side.
func WithOpenAIName(name string) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.name = name
	}
}

// NewOpenAIAdapter creates an OpenAIAdapter with the given API key and options.
func NewOpenAIAdapter(apiKey string, opts ...OpenAIOption) *OpenAIAdapter {
	adapter := &OpenAIAdapter{
		BaseAdapter: NewBaseAdapter(apiKey, openaiDefaultBaseURL, DefaultAdapterTimeout()),
		name:        "openai",
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

// Name returns the provider name (default "openai").
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// Wire types for the Chat Completions API.

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_completion_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends a completion request to the Chat Completions endpoint.
func (a *OpenAIAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	body := openaiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	if req.System != "" {
		body.Messages = append(body.Messages, openaiMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		wire, err := toOpenAIMessage(msg)
		if err != nil {
			return nil, err
		}
		body.Messages = append(body.Messages, wire)
	}

	resp, err := a.DoRequest(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "reading response body", Cause: err}}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerErrorFromStatus(a.name, resp.StatusCode, raw, RetryAfterHint(resp))
	}

	var parsed openaiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProviderError{
			SDKError: SDKError{Message: "decoding " + a.name + " response", Cause: err},
			Provider: a.name,
			Raw:      json.RawMessage(raw),
		}
	}

	var text string
	if len(parsed.Choices) > 0 {
		text = parsed.Choices[0].Message.Content
	}

	return &Response{
		ID:       parsed.ID,
		Provider: a.name,
		Model:    parsed.Model,
		Message:  AssistantMessage(text),
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
	}, nil
}

func toOpenAIMessage(msg Message) (openaiMessage, error) {
	// Text-only messages use the plain string content form.
	textOnly := true
	for _, part := range msg.Content {
		if part.Kind != ContentText {
			textOnly = false
			break
		}
	}
	if textOnly {
		return openaiMessage{Role: string(msg.Role), Content: msg.TextContent()}, nil
	}

	var parts []openaiContentPart
	for _, part := range msg.Content {
		switch part.Kind {
		case ContentText:
			parts = append(parts, openaiContentPart{Type: "text", Text: part.Text})
		case ContentImage:
			if part.Image == nil {
				return openaiMessage{}, &InvalidRequestError{ProviderError: ProviderError{
					SDKError: SDKError{Message: "image content part has no image data"},
					Provider: "openai",
				}}
			}
			url := part.Image.URL
			if len(part.Image.Data) > 0 {
				url = "data:" + part.Image.MediaType + ";base64," + base64.StdEncoding.EncodeToString(part.Image.Data)
			}
			parts = append(parts, openaiContentPart{Type: "image_url", ImageURL: &openaiImageURL{URL: url}})
		default:
			return openaiMessage{}, &InvalidRequestError{ProviderError: ProviderError{
				SDKError: SDKError{Message: fmt.Sprintf("unsupported content kind %q", part.Kind)},
				Provider: "openai",
			}}
		}
	}
	return openaiMessage{Role: string(msg.Role), Content: parts}, nil
}
