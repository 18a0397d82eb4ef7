// ABOUTME: Error hierarchy for the unified LLM client.
// ABOUTME: Structured error types for provider, network, and configuration failures with retryability.

package llm

import "encoding/json"

// SDKError is the base error type for all errors in the LLM client.
// All other error types embed SDKError either directly or transitively.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns false for the base SDKError. Subtypes override this.
func (e *SDKError) IsRetryable() bool {
	return false
}

// ProviderError represents an error returned by an LLM provider's API.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	ErrorCode  string
	Retryable  bool
	RetryAfter *float64
	Raw        json.RawMessage
}

func (e *ProviderError) Error() string { return e.SDKError.Error() }
func (e *ProviderError) Unwrap() error { return e.SDKError.Unwrap() }

// IsRetryable returns the Retryable flag set on the provider error.
func (e *ProviderError) IsRetryable() bool { return e.Retryable }

// As enables errors.As to match SDKError from a ProviderError.
func (e *ProviderError) As(target any) bool {
	switch t := target.(type) {
	case **SDKError:
		*t = &e.SDKError
		return true
	default:
		return false
	}
}

// AuthenticationError represents a 401 Unauthorized response. Not retryable.
type AuthenticationError struct {
	ProviderError
}

func (e *AuthenticationError) Error() string     { return e.ProviderError.Error() }
func (e *AuthenticationError) Unwrap() error     { return e.ProviderError.Unwrap() }
func (e *AuthenticationError) IsRetryable() bool { return false }
func (e *AuthenticationError) As(target any) bool { return asProviderError(&e.ProviderError, target) }

// RateLimitError represents a 429 Too Many Requests response. Retryable, and
// may carry a retry-after hint in seconds.
type RateLimitError struct {
	ProviderError
}

func (e *RateLimitError) Error() string      { return e.ProviderError.Error() }
func (e *RateLimitError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *RateLimitError) IsRetryable() bool  { return true }
func (e *RateLimitError) As(target any) bool { return asProviderError(&e.ProviderError, target) }

// InvalidRequestError represents a 400-level validation failure. Not retryable.
type InvalidRequestError struct {
	ProviderError
}

func (e *InvalidRequestError) Error() string      { return e.ProviderError.Error() }
func (e *InvalidRequestError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *InvalidRequestError) IsRetryable() bool  { return false }
func (e *InvalidRequestError) As(target any) bool { return asProviderError(&e.ProviderError, target) }

// NetworkError represents a transport-level failure before any provider
// response was received. Retryable.
type NetworkError struct {
	SDKError
}

func (e *NetworkError) IsRetryable() bool { return true }

// ConfigurationError represents invalid client or adapter configuration.
type ConfigurationError struct {
	SDKError
}

func (e *ConfigurationError) IsRetryable() bool { return false }

// asProviderError lets errors.As reach the embedded ProviderError and SDKError
// from the concrete subtypes.
func asProviderError(pe *ProviderError, target any) bool {
	switch t := target.(type) {
	case **ProviderError:
		*t = pe
		return true
	case **SDKError:
		*t = &pe.SDKError
		return true
	default:
		return false
	}
}

// providerErrorFromStatus builds the appropriate error subtype for an HTTP
// status code returned by a provider API.
func providerErrorFromStatus(provider string, status int, body []byte, retryAfter *float64) error {
	pe := ProviderError{
		SDKError:   SDKError{Message: provider + " API error"},
		Provider:   provider,
		StatusCode: status,
		Retryable:  status >= 500,
		RetryAfter: retryAfter,
		Raw:        json.RawMessage(body),
	}

	switch {
	case status == 401 || status == 403:
		return &AuthenticationError{ProviderError: pe}
	case status == 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case status >= 400 && status < 500:
		return &InvalidRequestError{ProviderError: pe}
	default:
		return &pe
	}
}
