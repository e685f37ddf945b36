package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse indicates the upstream returned no text.
	ErrEmptyResponse = errors.New("empty llm response")

	// ErrUnparsableResponse indicates the response text could not be decoded
	// into the expected structured format, even after fallback recovery.
	ErrUnparsableResponse = errors.New("unparsable llm response")

	// ErrUpstreamFailure indicates the completion service call itself failed.
	ErrUpstreamFailure = errors.New("llm upstream failure")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrUnavailable indicates the completion service is unreachable.
	ErrUnavailable = errors.New("llm service unavailable")

	// ErrMissingCredential indicates the provider requires an API key and none was configured.
	ErrMissingCredential = errors.New("llm api credential not configured")
)

// UpstreamKind classifies a completion service failure.
type UpstreamKind string

const (
	UpstreamTimeout     UpstreamKind = "timeout"
	UpstreamUnavailable UpstreamKind = "unavailable"
	UpstreamAuth        UpstreamKind = "auth"
	UpstreamRateLimited UpstreamKind = "rate_limited"
	UpstreamRejected    UpstreamKind = "rejected"
	UpstreamServer      UpstreamKind = "server"
	UpstreamUnknown     UpstreamKind = "unknown"
)

// Transient reports whether a retry could plausibly succeed.
func (k UpstreamKind) Transient() bool {
	switch k {
	case UpstreamUnavailable, UpstreamRateLimited, UpstreamServer:
		return true
	default:
		return false
	}
}

// UpstreamError is returned by a Gateway when the completion call fails.
type UpstreamError struct {
	Provider   string
	Kind       UpstreamKind
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches ErrUpstreamFailure for every kind, plus ErrTimeout and
// ErrUnavailable for the corresponding kinds.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamFailure:
		return true
	case ErrTimeout:
		return e.Kind == UpstreamTimeout
	case ErrUnavailable:
		return e.Kind == UpstreamUnavailable
	}
	return false
}

// UnparsableError carries the raw response text that failed to decode.
type UnparsableError struct {
	Raw   string
	Cause error
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUnparsableResponse, e.Cause)
}

func (e *UnparsableError) Unwrap() error { return e.Cause }

func (e *UnparsableError) Is(target error) bool {
	return target == ErrUnparsableResponse
}

// classifyStatus maps an HTTP status code to an upstream failure kind.
func classifyStatus(code int) UpstreamKind {
	switch {
	case code == 401 || code == 403:
		return UpstreamAuth
	case code == 408 || code == 504:
		return UpstreamTimeout
	case code == 429:
		return UpstreamRateLimited
	case code >= 500:
		return UpstreamServer
	case code >= 400:
		return UpstreamRejected
	default:
		return UpstreamUnknown
	}
}

func errorCode(err error) string {
	var upErr *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &upErr):
		return string(upErr.Kind)
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	default:
		return string(UpstreamUnknown)
	}
}
