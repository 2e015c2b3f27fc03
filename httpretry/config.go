package httpretry

import "net/http"

// StatusCodes is the set of HTTP status codes eligible for retry.
type StatusCodes map[int]struct{}

// NewStatusCodes builds a set from the given codes.
func NewStatusCodes(codes ...int) StatusCodes {
	set := make(StatusCodes, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Contains reports whether code is in the set.
func (s StatusCodes) Contains(code int) bool {
	_, ok := s[code]
	return ok
}

// DefaultStatusCodes returns the standard retryable set:
// 408 Request Timeout, 425 Too Early, 429 Too Many Requests,
// 500 Internal Server Error, 502 Bad Gateway, 503 Service Unavailable,
// 504 Gateway Timeout.
func DefaultStatusCodes() StatusCodes {
	return NewStatusCodes(
		http.StatusRequestTimeout,
		http.StatusTooEarly,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	)
}

// DefaultMaxAttempts is the default total attempt budget, the first attempt
// included.
const DefaultMaxAttempts = 3

// RetryConfig holds the engine's budget and eligibility knobs. Delay shaping
// belongs to the DelayResolver (see BackoffParameters), not here.
//
// Use DefaultRetryConfig() for balanced defaults, then modify as needed:
//
//	cfg := httpretry.DefaultRetryConfig()
//	cfg.MaxAttempts = 5
//	engine := httpretry.New(httpretry.WithRetryConfig(cfg))
type RetryConfig struct {
	// MaxAttempts is the total attempt budget, including the first
	// (non-retry) attempt. Values below 1 are treated as 1.
	// Default: 3
	MaxAttempts int

	// StatusCodes is the set of response codes eligible for retry.
	// Nil means DefaultStatusCodes().
	StatusCodes StatusCodes

	// RetryOnTimeout gates retries of timeout-classified transport failures.
	// Non-timeout transport failures always retry within the budget.
	// Default: true
	RetryOnTimeout bool

	// DelayResolver computes the wait (or abort decision) between attempts.
	// Nil means NewBackoffResolver(DefaultBackoffParameters()).
	DelayResolver DelayResolver
}

// DefaultRetryConfig returns balanced defaults: 3 total attempts, the
// standard retryable status set, timeout retries enabled, and the default
// jittered-exponential resolver.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    DefaultMaxAttempts,
		StatusCodes:    DefaultStatusCodes(),
		RetryOnTimeout: true,
	}
}

// AggressiveRetryConfig returns a configuration for operations that must
// succeed: 6 total attempts with the standard status set.
//
// Warning: more attempts mean more load on a struggling downstream service.
func AggressiveRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    6,
		StatusCodes:    DefaultStatusCodes(),
		RetryOnTimeout: true,
	}
}

// NoRetryConfig returns a configuration that disables retries entirely: one
// attempt, terminal outcome either way. Use when the operation is not
// idempotent or retries are handled at a higher level.
func NoRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    1,
		StatusCodes:    DefaultStatusCodes(),
		RetryOnTimeout: false,
	}
}

// normalized fills zero values with defaults and clamps the budget.
func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.StatusCodes == nil {
		c.StatusCodes = DefaultStatusCodes()
	}
	if c.DelayResolver == nil {
		c.DelayResolver = NewBackoffResolver(DefaultBackoffParameters())
	}
	return c
}

// RequestParams tunes body materialization and error surfacing for a single
// Send or SendStream call. The zero value is valid: JSON bodies are decoded
// into Payload.JSON, parse failures propagate as plain errors, and transport
// terminal failures return as the call's error.
type RequestParams struct {
	// Decode, when non-nil, receives the unmarshaled success body for JSON
	// responses (a pointer, as for json.Unmarshal). When nil, JSON success
	// bodies are decoded into Payload.JSON as generic values.
	Decode any

	// DecodeError, when non-nil, receives a best-effort unmarshal of
	// terminal HTTP failure bodies. A malformed error body never masks the
	// failure itself; the raw bytes stay on Payload.Bytes regardless.
	DecodeError any

	// SafeParseJSON wraps success-body JSON parse failures in a
	// *BodyParseError carrying the raw text and the request label, instead
	// of propagating the decoder's own error.
	SafeParseJSON bool

	// BlobBody materializes the success body as raw bytes with no decoding.
	BlobBody bool

	// RequestLabel is an opaque tag attached to every error outcome of this
	// call, for correlation across concurrent logical requests sharing a log
	// stream. Empty means a generated ID is used.
	RequestLabel string

	// ReturnInternalError packs transport-level terminal failures into
	// Outcome.InternalError with a nil call error, instead of returning the
	// typed *InternalError from Send. Cancellations are always returned as
	// errors regardless.
	ReturnInternalError bool
}
