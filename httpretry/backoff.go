package httpretry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Ensure the package backoff policy interoperates with cenkalti/backoff.
var _ backoff.BackOff = (*ParamsBackOff)(nil)

// Default values for BackoffParameters.
const (
	// DefaultBaseDelay is the default first-attempt backoff delay.
	DefaultBaseDelay = 100 * time.Millisecond

	// DefaultMaxDelay is the default hard ceiling on any computed or
	// server-directed delay.
	DefaultMaxDelay = 60 * time.Second

	// DefaultMaxJitter is the default upper bound on the random noise added
	// to each computed delay.
	DefaultMaxJitter = 100 * time.Millisecond
)

// BackoffParameters shapes the delays produced by ComputeDelay and by the
// resolver returned from NewBackoffResolver. It carries delay-shaping
// concerns only; budget and eligibility live on RetryConfig.
//
// Construct with DefaultBackoffParameters and adjust fields as needed:
//
//	params := httpretry.DefaultBackoffParameters()
//	params.BaseDelay = 250 * time.Millisecond
//	params.ExponentialBackoff = false
type BackoffParameters struct {
	// BaseDelay is the delay before the second attempt. Subsequent delays
	// grow exponentially or linearly from it.
	// Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps every delay, including jitter. A Retry-After header
	// demanding more than MaxDelay makes the default resolver abort rather
	// than wait.
	// Default: 60s
	MaxDelay time.Duration

	// MaxJitter bounds the uniform random noise added to each computed
	// delay; the noise is drawn from [0, MaxJitter). Zero disables jitter.
	// Default: 100ms
	MaxJitter time.Duration

	// ExponentialBackoff selects base×2^(n−1) growth when true and base×n
	// linear growth when false.
	// Default: true
	ExponentialBackoff bool

	// RespectRetryAfter lets the default resolver honor Retry-After headers
	// on 429 and 503 responses ahead of computed backoff.
	// Default: true
	RespectRetryAfter bool
}

// DefaultBackoffParameters returns the balanced defaults: jittered
// exponential backoff from 100ms, capped at 60s, honoring Retry-After.
func DefaultBackoffParameters() BackoffParameters {
	return BackoffParameters{
		BaseDelay:          DefaultBaseDelay,
		MaxDelay:           DefaultMaxDelay,
		MaxJitter:          DefaultMaxJitter,
		ExponentialBackoff: true,
		RespectRetryAfter:  true,
	}
}

// ComputeDelay returns the wait before re-issuing the request after the
// given attempt. Attempts are 1-indexed: attempt 1 is the first (non-retry)
// attempt, so the first wait a caller sees is ComputeDelay(1, ...).
//
//	exponential: BaseDelay × 2^(attempt−1)
//	linear:      BaseDelay × attempt
//
// Jitter in [0, MaxJitter) is added before the result is clamped to
// [0, MaxDelay], so MaxDelay is a hard ceiling regardless of jitter.
//
// Attempt 0 is accepted rather than rejected; under exponential growth it
// yields half the attempt-1 delay (2^−1). All call sites in this package
// start counting at 1.
func ComputeDelay(attempt int, params BackoffParameters) time.Duration {
	var delay float64
	if params.ExponentialBackoff {
		delay = float64(params.BaseDelay) * math.Pow(2, float64(attempt-1))
	} else {
		delay = float64(params.BaseDelay) * float64(attempt)
	}

	if params.MaxJitter > 0 {
		//nolint:gosec // intentional weak rand for jitter (not cryptographic)
		delay += rand.Float64() * float64(params.MaxJitter)
	}

	if ceil := float64(params.MaxDelay); delay > ceil {
		delay = ceil
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// ParamsBackOff adapts BackoffParameters to the cenkalti/backoff BackOff
// interface, so the package's delay policy can drive code written against
// that ecosystem. It tracks the attempt counter itself; Reset starts the
// sequence over.
//
// Not safe for concurrent use; give each retry loop its own instance.
type ParamsBackOff struct {
	Params BackoffParameters

	attempt int
}

// NewParamsBackOff returns a ParamsBackOff over the given parameters.
func NewParamsBackOff(params BackoffParameters) *ParamsBackOff {
	return &ParamsBackOff{Params: params}
}

// Reset restarts the attempt sequence.
func (b *ParamsBackOff) Reset() {
	b.attempt = 0
}

// NextBackOff returns the delay for the next attempt.
func (b *ParamsBackOff) NextBackOff() time.Duration {
	b.attempt++
	return ComputeDelay(b.attempt, b.Params)
}
