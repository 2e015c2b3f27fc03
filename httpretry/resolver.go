package httpretry

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type delayKind int

const (
	kindDelay delayKind = iota
	kindDefault
	kindAbort
)

// DelayDecision is a resolver's verdict for one retryable response. It is a
// tagged value with three states rather than an overloaded number, so "wait
// zero", "no preference", and "stop retrying" cannot be confused:
//
//   - UseDelay(d): wait d, then retry
//   - UseDefault(): no preference; the engine retries with no explicit wait
//   - Abort(): stop retrying and treat the current response as terminal
type DelayDecision struct {
	kind  delayKind
	delay time.Duration
}

// UseDelay directs the engine to wait d before the next attempt. Negative
// values are treated as zero.
func UseDelay(d time.Duration) DelayDecision {
	if d < 0 {
		d = 0
	}
	return DelayDecision{kind: kindDelay, delay: d}
}

// UseDefault defers to the engine's fallback, an immediate retry.
func UseDefault() DelayDecision {
	return DelayDecision{kind: kindDefault}
}

// Abort stops the retry loop; the current response becomes the terminal
// failure.
func Abort() DelayDecision {
	return DelayDecision{kind: kindAbort}
}

// IsAbort reports whether the decision ends the retry loop.
func (d DelayDecision) IsAbort() bool {
	return d.kind == kindAbort
}

// IsDefault reports whether the resolver expressed no preference.
func (d DelayDecision) IsDefault() bool {
	return d.kind == kindDefault
}

// Wait returns the resolved delay. It is zero for UseDefault and Abort
// decisions.
func (d DelayDecision) Wait() time.Duration {
	if d.kind != kindDelay {
		return 0
	}
	return d.delay
}

// A DelayResolver decides, for one retryable-looking response, whether to
// retry and how long to wait. The engine consults it only for responses
// whose status code it has not already classified as success, and only while
// attempt budget remains. Transport-level failures never reach the resolver.
//
// attempt is 1-indexed and names the attempt that produced resp.
//
// Resolvers must be safe for concurrent use if the owning Engine is shared
// across goroutines.
type DelayResolver func(resp *http.Response, attempt int, retryable StatusCodes) DelayDecision

// NewBackoffResolver returns the default delay resolution strategy:
//
//  1. A status code outside the retryable set aborts.
//  2. On 429 and 503, when params.RespectRetryAfter is set and the response
//     carries a Retry-After header, the server-directed delay wins — it
//     reflects authoritative server state such as a rate-limit reset. A
//     mandated wait above params.MaxDelay aborts instead: an unbounded
//     Retry-After must not stall the caller indefinitely. A malformed header
//     falls through to computed backoff rather than aborting.
//  3. Otherwise the delay is ComputeDelay(attempt, params).
func NewBackoffResolver(params BackoffParameters) DelayResolver {
	return func(resp *http.Response, attempt int, retryable StatusCodes) DelayDecision {
		if !retryable.Contains(resp.StatusCode) {
			return Abort()
		}

		if params.RespectRetryAfter && statusWantsRetryAfter(resp.StatusCode) {
			if value := resp.Header.Get("Retry-After"); value != "" {
				if delay, err := ParseRetryAfter(value); err == nil {
					if delay > params.MaxDelay {
						return Abort()
					}
					return UseDelay(delay)
				}
			}
		}

		return UseDelay(ComputeDelay(attempt, params))
	}
}

// statusWantsRetryAfter reports whether the status code conventionally
// carries a meaningful Retry-After header.
func statusWantsRetryAfter(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// BackOffResolver adapts any cenkalti/backoff strategy into a DelayResolver,
// so strategies from that ecosystem (or ParamsBackOff) can drive the engine:
//
//	engine := httpretry.New(
//	    httpretry.WithDelayResolver(
//	        httpretry.BackOffResolver(httpretry.NewParamsBackOff(params)),
//	    ),
//	)
//
// The strategy's own state advances once per consulted response; a
// backoff.Stop verdict aborts the loop. The returned resolver is stateful
// and must not be shared between concurrent calls.
func BackOffResolver(b backoff.BackOff) DelayResolver {
	return func(resp *http.Response, _ int, retryable StatusCodes) DelayDecision {
		if !retryable.Contains(resp.StatusCode) {
			return Abort()
		}
		next := b.NextBackOff()
		if next == backoff.Stop {
			return Abort()
		}
		return UseDelay(next)
	}
}
