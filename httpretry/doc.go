// Package httpretry is a retry decision layer that sits in front of an
// http.RoundTripper and wraps a single outbound request in a retry loop.
//
// The engine classifies each attempt's result as success, retryable failure,
// or terminal failure, resolves the wait between attempts (computed backoff
// or a server-directed Retry-After header), and returns a strict two-outcome
// result: HTTP error responses are ordinary data, not errors.
//
// # Quick Start
//
//	engine := httpretry.New(
//	    httpretry.WithRetryConfig(httpretry.DefaultRetryConfig()),
//	)
//
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
//	outcome, err := engine.Send(ctx, req, nil)
//	if err != nil {
//	    return err // transport failure after the budget was spent
//	}
//	if outcome.OK() {
//	    fmt.Println(outcome.Success.String())
//	} else {
//	    fmt.Println(outcome.Failure.StatusCode)
//	}
//
// # Delay Resolution
//
// The wait between attempts is computed by a pluggable DelayResolver. The
// default resolver, NewBackoffResolver, honors Retry-After headers on 429 and
// 503 responses (within a configurable upper bound) and otherwise falls back
// to jittered exponential or linear backoff. Any
// github.com/cenkalti/backoff/v5 strategy can drive the engine through
// BackOffResolver, and the package's own backoff policy interoperates the
// other way via ParamsBackOff.
//
// # Outcomes and Errors
//
// Send returns exactly one of three terminal arms inside Outcome: Success,
// Failure (terminal HTTP error response), or InternalError (transport
// failure, when RequestParams.ReturnInternalError is set). Transport
// failures are otherwise returned as a typed *InternalError from Send
// itself. JSON bodies that fail to parse surface as *BodyParseError when
// RequestParams.SafeParseJSON is set.
//
// # Manual Loops
//
// Callers that need to own the loop can use Retrier, which applies the same
// budget, classification, and delay resolution and returns a RetryDecision
// per completed attempt.
package httpretry
