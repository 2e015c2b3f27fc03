package httpretry

import (
	"net/http"
	"time"
)

// Reasons carried on RetryDecision. A closed set, so manual-loop callers can
// switch on them.
const (
	// ReasonSuccess: the response status was below 400.
	ReasonSuccess = "success"

	// ReasonStatusNotRetryable: the status code is outside the retryable set.
	ReasonStatusNotRetryable = "status-not-retryable"

	// ReasonBudgetExhausted: the attempt budget is spent.
	ReasonBudgetExhausted = "budget-exhausted"

	// ReasonResolverAbort: the delay resolver signaled abort.
	ReasonResolverAbort = "resolver-abort"

	// ReasonRetryableStatus: a retryable status with budget remaining.
	ReasonRetryableStatus = "retryable-status"

	// ReasonTransportError: a non-timeout transport failure with budget
	// remaining.
	ReasonTransportError = "transport-error"

	// ReasonTimeoutDisabled: a timeout failure with RetryOnTimeout off.
	ReasonTimeoutDisabled = "timeout-not-retryable"

	// ReasonCanceled: the calling context was canceled.
	ReasonCanceled = "canceled"
)

// RetryDecision is the verdict for one completed attempt in a manual retry
// loop: whether to retry, how long to wait first, and why.
type RetryDecision struct {
	ShouldRetry bool
	Delay       time.Duration
	Reason      string
}

// Retrier applies the engine's budget, classification, and delay-resolution
// rules for callers that run the request/response cycle themselves:
//
//	r := httpretry.NewRetrier(httpretry.DefaultRetryConfig())
//	for {
//	    resp, err := client.Do(req)
//	    d := r.Next(resp, err)
//	    if !d.ShouldRetry {
//	        break
//	    }
//	    io.Copy(io.Discard, resp.Body)
//	    resp.Body.Close()
//	    time.Sleep(d.Delay)
//	}
//
// The caller owns body draining and the wait. A Retrier tracks one logical
// call; it is not safe for concurrent use. Reset reuses it for a new call.
type Retrier struct {
	cfg     RetryConfig
	attempt int
}

// NewRetrier returns a Retrier over the given configuration.
func NewRetrier(cfg RetryConfig) *Retrier {
	return &Retrier{cfg: cfg.normalized()}
}

// Attempt returns the number of completed attempts.
func (r *Retrier) Attempt() int {
	return r.attempt
}

// Reset starts a new logical call.
func (r *Retrier) Reset() {
	r.attempt = 0
}

// Next records one completed attempt and decides whether to retry. Exactly
// one of resp and err should be set, mirroring a transport call's result.
func (r *Retrier) Next(resp *http.Response, err error) RetryDecision {
	r.attempt++

	if err != nil {
		switch {
		case isCanceled(err):
			return RetryDecision{Reason: ReasonCanceled}
		case isTimeout(err) && !r.cfg.RetryOnTimeout:
			return RetryDecision{Reason: ReasonTimeoutDisabled}
		case r.attempt >= r.cfg.MaxAttempts:
			return RetryDecision{Reason: ReasonBudgetExhausted}
		default:
			return RetryDecision{ShouldRetry: true, Reason: ReasonTransportError}
		}
	}

	if resp == nil || resp.StatusCode < 400 {
		return RetryDecision{Reason: ReasonSuccess}
	}
	if !r.cfg.StatusCodes.Contains(resp.StatusCode) {
		return RetryDecision{Reason: ReasonStatusNotRetryable}
	}
	if r.attempt >= r.cfg.MaxAttempts {
		return RetryDecision{Reason: ReasonBudgetExhausted}
	}

	decision := r.cfg.DelayResolver(resp, r.attempt, r.cfg.StatusCodes)
	if decision.IsAbort() {
		return RetryDecision{Reason: ReasonResolverAbort}
	}
	return RetryDecision{ShouldRetry: true, Delay: decision.Wait(), Reason: ReasonRetryableStatus}
}
