package httpretry

import (
	"net/http"
)

// RequestInterceptor allows modification of requests before they are sent.
// Interceptors run before every attempt, not once per call, so per-attempt
// state such as short-lived auth tokens stays fresh across retries.
//
// Common use cases:
//   - Adding authentication headers (Bearer tokens, API keys)
//   - Injecting correlation IDs
//   - Adding custom headers based on request context
//
// Example:
//
//	engine := httpretry.New(
//	    httpretry.WithInterceptor(func(req *http.Request) error {
//	        req.Header.Set("Authorization", "Bearer "+token())
//	        return nil
//	    }),
//	)
//
// An interceptor error aborts the call before the attempt is issued.
type RequestInterceptor func(req *http.Request) error

func (e *Engine) intercept(req *http.Request) error {
	for _, interceptor := range e.interceptors {
		if err := interceptor(req); err != nil {
			return err
		}
	}
	return nil
}
