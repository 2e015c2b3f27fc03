package httpretry

import (
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// Outcome is the terminal result of one logical request. When Send returns a
// nil error, exactly one of the three arms is non-nil; callers check a single
// discriminant and narrow safely:
//
//	outcome, err := engine.Send(ctx, req, nil)
//	switch {
//	case err != nil:
//	    // transport failure (or cancellation), surfaced as an error
//	case outcome.Success != nil:
//	    // 2xx/3xx
//	case outcome.Failure != nil:
//	    // terminal HTTP error response, carried as data
//	case outcome.InternalError != nil:
//	    // transport failure, carried as data (ReturnInternalError)
//	}
type Outcome struct {
	// Success holds the materialized response for status codes below 400.
	Success *Payload

	// Failure holds the materialized response for a terminal HTTP failure:
	// a non-retryable status, an exhausted budget, or a resolver abort.
	Failure *Payload

	// InternalError holds a transport-level terminal failure when the call
	// opted into ReturnInternalError.
	InternalError *InternalError
}

// OK reports whether the outcome is a success.
func (o *Outcome) OK() bool {
	return o != nil && o.Success != nil
}

// StatusCode returns the HTTP status of whichever payload arm is populated,
// or 0 for internal errors.
func (o *Outcome) StatusCode() int {
	switch {
	case o == nil:
		return 0
	case o.Success != nil:
		return o.Success.StatusCode
	case o.Failure != nil:
		return o.Failure.StatusCode
	default:
		return 0
	}
}

// Payload is a materialized HTTP response: status, headers, and body.
type Payload struct {
	// StatusCode is the response status code.
	StatusCode int

	// Header is the response header map.
	Header http.Header

	// Bytes is the fully read body. Nil for SendStream successes.
	Bytes []byte

	// JSON is the decoded body when the response was materialized as JSON:
	// the caller's Decode/DecodeError target if one was given, otherwise a
	// generic value.
	JSON any

	// Stream is the unconsumed body handle for SendStream successes. The
	// caller owns it and must close it.
	Stream io.ReadCloser
}

// String returns the body as text.
func (p *Payload) String() string {
	return string(p.Bytes)
}

// Decode unmarshals the body bytes into v.
func (p *Payload) Decode(v any) error {
	return json.Unmarshal(p.Bytes, v)
}

// InternalError is a transport-level terminal failure: the attempt budget
// was spent on connection errors, or a timeout occurred with timeout retries
// disabled, or the context was canceled. It wraps the original cause and
// carries the request label for correlation.
type InternalError struct {
	// Cause is the underlying transport error.
	Cause error

	// Label is the request label attached at call time.
	Label string

	// Timeout records whether the failure was timeout-classified.
	Timeout bool
}

func (e *InternalError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("httpretry: request %s: %v", e.Label, e.Cause)
	}
	return fmt.Sprintf("httpretry: %v", e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// BodyParseError reports a response body that claimed to be JSON but failed
// to parse. It is a body-materialization failure, distinct from both HTTP
// failures (carried in Outcome) and transport failures (InternalError), so
// callers doing programmatic recovery can tell the three apart. The raw body
// text is preserved.
type BodyParseError struct {
	// Raw is the body text that failed to parse.
	Raw string

	// Label is the request label attached at call time.
	Label string

	// Cause is the decoder's error.
	Cause error
}

func (e *BodyParseError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("httpretry: request %s: unparsable JSON body: %v", e.Label, e.Cause)
	}
	return fmt.Sprintf("httpretry: unparsable JSON body: %v", e.Cause)
}

func (e *BodyParseError) Unwrap() error {
	return e.Cause
}
