package httpretry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Engine drives one logical request through sequential attempts until a
// terminal outcome: success, terminal HTTP failure, or transport failure.
// Attempts of a single call never overlap; the only suspension points are
// the transport call itself and the inter-attempt wait, and the wait always
// observes context cancellation.
//
// An Engine is immutable after New and safe for concurrent use by multiple
// goroutines, provided its DelayResolver is (the resolvers returned by
// NewBackoffResolver are; BackOffResolver adapters are not).
type Engine struct {
	transport    http.RoundTripper
	cfg          RetryConfig
	interceptors []RequestInterceptor
	logger       zerolog.Logger
	metrics      *metrics
}

// New creates an Engine with the given options. Without options it uses
// http.DefaultTransport, DefaultRetryConfig, and the default
// jittered-exponential resolver.
func New(opts ...Option) *Engine {
	e := &Engine{
		transport: http.DefaultTransport,
		cfg:       DefaultRetryConfig(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg = e.cfg.normalized()

	if m, err := newMetrics(otel.Meter(scope)); err == nil {
		e.metrics = m
	}
	return e
}

// Send issues req through the retry loop and returns the terminal outcome
// with the success or failure body fully materialized. params may be nil.
//
// The returned error is non-nil only for exceptional conditions: transport
// failure after the budget is spent (unless params.ReturnInternalError),
// context cancellation, or an unparsable JSON body. Terminal HTTP error
// responses are data, returned in Outcome.Failure with a nil error.
func (e *Engine) Send(ctx context.Context, req *http.Request, params *RequestParams) (*Outcome, error) {
	return e.send(ctx, req, params, false)
}

// SendStream is Send, except a success body is returned unconsumed on
// Payload.Stream and the caller becomes responsible for draining and closing
// it. Error-path bodies are still materialized by the engine: a retried or
// terminal error response must always be drained to release its connection.
func (e *Engine) SendStream(ctx context.Context, req *http.Request, params *RequestParams) (*Outcome, error) {
	return e.send(ctx, req, params, true)
}

func (e *Engine) send(ctx context.Context, req *http.Request, params *RequestParams, stream bool) (*Outcome, error) {
	if params == nil {
		params = &RequestParams{}
	}
	label := params.RequestLabel
	if label == "" {
		label = uuid.NewString()
	}

	// Snapshot a non-replayable request body so later attempts can re-issue
	// it. Requests built with http.NewRequest carry GetBody already.
	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, &InternalError{Cause: err, Label: label}
		}
		req.Body.Close()
		bodyBytes = b
	}

	span := trace.SpanFromContext(ctx)
	start := time.Now()
	attempt := 0

	for {
		attempt++

		cur := e.cloneRequest(ctx, req, bodyBytes)
		if err := e.intercept(cur); err != nil {
			return nil, &InternalError{Cause: err, Label: label}
		}

		resp, err := e.transport.RoundTrip(cur)
		if err != nil {
			if isCanceled(err) || ctx.Err() != nil {
				return nil, &InternalError{Cause: err, Label: label}
			}
			timeout := isTimeout(err)
			if attempt >= e.cfg.MaxAttempts || (timeout && !e.cfg.RetryOnTimeout) {
				e.metrics.recordRetryExhausted(ctx)
				e.metrics.recordCallDuration(ctx, time.Since(start))
				ie := &InternalError{Cause: err, Label: label, Timeout: timeout}
				if params.ReturnInternalError {
					return &Outcome{InternalError: ie}, nil
				}
				return nil, ie
			}
			// Transport failures retry immediately; the resolver only sees
			// responses.
			e.noteRetry(ctx, span, label, attempt, 0, err, 0)
			continue
		}

		if resp.StatusCode < 400 {
			e.metrics.recordCallDuration(ctx, time.Since(start))
			return e.successOutcome(resp, params, label, stream)
		}

		terminal := !e.cfg.StatusCodes.Contains(resp.StatusCode) || attempt >= e.cfg.MaxAttempts
		var decision DelayDecision
		if !terminal {
			decision = e.cfg.DelayResolver(resp, attempt, e.cfg.StatusCodes)
			terminal = decision.IsAbort()
		}
		if terminal {
			if attempt >= e.cfg.MaxAttempts {
				e.metrics.recordRetryExhausted(ctx)
			}
			e.metrics.recordCallDuration(ctx, time.Since(start))
			return e.failureOutcome(resp, params, label)
		}

		// Release the connection back to the pool before waiting.
		drainBody(resp)

		delay := decision.Wait()
		e.noteRetry(ctx, span, label, attempt, resp.StatusCode, nil, delay)
		if err := sleepContext(ctx, delay); err != nil {
			return nil, &InternalError{Cause: err, Label: label}
		}
	}
}

// cloneRequest creates a copy of the request with a fresh body for one
// attempt.
func (e *Engine) cloneRequest(ctx context.Context, req *http.Request, bodyBytes []byte) *http.Request {
	clone := req.Clone(ctx)

	if bodyBytes != nil {
		clone.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		clone.ContentLength = int64(len(bodyBytes))
	} else if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			clone.Body = body
		} else {
			clone.Body = req.Body
		}
	}

	return clone
}

// successOutcome materializes a sub-400 response per the request params.
func (e *Engine) successOutcome(resp *http.Response, params *RequestParams, label string, stream bool) (*Outcome, error) {
	payload := &Payload{StatusCode: resp.StatusCode, Header: resp.Header}

	if stream {
		payload.Stream = resp.Body
		return &Outcome{Success: payload}, nil
	}

	b, err := readBody(resp)
	if err != nil {
		return nil, &InternalError{Cause: err, Label: label}
	}
	payload.Bytes = b

	if params.BlobBody {
		return &Outcome{Success: payload}, nil
	}

	if isJSONContent(resp.Header.Get("Content-Type")) && len(b) > 0 {
		target := params.Decode
		if target == nil {
			target = &payload.JSON
		}
		if err := json.Unmarshal(b, target); err != nil {
			if params.SafeParseJSON {
				return nil, &BodyParseError{Raw: string(b), Label: label, Cause: err}
			}
			return nil, fmt.Errorf("httpretry: decode response body: %w", err)
		}
		if params.Decode != nil {
			payload.JSON = params.Decode
		}
	}

	return &Outcome{Success: payload}, nil
}

// failureOutcome materializes a terminal HTTP failure. The body is always
// fully read; JSON decoding is best effort and never masks the failure.
func (e *Engine) failureOutcome(resp *http.Response, params *RequestParams, label string) (*Outcome, error) {
	b, err := readBody(resp)
	if err != nil {
		return nil, &InternalError{Cause: err, Label: label}
	}
	payload := &Payload{StatusCode: resp.StatusCode, Header: resp.Header, Bytes: b}

	if isJSONContent(resp.Header.Get("Content-Type")) && len(b) > 0 {
		if params.DecodeError != nil {
			if json.Unmarshal(b, params.DecodeError) == nil {
				payload.JSON = params.DecodeError
			}
		} else {
			var v any
			if json.Unmarshal(b, &v) == nil {
				payload.JSON = v
			}
		}
	}

	e.logger.Debug().
		Str("label", label).
		Int("status", payload.StatusCode).
		Msg("terminal http failure")

	return &Outcome{Failure: payload}, nil
}

// noteRetry records one retry on the logger, the span, and the metrics.
func (e *Engine) noteRetry(
	ctx context.Context,
	span trace.Span,
	label string,
	attempt int,
	status int,
	cause error,
	delay time.Duration,
) {
	e.metrics.recordRetryAttempt(ctx, attempt)

	evt := e.logger.Debug().
		Str("label", label).
		Int("attempt", attempt).
		Dur("delay", delay)
	if cause != nil {
		evt = evt.Err(cause)
	} else {
		evt = evt.Int("status", status)
	}
	evt.Msg("retrying request")

	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int("retry.attempt", attempt),
		attribute.Int64("retry.delay_ms", delay.Milliseconds()),
	}
	if cause != nil {
		attrs = append(attrs, attribute.String("retry.reason", "transport_error"))
		span.RecordError(cause)
	} else {
		attrs = append(attrs, attribute.Int("retry.status_code", status))
	}
	span.AddEvent("http.retry", trace.WithAttributes(attrs...))
}
