package httpretry

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Option configures an Engine.
type Option func(*Engine)

// WithTransport sets the transport the engine issues attempts through.
// Default: http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(e *Engine) {
		if rt != nil {
			e.transport = rt
		}
	}
}

// WithRetryConfig sets the budget and eligibility configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithBackoffParameters installs a default resolver built from the given
// delay-shaping parameters. It is shorthand for
// WithDelayResolver(NewBackoffResolver(params)).
func WithBackoffParameters(params BackoffParameters) Option {
	return func(e *Engine) {
		e.cfg.DelayResolver = NewBackoffResolver(params)
	}
}

// WithDelayResolver installs a custom delay resolution strategy.
func WithDelayResolver(resolver DelayResolver) Option {
	return func(e *Engine) {
		e.cfg.DelayResolver = resolver
	}
}

// WithLogger sets the logger for per-attempt debug events.
// Default: zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithInterceptor appends a request interceptor. Interceptors run in the
// order they were added, before every attempt.
func WithInterceptor(interceptor RequestInterceptor) Option {
	return func(e *Engine) {
		if interceptor != nil {
			e.interceptors = append(e.interceptors, interceptor)
		}
	}
}
