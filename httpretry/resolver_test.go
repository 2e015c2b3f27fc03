package httpretry

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respWithStatus(code int, headers map[string]string) *http.Response {
	h := make(http.Header)
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{StatusCode: code, Header: h}
}

func TestNewBackoffResolver(t *testing.T) {
	params := BackoffParameters{
		BaseDelay:          100 * time.Millisecond,
		MaxDelay:           60 * time.Second,
		ExponentialBackoff: true,
		RespectRetryAfter:  true,
	}
	retryable := DefaultStatusCodes()

	tests := []struct {
		name      string
		params    BackoffParameters
		resp      *http.Response
		attempt   int
		wantAbort bool
		wantDelay time.Duration
	}{
		{
			name:      "given status outside retryable set, then aborts",
			params:    params,
			resp:      respWithStatus(http.StatusNotFound, nil),
			attempt:   1,
			wantAbort: true,
		},
		{
			name:      "given 429 with retry-after, then server delay wins regardless of attempt",
			params:    params,
			resp:      respWithStatus(http.StatusTooManyRequests, map[string]string{"Retry-After": "30"}),
			attempt:   4,
			wantDelay: 30 * time.Second,
		},
		{
			name:      "given 503 with retry-after, then server delay wins",
			params:    params,
			resp:      respWithStatus(http.StatusServiceUnavailable, map[string]string{"Retry-After": "2"}),
			attempt:   1,
			wantDelay: 2 * time.Second,
		},
		{
			name: "given retry-after above max delay, then aborts instead of waiting",
			params: BackoffParameters{
				BaseDelay:          100 * time.Millisecond,
				MaxDelay:           5 * time.Second,
				ExponentialBackoff: true,
				RespectRetryAfter:  true,
			},
			resp:      respWithStatus(http.StatusTooManyRequests, map[string]string{"Retry-After": "120"}),
			attempt:   1,
			wantAbort: true,
		},
		{
			name:      "given malformed retry-after, then falls back to computed backoff",
			params:    params,
			resp:      respWithStatus(http.StatusTooManyRequests, map[string]string{"Retry-After": "soon"}),
			attempt:   2,
			wantDelay: 200 * time.Millisecond,
		},
		{
			name:      "given retry-after on a non-rate-limit status, then header is ignored",
			params:    params,
			resp:      respWithStatus(http.StatusInternalServerError, map[string]string{"Retry-After": "30"}),
			attempt:   1,
			wantDelay: 100 * time.Millisecond,
		},
		{
			name: "given respect retry-after disabled, then header is ignored",
			params: BackoffParameters{
				BaseDelay:          100 * time.Millisecond,
				MaxDelay:           60 * time.Second,
				ExponentialBackoff: true,
			},
			resp:      respWithStatus(http.StatusTooManyRequests, map[string]string{"Retry-After": "30"}),
			attempt:   1,
			wantDelay: 100 * time.Millisecond,
		},
		{
			name:      "given retryable status without retry-after, then computed backoff applies",
			params:    params,
			resp:      respWithStatus(http.StatusBadGateway, nil),
			attempt:   3,
			wantDelay: 400 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewBackoffResolver(tt.params)

			decision := resolver(tt.resp, tt.attempt, retryable)

			if tt.wantAbort {
				assert.True(t, decision.IsAbort())
				return
			}
			require.False(t, decision.IsAbort())
			assert.Equal(t, tt.wantDelay, decision.Wait())
		})
	}
}

func TestNewBackoffResolver_Deterministic(t *testing.T) {
	// Retryability classification is a pure function of status and set.
	resolver := NewBackoffResolver(BackoffParameters{
		BaseDelay:          time.Millisecond,
		MaxDelay:           time.Second,
		ExponentialBackoff: true,
	})
	retryable := NewStatusCodes(500)

	for range 10 {
		assert.True(t, resolver(respWithStatus(404, nil), 1, retryable).IsAbort())
		assert.False(t, resolver(respWithStatus(500, nil), 1, retryable).IsAbort())
	}
}

func TestDelayDecision(t *testing.T) {
	assert.True(t, Abort().IsAbort())
	assert.Zero(t, Abort().Wait())

	assert.True(t, UseDefault().IsDefault())
	assert.Zero(t, UseDefault().Wait())

	d := UseDelay(3 * time.Second)
	assert.False(t, d.IsAbort())
	assert.False(t, d.IsDefault())
	assert.Equal(t, 3*time.Second, d.Wait())

	assert.Zero(t, UseDelay(-time.Second).Wait(), "negative delays clamp to zero")
}

func TestBackOffResolver(t *testing.T) {
	b := NewParamsBackOff(BackoffParameters{
		BaseDelay:          100 * time.Millisecond,
		MaxDelay:           time.Hour,
		ExponentialBackoff: true,
	})
	resolver := BackOffResolver(b)
	retryable := DefaultStatusCodes()

	for i, want := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	} {
		decision := resolver(respWithStatus(503, nil), i+1, retryable)
		require.False(t, decision.IsAbort())
		assert.Equal(t, want, decision.Wait(), "consultation %d", i+1)
	}

	assert.True(t, resolver(respWithStatus(404, nil), 4, retryable).IsAbort(),
		"non-retryable status aborts without advancing the strategy")
}
