package httpretry

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// drainBody consumes and closes a response body that will not be surfaced to
// the caller. Every retried or discarded response must pass through here:
// the transport requires each body to be consumed exactly once, and an
// undrained body holds its connection out of the pool for the whole
// inter-attempt wait.
func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// readBody fully materializes and closes a response body.
func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// isJSONContent reports whether a Content-Type names a JSON body, including
// structured-syntax suffixes like application/problem+json.
func isJSONContent(contentType string) bool {
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "+json")
}

// sleepContext suspends for d, waking early with the context's error if the
// caller cancels. A non-positive d still observes cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
