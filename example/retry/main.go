// Command retry demonstrates the httpretry engine against a flaky local
// server: two 503 responses with a Retry-After hint, then success.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/backstop-go/httpretry"
)

func main() {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"recovered"}`)
	}))
	defer server.Close()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	engine := httpretry.New(
		httpretry.WithRetryConfig(httpretry.DefaultRetryConfig()),
		httpretry.WithBackoffParameters(httpretry.BackoffParameters{
			BaseDelay:          200 * time.Millisecond,
			MaxDelay:           5 * time.Second,
			MaxJitter:          50 * time.Millisecond,
			ExponentialBackoff: true,
			RespectRetryAfter:  true,
		}),
		httpretry.WithLogger(logger),
	)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	var body struct {
		Status string `json:"status"`
	}
	outcome, err := engine.Send(context.Background(), req, &httpretry.RequestParams{
		Decode:       &body,
		RequestLabel: "demo-1",
	})
	if err != nil {
		log.Fatalf("send: %v", err)
	}

	if outcome.OK() {
		fmt.Printf("success after %d hits: %s\n", hits.Load(), body.Status)
	} else {
		fmt.Printf("terminal failure: %d %s\n", outcome.Failure.StatusCode, outcome.Failure.String())
	}
}
