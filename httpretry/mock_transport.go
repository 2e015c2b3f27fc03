package httpretry

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// MockTransport provides a configurable http.RoundTripper for testing retry
// behavior. Responses can be scripted in order (one per attempt) with
// Enqueue, or stubbed uniformly with StubResponse/StubError.
type MockTransport struct {
	mu          sync.Mutex
	queue       []scripted
	defaultResp *http.Response
	defaultErr  error
	requests    []*http.Request
}

type scripted struct {
	resp *http.Response
	err  error
}

// NewMockTransport creates a new MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Enqueue scripts the next response in order. Each queued entry is consumed
// by exactly one attempt; once the queue is empty the default stub applies.
func (m *MockTransport) Enqueue(statusCode int, body string) *MockTransport {
	return m.EnqueueResponse(makeResponse(statusCode, body, nil))
}

// EnqueueWithHeader scripts the next response with the given headers.
func (m *MockTransport) EnqueueWithHeader(statusCode int, body string, header http.Header) *MockTransport {
	return m.EnqueueResponse(makeResponse(statusCode, body, header))
}

// EnqueueResponse scripts a caller-built response. The response is returned
// as-is, not cloned, so callers can observe its body handle (e.g. to verify
// it was drained).
func (m *MockTransport) EnqueueResponse(resp *http.Response) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripted{resp: resp})
	return m
}

// EnqueueError scripts the next attempt to fail with err.
func (m *MockTransport) EnqueueError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripted{err: err})
	return m
}

// StubResponse makes every unscripted attempt return the given response.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = makeResponse(statusCode, body, nil)
	return m
}

// StubError makes every unscripted attempt fail with err.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultErr = err
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		if next.err != nil {
			return nil, next.err
		}
		return next.resp, nil
	}

	if m.defaultErr != nil {
		return nil, m.defaultErr
	}
	if m.defaultResp != nil {
		return cloneResponse(m.defaultResp), nil
	}

	return nil, errors.New("httpretry: no stub for request " + req.Method + " " + req.URL.String())
}

// Requests returns all requests made through this transport.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of attempts issued.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reset clears all recorded requests, scripts, and stubs.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.queue = nil
	m.defaultResp = nil
	m.defaultErr = nil
}

func makeResponse(statusCode int, body string, header http.Header) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func cloneResponse(resp *http.Response) *http.Response {
	var bodyBytes []byte
	if resp.Body != nil {
		bodyBytes, _ = io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return &http.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       io.NopCloser(bytes.NewBuffer(bodyBytes)),
		Header:     resp.Header.Clone(),
	}
}
