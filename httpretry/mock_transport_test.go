package httpretry

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport_QueueOrder(t *testing.T) {
	m := NewMockTransport().
		Enqueue(500, "first").
		EnqueueError(errors.New("second")).
		StubResponse(200, "default")
	req := newGetRequest(t)

	resp, err := m.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	_, err = m.RoundTrip(req)
	require.Error(t, err)

	resp, err = m.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "default", string(b))

	assert.Equal(t, 3, m.RequestCount())
	assert.Len(t, m.Requests(), 3)
}

func TestMockTransport_NoStub(t *testing.T) {
	m := NewMockTransport()

	_, err := m.RoundTrip(newGetRequest(t))

	require.Error(t, err)
}

func TestMockTransport_DefaultResponseIsReusable(t *testing.T) {
	m := NewMockTransport().StubResponse(200, "body")
	req := newGetRequest(t)

	for range 3 {
		resp, err := m.RoundTrip(req)
		require.NoError(t, err)
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, "body", string(b))
	}
}

func TestMockTransport_Reset(t *testing.T) {
	m := NewMockTransport().Enqueue(200, "ok")
	_, err := m.RoundTrip(newGetRequest(t))
	require.NoError(t, err)

	m.Reset()

	assert.Equal(t, 0, m.RequestCount())
	_, err = m.RoundTrip(newGetRequest(t))
	assert.Error(t, err)
}

func TestMockTransport_Headers(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "30")
	m := NewMockTransport().EnqueueWithHeader(429, "limited", header)

	resp, err := m.RoundTrip(newGetRequest(t))

	require.NoError(t, err)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))
}
