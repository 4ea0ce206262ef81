package nowplaying

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenation/wavenation/internal/logger"
)

func newClient(url string) *HTTPClient {
	return NewHTTPClient(url, logger.Nop(), WithRetry(3, time.Millisecond))
}

func TestHTTPClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"track":"Golden","artist":"Jill Scott","cover":"https://img/1.jpg"}`))
	}))
	defer server.Close()

	track, err := newClient(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Track{Title: "Golden", Artist: "Jill Scott", Cover: "https://img/1.jpg"}, track)
}

func TestHTTPClient_Fetch_AlternateFieldNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Golden","artist":42,"artwork":"a.png"}`))
	}))
	defer server.Close()

	track, err := newClient(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Golden", track.Title)
	assert.Equal(t, "", track.Artist, "non-string fields are ignored")
	assert.Equal(t, "a.png", track.Cover)
}

func TestHTTPClient_Fetch_NullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	track, err := newClient(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, track)
}

func TestHTTPClient_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"track":"T","artist":"A"}`))
	}))
	defer server.Close()

	track, err := newClient(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T", track.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_Fetch_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_Fetch_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_Fetch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPClient_Fetch_ContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewHTTPClient(server.URL, logger.Nop(), WithRetry(3, time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := client.Fetch(ctx)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after cancellation")
	}
}

func TestHTTPClient_Fetch_NotConfigured(t *testing.T) {
	_, err := NewHTTPClient("", logger.Nop()).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHTTPClient_Defaults(t *testing.T) {
	c := NewHTTPClient("http://x", logger.Nop())
	assert.Equal(t, DefaultAttempts, c.attempts)
	assert.Equal(t, DefaultBackoff, c.backoff)
	assert.Equal(t, "http://x", c.URL())
}

func TestMockClient(t *testing.T) {
	m := NewMockClient(WithTrack(&Track{Title: "T"}))
	track, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T", track.Title)
	assert.Equal(t, 1, m.Calls())

	boom := errors.New("boom")
	m = NewMockClient(WithFetchError(boom))
	_, err = m.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
}
