package nowplaying

import (
	"context"
	"sync/atomic"
)

// MockClient is a mock provider client for testing
type MockClient struct {
	track    *Track
	fetchErr error
	url      string
	calls    atomic.Int32
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithTrack sets the track to return
func WithTrack(track *Track) MockOption {
	return func(m *MockClient) {
		m.track = track
	}
}

// WithFetchError sets an error to return from Fetch
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// NewMockClient creates a new mock client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{url: "http://mock-nowplaying.local"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fetch returns the configured track or error
func (m *MockClient) Fetch(ctx context.Context) (*Track, error) {
	m.calls.Add(1)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.track, nil
}

// URL returns the mock URL
func (m *MockClient) URL() string {
	return m.url
}

// Calls reports how many times Fetch was called
func (m *MockClient) Calls() int {
	return int(m.calls.Load())
}
