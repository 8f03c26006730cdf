// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/desertthunder/porter/internal/models"
	"github.com/desertthunder/porter/internal/shared"
)

// MockBackend is a scripted test double for [services.Backend].
//
// Each call pops the next scripted result; once a script is exhausted the last entry repeats.
type MockBackend struct {
	mu sync.Mutex

	Status    []StatusResult
	Lists     []PlaylistsResult
	Refreshes []error

	StatusCalls   int
	PlaylistCalls int
	RefreshCalls  int

	// Calls records the order of backend calls ("status", "playlists", "refresh").
	Calls []string

	// Gate, when set, holds every AuthStatus call until it is closed or the context ends.
	Gate chan struct{}
}

// StatusResult is one scripted AuthStatus outcome.
type StatusResult struct {
	LoggedIn bool
	Err      error
}

// PlaylistsResult is one scripted Playlists outcome.
type PlaylistsResult struct {
	Playlists []models.Playlist
	Err       error
}

// Unauthorized is a [PlaylistsResult] carrying [shared.ErrUnauthorized].
func Unauthorized() PlaylistsResult {
	return PlaylistsResult{Err: shared.ErrUnauthorized}
}

// List builds a successful [PlaylistsResult].
func List(playlists ...models.Playlist) PlaylistsResult {
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return PlaylistsResult{Playlists: playlists}
}

func (m *MockBackend) AuthStatus(ctx context.Context) (bool, error) {
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "status")
	i := pick(m.StatusCalls, len(m.Status))
	m.StatusCalls++
	if i < 0 {
		return false, nil
	}
	return m.Status[i].LoggedIn, m.Status[i].Err
}

func (m *MockBackend) Playlists(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "playlists")
	i := pick(m.PlaylistCalls, len(m.Lists))
	m.PlaylistCalls++
	if i < 0 {
		return []models.Playlist{}, nil
	}
	return m.Lists[i].Playlists, m.Lists[i].Err
}

func (m *MockBackend) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "refresh")
	i := pick(m.RefreshCalls, len(m.Refreshes))
	m.RefreshCalls++
	if i < 0 {
		return nil
	}
	return m.Refreshes[i]
}

func pick(calls, n int) int {
	if n == 0 {
		return -1
	}
	if calls >= n {
		return n - 1
	}
	return calls
}

// MockTransferer records submitted selections for [services.Transferer].
type MockTransferer struct {
	mu         sync.Mutex
	Err        error
	Selections []models.Selection
}

func (m *MockTransferer) Transfer(ctx context.Context, selection models.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Selections = append(m.Selections, append(models.Selection(nil), selection...))
	return m.Err
}

// Calls returns the number of Transfer invocations.
func (m *MockTransferer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Selections)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
