// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/sonata/internal/models"
)

// SongStore is an in-memory song catalog for exercising listing code.
//
// Calls can be held open with [SongStore.Gate] so tests control the order in which retrievals complete.
type SongStore struct {
	mu       sync.Mutex
	songs    []models.Song
	pageErr  error
	allErr   error
	gates    []chan struct{}
	contexts []context.Context
	calls    int
}

// NewSongStore creates a store holding songs in catalog order.
func NewSongStore(songs ...models.Song) *SongStore {
	return &SongStore{songs: songs}
}

// SetErrors makes later Page and All calls fail with the given errors. Nil restores success.
func (s *SongStore) SetErrors(pageErr, allErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageErr, s.allErr = pageErr, allErr
}

// Gate queues a gate for the next call that has not yet started. That call blocks until the returned
// channel is closed, regardless of its context.
func (s *SongStore) Gate() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	s.gates = append(s.gates, g)
	return g
}

// Calls returns how many Page and All calls have started.
func (s *SongStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Context returns the context passed to the nth call, counting from zero.
func (s *SongStore) Context(n int) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contexts[n]
}

func (s *SongStore) Page(ctx context.Context, after string, limit int) ([]models.Song, error) {
	s.enter(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageErr != nil {
		return nil, s.pageErr
	}

	start := 0
	if after != "" {
		start = len(s.songs)
		for i, song := range s.songs {
			if song.ID == after {
				start = i + 1
				break
			}
		}
	}

	end := min(start+limit, len(s.songs))
	return slices.Clone(s.songs[start:end]), nil
}

func (s *SongStore) All(ctx context.Context) ([]models.Song, error) {
	s.enter(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allErr != nil {
		return nil, s.allErr
	}
	return slices.Clone(s.songs), nil
}

func (s *SongStore) enter(ctx context.Context) {
	s.mu.Lock()
	s.calls++
	s.contexts = append(s.contexts, ctx)
	var gate chan struct{}
	if len(s.gates) > 0 {
		gate, s.gates = s.gates[0], s.gates[1:]
	}
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
}

// Songs builds songs with IDs "song-1".."song-n" and matching titles.
func Songs(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.Song{
			Entity: models.Entity{ID: fmt.Sprintf("song-%d", i+1)},
			Title:  fmt.Sprintf("Song %d", i+1),
			Artist: fmt.Sprintf("Artist %d", i+1),
		}
	}
	return songs
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

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
