// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
)

// MockLookup is a test double for [services.MetadataLookup].
//
// Titles are matched after [shared.NormalizeTitle]. Unknown titles are misses.
type MockLookup struct {
	mu      sync.Mutex
	movies  map[string]models.MovieMetadata
	errs    map[string]error
	calls   []string
	Blocked chan struct{}
}

// NewMockLookup creates a [MockLookup] that knows the given movies.
func NewMockLookup(movies ...models.MovieMetadata) *MockLookup {
	m := &MockLookup{movies: map[string]models.MovieMetadata{}, errs: map[string]error{}}
	for _, mv := range movies {
		m.movies[shared.NormalizeTitle(mv.Title)] = mv
	}
	return m
}

// FailWith makes lookups for title return err.
func (m *MockLookup) FailWith(title string, err error) *MockLookup {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[shared.NormalizeTitle(title)] = err
	return m
}

func (m *MockLookup) Lookup(ctx context.Context, title string) (*models.MovieMetadata, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.ErrInvalidInput
	}

	if m.Blocked != nil {
		select {
		case <-m.Blocked:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	key := shared.NormalizeTitle(title)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, title)

	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	if mv, ok := m.movies[key]; ok {
		return &mv, nil
	}
	return nil, shared.ErrLookupMiss
}

// Calls returns the titles looked up so far.
func (m *MockLookup) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
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

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
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
