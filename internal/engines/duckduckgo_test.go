package engines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgResultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result results_links web-result result--ad">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fads.example.com%2F">Sponsored</a>
    </h2>
  </div>
  <div class="result results_links web-result">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=abc123">The Go Programming Language</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">Go is an open source programming language.</a>
  </div>
  <div class="result results_links web-result">
    <h2 class="result__title">
      <a class="result__a" href="https://go.dev/doc/">Documentation</a>
    </h2>
    <a class="result__snippet" href="https://go.dev/doc/">Learn how to use Go.</a>
  </div>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(ddgResultsPage))
	}))
	defer server.Close()

	engine := NewDuckDuckGoEngine(server.URL, 5*time.Second)
	results, err := engine.Search(context.Background(), "golang", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, "/html/", gotPath)
	assert.Equal(t, "golang", gotQuery)

	// the ad block is skipped, the redirect is unwrapped
	require.Len(t, results, 2)
	assert.Equal(t, "The Go Programming Language", results[0].Title)
	assert.Equal(t, "https://go.dev/", results[0].URL)
	assert.Equal(t, "Go is an open source programming language.", results[0].Description)
	assert.Equal(t, []string{"duckduckgo"}, results[0].Engines)
	assert.Equal(t, "https://go.dev/doc/", results[1].URL)
}

func TestDuckDuckGoPageOffset(t *testing.T) {
	var gotOffset string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOffset = r.URL.Query().Get("s")
		w.Write([]byte(ddgResultsPage))
	}))
	defer server.Close()

	engine := NewDuckDuckGoEngine(server.URL, 5*time.Second)

	_, err := engine.Search(context.Background(), "golang", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, gotOffset, "first page must not send an offset")

	_, err = engine.Search(context.Background(), "golang", 3, 20)
	require.NoError(t, err)
	assert.Equal(t, "60", gotOffset)
}

func TestDuckDuckGoMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddgResultsPage))
	}))
	defer server.Close()

	engine := NewDuckDuckGoEngine(server.URL, 5*time.Second)
	results, err := engine.Search(context.Background(), "golang", 1, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDuckDuckGoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(ddgResultsPage))
	}))
	defer server.Close()

	engine := NewDuckDuckGoEngine(server.URL, 5*time.Second)
	results, err := engine.Search(context.Background(), "golang", 1, 20)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDuckDuckGoClientErrorsArePermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	engine := NewDuckDuckGoEngine(server.URL, 5*time.Second)
	_, err := engine.Search(context.Background(), "golang", 1, 20)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"redirect", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&rut=abc", "https://go.dev/"},
		{"direct", "https://go.dev/doc/", "https://go.dev/doc/"},
		{"relative", "/html/?q=next", ""},
		{"garbage", "://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapRedirect(tt.href))
		})
	}
}
