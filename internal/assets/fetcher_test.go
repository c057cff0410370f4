package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangle = `{
  "vertexPositions":   [0,1,0, -1,-1,0, 1,-1,0],
  "vertexNormals":     [0,0,1, 0,0,1, 0,0,1],
  "vertexFrontcolors": [1,0,0, 0,1,0, 0,0,1],
  "vertexBackcolors":  [1,0,0, 0,1,0, 0,0,1]
}`

func TestSourceFetcherFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.json"), []byte(triangle), 0644))

	f := NewSourceFetcher(dir, time.Second)

	desc, err := f.Fetch(context.Background(), "tri.json")
	require.NoError(t, err)
	assert.Equal(t, 3, desc.VertexCount())

	// Second fetch is served from the cache.
	_, err = f.Fetch(context.Background(), "tri.json")
	require.NoError(t, err)
	hits, misses := f.Cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestSourceFetcherAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.json")
	require.NoError(t, os.WriteFile(path, []byte(triangle), 0644))

	f := NewSourceFetcher("/does/not/matter", time.Second)
	_, err := f.Fetch(context.Background(), path)
	assert.NoError(t, err)
}

func TestSourceFetcherMissingFile(t *testing.T) {
	f := NewSourceFetcher(t.TempDir(), time.Second)
	_, err := f.Fetch(context.Background(), "nope.json")
	assert.Error(t, err)
}

func TestSourceFetcherRetriesAfterParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	f := NewSourceFetcher(dir, time.Second)
	r := NewRegistry(newFakeDevice(), f)
	defer r.Close()

	first := r.Request("m.json")
	drainUntil(t, r, first, isFailed)
	assert.Zero(t, f.Cache.Len(), "unparsable bytes must not be cached")

	require.NoError(t, os.WriteFile(path, []byte(triangle), 0644))
	retry := r.Request("m.json")
	drainUntil(t, r, retry, isLoaded)
	assert.Equal(t, 1, f.Cache.Len())
}

func TestSourceFetcherHTTPRetriesAfterParseFailure(t *testing.T) {
	var body atomic.Value
	body.Store(`{"vertexPositions":[1]}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	defer srv.Close()

	f := NewSourceFetcher("", time.Second)
	url := srv.URL + "/m.json"

	_, err := f.Fetch(context.Background(), url)
	require.Error(t, err)

	body.Store(triangle)
	desc, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, 3, desc.VertexCount())
}

func TestReclaimDropsCachedSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.json"), []byte(triangle), 0644))

	f := NewSourceFetcher(dir, time.Second)
	r := NewRegistry(newFakeDevice(), f)
	defer r.Close()

	id := r.Request("tri.json")
	drainUntil(t, r, id, isLoaded)
	require.Equal(t, 1, f.Cache.Len())

	r.ReclaimUnreferenced(nil)
	assert.Zero(t, f.Cache.Len())
}

func TestSourceFetcherHTTPBodyTooLarge(t *testing.T) {
	old := maxSourceSize
	maxSourceSize = 16
	t.Cleanup(func() { maxSourceSize = old })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(triangle))
	}))
	defer srv.Close()

	f := NewSourceFetcher("", time.Second)
	_, err := f.Fetch(context.Background(), srv.URL+"/big.json")
	assert.ErrorContains(t, err, "exceeds limit")
	assert.Zero(t, f.Cache.Len())
}

func TestSourceFetcherHTTP(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/models/tri.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(triangle))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewSourceFetcher("", time.Second)

	desc, err := f.Fetch(context.Background(), srv.URL+"/models/tri.json")
	require.NoError(t, err)
	assert.Equal(t, 1, desc.TriangleCount())

	_, err = f.Fetch(context.Background(), srv.URL+"/models/tri.json")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second fetch should hit the cache")

	_, err = f.Fetch(context.Background(), srv.URL+"/models/missing.json")
	assert.ErrorContains(t, err, "404")
}

func TestSourceFetcherHTTPCanceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewSourceFetcher("", 5*time.Second)
	_, err := f.Fetch(ctx, srv.URL+"/slow.json")
	assert.Error(t, err)
}

func TestRegistryWithSourceFetcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.json"), []byte(triangle), 0644))

	r := NewRegistry(newFakeDevice(), NewSourceFetcher(dir, time.Second))
	defer r.Close()

	good := r.Request("tri.json")
	bad := r.Request("missing.json")
	drainUntil(t, r, good, isLoaded)
	drainUntil(t, r, bad, isFailed)

	res, ok := r.Mesh(r.Resolve(&good))
	require.True(t, ok)
	assert.Equal(t, int32(3), res.VertexCount)
}
