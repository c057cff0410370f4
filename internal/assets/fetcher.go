package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Faultbox/meshstage/pkg/formats"
)

// Fetcher resolves a source identifier into a parsed mesh description.
// Network and parse failures are both reported as a plain error.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*formats.MeshDescription, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, source string) (*formats.MeshDescription, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, source string) (*formats.MeshDescription, error) {
	return f(ctx, source)
}

// maxSourceSize bounds a single downloaded or read mesh file.
var maxSourceSize int64 = 64 << 20

// Forgetter is implemented by fetchers that keep per-source state. The
// registry calls Forget when the mesh loaded from source is reclaimed.
type Forgetter interface {
	Forget(source string)
}

// SourceFetcher loads http(s) URLs and filesystem paths. Relative paths are
// resolved against BaseDir.
type SourceFetcher struct {
	BaseDir string
	Client  *http.Client
	Cache   *Cache
}

// NewSourceFetcher creates a fetcher with its own cache and an HTTP client
// using the given per-request timeout.
func NewSourceFetcher(baseDir string, timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{
		BaseDir: baseDir,
		Client:  &http.Client{Timeout: timeout},
		Cache:   NewCache(),
	}
}

// Fetch reads source (using the cache when possible) and parses it. Only
// bytes that parse are cached, so a failed source is read again on retry.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) (*formats.MeshDescription, error) {
	data, cached := f.cached(source)
	if !cached {
		var err error
		if isURL(source) {
			data, err = f.download(ctx, source)
		} else {
			data, err = f.read(source)
		}
		if err != nil {
			return nil, err
		}
	}

	desc, err := formats.ParseMesh(data, formats.MeshFormatFromPath(source))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	if !cached && f.Cache != nil {
		f.Cache.Set(source, data)
	}
	return desc, nil
}

// Forget drops the cached bytes of source.
func (f *SourceFetcher) Forget(source string) {
	if f.Cache != nil {
		f.Cache.Delete(source)
	}
}

func (f *SourceFetcher) cached(source string) ([]byte, bool) {
	if f.Cache == nil {
		return nil, false
	}
	return f.Cache.Get(source)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (f *SourceFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > maxSourceSize {
		return nil, fmt.Errorf("%s: body exceeds limit of %d bytes", url, maxSourceSize)
	}
	return data, nil
}

func (f *SourceFetcher) read(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && f.BaseDir != "" {
		path = filepath.Join(f.BaseDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSourceSize {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit", path, info.Size())
	}
	return os.ReadFile(path)
}
