// Package resource fetches and decodes the image resources referenced by the
// pipeline: camera frames and segmentation mask rasters.
package resource

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// Fetcher resolves a resource reference to a decoded image.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// FileFetcher loads resources from the local filesystem.
type FileFetcher struct{}

// Fetch opens and decodes the image at the given path.
func (FileFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

// HTTPFetcher loads resources over HTTP(S).
type HTTPFetcher struct {
	// Client used for requests; http.DefaultClient when nil.
	Client *http.Client
}

// Fetch downloads and decodes the image at the given URL.
func (h HTTPFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", ref, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", ref, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

// Mux dispatches by reference shape: http(s) URLs go to HTTP, everything
// else is treated as a local file path.
type Mux struct {
	HTTP Fetcher
	File Fetcher
}

// NewMux returns a Mux with the default HTTP and file fetchers.
func NewMux() *Mux {
	return &Mux{
		HTTP: HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}},
		File: FileFetcher{},
	}
}

// Fetch dispatches to the fetcher matching the reference.
func (m *Mux) Fetch(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return m.HTTP.Fetch(ctx, ref)
	}
	return m.File.Fetch(ctx, ref)
}
