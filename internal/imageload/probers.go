package imageload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"decor-gallery/internal/imagepath"
)

const sniffLen = 512

// Probe errors
var (
	ErrProbeFailed = errors.New("image probe failed")
	ErrNotAnImage  = errors.New("resource is not an image")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
	".avif": true,
}

// HTTPProber loads candidates from the site origin over HTTP
type HTTPProber struct {
	client *http.Client
	origin *url.URL
}

// NewHTTPProber creates a prober resolving candidates against origin
func NewHTTPProber(origin string, timeout time.Duration) (*HTTPProber, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid probe origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("probe origin must be http or https, got %q", u.Scheme)
	}

	return &HTTPProber{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		origin: u,
	}, nil
}

// NewHTTPProberWithClient creates a prober using a caller supplied client
func NewHTTPProberWithClient(origin string, client *http.Client) (*HTTPProber, error) {
	p, err := NewHTTPProber(origin, 0)
	if err != nil {
		return nil, err
	}
	p.client = client
	return p, nil
}

// Probe fetches src and succeeds on a 2xx image response
func (p *HTTPProber) Probe(ctx context.Context, src string) error {
	ref, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProbeFailed, src, err)
	}
	target := p.origin.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProbeFailed, src, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProbeFailed, src, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: status %d", ErrProbeFailed, src, resp.StatusCode)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return nil
	}

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(resp.Body, head)
	if isImage(head[:n], target.Path) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotAnImage, src)
}

// FSProber checks candidates against files under a local site root
type FSProber struct {
	root     string
	resolver *imagepath.Resolver
}

// NewFSProber creates a prober for files below root. The resolver strips the
// deployment base path from candidates.
func NewFSProber(root string, resolver *imagepath.Resolver) *FSProber {
	return &FSProber{root: root, resolver: resolver}
}

// Probe succeeds when src names a regular image file below the root
func (p *FSProber) Probe(ctx context.Context, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := p.resolver.StorageKey(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	root, err := os.OpenRoot(p.root)
	if err != nil {
		return fmt.Errorf("%w: open root: %w", ErrProbeFailed, err)
	}
	defer func() { _ = root.Close() }()

	name := filepath.FromSlash(key)
	info, err := root.Stat(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProbeFailed, src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotAnImage, src)
	}

	f, err := root.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProbeFailed, src, err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, head)
	if isImage(head[:n], key) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotAnImage, src)
}

// isImage accepts sniffed image content or, for formats the sniffer does
// not know (svg, avif), a known image extension. HTML is always rejected so
// a single-page fallback route never counts as a hit.
func isImage(head []byte, name string) bool {
	sniffed := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(sniffed, "image/"):
		return true
	case strings.HasPrefix(sniffed, "text/html"):
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(name))]
}
