package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif decoding
	_ "image/jpeg" // register jpeg decoding
	_ "image/png"  // register png decoding
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/image/bmp"  // register bmp decoding
	_ "golang.org/x/image/webp" // register webp decoding

	"decor-gallery/internal/imagepath"
)

// ErrNoSource is returned when an image reference has no candidates
var ErrNoSource = errors.New("image reference is empty")

// Opener streams the bytes behind one candidate source
type Opener interface {
	Open(ctx context.Context, src string) (io.ReadCloser, error)
}

// DimensionReader decodes the natural size of images without decoding the
// pixels. Candidates are tried in fallback order.
type DimensionReader struct {
	opener   Opener
	resolver *imagepath.Resolver
}

// NewDimensionReader creates a reader fetching candidates through opener
func NewDimensionReader(opener Opener, resolver *imagepath.Resolver) *DimensionReader {
	return &DimensionReader{opener: opener, resolver: resolver}
}

// Dimensions returns the width and height of the first candidate of src that
// can be opened and decoded
func (d *DimensionReader) Dimensions(ctx context.Context, src string) (int, int, error) {
	candidates := d.resolver.Candidates(src)
	if len(candidates) == 0 {
		return 0, 0, ErrNoSource
	}

	var lastErr error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		w, h, err := d.decode(ctx, candidate)
		if err == nil {
			return w, h, nil
		}
		lastErr = err
	}
	return 0, 0, lastErr
}

func (d *DimensionReader) decode(ctx context.Context, candidate string) (int, int, error) {
	rc, err := d.opener.Open(ctx, candidate)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = rc.Close() }()

	config, format, err := image.DecodeConfig(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config of %s: %w", candidate, err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid %s dimensions %dx%d for %s", format, config.Width, config.Height, candidate)
	}
	return config.Width, config.Height, nil
}

// FileOpener opens candidates from a local site root
type FileOpener struct {
	root     string
	resolver *imagepath.Resolver
}

// NewFileOpener creates an opener for files below root
func NewFileOpener(root string, resolver *imagepath.Resolver) *FileOpener {
	return &FileOpener{root: root, resolver: resolver}
}

// Open opens the file named by src. Paths cannot leave the root.
func (o *FileOpener) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := o.resolver.StorageKey(src)
	if err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(o.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open image root: %w", err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.Open(filepath.FromSlash(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	return f, nil
}

// ObjectOpener opens candidates from the image bucket
type ObjectOpener struct {
	client   *MinIOClient
	resolver *imagepath.Resolver
}

// NewObjectOpener creates an opener reading from the bucket
func NewObjectOpener(client *MinIOClient, resolver *imagepath.Resolver) *ObjectOpener {
	return &ObjectOpener{client: client, resolver: resolver}
}

// Open streams the object named by src
func (o *ObjectOpener) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	key, err := o.resolver.StorageKey(src)
	if err != nil {
		return nil, err
	}
	return o.client.Open(ctx, key)
}

// HTTPOpener fetches candidates from the site origin
type HTTPOpener struct {
	client *http.Client
	origin *url.URL
}

// NewHTTPOpener creates an opener resolving candidates against origin
func NewHTTPOpener(origin string, timeout time.Duration) (*HTTPOpener, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("origin must be http or https, got %q", u.Scheme)
	}

	return &HTTPOpener{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		origin: u,
	}, nil
}

// Open issues a GET for src. Non-2xx responses are errors.
func (o *HTTPOpener) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", src, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.origin.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", src, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", src, resp.StatusCode)
	}
	return resp.Body, nil
}
