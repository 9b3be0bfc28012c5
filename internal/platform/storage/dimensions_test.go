package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decor-gallery/internal/imagepath"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

type mapOpener struct {
	files  map[string][]byte
	opened []string
}

func (o *mapOpener) Open(_ context.Context, src string) (io.ReadCloser, error) {
	o.opened = append(o.opened, src)
	data, ok := o.files[src]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestDimensionReader_FallbackOrder(t *testing.T) {
	opener := &mapOpener{files: map[string][]byte{
		"/images/été (1).jpg": encodePNG(t, 1600, 900),
	}}
	reader := NewDimensionReader(opener, imagepath.New("", ""))

	w, h, err := reader.Dimensions(context.Background(), "/images/été (1).jpg")
	require.NoError(t, err)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 900, h)
	assert.Equal(t, []string{"/images/%C3%A9t%C3%A9%20(1).jpg", "/images/été (1).jpg"}, opener.opened)
}

func TestDimensionReader_Errors(t *testing.T) {
	t.Run("empty source", func(t *testing.T) {
		reader := NewDimensionReader(&mapOpener{}, imagepath.New("", ""))
		_, _, err := reader.Dimensions(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("all candidates missing", func(t *testing.T) {
		reader := NewDimensionReader(&mapOpener{}, imagepath.New("", ""))
		_, _, err := reader.Dimensions(context.Background(), "/images/a b.jpg")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("undecodable content", func(t *testing.T) {
		opener := &mapOpener{files: map[string][]byte{"/images/a.svg": []byte("<svg/>")}}
		reader := NewDimensionReader(opener, imagepath.New("", ""))
		_, _, err := reader.Dimensions(context.Background(), "/images/a.svg")
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		opener := &mapOpener{files: map[string][]byte{"/images/a.png": encodePNG(t, 2, 2)}}
		reader := NewDimensionReader(opener, imagepath.New("", ""))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := reader.Dimensions(ctx, "/images/a.png")
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, opener.opened)
	})
}

func TestFileOpener(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images", "slides"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "slides", "hero 1.gif"), encodeGIF(t, 40, 30), 0o644))

	resolver := imagepath.New("/decor", "")
	reader := NewDimensionReader(NewFileOpener(root, resolver), resolver)

	w, h, err := reader.Dimensions(context.Background(), "/images/slides/hero 1.gif")
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)

	_, err = NewFileOpener(root, resolver).Open(context.Background(), "/../../etc/passwd")
	assert.Error(t, err, "keys are confined to the root")
}

func TestHTTPOpener(t *testing.T) {
	payload := encodePNG(t, 300, 200)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/decor/images/a b.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	opener, err := NewHTTPOpener(server.URL, 0)
	require.NoError(t, err)

	reader := NewDimensionReader(opener, imagepath.New("/decor", ""))
	w, h, err := reader.Dimensions(context.Background(), "/images/a b.png")
	require.NoError(t, err)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)

	_, err = opener.Open(context.Background(), "/missing.png")
	assert.Error(t, err)

	_, err = NewHTTPOpener("ftp://example.com", 0)
	assert.Error(t, err)
}
