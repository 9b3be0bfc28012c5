package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "decor-gallery/internal/domain/gallery"
)

const sampleYAML = `
images:
  - src: /images/Weddings/Stage Night.jpg
    alt: Stage at night
    category: Weddings
  - src: /images/Birthdays/arch.jpg
    alt: Balloon arch
    category: Birthdays
  - src: /images/Weddings/mandap.jpg
    alt: Mandap
    category: Weddings
slideshow:
  - src: /images/slides/hero 1.jpg
    alt: Hero
    category: Weddings
`

func TestParse(t *testing.T) {
	file, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	require.Len(t, file.Images, 3)
	assert.Equal(t, domain.ImageRecord{Src: "/images/Weddings/Stage Night.jpg", Alt: "Stage at night", Category: "Weddings"}, file.Images[0])
	require.Len(t, file.Slideshow, 1)
	assert.Equal(t, "/images/slides/hero 1.jpg", file.Slideshow[0].Src)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
		is       error
	}{
		{
			name:     "missing src",
			yaml:     "images:\n  - alt: x\n    category: Weddings\n",
			contains: "images[0]",
			is:       domain.ErrInvalidRecord,
		},
		{
			name:     "reserved category",
			yaml:     "images:\n  - src: /a.jpg\n    category: All\n",
			is:       domain.ErrReservedCategory,
		},
		{
			name:     "duplicate identity",
			yaml:     "images:\n  - {src: /a.jpg, alt: a, category: X}\n  - {src: /a.jpg, alt: a, category: Y}\n",
			contains: "duplicate of entry 0",
			is:       domain.ErrInvalidRecord,
		},
		{
			name:     "invalid slideshow record",
			yaml:     "slideshow:\n  - src: /a.jpg\n",
			contains: "slideshow[0]",
			is:       domain.ErrInvalidRecord,
		},
		{
			name:     "unknown field",
			yaml:     "images:\n  - src: /a.jpg\n    category: X\n    caption: nope\n",
			contains: "caption",
		},
		{
			name:     "malformed yaml",
			yaml:     "images: [",
			contains: "decoding yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	file, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, file.Images)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	ctx := context.Background()
	images, err := c.Images(ctx)
	require.NoError(t, err)
	assert.Len(t, images, 3)

	categories, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Weddings", "Birthdays"}, categories)

	slides, err := c.Slides(ctx)
	require.NoError(t, err)
	assert.Len(t, slides, 1)

	images[0].Alt = "mutated"
	again, _ := c.Images(ctx)
	assert.Equal(t, "Stage at night", again[0].Alt, "callers cannot mutate the catalog")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeRoundTrip(t *testing.T) {
	file, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, file))

	decoded, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, file, decoded)
}
