// Package catalog serves the image catalog from a YAML file.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	domain "decor-gallery/internal/domain/gallery"
)

// File is the on-disk layout of a catalog
type File struct {
	Images    []domain.ImageRecord `yaml:"images"`
	Slideshow []domain.ImageRecord `yaml:"slideshow"`
}

// Static is an in-memory catalog. It is safe for concurrent use since it is
// never modified after creation.
type Static struct {
	images []domain.ImageRecord
	slides []domain.ImageRecord
}

// NewStatic creates a catalog over the given records
func NewStatic(images, slides []domain.ImageRecord) *Static {
	return &Static{
		images: slices.Clone(images),
		slides: slices.Clone(slides),
	}
}

// Load reads and validates a YAML catalog file
func Load(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return NewStatic(file.Images, file.Slideshow), nil
}

// Parse decodes a YAML catalog and validates every record. Unknown keys are
// rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	if err := validate("images", file.Images); err != nil {
		return nil, err
	}
	if err := validate("slideshow", file.Slideshow); err != nil {
		return nil, err
	}
	return &file, nil
}

func validate(section string, records []domain.ImageRecord) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s[%d] (%q): %w", section, i, r.Src, err)
		}
		if first, dup := seen[r.Key()]; dup {
			return fmt.Errorf("%s[%d] (%q): %w: duplicate of entry %d", section, i, r.Src, domain.ErrInvalidRecord, first)
		}
		seen[r.Key()] = i
	}
	return nil
}

// Images returns the portfolio in file order
func (s *Static) Images(ctx context.Context) ([]domain.ImageRecord, error) {
	return slices.Clone(s.images), nil
}

// Slides returns the slideshow set in file order
func (s *Static) Slides(ctx context.Context) ([]domain.ImageRecord, error) {
	return slices.Clone(s.slides), nil
}

// Categories returns the portfolio categories in first-seen order
func (s *Static) Categories(ctx context.Context) ([]string, error) {
	return domain.DeriveCategories(s.images), nil
}

// Encode writes a catalog file as YAML
func Encode(w io.Writer, file *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
