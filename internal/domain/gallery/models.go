package gallery

import (
	"errors"
	"strings"
)

// AllCategory is the implicit pseudo-category covering the whole catalog
const AllCategory = "All"

// ImageRecord represents one catalog image. Records are immutable once loaded;
// identity for lookups is the (Src, Alt) pair.
type ImageRecord struct {
	Src      string `json:"src" yaml:"src" db:"src"`
	Alt      string `json:"alt" yaml:"alt" db:"alt"`
	Category string `json:"category" yaml:"category" db:"category"`
}

// Key returns the identity of the record
func (r ImageRecord) Key() string {
	return r.Src + "\x00" + r.Alt
}

// Same reports whether both records share the same identity
func (r ImageRecord) Same(other ImageRecord) bool {
	return r.Src == other.Src && r.Alt == other.Alt
}

// Validate checks the minimal invariants a catalog entry must hold
func (r ImageRecord) Validate() error {
	if strings.TrimSpace(r.Src) == "" {
		return ErrInvalidRecord
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrInvalidRecord
	}
	if r.Category == AllCategory {
		return ErrReservedCategory
	}
	return nil
}

// Domain errors
var (
	ErrImageUnavailable = errors.New("image unavailable")
	ErrInvalidRecord    = errors.New("invalid image record")
	ErrReservedCategory = errors.New("category name is reserved")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptySequence    = errors.New("active sequence is empty")
	ErrIndexOutOfRange  = errors.New("image index out of range")
	ErrImageNotFound    = errors.New("image not found in active sequence")
	ErrViewClosed       = errors.New("view has been torn down")
	ErrViewNotFound     = errors.New("view not found")
	ErrNotViewing       = errors.New("no image is open")
)

// Zoom and rotation bounds for the lightbox
const (
	MinZoom     = 0.2
	MaxZoom     = 3.0
	DefaultZoom = 1.0
	ZoomStep    = 0.2
	RotateStep  = 90
)

// DeriveCategories scans records for distinct categories in first-seen order
func DeriveCategories(records []ImageRecord) []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)

	for _, r := range records {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		categories = append(categories, r.Category)
	}

	return categories
}

// FilterByCategory returns a new slice holding the records of the given
// category in catalog order. AllCategory yields a copy of the full catalog.
func FilterByCategory(records []ImageRecord, category string) []ImageRecord {
	if category == AllCategory {
		out := make([]ImageRecord, len(records))
		copy(out, records)
		return out
	}

	out := make([]ImageRecord, 0)
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// IndexOf returns the position of the record with the given identity, or -1
func IndexOf(records []ImageRecord, src, alt string) int {
	for i, r := range records {
		if r.Src == src && r.Alt == alt {
			return i
		}
	}
	return -1
}

// WithAll prefixes the derived categories with AllCategory
func WithAll(categories []string) []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, AllCategory)
	for _, c := range categories {
		if c != AllCategory {
			out = append(out, c)
		}
	}
	return out
}

// CategoryGroup is one category section of the unfiltered gallery
type CategoryGroup struct {
	Category string        `json:"category"`
	Images   []ImageRecord `json:"images"`
}

// GroupByCategory splits records into per-category groups in first-seen
// category order
func GroupByCategory(records []ImageRecord) []CategoryGroup {
	categories := DeriveCategories(records)
	groups := make([]CategoryGroup, 0, len(categories))
	for _, c := range categories {
		groups = append(groups, CategoryGroup{Category: c, Images: FilterByCategory(records, c)})
	}
	return groups
}
