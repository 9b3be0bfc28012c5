package gallery

import (
	"fmt"
	"slices"
	"strconv"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/imageload"
)

// Snapshot is an immutable projection of a view
type Snapshot struct {
	ID               string                 `json:"id,omitempty"`
	State            string                 `json:"state"`
	SelectedCategory string                 `json:"selected_category"`
	Categories       []string               `json:"categories"`
	Filtering        bool                   `json:"filtering"`
	Images           []domain.ImageRecord   `json:"images"`
	Count            int                    `json:"count"`
	Groups           []domain.CategoryGroup `json:"groups,omitempty"`
	SelectedIndex    *int                   `json:"selected_index"`
	Position         string                 `json:"position,omitempty"`
	Current          *domain.ImageRecord    `json:"current,omitempty"`
	Zoom             float64                `json:"zoom"`
	Rotation         int                    `json:"rotation"`
	Transform        string                 `json:"transform"`
	Image            *imageload.Snapshot    `json:"image,omitempty"`
}

// View states
const (
	StateIdle    = "idle"
	StateViewing = "viewing"
)

// Snapshot returns the current state of the view
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		State:            StateIdle,
		SelectedCategory: v.category,
		Categories:       slices.Clone(v.categories),
		Filtering:        v.filtering,
		Images:           slices.Clone(v.filtered),
		Count:            len(v.filtered),
		Zoom:             v.zoom,
		Rotation:         v.rotation,
		Transform:        Transform(v.zoom, v.rotation),
	}

	// the unfiltered page is laid out in per-category sections
	if v.category == domain.AllCategory && !v.filtering {
		s.Groups = domain.GroupByCategory(v.filtered)
	}

	if v.selected >= 0 {
		index := v.selected
		current := v.filtered[index]
		s.State = StateViewing
		s.SelectedIndex = &index
		s.Current = &current
		s.Position = fmt.Sprintf("%d of %d", index+1, len(v.filtered))
		if v.image != nil {
			img := v.image.Snapshot()
			s.Image = &img
		}
	}

	return s
}

// Transform renders zoom and rotation as a CSS transform
func Transform(zoom float64, rotation int) string {
	return "scale(" + strconv.FormatFloat(zoom, 'f', -1, 64) + ") rotate(" + strconv.Itoa(rotation) + "deg)"
}
