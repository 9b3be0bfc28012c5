package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/imageload"
)

var errBadRequest = errors.New("bad request")

// ImagesResponse is the active sequence for a category
type ImagesResponse struct {
	Category string               `json:"category"`
	Images   []domain.ImageRecord `json:"images"`
	Count    int                  `json:"count"`
}

// ResolveResponse shows how a raw source is resolved
type ResolveResponse struct {
	Src         string   `json:"src"`
	Resolved    string   `json:"resolved"`
	Candidates  []string `json:"candidates"`
	FileContext bool     `json:"file_context"`
}

// LoadResponse is the outcome of the fallback chain
type LoadResponse struct {
	Raw string `json:"raw"`
	imageload.Result
}

func (h *Handler) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.container.Catalog().Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.WithAll(categories))
}

func (h *Handler) listImagesHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.AllCategory
	}

	images, err := h.container.Catalog().Images(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if category != domain.AllCategory {
		if !slices.Contains(domain.DeriveCategories(images), category) {
			h.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, category))
			return
		}
	}

	filtered := domain.FilterByCategory(images, category)
	writeJSON(w, http.StatusOK, ImagesResponse{
		Category: category,
		Images:   filtered,
		Count:    len(filtered),
	})
}

func (h *Handler) resolveImageHandler(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		h.writeError(w, r, fmt.Errorf("%w: src is required", errBadRequest))
		return
	}

	resolver := h.container.Resolver()
	if location := r.URL.Query().Get("location"); location != "" {
		resolver = resolver.WithLocation(location)
	}

	writeJSON(w, http.StatusOK, ResolveResponse{
		Src:         src,
		Resolved:    resolver.Resolve(src),
		Candidates:  resolver.Candidates(src),
		FileContext: resolver.FileContext(),
	})
}

// loadImageHandler runs the fallback chain. A failed chain is a normal
// outcome: the placeholder is returned with has_error set.
func (h *Handler) loadImageHandler(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		h.writeError(w, r, fmt.Errorf("%w: src is required", errBadRequest))
		return
	}

	loader := h.container.Loader()
	resolver := loader.Resolver()
	if location := r.URL.Query().Get("location"); location != "" {
		resolver = resolver.WithLocation(location)
	}

	result := loader.LoadFrom(r.Context(), resolver, src)
	if result.Cancelled {
		// the client went away
		return
	}

	writeJSON(w, http.StatusOK, LoadResponse{Raw: src, Result: result})
}
