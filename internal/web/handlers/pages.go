package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"net/url"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/gallery"
	"decor-gallery/internal/slideshow"
)

//go:embed templates/gallery.html
var galleryTemplate string

var galleryPage = template.Must(template.New("gallery").Funcs(template.FuncMap{
	"plural": func(n int) string {
		if n == 1 {
			return "image"
		}
		return "images"
	},
}).Parse(galleryTemplate))

// Hero is the home page banner
type Hero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTA      Link   `json:"cta"`
}

// Link is a labelled navigation target
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// CategoryPreview is the first image of a category on the home page
type CategoryPreview struct {
	Category string             `json:"category"`
	Image    domain.ImageRecord `json:"image"`
	Href     string             `json:"href"`
}

// HomeResponse is the home page payload
type HomeResponse struct {
	Hero       Hero              `json:"hero"`
	Slideshow  slideshow.State   `json:"slideshow"`
	Previews   []CategoryPreview `json:"previews"`
	Categories []Link            `json:"categories"`
}

var hero = Hero{
	Title:    "Decor that tells your story",
	Subtitle: "Weddings, birthdays and corporate events styled end to end.",
	CTA:      Link{Label: "View the gallery", Href: "/gallery"},
}

// categoryHref links to the gallery preselecting c
func categoryHref(c string) string {
	return "/gallery?" + url.Values{"category": {c}}.Encode()
}

func (h *Handler) homeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catalog := h.container.Catalog()
	resolver := h.container.Resolver()

	images, err := catalog.Images(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	categories, err := catalog.Categories(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response := HomeResponse{
		Hero:       hero,
		Slideshow:  h.container.Slideshow().State(),
		Previews:   make([]CategoryPreview, 0, len(categories)),
		Categories: make([]Link, 0, len(categories)),
	}
	response.Slideshow.Slide.Src = resolver.Resolve(response.Slideshow.Slide.Src)

	for _, preview := range slideshow.CategoryPreviews(images, categories) {
		preview.Src = resolver.Resolve(preview.Src)
		response.Previews = append(response.Previews, CategoryPreview{
			Category: preview.Category,
			Image:    preview,
			Href:     categoryHref(preview.Category),
		})
	}
	for _, c := range categories {
		response.Categories = append(response.Categories, Link{Label: c, Href: categoryHref(c)})
	}

	writeJSON(w, http.StatusOK, response)
}

type galleryPageData struct {
	Snapshot    gallery.Snapshot
	Sections    []domain.CategoryGroup
	Placeholder string
	Hrefs       map[string]string
}

// galleryHandler renders the gallery page from a throwaway view. It is never
// registered; clients that want a lightbox mount their own through the views
// API.
func (h *Handler) galleryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := gallery.Mount(ctx, h.container.Catalog(), r.URL.Query(), gallery.Options{
		Logger: h.container.Logger(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer view.Teardown()

	snapshot := view.Snapshot()

	sections := snapshot.Groups
	if len(sections) == 0 && len(snapshot.Images) > 0 {
		sections = []domain.CategoryGroup{{Category: snapshot.SelectedCategory, Images: snapshot.Images}}
	}

	resolver := h.container.Resolver()
	resolved := make([]domain.CategoryGroup, 0, len(sections))
	for _, section := range sections {
		images := make([]domain.ImageRecord, len(section.Images))
		for i, img := range section.Images {
			img.Src = resolver.Resolve(img.Src)
			images[i] = img
		}
		resolved = append(resolved, domain.CategoryGroup{Category: section.Category, Images: images})
	}

	hrefs := make(map[string]string, len(snapshot.Categories))
	for _, c := range snapshot.Categories {
		hrefs[c] = categoryHref(c)
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, galleryPageData{
		Snapshot:    snapshot,
		Sections:    resolved,
		Placeholder: h.container.Loader().Placeholder(),
		Hrefs:       hrefs,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes()) //nolint:errcheck // Best effort response
}
