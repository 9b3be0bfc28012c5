package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"decor-gallery/internal/slideshow"
)

// slideState returns the slideshow state with a URL-safe slide source
func (h *Handler) slideState() slideshow.State {
	state := h.container.Slideshow().State()
	state.Slide.Src = h.container.Resolver().Resolve(state.Slide.Src)
	return state
}

func (h *Handler) slideshowHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.slideState())
}

func (h *Handler) slideshowNextHandler(w http.ResponseWriter, r *http.Request) {
	h.container.Slideshow().Next()
	writeJSON(w, http.StatusOK, h.slideState())
}

func (h *Handler) slideshowPrevHandler(w http.ResponseWriter, r *http.Request) {
	h.container.Slideshow().Prev()
	writeJSON(w, http.StatusOK, h.slideState())
}

func (h *Handler) slideshowToggleHandler(w http.ResponseWriter, r *http.Request) {
	h.container.Slideshow().Toggle()
	writeJSON(w, http.StatusOK, h.slideState())
}

func (h *Handler) slideshowGoToHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: index must be an integer", errBadRequest))
		return
	}
	if err := h.container.Slideshow().GoTo(index); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.slideState())
}
