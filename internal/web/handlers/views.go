package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"decor-gallery/internal/gallery"
)

// KeyResponse reports whether a key press changed the view
type KeyResponse struct {
	Handled bool             `json:"handled"`
	View    gallery.Snapshot `json:"view"`
}

func (h *Handler) mountViewHandler(w http.ResponseWriter, r *http.Request) {
	id, view, err := h.container.Registry().Mount(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/views/"+id)
	writeJSON(w, http.StatusCreated, snapshotOf(id, view))
}

func (h *Handler) getViewHandler(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(id string, view *gallery.View) error {
		writeJSON(w, http.StatusOK, snapshotOf(id, view))
		return nil
	})
}

func (h *Handler) teardownViewHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.container.Registry().Teardown(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// filterViewHandler blocks for the filter delay; the client's context
// cancellation cuts the delay short
func (h *Handler) filterViewHandler(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(id string, view *gallery.View) error {
		category, err := pathParam(r, "category")
		if err != nil {
			return err
		}
		if err := view.SelectCategory(r.Context(), category); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, snapshotOf(id, view))
		return nil
	})
}

func (h *Handler) openViewHandler(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(id string, view *gallery.View) error {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			return fmt.Errorf("%w: index must be an integer", errBadRequest)
		}
		if err := view.Open(index); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, snapshotOf(id, view))
		return nil
	})
}

func (h *Handler) nextViewHandler(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*gallery.View).Next)
}

func (h *Handler) prevViewHandler(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*gallery.View).Prev)
}

func (h *Handler) closeViewHandler(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*gallery.View).Close)
}

func (h *Handler) keyViewHandler(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(id string, view *gallery.View) error {
		key, err := pathParam(r, "key")
		if err != nil {
			return err
		}
		handled := view.HandleKey(key)
		writeJSON(w, http.StatusOK, KeyResponse{Handled: handled, View: snapshotOf(id, view)})
		return nil
	})
}

// loadViewHandler runs the fallback chain for the open image and returns
// the updated view
func (h *Handler) loadViewHandler(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(id string, view *gallery.View) error {
		result, err := view.LoadCurrent(r.Context())
		if err != nil {
			return err
		}
		if result.Cancelled {
			return nil
		}
		writeJSON(w, http.StatusOK, snapshotOf(id, view))
		return nil
	})
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, step func(*gallery.View)) {
	h.withView(w, r, func(id string, view *gallery.View) error {
		step(view)
		writeJSON(w, http.StatusOK, snapshotOf(id, view))
		return nil
	})
}

func (h *Handler) withView(w http.ResponseWriter, r *http.Request, fn func(id string, view *gallery.View) error) {
	id := chi.URLParam(r, "id")
	view, err := h.container.Registry().Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := fn(id, view); err != nil {
		h.writeError(w, r, err)
	}
}

// pathParam returns a decoded URL parameter. chi matches on the escaped path
// when the request has one, so "%2B" arrives undecoded.
func pathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", fmt.Errorf("%w: invalid %s %q", errBadRequest, name, value)
	}
	return decoded, nil
}

func snapshotOf(id string, view *gallery.View) gallery.Snapshot {
	s := view.Snapshot()
	s.ID = id
	return s
}
