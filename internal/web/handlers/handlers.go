package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"decor-gallery/internal/config"
	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/gallery"
	"decor-gallery/internal/imagepath"
	"decor-gallery/internal/observability"
	"decor-gallery/internal/services"
)

// Handler serves the gallery API and pages
type Handler struct {
	container   *services.Container
	logger      *observability.Logger
	httpMetrics *observability.HTTPMetrics
	page        *template.Template
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewWithContainer creates the handler set for a wired container
func NewWithContainer(container *services.Container, httpMetrics *observability.HTTPMetrics) *Handler {
	return &Handler{
		container:   container,
		logger:      container.Logger().Component("http"),
		httpMetrics: httpMetrics,
		page:        galleryPage,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(observability.TracingMiddleware(observability.GetTracer()))
	if h.httpMetrics != nil {
		r.Use(observability.MetricsMiddleware(h.httpMetrics))
	}

	r.Get("/healthz", h.healthzHandler)
	r.Get("/readyz", h.readyzHandler)

	h.mountImages(r)

	r.Get("/", h.homeHandler)
	r.Get("/gallery", h.galleryHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.categoriesHandler)

		r.Route("/images", func(r chi.Router) {
			r.Get("/", h.listImagesHandler)
			r.Get("/resolve", h.resolveImageHandler)
			r.Get("/load", h.loadImageHandler)
		})

		r.Route("/views", func(r chi.Router) {
			r.Post("/", h.mountViewHandler)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getViewHandler)
				r.Delete("/", h.teardownViewHandler)
				r.Post("/filter/{category}", h.filterViewHandler)
				r.Post("/open/{index}", h.openViewHandler)
				r.Post("/next", h.nextViewHandler)
				r.Post("/prev", h.prevViewHandler)
				r.Post("/close", h.closeViewHandler)
				r.Post("/keys/{key}", h.keyViewHandler)
				r.Post("/load", h.loadViewHandler)
			})
		})

		r.Route("/slideshow", func(r chi.Router) {
			r.Get("/", h.slideshowHandler)
			r.Post("/next", h.slideshowNextHandler)
			r.Post("/prev", h.slideshowPrevHandler)
			r.Post("/toggle", h.slideshowToggleHandler)
			r.Post("/slides/{index}", h.slideshowGoToHandler)
		})
	})

	return r
}

// mountImages serves the local site tree when images are probed from disk,
// so the fallback candidates and the placeholder are reachable over HTTP
func (h *Handler) mountImages(r chi.Router) {
	cfg := h.container.Config()
	if cfg.Gallery.ProbeBackend != config.ProbeBackendFS || cfg.Gallery.ImageRoot == "" {
		return
	}

	base := imagepath.NormalizeBasePath(cfg.Gallery.BasePath)
	files := http.FileServer(http.Dir(cfg.Gallery.ImageRoot))
	if base != "" {
		files = http.StripPrefix(base, files)
	}
	r.Handle(base+"/images/*", files)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Best effort response
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrViewNotFound),
		errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrViewClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrEmptySequence),
		errors.Is(err, domain.ErrNotViewing),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, gallery.ErrNoLoader):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
