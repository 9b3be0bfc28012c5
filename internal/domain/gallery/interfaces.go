package gallery

import (
	"context"
	"time"
)

// Catalog is the read-only source of image records
type Catalog interface {
	// Images returns the portfolio in display order
	Images(ctx context.Context) ([]ImageRecord, error)

	// Slides returns the home page slideshow set
	Slides(ctx context.Context) ([]ImageRecord, error)

	// Categories returns the distinct categories in a stable order
	Categories(ctx context.Context) ([]string, error)
}

// Prober performs a single image load and reports whether it succeeded.
// Implementations must honor ctx cancellation.
type Prober interface {
	Probe(ctx context.Context, src string) error
}

// ProbeCache remembers winning candidates of previous fallback chains
type ProbeCache interface {
	// GetWinner returns the cached winning candidate for a raw source
	GetWinner(ctx context.Context, raw string) (string, error)

	// SetWinner stores the winning candidate for a raw source
	SetWinner(ctx context.Context, raw, winner string, ttl time.Duration) error
}

// DimensionReader reports the natural size of an image
type DimensionReader interface {
	Dimensions(ctx context.Context, src string) (width, height int, err error)
}
