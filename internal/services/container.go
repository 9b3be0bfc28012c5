// Package services wires the gallery components from configuration.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"decor-gallery/internal/catalog"
	"decor-gallery/internal/config"
	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/gallery"
	"decor-gallery/internal/imageload"
	"decor-gallery/internal/imagepath"
	"decor-gallery/internal/observability"
	"decor-gallery/internal/platform/cache"
	"decor-gallery/internal/platform/database"
	"decor-gallery/internal/platform/storage"
	"decor-gallery/internal/slideshow"
)

// HealthCheck reports the health of one dependency
type HealthCheck func(ctx context.Context) error

// Components are the pluggable pieces a container is assembled from
type Components struct {
	Catalog    domain.Catalog
	Prober     domain.Prober
	Dimensions domain.DimensionReader
	Cache      *cache.ProbeCache
}

// Container holds all the application dependencies
type Container struct {
	config  *config.Config
	logger  *observability.Logger
	metrics *observability.GalleryMetrics

	// Infrastructure, nil when not configured
	db            *sql.DB
	catalogRepo   *database.CatalogRepository
	storageClient *storage.MinIOClient
	redisClient   *cache.RedisClient

	catalog  domain.Catalog
	resolver *imagepath.Resolver
	loader   *imageload.Loader
	registry *gallery.Registry
	show     *slideshow.Show
	checks   map[string]HealthCheck
}

// NewContainer connects the configured backends and assembles the gallery
func NewContainer(ctx context.Context, cfg *config.Config, logger *observability.Logger, metrics *observability.GalleryMetrics) (*Container, error) {
	c := &Container{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		checks:  make(map[string]HealthCheck),
	}

	comps, err := c.connect(ctx)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	if err := c.assemble(ctx, comps); err != nil {
		return nil, errors.Join(err, c.Close())
	}

	logger.Info(ctx).
		Str("probe_backend", cfg.Gallery.ProbeBackend).
		Bool("database_catalog", c.catalogRepo != nil).
		Bool("cache", c.redisClient != nil).
		Msg("Dependency injection container initialized successfully")
	return c, nil
}

// Assemble builds a container from ready-made components without touching
// any external backend
func Assemble(ctx context.Context, cfg *config.Config, logger *observability.Logger, metrics *observability.GalleryMetrics, comps Components) (*Container, error) {
	c := &Container{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		checks:  make(map[string]HealthCheck),
	}
	if err := c.assemble(ctx, comps); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) connect(ctx context.Context) (Components, error) {
	var comps Components
	cfg := c.config
	resolver := imagepath.New(cfg.Gallery.BasePath, cfg.Gallery.SiteURL)

	if cfg.UsesDatabaseCatalog() {
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return comps, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db

		if err := database.RunMigrations(ctx, db, c.logger); err != nil {
			return comps, fmt.Errorf("failed to run migrations: %w", err)
		}

		c.catalogRepo = database.NewCatalogRepository(db)
		c.checks["database"] = c.catalogRepo.Health
		comps.Catalog = c.catalogRepo
	} else {
		static, err := catalog.Load(cfg.Gallery.CatalogFile)
		if err != nil {
			return comps, err
		}
		comps.Catalog = static
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewMinIOClient(ctx, cfg.Storage)
		if err != nil {
			return comps, fmt.Errorf("failed to connect to storage: %w", err)
		}
		c.storageClient = client
	}

	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			// the loader works without a cache, only slower
			c.logger.Warn(ctx).Err(err).Msg("Probe cache unavailable, continuing without it")
		} else {
			c.redisClient = client
			c.checks["cache"] = client.Health
		}
	}
	comps.Cache = cache.NewProbeCache(c.redisClient, c.logger)

	switch cfg.Gallery.ProbeBackend {
	case config.ProbeBackendHTTP:
		prober, err := imageload.NewHTTPProber(cfg.Gallery.ProbeOrigin, cfg.Gallery.ProbeTimeout)
		if err != nil {
			return comps, err
		}
		opener, err := storage.NewHTTPOpener(cfg.Gallery.ProbeOrigin, cfg.Gallery.ProbeTimeout)
		if err != nil {
			return comps, err
		}
		comps.Prober = prober
		comps.Dimensions = storage.NewDimensionReader(opener, resolver)
	case config.ProbeBackendMinIO:
		if c.storageClient == nil {
			return comps, errors.New("minio probe backend requires storage to be enabled")
		}
		comps.Prober = storage.NewObjectProber(c.storageClient, resolver)
		comps.Dimensions = storage.NewDimensionReader(storage.NewObjectOpener(c.storageClient, resolver), resolver)
		c.checks["storage"] = c.storageClient.Health
	default:
		comps.Prober = imageload.NewFSProber(cfg.Gallery.ImageRoot, resolver)
		comps.Dimensions = storage.NewDimensionReader(storage.NewFileOpener(cfg.Gallery.ImageRoot, resolver), resolver)
	}

	return comps, nil
}

func (c *Container) assemble(ctx context.Context, comps Components) error {
	cfg := c.config
	if c.logger == nil {
		c.logger = observability.NewNopLogger()
	}
	if comps.Catalog == nil || comps.Prober == nil {
		return errors.New("catalog and prober are required")
	}

	c.catalog = comps.Catalog
	c.resolver = imagepath.New(cfg.Gallery.BasePath, cfg.Gallery.SiteURL)

	loaderOpts := imageload.Options{
		CacheTTL:    cfg.Cache.DefaultTTL,
		Placeholder: cfg.Gallery.Placeholder,
		Logger:      c.logger,
		Metrics:     c.metrics,
	}
	if comps.Cache != nil {
		loaderOpts.Cache = comps.Cache
	}
	c.loader = imageload.NewLoader(c.resolver, comps.Prober, loaderOpts)

	c.registry = gallery.NewRegistry(c.catalog, gallery.Options{
		FilterDelay: cfg.Gallery.FilterDelay,
		Loader:      c.loader,
		Logger:      c.logger,
		Metrics:     c.metrics,
	}, cfg.Gallery.ViewIdleTimeout)

	slides, err := c.catalog.Slides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load slideshow: %w", err)
	}
	c.show = slideshow.New(slides, slideshow.Options{
		Interval:   cfg.Gallery.SlideInterval,
		Dimensions: comps.Dimensions,
		Logger:     c.logger,
	})

	return nil
}

// Start runs the background loops until ctx is done: the slideshow autoplay
// and the idle view sweeper. The probe cache is warmed once in the
// background.
func (c *Container) Start(ctx context.Context) {
	go c.show.Run(ctx)
	go func() {
		if _, err := c.WarmCache(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn(ctx).Err(err).Msg("Failed to warm probe cache")
		}
	}()

	interval := c.config.Gallery.ViewIdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	go c.registry.RunSweeper(ctx, interval)
}

// WarmCache preloads the images every visitor sees first: the slides and the
// first image of each category
func (c *Container) WarmCache(ctx context.Context) ([]imageload.Result, error) {
	images, err := c.catalog.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	categories, err := c.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	slides := c.show.Slides()
	srcs := make([]string, 0, len(slides)+len(categories))
	for _, s := range slides {
		srcs = append(srcs, s.Src)
	}
	for _, p := range slideshow.CategoryPreviews(images, categories) {
		srcs = append(srcs, p.Src)
	}

	results := c.loader.Preload(ctx, srcs)

	failed := 0
	for _, r := range results {
		if r.HasError {
			failed++
		}
	}
	c.logger.Info(ctx).
		Int("images", len(results)).
		Int("unavailable", failed).
		Msg("Probe cache warmed")
	return results, nil
}

// Config returns the application configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *observability.Logger {
	return c.logger
}

// Catalog returns the active catalog
func (c *Container) Catalog() domain.Catalog {
	return c.catalog
}

// CatalogRepository returns the database catalog, or nil for a YAML catalog
func (c *Container) CatalogRepository() *database.CatalogRepository {
	return c.catalogRepo
}

// StorageClient returns the MinIO client, or nil when storage is disabled
func (c *Container) StorageClient() *storage.MinIOClient {
	return c.storageClient
}

// RedisClient returns the Redis client, or nil when the cache is disabled
func (c *Container) RedisClient() *cache.RedisClient {
	return c.redisClient
}

func (c *Container) Resolver() *imagepath.Resolver {
	return c.resolver
}

func (c *Container) Loader() *imageload.Loader {
	return c.loader
}

func (c *Container) Registry() *gallery.Registry {
	return c.registry
}

func (c *Container) Slideshow() *slideshow.Show {
	return c.show
}

// HealthChecks returns the readiness checks of the connected backends
func (c *Container) HealthChecks() map[string]HealthCheck {
	return c.checks
}

// Close tears down all views and releases the backends
func (c *Container) Close() error {
	var errs []error

	if c.registry != nil {
		c.registry.Close()
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
