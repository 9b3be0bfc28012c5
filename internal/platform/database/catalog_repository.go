package database

import (
	"context"
	"database/sql"
	"fmt"

	domain "decor-gallery/internal/domain/gallery"
)

// Catalog collections
const (
	CollectionPortfolio = "portfolio"
	CollectionSlideshow = "slideshow"
)

// ImportStats summarizes a catalog import
type ImportStats struct {
	Images int `json:"images"`
	Slides int `json:"slides"`
}

// CatalogRepository serves the gallery catalog from PostgreSQL
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Images returns the portfolio in display order
func (r *CatalogRepository) Images(ctx context.Context) ([]domain.ImageRecord, error) {
	return r.list(ctx, CollectionPortfolio)
}

// Slides returns the slideshow set in display order
func (r *CatalogRepository) Slides(ctx context.Context) ([]domain.ImageRecord, error) {
	return r.list(ctx, CollectionSlideshow)
}

// Categories returns the portfolio categories ordered by first appearance
func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT category
		FROM gallery_images
		WHERE collection = $1
		GROUP BY category
		ORDER BY MIN(position)`

	rows, err := r.db.QueryContext(ctx, query, CollectionPortfolio)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// Count returns the number of records in a collection
func (r *CatalogRepository) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM gallery_images WHERE collection = $1", collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s images: %w", collection, err)
	}
	return count, nil
}

// Import replaces the whole catalog in a single transaction. Records are
// validated first; nothing is written if any record is invalid.
func (r *CatalogRepository) Import(ctx context.Context, source string, images, slides []domain.ImageRecord) (*ImportStats, error) {
	for i, rec := range images {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("images[%d] (%q): %w", i, rec.Src, err)
		}
	}
	for i, rec := range slides {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("slideshow[%d] (%q): %w", i, rec.Src, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM gallery_images"); err != nil {
		return nil, fmt.Errorf("failed to clear catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gallery_images (collection, position, src, alt, category)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	collections := []struct {
		name    string
		records []domain.ImageRecord
	}{
		{CollectionPortfolio, images},
		{CollectionSlideshow, slides},
	}
	for _, c := range collections {
		for position, rec := range c.records {
			if _, err := stmt.ExecContext(ctx, c.name, position, rec.Src, rec.Alt, rec.Category); err != nil {
				return nil, fmt.Errorf("failed to insert %s %q: %w", c.name, rec.Src, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO catalog_imports (source, image_count, slide_count) VALUES ($1, $2, $3)",
		source, len(images), len(slides),
	); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	return &ImportStats{Images: len(images), Slides: len(slides)}, nil
}

// Health pings the database
func (r *CatalogRepository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (r *CatalogRepository) list(ctx context.Context, collection string) ([]domain.ImageRecord, error) {
	query := `
		SELECT src, alt, category
		FROM gallery_images
		WHERE collection = $1
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s images: %w", collection, err)
	}

	return scanRecords(rows)
}

// scanRecords reads src, alt, category rows and closes them
func scanRecords(rows *sql.Rows) ([]domain.ImageRecord, error) {
	defer func() { _ = rows.Close() }() //nolint:errcheck // Resource cleanup

	records := make([]domain.ImageRecord, 0)
	for rows.Next() {
		var rec domain.ImageRecord
		if err := rows.Scan(&rec.Src, &rec.Alt, &rec.Category); err != nil {
			return nil, fmt.Errorf("failed to scan image record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
