package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decor-gallery/internal/catalog"
	"decor-gallery/internal/imagepath"
	"decor-gallery/internal/platform/cache"
	"decor-gallery/internal/platform/database"
	"decor-gallery/internal/platform/storage"
	"decor-gallery/internal/services"
)

var resolveLocation string

var resolveCmd = &cobra.Command{
	Use:   "resolve <src>",
	Short: "Print the resolved path and fallback candidates of an image source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		location := cfg.Gallery.SiteURL
		if resolveLocation != "" {
			location = resolveLocation
		}
		resolver := imagepath.New(cfg.Gallery.BasePath, location)

		return printJSON(cmd, map[string]any{
			"src":          args[0],
			"resolved":     resolver.Resolve(args[0]),
			"candidates":   resolver.Candidates(args[0]),
			"file_context": resolver.FileContext(),
		})
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe <src>...",
	Short: "Run the fallback chain for image sources against the configured backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, obsCfg, err := loadConfig()
		if err != nil {
			return err
		}

		container, err := services.NewContainer(ctx, cfg, newCLILogger(obsCfg), nil)
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		return printJSON(cmd, container.Loader().Preload(ctx, args))
	},
}

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog <file>",
	Short: "Replace the database catalog with the contents of a YAML catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, obsCfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.UsesDatabaseCatalog() {
			return errors.New("DATABASE_URL is required to import a catalog")
		}
		logger := newCLILogger(obsCfg)

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer func() { _ = f.Close() }()

		file, err := catalog.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if err := database.RunMigrations(ctx, db, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		stats, err := database.NewCatalogRepository(db).Import(ctx, args[0], file.Images, file.Slideshow)
		if err != nil {
			return err
		}

		// winners point at paths of the previous catalog
		if cfg.Cache.Enabled {
			client, err := cache.NewRedisClient(ctx, cfg.Cache)
			if err != nil {
				logger.Warn(ctx).Err(err).Msg("Probe cache unavailable, cached winners not cleared")
			} else {
				defer func() { _ = client.Close() }()
				deleted, err := client.InvalidateWinners(ctx)
				if err != nil {
					return err
				}
				logger.Info(ctx).Int("deleted", deleted).Msg("Cleared cached winners")
			}
		}

		return printJSON(cmd, stats)
	},
}

var seedBucketCmd = &cobra.Command{
	Use:   "seed-bucket <dir>",
	Short: "Upload the images below a local site directory to the storage bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Storage.Enabled {
			return errors.New("STORAGE_ENABLED must be set to seed the bucket")
		}

		client, err := storage.NewMinIOClient(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}

		report, err := storage.Seed(ctx, os.DirFS(args[0]), ".", client)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveLocation, "location", "", "page location to resolve against (e.g. file:///site/index.html)")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
