package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"decor-gallery/internal/config"
	"decor-gallery/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "decor-gallery",
	Short: "Portfolio gallery server for the decor studio",
	Long: `decor-gallery serves the category-filtered image gallery, the home page
slideshow and the lightbox viewer API. The subcommands manage the catalog
and the image bucket the server reads from.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, resolveCmd, probeCmd, importCatalogCmd, seedBucketCmd)
}

// loadConfig reads the application configuration and derives the logger
// settings from it
func loadConfig() (*config.Config, observability.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, observability.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	obsCfg := observability.LoadConfig()
	obsCfg.Environment = cfg.Environment
	if cfg.Logging != nil {
		obsCfg.LogLevel = cfg.Logging.Level
		obsCfg.LogFormat = cfg.Logging.Format
	}
	return cfg, obsCfg, nil
}

// newCLILogger logs to stderr so command output on stdout stays parseable
func newCLILogger(cfg observability.Config) *observability.Logger {
	return observability.NewLoggerWithWriter(cfg, zerolog.ConsoleWriter{Out: os.Stderr})
}
