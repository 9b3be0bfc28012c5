// Package config loads the service configuration from the environment
// and validates it before anything is wired.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Probe backends for the image fallback chain
const (
	ProbeBackendHTTP  = "http"
	ProbeBackendMinIO = "minio"
	ProbeBackendFS    = "fs"
)

// Config represents the application configuration
type Config struct {
	Environment string
	Port        string
	Host        string
	DatabaseURL string
	Storage     StorageConfig
	Cache       CacheConfig
	Gallery     GalleryConfig
	Logging     *LoggingConfig
	Server      *ServerConfig
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	Region          string
}

// CacheConfig holds Redis/Valkey configuration for the probe cache
type CacheConfig struct {
	Enabled         bool
	Address         string
	Password        string
	Database        int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	DefaultTTL      time.Duration
}

// GalleryConfig holds the image resolution and gallery behaviour settings
type GalleryConfig struct {
	// BasePath is the deployment mount prefix prepended to image paths
	BasePath string
	// SiteURL is the page location used when a client does not send one
	SiteURL     string
	CatalogFile string
	Placeholder string

	ProbeBackend string
	ProbeOrigin  string
	ImageRoot    string
	ProbeTimeout time.Duration

	FilterDelay     time.Duration
	SlideInterval   time.Duration
	ViewIdleTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load creates a new configuration from environment variables with validation
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")

	config := &Config{
		Environment: getEnv("GO_ENV", "development"),
		Port:        port,
		Host:        getEnv("HOST", "localhost"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Storage: StorageConfig{
			Enabled:         parseBool(getEnv("STORAGE_ENABLED", "false")),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "decor-images"),
			UseSSL:          parseBool(getEnv("STORAGE_USE_SSL", "false")),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
		},
		Cache: CacheConfig{
			Enabled:         parseBool(getEnv("CACHE_ENABLED", "false")),
			Address:         getEnv("CACHE_ADDRESS", "localhost:6379"),
			Password:        getEnv("CACHE_PASSWORD", ""),
			Database:        parseInt(getEnv("CACHE_DB", "0"), 0),
			MaxRetries:      parseInt(getEnv("CACHE_MAX_RETRIES", "3"), 3),
			MinRetryBackoff: parseDuration(getEnv("CACHE_MIN_RETRY_BACKOFF", "8ms"), 8*time.Millisecond),
			MaxRetryBackoff: parseDuration(getEnv("CACHE_MAX_RETRY_BACKOFF", "512ms"), 512*time.Millisecond),
			DialTimeout:     parseDuration(getEnv("CACHE_DIAL_TIMEOUT", "5s"), 5*time.Second),
			ReadTimeout:     parseDuration(getEnv("CACHE_READ_TIMEOUT", "3s"), 3*time.Second),
			WriteTimeout:    parseDuration(getEnv("CACHE_WRITE_TIMEOUT", "3s"), 3*time.Second),
			PoolSize:        parseInt(getEnv("CACHE_POOL_SIZE", "10"), 10),
			MinIdleConns:    parseInt(getEnv("CACHE_MIN_IDLE_CONNS", "1"), 1),
			PoolTimeout:     parseDuration(getEnv("CACHE_POOL_TIMEOUT", "4s"), 4*time.Second),
			DefaultTTL:      parseDuration(getEnv("CACHE_DEFAULT_TTL", "1h"), time.Hour),
		},
		Gallery: GalleryConfig{
			BasePath:        getEnv("GALLERY_BASE_PATH", "/"),
			SiteURL:         getEnv("GALLERY_SITE_URL", "http://localhost:"+port+"/"),
			CatalogFile:     getEnv("GALLERY_CATALOG_FILE", "catalog.yaml"),
			Placeholder:     getEnv("GALLERY_PLACEHOLDER", "/images/placeholder.svg"),
			ProbeBackend:    strings.ToLower(getEnv("GALLERY_PROBE_BACKEND", ProbeBackendFS)),
			ProbeOrigin:     getEnv("GALLERY_PROBE_ORIGIN", "http://localhost:"+port),
			ImageRoot:       getEnv("GALLERY_IMAGE_ROOT", "public"),
			ProbeTimeout:    parseDuration(getEnv("GALLERY_PROBE_TIMEOUT", "5s"), 5*time.Second),
			FilterDelay:     parseDuration(getEnv("GALLERY_FILTER_DELAY", "100ms"), 100*time.Millisecond),
			SlideInterval:   parseDuration(getEnv("GALLERY_SLIDE_INTERVAL", "4s"), 4*time.Second),
			ViewIdleTimeout: parseDuration(getEnv("GALLERY_VIEW_IDLE_TIMEOUT", "30m"), 30*time.Minute),
		},
		Logging: &LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Server: &ServerConfig{
			ReadTimeout:  parseDuration(getEnv("READ_TIMEOUT", "10s"), 10*time.Second),
			WriteTimeout: parseDuration(getEnv("WRITE_TIMEOUT", "10s"), 10*time.Second),
			IdleTimeout:  parseDuration(getEnv("SERVER_TIMEOUT", "30s"), 30*time.Second),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// UsesDatabaseCatalog reports whether the catalog is served from PostgreSQL
func (c *Config) UsesDatabaseCatalog() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}

// parseDuration returns -1 for unparsable values so validation can flag them
func parseDuration(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return -1
	}
	return d
}

// MustLoad loads configuration and panics on error
func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		panic(err)
	}
	return config
}
