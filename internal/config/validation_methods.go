package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("configuration validation failed: %s", strings.Join(messages, "; "))
}

// Has checks if ValidationErrors contains any errors
func (ve ValidationErrors) Has() bool {
	return len(ve) > 0
}

// Fields returns the names of the offending fields
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve))
	for _, err := range ve {
		fields = append(fields, err.Field)
	}
	return fields
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var validationErrors ValidationErrors

	validationErrors = append(validationErrors, c.validateServer()...)
	validationErrors = append(validationErrors, c.validateDatabase()...)
	validationErrors = append(validationErrors, c.validateStorage()...)
	validationErrors = append(validationErrors, c.validateCache()...)
	validationErrors = append(validationErrors, c.validateGallery()...)

	if c.Logging != nil {
		validationErrors = append(validationErrors, c.validateLogging()...)
	}

	if c.Server != nil {
		validationErrors = append(validationErrors, c.validateServerTimeouts()...)
	}

	if validationErrors.Has() {
		return validationErrors
	}

	return nil
}

func (c *Config) validateServer() ValidationErrors {
	var errors ValidationErrors

	if c.Port == "" {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port cannot be empty",
		})
	} else if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be a valid integer",
		})
	} else if port < 1 || port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be between 1 and 65535",
		})
	}

	if c.Environment != "" {
		validEnvs := []string{"development", "production", "test", "staging"}
		if !slices.Contains(validEnvs, c.Environment) {
			errors = append(errors, ValidationError{
				Field:   "environment",
				Value:   c.Environment,
				Message: "environment must be one of: development, production, test, staging",
			})
		}
	}

	return errors
}

// validateDatabase checks the optional catalog database URL
func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors

	if c.DatabaseURL == "" {
		return errors
	}

	parsedURL, err := url.Parse(c.DatabaseURL)
	if err != nil {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   "[REDACTED]",
			Message: "database URL must be a valid URL",
		})
		return errors
	}

	if parsedURL.Scheme != "postgres" && parsedURL.Scheme != "postgresql" {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   parsedURL.Scheme,
			Message: "database URL must use postgres or postgresql scheme",
		})
	}

	if parsedURL.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   "[REDACTED]",
			Message: "database URL must include host",
		})
	}

	if parsedURL.Path == "" || parsedURL.Path == "/" {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   "[REDACTED]",
			Message: "database URL must include database name",
		})
	}

	return errors
}

func (c *Config) validateStorage() ValidationErrors {
	var errors ValidationErrors

	if !c.Storage.Enabled && c.Gallery.ProbeBackend != ProbeBackendMinIO {
		return errors
	}

	if !c.Storage.Enabled {
		errors = append(errors, ValidationError{
			Field:   "storage.enabled",
			Value:   c.Storage.Enabled,
			Message: "storage must be enabled for the minio probe backend",
		})
	}

	if c.Storage.Endpoint == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.endpoint",
			Value:   c.Storage.Endpoint,
			Message: "storage endpoint cannot be empty",
		})
	}

	if c.Storage.BucketName == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.bucket_name",
			Value:   c.Storage.BucketName,
			Message: "storage bucket name cannot be empty",
		})
	} else if !isValidBucketName(c.Storage.BucketName) {
		errors = append(errors, ValidationError{
			Field:   "storage.bucket_name",
			Value:   c.Storage.BucketName,
			Message: "storage bucket name must be 3-63 characters, lowercase alphanumeric and hyphens only",
		})
	}

	if c.Environment == "production" {
		if c.Storage.AccessKeyID == "minioadmin" {
			errors = append(errors, ValidationError{
				Field:   "storage.access_key_id",
				Value:   c.Storage.AccessKeyID,
				Message: "default storage access key must not be used in production",
			})
		}

		if c.Storage.SecretAccessKey == "minioadmin" {
			errors = append(errors, ValidationError{
				Field:   "storage.secret_access_key",
				Value:   "[REDACTED]",
				Message: "default storage secret key must not be used in production",
			})
		}
	}

	return errors
}

func (c *Config) validateCache() ValidationErrors {
	var errors ValidationErrors

	if !c.Cache.Enabled {
		return errors
	}

	if c.Cache.Address == "" {
		errors = append(errors, ValidationError{
			Field:   "cache.address",
			Value:   c.Cache.Address,
			Message: "cache address cannot be empty when the cache is enabled",
		})
	}

	if c.Cache.Database < 0 || c.Cache.Database > 15 {
		errors = append(errors, ValidationError{
			Field:   "cache.database",
			Value:   c.Cache.Database,
			Message: "cache database must be between 0 and 15",
		})
	}

	if c.Cache.DefaultTTL <= 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.default_ttl",
			Value:   c.Cache.DefaultTTL,
			Message: "cache default TTL must be greater than 0",
		})
	}

	if c.Cache.PoolSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "cache.pool_size",
			Value:   c.Cache.PoolSize,
			Message: "cache pool size must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateGallery() ValidationErrors {
	var errors ValidationErrors
	g := c.Gallery

	switch g.ProbeBackend {
	case ProbeBackendHTTP:
		if u, err := url.Parse(g.ProbeOrigin); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "gallery.probe_origin",
				Value:   g.ProbeOrigin,
				Message: "probe origin must be an absolute http(s) URL",
			})
		}
	case ProbeBackendFS:
		if g.ImageRoot == "" {
			errors = append(errors, ValidationError{
				Field:   "gallery.image_root",
				Value:   g.ImageRoot,
				Message: "image root cannot be empty for the fs probe backend",
			})
		}
	case ProbeBackendMinIO:
	default:
		errors = append(errors, ValidationError{
			Field:   "gallery.probe_backend",
			Value:   g.ProbeBackend,
			Message: "probe backend must be one of: http, minio, fs",
		})
	}

	if g.SiteURL != "" {
		if _, err := url.Parse(g.SiteURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "gallery.site_url",
				Value:   g.SiteURL,
				Message: "site URL must be a valid URL",
			})
		}
	}

	if !c.UsesDatabaseCatalog() && g.CatalogFile == "" {
		errors = append(errors, ValidationError{
			Field:   "gallery.catalog_file",
			Value:   g.CatalogFile,
			Message: "catalog file is required when no database is configured",
		})
	}

	if g.Placeholder == "" {
		errors = append(errors, ValidationError{
			Field:   "gallery.placeholder",
			Value:   g.Placeholder,
			Message: "placeholder image cannot be empty",
		})
	}

	if g.ProbeTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gallery.probe_timeout",
			Value:   g.ProbeTimeout,
			Message: "probe timeout must be greater than 0",
		})
	}

	if g.FilterDelay < 0 || g.FilterDelay > 5*time.Second {
		errors = append(errors, ValidationError{
			Field:   "gallery.filter_delay",
			Value:   g.FilterDelay,
			Message: "filter delay must be between 0 and 5 seconds",
		})
	}

	if g.SlideInterval < 500*time.Millisecond {
		errors = append(errors, ValidationError{
			Field:   "gallery.slide_interval",
			Value:   g.SlideInterval,
			Message: "slide interval must be at least 500ms",
		})
	}

	if g.ViewIdleTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gallery.view_idle_timeout",
			Value:   g.ViewIdleTimeout,
			Message: "view idle timeout must be greater than 0",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.ContainsFunc(validLevels, func(l string) bool { return strings.EqualFold(c.Logging.Level, l) }) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "logging level must be one of: debug, info, warn, error",
		})
	}

	validFormats := []string{"json", "text", "console"}
	if !slices.ContainsFunc(validFormats, func(f string) bool { return strings.EqualFold(c.Logging.Format, f) }) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: "logging format must be one of: json, text, console",
		})
	}

	return errors
}

func (c *Config) validateServerTimeouts() ValidationErrors {
	var errors ValidationErrors

	timeouts := []struct {
		field string
		value time.Duration
		max   time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout, 5 * time.Minute},
		{"server.write_timeout", c.Server.WriteTimeout, 5 * time.Minute},
		{"server.idle_timeout", c.Server.IdleTimeout, 0},
	}

	for _, t := range timeouts {
		if t.value <= 0 {
			errors = append(errors, ValidationError{
				Field:   t.field,
				Value:   t.value,
				Message: "timeout must be greater than 0",
			})
		} else if t.max > 0 && t.value > t.max {
			errors = append(errors, ValidationError{
				Field:   t.field,
				Value:   t.value,
				Message: "timeout should not exceed 5 minutes",
			})
		}
	}

	return errors
}

// isValidBucketName validates S3/MinIO bucket naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	if !isLowerAlphaNum(name[0]) || !isLowerAlphaNum(name[len(name)-1]) {
		return false
	}

	for i := 0; i < len(name); i++ {
		b := name[i]
		if !isLowerAlphaNum(b) && b != '-' {
			return false
		}
		if i > 0 && b == '-' && name[i-1] == '-' {
			return false
		}
	}

	return true
}

func isLowerAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
