package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	redisModule "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"decor-gallery/internal/config"
	"decor-gallery/internal/platform/cache"
	"decor-gallery/internal/platform/database"
	"decor-gallery/internal/platform/storage"
)

const (
	minioUsername = "testuser"
	minioPassword = "testpass123"
	testBucket    = "test-images"
)

// SkipIfNoDocker skips integration tests in -short mode or when no container
// provider is reachable
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// Postgres is a migrated PostgreSQL test database
type Postgres struct {
	Container   testcontainers.Container
	DB          *sql.DB
	DatabaseURL string
}

// StartPostgres starts a PostgreSQL container, connects through the
// instrumented driver and applies the migrations. The container is
// terminated when the test ends.
func StartPostgres(ctx context.Context, t *testing.T) *Postgres {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := database.NewConnection(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.RunMigrations(ctx, db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &Postgres{Container: container, DB: db, DatabaseURL: connStr}
}

// Reset removes all catalog data, keeping the schema
func (p *Postgres) Reset(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, "TRUNCATE gallery_images, catalog_imports RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	return nil
}

// MinIO is a MinIO test server with the test bucket created
type MinIO struct {
	Container testcontainers.Container
	Client    *storage.MinIOClient
	Config    config.StorageConfig
}

// StartMinIO starts a MinIO container and connects the storage client
func StartMinIO(ctx context.Context, t *testing.T) *MinIO {
	t.Helper()

	container, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername(minioUsername),
		minio.WithPassword(minioPassword),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start minio container: %v", err)
	}

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get minio endpoint: %v", err)
	}

	cfg := config.StorageConfig{
		Enabled:         true,
		Endpoint:        endpoint,
		AccessKeyID:     minioUsername,
		SecretAccessKey: minioPassword,
		BucketName:      testBucket,
		Region:          "us-east-1",
	}

	client, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create storage client: %v", err)
	}

	return &MinIO{Container: container, Client: client, Config: cfg}
}

// Redis is a Valkey test server (Redis-compatible)
type Redis struct {
	Container testcontainers.Container
	Client    *cache.RedisClient
	Address   string
}

// StartRedis starts a Valkey container and connects the cache client
func StartRedis(ctx context.Context, t *testing.T) *Redis {
	t.Helper()

	container, err := redisModule.Run(ctx,
		"valkey/valkey:7-alpine",
		redisModule.WithLogLevel(redisModule.LogLevelVerbose),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start valkey container: %v", err)
	}

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get valkey endpoint: %v", err)
	}

	// the module returns a redis:// URL, the client config wants host:port
	address := endpoint
	if opts, err := redis.ParseURL(endpoint); err == nil {
		address = opts.Addr
	}

	client, err := cache.NewRedisClient(ctx, config.CacheConfig{
		Enabled:     true,
		Address:     address,
		DefaultTTL:  time.Hour,
		DialTimeout: 5 * time.Second,
		PoolSize:    5,
	})
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &Redis{Container: container, Client: client, Address: address}
}

// Flush clears all keys of the test database
func (r *Redis) Flush(ctx context.Context) error {
	return r.Client.FlushCache(ctx)
}
