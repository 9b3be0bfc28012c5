package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_add_index.sql":      {Data: []byte("CREATE INDEX x ON t(c);")},
		"m/001_create_table.sql":   {Data: []byte("CREATE TABLE t (c INT);")},
		"m/README.md":              {Data: []byte("docs")},
		"m/nested/003_ignored.sql": {Data: []byte("SELECT 1;")},
		"other/004_not_in_dir.sql": {Data: []byte("SELECT 1;")},
	}

	migrations, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "create table", migrations[0].Description)
	assert.Equal(t, "CREATE TABLE t (c INT);", migrations[0].SQL)
	assert.Equal(t, "002", migrations[1].Version)
	assert.Equal(t, "add index", migrations[1].Description)
}

func TestLoadMigrations_InvalidName(t *testing.T) {
	fsys := fstest.MapFS{
		"m/nounderscore.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := LoadMigrations(fsys, "m")
	assert.ErrorIs(t, err, ErrInvalidMigration)
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{}, "missing")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := LoadMigrations(embeddedMigrations, "migrations")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "001", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS gallery_images")
	assert.Contains(t, migrations[0].SQL, "category <> 'All'")
	assert.Equal(t, "002", migrations[1].Version)
	assert.Contains(t, migrations[1].SQL, "catalog_imports")
}
