package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

const maxSeedFileSize = 20 * 1024 * 1024

// ErrUnsafeKey is returned for object keys that could escape the bucket
// prefix or hide files
var ErrUnsafeKey = errors.New("unsafe object key")

// Uploader is the part of the MinIO client the seeder needs
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// SeedReport summarizes one seeding run
type SeedReport struct {
	Uploaded []string `json:"uploaded"`
	Skipped  []string `json:"skipped"`
}

// Seed copies every image below dir of fsys into the bucket, keeping the
// relative path as the key so bucket keys match site paths. Files that are
// not images are skipped.
func Seed(ctx context.Context, fsys fs.FS, dir string, uploader Uploader) (*SeedReport, error) {
	report := &SeedReport{}

	err := fs.WalkDir(fsys, dir, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if err := ValidateKey(name); err != nil {
			report.Skipped = append(report.Skipped, name)
			return nil
		}

		uploaded, err := seedFile(ctx, fsys, name, uploader)
		if err != nil {
			return err
		}
		if uploaded {
			report.Uploaded = append(report.Uploaded, name)
		} else {
			report.Skipped = append(report.Skipped, name)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to seed bucket from %s: %w", dir, err)
	}

	return report, nil
}

func seedFile(ctx context.Context, fsys fs.FS, name string, uploader Uploader) (bool, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxSeedFileSize {
		return false, nil
	}

	contentType := DetectImageType(data, name)
	if contentType == "" {
		return false, nil
	}

	if err := uploader.Upload(ctx, name, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return false, err
	}
	return true, nil
}

// DetectImageType returns the image content type of data, or "" when data
// is not an image. SVG files are recognized by extension.
func DetectImageType(data []byte, name string) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}

	ext := strings.ToLower(path.Ext(name))
	if !imageExtensions[ext] || strings.HasPrefix(sniffed, "text/html") {
		return ""
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// ValidateKey rejects keys with traversal, absolute paths, hidden files or
// control characters
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty key", ErrUnsafeKey)
	case len(key) > 1024:
		return fmt.Errorf("%w: key too long", ErrUnsafeKey)
	case strings.HasPrefix(key, "/") || strings.HasPrefix(key, "\\"):
		return fmt.Errorf("%w: absolute path %q", ErrUnsafeKey, key)
	case strings.ContainsRune(key, 0):
		return fmt.Errorf("%w: null byte in %q", ErrUnsafeKey, key)
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: path traversal in %q", ErrUnsafeKey, key)
		}
		if strings.HasPrefix(segment, ".") {
			return fmt.Errorf("%w: hidden file %q", ErrUnsafeKey, key)
		}
	}
	return nil
}
