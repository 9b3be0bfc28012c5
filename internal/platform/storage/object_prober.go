package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"decor-gallery/internal/imagepath"
)

// ErrNotAnImage is returned for objects that are not images
var ErrNotAnImage = errors.New("object is not an image")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
	".avif": true,
}

// ObjectStat is the part of the MinIO client the prober needs
type ObjectStat interface {
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
}

// ObjectProber checks fallback candidates against objects in the bucket
type ObjectProber struct {
	objects  ObjectStat
	resolver *imagepath.Resolver
}

// NewObjectProber creates a prober mapping candidates to bucket keys with
// resolver
func NewObjectProber(objects ObjectStat, resolver *imagepath.Resolver) *ObjectProber {
	return &ObjectProber{objects: objects, resolver: resolver}
}

// Probe succeeds when the candidate names an image object
func (p *ObjectProber) Probe(ctx context.Context, src string) error {
	key, err := p.resolver.StorageKey(src)
	if err != nil {
		return err
	}

	info, err := p.objects.Stat(ctx, key)
	if err != nil {
		return err
	}

	if !IsImageObject(info) {
		return fmt.Errorf("%w: %s (%s)", ErrNotAnImage, key, info.ContentType)
	}
	return nil
}

// IsImageObject accepts image content types, and generic binary types when
// the key has an image extension
func IsImageObject(info *ObjectInfo) bool {
	contentType := strings.ToLower(info.ContentType)
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		return imageExtensions[strings.ToLower(path.Ext(info.Key))]
	}
	return false
}
