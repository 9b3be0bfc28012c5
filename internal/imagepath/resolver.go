// Package imagepath turns raw catalog image references into load targets that
// survive spaces, odd characters and non-root deployments.
package imagepath

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)

var (
	ErrExternalSource = errors.New("source is an external URL")
	ErrEmptyKey       = errors.New("source does not name a file")
)

const upperhex = "0123456789ABCDEF"

// Resolver resolves image references for one deployment
type Resolver struct {
	basePath string
	location *url.URL
}

// New creates a resolver for the given deployment base path. location is the
// page location the images are loaded from; a file: scheme makes resolved
// paths relative. An unparsable location is treated as HTTP-served.
func New(basePath, location string) *Resolver {
	r := &Resolver{basePath: NormalizeBasePath(basePath)}
	if location != "" {
		if u, err := url.Parse(location); err == nil {
			r.location = u
		}
	}
	return r
}

// WithLocation returns a copy of the resolver bound to another page location
func (r *Resolver) WithLocation(location string) *Resolver {
	return New(r.basePath, location)
}

// BasePath returns the normalized base path ("" for the root)
func (r *Resolver) BasePath() string {
	return r.basePath
}

// FileContext reports whether images are loaded from the local filesystem
func (r *Resolver) FileContext() bool {
	return r.location != nil && strings.EqualFold(r.location.Scheme, "file")
}

// Resolve produces a URL-safe, deployment-correct image reference
func (r *Resolver) Resolve(raw string) string {
	if raw == "" || IsAbsoluteURL(raw) {
		return raw
	}

	path, suffix := splitSuffix(raw)
	hasLeadingSlash := strings.HasPrefix(path, "/")
	encoded := EncodePath(path)

	if r.FileContext() {
		return encoded + suffix
	}

	leading := ""
	if hasLeadingSlash || r.basePath != "" {
		leading = "/"
	}
	return r.basePath + leading + encoded + suffix
}

// Candidates returns the ordered fallback chain for a raw reference: the
// resolved path, the raw path, then the raw path with spaces as %20.
// Repeated candidates are dropped.
func (r *Resolver) Candidates(raw string) []string {
	if raw == "" {
		return nil
	}

	ordered := []string{
		r.Resolve(raw),
		raw,
		strings.ReplaceAll(raw, " ", "%20"),
	}

	seen := make(map[string]bool, len(ordered))
	candidates := make([]string, 0, len(ordered))
	for _, c := range ordered {
		if seen[c] {
			continue
		}
		seen[c] = true
		candidates = append(candidates, c)
	}
	return candidates
}

// StorageKey maps a site-relative candidate back to a slash-separated key
// under the site root: suffix dropped, percent-decoding applied, base path
// and leading slash removed. Dot segments cannot climb above the root.
func (r *Resolver) StorageKey(candidate string) (string, error) {
	if IsAbsoluteURL(candidate) {
		return "", fmt.Errorf("%w: %s", ErrExternalSource, candidate)
	}

	p, _ := splitSuffix(candidate)
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", candidate, err)
	}

	cleaned := path.Clean("/" + decoded)
	if r.basePath != "" {
		if cleaned == r.basePath {
			cleaned = "/"
		} else if strings.HasPrefix(cleaned, r.basePath+"/") {
			cleaned = strings.TrimPrefix(cleaned, r.basePath)
		}
	}

	key := strings.TrimPrefix(cleaned, "/")
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyKey, candidate)
	}
	return key, nil
}

// IsAbsoluteURL reports whether raw is an absolute HTTP(S) URL
func IsAbsoluteURL(raw string) bool {
	return absoluteURLPattern.MatchString(raw)
}

// NormalizeBasePath strips the trailing slash; "/" and "" both mean the root
func NormalizeBasePath(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimRight(base, "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}

// EncodePath percent-encodes every non-empty segment of path independently
// and joins them with "/". Leading and repeated slashes are not kept.
func EncodePath(path string) string {
	segments := strings.Split(path, "/")
	encoded := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		encoded = append(encoded, EncodeComponent(s))
	}
	return strings.Join(encoded, "/")
}

// EncodeComponent escapes s the way browsers encode a URI component:
// only ASCII letters, digits and -_.!~*'() are left as is.
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// splitSuffix separates the path from a trailing query or fragment
func splitSuffix(raw string) (path, suffix string) {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i], raw[i:]
	}
	return raw, ""
}
