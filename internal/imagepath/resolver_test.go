package imagepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		location string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "absolute https url untouched",
			basePath: "/site/",
			input:    "https://cdn.example.com/My Photo.jpg",
			expected: "https://cdn.example.com/My Photo.jpg",
		},
		{
			name:     "absolute http url is case insensitive",
			basePath: "/site/",
			input:    "HTTP://cdn.example.com/a b.jpg",
			expected: "HTTP://cdn.example.com/a b.jpg",
		},
		{
			name:     "multi segment root relative path",
			input:    "/images/My Photo.jpg",
			expected: "/images/My%20Photo.jpg",
		},
		{
			name:     "root base path is dropped",
			basePath: "/",
			input:    "/images/Haldi & Mehendi/1.jpg",
			expected: "/images/Haldi%20%26%20Mehendi/1.jpg",
		},
		{
			name:     "base path prefixed",
			basePath: "/decor/",
			input:    "/images/stage.jpg",
			expected: "/decor/images/stage.jpg",
		},
		{
			name:     "relative path without base stays relative",
			input:    "images/a b.jpg",
			expected: "images/a%20b.jpg",
		},
		{
			name:     "relative path with base gets separator",
			basePath: "decor",
			input:    "images/a.jpg",
			expected: "/decor/images/a.jpg",
		},
		{
			name:     "query and fragment reattached unmodified",
			input:    "/images/a b.jpg?v=1 2#top",
			expected: "/images/a%20b.jpg?v=1 2#top",
		},
		{
			name:     "repeated slashes collapse",
			input:    "//images//a.jpg",
			expected: "/images/a.jpg",
		},
		{
			name:     "reserved characters in segments are encoded",
			input:    "/images/a:b@c,d.jpg",
			expected: "/images/a%3Ab%40c%2Cd.jpg",
		},
		{
			name:     "unicode segments are utf-8 encoded",
			input:    "/images/सजावट.jpg",
			expected: "/images/%E0%A4%B8%E0%A4%9C%E0%A4%BE%E0%A4%B5%E0%A4%9F.jpg",
		},
		{
			name:     "already encoded input is encoded again",
			input:    "/images/a%20b.jpg",
			expected: "/images/a%2520b.jpg",
		},
		{
			name:     "file location returns relative path",
			basePath: "/decor/",
			location: "file:///home/user/site/index.html",
			input:    "/images/My Photo.jpg",
			expected: "images/My%20Photo.jpg",
		},
		{
			name:     "http location keeps base path",
			basePath: "/decor/",
			location: "https://example.com/decor/gallery",
			input:    "/images/x.jpg",
			expected: "/decor/images/x.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.basePath, tt.location)
			assert.Equal(t, tt.expected, r.Resolve(tt.input))
		})
	}
}

func TestResolver_IdempotentOnAbsoluteURLs(t *testing.T) {
	r := New("/decor", "")
	urls := []string{
		"https://example.com/images/a b.jpg",
		"http://example.com/x?y=z#w",
		"https://example.com",
	}

	for _, u := range urls {
		once := r.Resolve(u)
		assert.Equal(t, u, once)
		assert.Equal(t, once, r.Resolve(once))
	}
}

func TestResolver_Candidates(t *testing.T) {
	r := New("/", "")

	assert.Equal(t,
		[]string{"/images/My%20Photo.jpg", "/images/My Photo.jpg"},
		r.Candidates("/images/My Photo.jpg"),
		"third candidate equals the first and is dropped",
	)

	assert.Equal(t,
		[]string{"/images/%C3%A9t%C3%A9%20(1).jpg", "/images/été (1).jpg", "/images/été%20(1).jpg"},
		r.Candidates("/images/été (1).jpg"),
	)

	assert.Equal(t, []string{"/images/a.jpg"}, r.Candidates("/images/a.jpg"))
	assert.Nil(t, r.Candidates(""))
}

func TestResolver_FileContext(t *testing.T) {
	assert.False(t, New("", "").FileContext())
	assert.False(t, New("", "http://localhost:8080/").FileContext())
	assert.True(t, New("", "FILE:///tmp/index.html").FileContext())

	r := New("/decor", "")
	fileResolver := r.WithLocation("file:///tmp/index.html")
	assert.True(t, fileResolver.FileContext())
	assert.Equal(t, "/decor", fileResolver.BasePath())
	assert.False(t, r.FileContext(), "WithLocation must not mutate the receiver")
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"/":       "",
		"///":     "",
		"/decor/": "/decor",
		"decor":   "/decor",
		" /a/b/ ": "/a/b",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, NormalizeBasePath(input), "input %q", input)
	}
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "a-b_c.d!e~f*g'h(i)j", EncodeComponent("a-b_c.d!e~f*g'h(i)j"))
	assert.Equal(t, "%20%2F%3F%23%25%2B", EncodeComponent(" /?#%+"))
}

func TestResolver_StorageKey(t *testing.T) {
	tests := []struct {
		name      string
		basePath  string
		candidate string
		expected  string
		wantErr   error
	}{
		{name: "encoded candidate", candidate: "/images/My%20Photo.jpg", expected: "images/My Photo.jpg"},
		{name: "raw candidate", candidate: "/images/My Photo.jpg", expected: "images/My Photo.jpg"},
		{name: "relative candidate", candidate: "images/a.jpg?v=2", expected: "images/a.jpg"},
		{name: "base path stripped", basePath: "/decor", candidate: "/decor/images/a.jpg", expected: "images/a.jpg"},
		{name: "base path lookalike kept", basePath: "/decor", candidate: "/decorations/a.jpg", expected: "decorations/a.jpg"},
		{name: "dot segments cannot escape", candidate: "/../../etc/passwd", expected: "etc/passwd"},
		{name: "external url", candidate: "https://cdn.example.com/a.jpg", wantErr: ErrExternalSource},
		{name: "root only", candidate: "/", wantErr: ErrEmptyKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := New(tt.basePath, "").StorageKey(tt.candidate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}

	_, err := New("", "").StorageKey("/images/100%.jpg")
	assert.Error(t, err, "a lone percent sign cannot be decoded")
}
