package testutils

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"

	domain "decor-gallery/internal/domain/gallery"
)

// SampleImages returns a small portfolio spanning three categories
func SampleImages() []domain.ImageRecord {
	return []domain.ImageRecord{
		{Src: "/images/weddings/mandap.jpg", Alt: "Floral mandap", Category: "Weddings"},
		{Src: "/images/birthdays/balloon arch.jpg", Alt: "Balloon arch", Category: "Birthdays"},
		{Src: "/images/weddings/stage.jpg", Alt: "Reception stage", Category: "Weddings"},
		{Src: "/images/corporate/gala.jpg", Alt: "Gala dinner", Category: "Corporate"},
		{Src: "/images/birthdays/cake table.jpg", Alt: "Cake table", Category: "Birthdays"},
	}
}

// SampleSlides returns a slideshow set
func SampleSlides() []domain.ImageRecord {
	return []domain.ImageRecord{
		{Src: "/images/slides/hero 1.jpg", Alt: "Hero one", Category: "Weddings"},
		{Src: "/images/slides/hero 2.jpg", Alt: "Hero two", Category: "Corporate"},
	}
}

// PNG encodes a solid width x height PNG
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// DecodeJSON asserts a JSON response and decodes it into target
func DecodeJSON(t testing.TB, resp *httptest.ResponseRecorder, target interface{}) {
	t.Helper()

	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected JSON response, got %q: %s", ct, resp.Body.String())
	}
	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to unmarshal JSON response: %v: %s", err, resp.Body.String())
	}
}
