package imagestore

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pagemark-io/pagemark/internal/markdown"
)

func TestFitWithin(t *testing.T) {
	cases := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"landscape downscale", 1200, 800, 600, 400},
		{"portrait downscale", 800, 1200, 267, 400},
		{"already inside", 300, 200, 300, 200},
		{"exact fit", 600, 400, 600, 400},
		{"wide banner", 2400, 100, 600, 25},
		{"tall strip", 100, 2400, 17, 400},
		{"barely over", 601, 400, 600, 399},
	}
	for _, tc := range cases {
		gotW, gotH := fitWithin(tc.w, tc.h, thumbWidth, thumbHeight)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("%s: expected %dx%d, got %dx%d", tc.name, tc.wantW, tc.wantH, gotW, gotH)
		}
	}
}

func TestObjectKey(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cases := []struct {
		key  string
		want string
	}{
		{"/tmp/market_charts_abc/btc_trend.png", "charts/btc_trend_1700000000.jpg"},
		{"relative/dir/volume.jpeg", "charts/volume_1700000000.jpg"},
		{"bare", "charts/bare_1700000000.jpg"},
	}
	for _, tc := range cases {
		if got := objectKey(tc.key, now); got != tc.want {
			t.Errorf("objectKey(%q): expected %q, got %q", tc.key, tc.want, got)
		}
	}
}

func TestEncodeThumbnailDownscalesToJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1200, 800))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	data, err := encodeThumbnail(&buf)
	if err != nil {
		t.Fatalf("encodeThumbnail failed: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	b := img.Bounds()
	if b.Dx() != 600 || b.Dy() != 400 {
		t.Errorf("expected 600x400, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeThumbnailKeepsSmallImages(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 240))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	data, err := encodeThumbnail(&buf)
	if err != nil {
		t.Fatalf("encodeThumbnail failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected 320x240 unchanged, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeThumbnailRejectsNonImageData(t *testing.T) {
	if _, err := encodeThumbnail(strings.NewReader("not an image")); err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestUploadAllOnNilUploader(t *testing.T) {
	var u *Uploader
	resolved := u.UploadAll(context.Background(), []markdown.Attachment{{Key: "/tmp/chart.png"}})
	if len(resolved) != 0 {
		t.Errorf("expected empty map from nil uploader, got %v", resolved)
	}
}

func TestUploadAllSkipsUnreadableFiles(t *testing.T) {
	u := &Uploader{
		bucket:        "charts",
		publicBaseURL: "https://img.example.com",
		maxConcurrent: 2,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	resolved := u.UploadAll(context.Background(), []markdown.Attachment{
		{Key: "/nonexistent/a.png", Label: "a"},
		{Key: "/nonexistent/b.png", Label: "b"},
	})
	if len(resolved) != 0 {
		t.Errorf("expected no resolved entries, got %v", resolved)
	}
}
