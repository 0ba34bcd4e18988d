package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/image/draw"

	"github.com/pagemark-io/pagemark/internal/markdown"
)

// Chart thumbnail limits. Uploads are sized for inline embeds, not for
// full-resolution archival.
const (
	thumbWidth  = 600
	thumbHeight = 400
	jpegQuality = 100
)

// Config holds R2 object storage settings.
type Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string // URL prefix the bucket is served under
	MaxConcurrent   int    // parallel uploads per publish
}

// Uploader pushes chart images to R2 and hands back public URLs.
// A nil *Uploader is valid and resolves nothing.
type Uploader struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
	maxConcurrent int
	log           *slog.Logger
}

// New builds an R2-backed uploader. A config without an account id means
// uploads are disabled; New then returns nil and attachments stay unresolved.
func New(cfg Config, log *slog.Logger) (*Uploader, error) {
	if cfg.AccountID == "" {
		return nil, nil
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}

	endpoint := fmt.Sprintf("%s.r2.cloudflarestorage.com", cfg.AccountID)
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: true,
		Region: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("r2 client: %w", err)
	}

	return &Uploader{
		mc:            mc,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		maxConcurrent: cfg.MaxConcurrent,
		log:           log,
	}, nil
}

// UploadAll uploads every attachment it can and returns a key to public URL
// map. Per-file failures are logged and skipped, so the map may be missing
// keys; the caller degrades those attachments instead of failing the publish.
func (u *Uploader) UploadAll(ctx context.Context, atts []markdown.Attachment) map[string]string {
	resolved := make(map[string]string, len(atts))
	if u == nil || len(atts) == 0 {
		return resolved
	}

	type uploadResult struct {
		key string
		url string
		err error
	}
	results := make(chan uploadResult, len(atts))
	sem := make(chan struct{}, u.maxConcurrent)

	for _, att := range atts {
		sem <- struct{}{}
		go func(att markdown.Attachment) {
			defer func() { <-sem }()
			url, err := u.uploadOne(ctx, att.Key)
			results <- uploadResult{key: att.Key, url: url, err: err}
		}(att)
	}

	for range atts {
		r := <-results
		if r.err != nil {
			u.log.Warn("image upload failed", "key", r.key, "error", r.err)
			continue
		}
		resolved[r.key] = r.url
	}
	return resolved
}

func (u *Uploader) uploadOne(ctx context.Context, key string) (string, error) {
	f, err := os.Open(key)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := encodeThumbnail(f)
	if err != nil {
		return "", err
	}

	name := objectKey(key, time.Now())
	_, err = u.mc.PutObject(ctx, u.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return u.publicBaseURL + "/" + name, nil
}

// encodeThumbnail decodes src (png, jpeg or gif), downsizes it to fit the
// thumbnail box, and re-encodes it as JPEG.
func encodeThumbnail(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), thumbWidth, thumbHeight)
	if w != b.Dx() || h != b.Dy() {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales (w, h) down to fit inside maxW x maxH preserving aspect
// ratio. Images already inside the box keep their size; there is no upscaling.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// objectKey derives the bucket object name for a source path. The timestamp
// keeps re-renders of the same chart from colliding.
func objectKey(key string, now time.Time) string {
	base := filepath.Base(key)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("charts/%s_%d.jpg", base, now.Unix())
}
