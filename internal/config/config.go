package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Notion connection
	NotionBaseURL      string
	NotionAPIKey       string
	NotionVersion      string
	NotionParentPageID string

	// Auth
	PagemarkAPIKey string

	// Compiler
	TextLimit int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Image uploads (Cloudflare R2); set all five or none
	R2AccountID          string
	R2AccessKeyID        string
	R2SecretAccessKey    string
	R2BucketName         string
	R2PublicURL          string
	MaxConcurrentUploads int

	// PDF
	PDFToText bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8080"),

		NotionBaseURL:      envOr("NOTION_BASE_URL", "https://api.notion.com"),
		NotionAPIKey:       os.Getenv("NOTION_API_KEY"),
		NotionVersion:      envOr("NOTION_VERSION", "2025-09-03"),
		NotionParentPageID: os.Getenv("NOTION_PARENT_PAGE_ID"),

		PagemarkAPIKey: os.Getenv("PAGEMARK_API_KEY"),

		TextLimit: envInt("TEXT_LIMIT", 2000),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:          os.Getenv("R2_PUBLIC_URL"),
		MaxConcurrentUploads: envInt("MAX_CONCURRENT_UPLOADS", 4),

		PDFToText: envBool("PDF_TO_TEXT", false),
	}

	if cfg.TextLimit <= 0 {
		cfg.TextLimit = 2000
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxConcurrentUploads <= 0 {
		cfg.MaxConcurrentUploads = 4
	}

	return cfg
}

// Validate checks the settings the HTTP service cannot run without.
func (c Config) Validate() error {
	if c.NotionAPIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is required")
	}
	if c.NotionParentPageID == "" {
		return fmt.Errorf("NOTION_PARENT_PAGE_ID is required")
	}
	if c.PagemarkAPIKey == "" {
		return fmt.Errorf("PAGEMARK_API_KEY is required")
	}
	return c.validateR2()
}

// R2Enabled reports whether image uploads are configured.
func (c Config) R2Enabled() bool {
	return c.R2AccountID != ""
}

func (c Config) validateR2() error {
	set := 0
	for _, v := range []string{c.R2AccountID, c.R2AccessKeyID, c.R2SecretAccessKey, c.R2BucketName, c.R2PublicURL} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 5 {
		return fmt.Errorf("incomplete R2 configuration: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_URL or none")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
