package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pagemark-io/pagemark/internal/config"
	"github.com/pagemark-io/pagemark/internal/convert"
	"github.com/pagemark-io/pagemark/internal/imagestore"
	"github.com/pagemark-io/pagemark/internal/markdown"
	"github.com/pagemark-io/pagemark/internal/notion"
	"github.com/spf13/pflag"
)

func main() {
	var (
		filePath string
		title    string
		parent   string
		dryRun   bool
		timeout  time.Duration
	)

	flags := pflag.NewFlagSet("pagemark", pflag.ExitOnError)
	flags.StringVarP(&filePath, "file", "f", "", "Input document (- for stdin)")
	flags.StringVarP(&title, "title", "t", "", "Page title (defaults to the first heading)")
	flags.StringVarP(&parent, "parent", "p", "", "Parent page id (defaults to NOTION_PARENT_PAGE_ID)")
	flags.BoolVar(&dryRun, "dry-run", false, "Print compiled blocks as JSON without publishing")
	flags.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall publish timeout")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pagemark [flags] [file]")
		fmt.Fprintln(os.Stderr, "\nPublishes a markdown or office document as a page tree.")
		fmt.Fprintln(os.Stderr, "If no file is provided, markdown is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if filePath == "" && flags.NArg() > 0 {
		filePath = flags.Arg(0)
	}

	if err := run(filePath, title, parent, dryRun, timeout); err != nil {
		fmt.Fprintf(os.Stderr, "pagemark: %v\n", err)
		os.Exit(1)
	}
}

func run(filePath, title, parent string, dryRun bool, timeout time.Duration) error {
	cfg := config.Load()

	source, srcTitle, err := loadSource(filePath, cfg)
	if err != nil {
		return err
	}
	if title == "" {
		title = srcTitle
	}
	if title == "" {
		title = convert.DeriveTitle(source, "Untitled")
	}

	rewritten, atts := markdown.ExtractAttachments(source)
	compileCfg := markdown.Config{TextLimit: cfg.TextLimit}

	if dryRun {
		// Skips uploads, so attachment keys degrade to their stand-ins.
		blks := markdown.Compile(rewritten, nil, compileCfg)
		out, err := json.MarshalIndent(blks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if cfg.NotionAPIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is required")
	}
	if parent == "" {
		parent = cfg.NotionParentPageID
	}
	if parent == "" {
		return fmt.Errorf("parent page id required (--parent or NOTION_PARENT_PAGE_ID)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	resolved := map[string]string{}
	if len(atts) > 0 && cfg.R2Enabled() {
		uploader, err := imagestore.New(imagestore.Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicURL,
			MaxConcurrent:   cfg.MaxConcurrentUploads,
		}, log)
		if err != nil {
			return fmt.Errorf("image store: %w", err)
		}
		resolved = uploader.UploadAll(ctx, atts)
	}

	blks := markdown.Compile(rewritten, resolved, compileCfg)
	if len(blks) == 0 {
		return fmt.Errorf("no publishable content")
	}

	nc := notion.NewClient(cfg.NotionBaseURL, cfg.NotionAPIKey, cfg.NotionVersion)
	defer nc.Close()

	first := min(len(blks), notion.MaxBlocksPerRequest)
	page, err := nc.CreatePage(ctx, parent, title, blks[:first])
	if err != nil {
		return err
	}
	if len(blks) > first {
		if err := nc.AppendChildren(ctx, page.ID, blks[first:]); err != nil {
			return fmt.Errorf("page %s created, but: %w", page.URL, err)
		}
	}

	fmt.Println(page.URL)
	return nil
}

// loadSource reads the input document and converts it to markdown. Stdin is
// always treated as markdown; files route through the extension registry.
func loadSource(path string, cfg config.Config) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.ReplaceAll(string(data), "\r\n", "\n"), "", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	reg := convert.Registry{PDFToText: cfg.PDFToText}
	conv, err := reg.ForFile(path)
	if err != nil {
		return "", "", err
	}
	res, err := conv.Convert(f, path)
	if err != nil {
		return "", "", fmt.Errorf("convert %s: %w", path, err)
	}
	return res.Markdown, res.Title, nil
}
