package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemark-io/pagemark/internal/blocks"
	"github.com/pagemark-io/pagemark/internal/convert"
	"github.com/pagemark-io/pagemark/internal/imagestore"
	"github.com/pagemark-io/pagemark/internal/markdown"
	"github.com/pagemark-io/pagemark/internal/notion"
)

// Worker processes a single publish job.
type Worker struct {
	notion   *notion.Client
	uploader *imagestore.Uploader
	reg      convert.Registry
	jobs     *JobStore
	log      *slog.Logger

	compileCfg    markdown.Config
	defaultParent string
}

func NewWorker(nc *notion.Client, up *imagestore.Uploader, reg convert.Registry, jobs *JobStore, log *slog.Logger, compileCfg markdown.Config, defaultParent string) *Worker {
	return &Worker{
		notion:        nc,
		uploader:      up,
		reg:           reg,
		jobs:          jobs,
		log:           log,
		compileCfg:    compileCfg,
		defaultParent: defaultParent,
	}
}

// Process runs the full publish pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	if job.Filename != "" {
		log = log.With("filename", job.Filename)
	}

	// Phase 1: Convert
	job.SetStatus(StatusConverting, "converting")
	source := job.source
	title := job.Title
	if len(job.fileData) > 0 {
		conv, err := w.reg.ForFile(job.Filename)
		if err != nil {
			log.Error("unsupported format", "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "converting")
			return
		}
		res, err := conv.Convert(bytes.NewReader(job.fileData), job.Filename)
		if err != nil {
			log.Error("convert failed", "error", err)
			job.AddError(fmt.Sprintf("convert: %s", err))
			job.SetStatus(StatusFailed, "converting")
			return
		}
		source = res.Markdown
		if title == "" {
			title = res.Title
		}
	}
	if title == "" {
		title = convert.DeriveTitle(source, "Untitled")
	}
	job.SetTitle(title)

	// Hash the converted source for dedup.
	hash := ContentHashHex([]byte(source))
	job.SetContentHash(hash)

	if !job.Force {
		if prior := w.jobs.FindCompletedByHash(hash); prior != nil {
			snap := prior.Snapshot()
			log.Info("duplicate content, skipping", "prior_job_id", snap.ID, "page_url", snap.PageURL)
			job.SetPage(snap.PageID, snap.PageURL)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Extract attachments and upload them.
	rewritten, atts := markdown.ExtractAttachments(source)
	job.SetImagesFound(len(atts))
	resolved := map[string]string{}
	if len(atts) > 0 {
		job.SetStatus(StatusUploading, "uploading")
		resolved = w.uploader.UploadAll(ctx, atts)
		job.SetImagesUploaded(len(resolved), len(atts)-len(resolved))
		if len(resolved) < len(atts) {
			log.Warn("image uploads incomplete", "found", len(atts), "uploaded", len(resolved))
		}
	}

	// Phase 3: Compile
	job.SetStatus(StatusCompiling, "compiling")
	blks := markdown.Compile(rewritten, resolved, w.compileCfg)
	job.SetTotalBlocks(len(blks))
	for _, verr := range blocks.Validate(blks, w.compileCfg.TextLimit) {
		log.Warn("block over limit", "error", verr)
	}
	log.Info("compiled document", "blocks", len(blks))

	if len(blks) == 0 {
		log.Warn("no blocks produced")
		job.AddError("no publishable content")
		job.SetStatus(StatusFailed, "compiling")
		return
	}

	// Phase 4: Publish
	job.SetStatus(StatusPublishing, "publishing")
	parent := job.ParentPageID
	if parent == "" {
		parent = w.defaultParent
	}

	first := min(len(blks), notion.MaxBlocksPerRequest)
	page, err := w.createPage(ctx, parent, title, blks[:first], log)
	if err != nil {
		log.Error("create page failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "publishing")
		return
	}
	job.SetPage(page.ID, page.URL)
	job.AddBlocksWritten(first)

	// Append the remainder in order. A failed batch aborts the rest so the
	// page never ends up with content out of sequence.
	for start := first; start < len(blks); start += notion.MaxBlocksPerRequest {
		end := min(start+notion.MaxBlocksPerRequest, len(blks))
		if err := w.appendBatch(ctx, page.ID, blks[start:end], log); err != nil {
			log.Error("append failed", "start", start, "end", end, "error", err)
			job.AddError(fmt.Sprintf("append blocks [%d:%d): %s", start, end, err))
			job.SetStatus(StatusFailed, "publishing")
			return
		}
		job.AddBlocksWritten(end - start)
	}

	log.Info("published page", "page_id", page.ID, "url", page.URL, "blocks", len(blks))
	job.SetStatus(StatusCompleted, "done")
}

// createPage calls the page API with retries on retryable errors.
func (w *Worker) createPage(ctx context.Context, parent, title string, children []blocks.Block, log *slog.Logger) (*notion.Page, error) {
	var page *notion.Page
	var lastErr error
	for attempt := range MaxRetries {
		page, lastErr = w.notion.CreatePage(ctx, parent, title, children)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable create error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return page, lastErr
}

// appendBatch appends one batch of children with retries on retryable errors.
func (w *Worker) appendBatch(ctx context.Context, pageID string, children []blocks.Block, log *slog.Logger) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.notion.AppendChildren(ctx, pageID, children)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable append error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
