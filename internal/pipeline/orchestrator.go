package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pagemark-io/pagemark/internal/config"
	"github.com/pagemark-io/pagemark/internal/convert"
	"github.com/pagemark-io/pagemark/internal/imagestore"
	"github.com/pagemark-io/pagemark/internal/markdown"
	"github.com/pagemark-io/pagemark/internal/notion"
)

// ErrQueueFull is returned by Submit when the job queue is at capacity.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator manages the document publish pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	notion   *notion.Client
	uploader *imagestore.Uploader
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, nc *notion.Client, up *imagestore.Uploader, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		notion:   nc,
		uploader: up,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	reg := convert.Registry{PDFToText: o.cfg.PDFToText}
	compileCfg := markdown.Config{TextLimit: o.cfg.TextLimit}

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.notion, o.uploader, reg, o.jobs, o.log, compileCfg, o.cfg.NotionParentPageID)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup runs outside the worker wait group so a draining
	// Shutdown only waits on jobs, not on the ticker.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Shutdown closes the queue and waits for workers to drain the jobs already
// accepted. When ctx expires first, in-flight work is canceled and its jobs
// fail.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	close(o.queue)

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if o.cancel != nil {
		o.cancel()
	}
	return err
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Jobs returns the job store for direct use by API handlers.
func (o *Orchestrator) Jobs() *JobStore {
	return o.jobs
}
