package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobStatus represents the state of a publish job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusUploading  JobStatus = "uploading_images"
	StatusCompiling  JobStatus = "compiling"
	StatusPublishing JobStatus = "publishing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single document publish.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename,omitempty"`
	Title    string    `json:"title"`

	ParentPageID string `json:"parent_page_id,omitempty"`
	Force        bool   `json:"force,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	PageID      string    `json:"page_id,omitempty"`
	PageURL     string    `json:"page_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	source   string
	fileData []byte
	errors   []string
}

// Progress tracks publishing progress.
type Progress struct {
	TotalBlocks    int      `json:"total_blocks"`
	BlocksWritten  int      `json:"blocks_written"`
	ImagesFound    int      `json:"images_found"`
	ImagesUploaded int      `json:"images_uploaded"`
	ImagesFailed   int      `json:"images_failed"`
	Errors         []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// FindCompletedByHash returns the most recently completed job whose published
// content matches hash, or nil. Jobs still in flight never match.
func (s *JobStore) FindCompletedByHash(hash string) *Job {
	if hash == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *Job
	var foundAt time.Time
	for _, job := range s.jobs {
		job.mu.Lock()
		match := job.Status == StatusCompleted && job.ContentHash == hash
		updated := job.UpdatedAt
		job.mu.Unlock()
		if match && (found == nil || updated.After(foundAt)) {
			found = job
			foundAt = updated
		}
	}
	return found
}

// RecentCompleted returns snapshots of completed publishes, newest first,
// capped at limit.
func (s *JobStore) RecentCompleted(limit int) []JobSnapshot {
	s.mu.Lock()
	var snaps []JobSnapshot
	for _, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status == StatusCompleted {
			snaps = append(snaps, snap)
		}
	}
	s.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].UpdatedAt.After(snaps[j].UpdatedAt)
	})
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTitle records the title resolved during conversion.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the converted source.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// SetTotalBlocks records the compiled block count.
func (j *Job) SetTotalBlocks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalBlocks = n
	j.UpdatedAt = time.Now()
}

// AddBlocksWritten records blocks accepted by the page API.
func (j *Job) AddBlocksWritten(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.BlocksWritten += n
	j.UpdatedAt = time.Now()
}

// SetImagesFound records how many attachments the source references.
func (j *Job) SetImagesFound(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ImagesFound = n
	j.UpdatedAt = time.Now()
}

// SetImagesUploaded records upload outcomes.
func (j *Job) SetImagesUploaded(uploaded, failed int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ImagesUploaded = uploaded
	j.Progress.ImagesFailed = failed
	j.UpdatedAt = time.Now()
}

// SetPage records the created page once the page API accepts it.
func (j *Job) SetPage(id, url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.PageID = id
	j.PageURL = url
	j.UpdatedAt = time.Now()
}

// SetSource sets markdown source for direct submissions.
func (j *Job) SetSource(src string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.source = src
}

// Source returns the markdown source.
func (j *Job) Source() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.source
}

// SetFileData sets the raw upload bytes for file submissions.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw upload bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename,omitempty"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	PageID      string    `json:"page_id,omitempty"`
	PageURL     string    `json:"page_url,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		PageID:      j.PageID,
		PageURL:     j.PageURL,
		Progress: Progress{
			TotalBlocks:    j.Progress.TotalBlocks,
			BlocksWritten:  j.Progress.BlocksWritten,
			ImagesFound:    j.Progress.ImagesFound,
			ImagesUploaded: j.Progress.ImagesUploaded,
			ImagesFailed:   j.Progress.ImagesFailed,
			Errors:         errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
