package pipeline

import (
	"sync"
	"time"

	"github.com/telder/paperidx/internal/corpus"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusChecksumming JobStatus = "checksumming"
	StatusLoading      JobStatus = "loading"
	StatusSplitting    JobStatus = "splitting"
	StatusChunking     JobStatus = "chunking"
	StatusEmbedding    JobStatus = "embedding"
	StatusIndexing     JobStatus = "indexing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
	StatusDupSkipped   JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single document ingestion.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	DocumentID string `json:"document_id"`

	Status   JobStatus `json:"status"`
	Stage    string    `json:"stage"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	Checksum  string    `json:"checksum,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks    int      `json:"total_chunks"`
	Indexed        int      `json:"indexed"`
	IndexErrors    int      `json:"index_errors"`
	ExcludedTables int      `json:"excluded_tables"`
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
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, stage string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Stage = stage
	j.UpdatedAt = time.Now()
}

// SetChecksum records the document content checksum once computed.
func (j *Job) SetChecksum(sum string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Checksum = sum
	j.UpdatedAt = time.Now()
}

// SetDocumentID records the identity assigned during ingestion.
func (j *Job) SetDocumentID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DocumentID = id
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

// SetTotalChunks records total chunk count.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// RecordOutcome folds the final ingestion report into the job.
func (j *Job) RecordOutcome(r corpus.IngestReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DocumentID = r.DocumentID
	j.Checksum = r.Checksum
	j.Progress.TotalChunks = r.Chunks
	j.Progress.Indexed = r.Indexed
	j.Progress.IndexErrors = r.IndexErrs
	j.Progress.ExcludedTables = r.Excluded
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	DocumentID string    `json:"document_id"`
	Status     JobStatus `json:"status"`
	Stage      string    `json:"stage"`
	Filename   string    `json:"filename"`
	Checksum   string    `json:"checksum,omitempty"`
	Progress   Progress  `json:"progress"`
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
		ID:         j.ID,
		DocumentID: j.DocumentID,
		Status:     j.Status,
		Stage:      j.Stage,
		Filename:   j.Filename,
		Checksum:   j.Checksum,
		Progress: Progress{
			TotalChunks:    j.Progress.TotalChunks,
			Indexed:        j.Progress.Indexed,
			IndexErrors:    j.Progress.IndexErrors,
			ExcludedTables: j.Progress.ExcludedTables,
			Errors:         errs,
		},
	}
}
