package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Orchestrator owns the async ingestion queue: a bounded job channel drained
// by a fixed worker pool, each worker running jobs through the coordinator.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	coord *Coordinator
	log   *slog.Logger

	workerCount  int
	maxQueueSize int

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start before submitting jobs.
func NewOrchestrator(coord *Coordinator, workerCount, maxQueueSize int, jobTTL time.Duration, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:         NewJobStore(jobTTL),
		queue:        make(chan *Job, maxQueueSize),
		coord:        coord,
		log:          log,
		workerCount:  workerCount,
		maxQueueSize: maxQueueSize,
	}
}

// NewJob registers a queued job for an uploaded file.
func (o *Orchestrator) NewJob(filename string, data []byte) *Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Stage:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)
	return job
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.workerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
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

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	data := job.FileData()
	// Release the upload bytes once the pipeline is done with them.
	defer job.SetFileData(nil)

	if _, err := o.coord.Ingest(ctx, data, job.Filename, job); err != nil {
		o.log.Error("job failed", "job_id", job.ID, "error", err)
	}
}

// Stop gracefully shuts down the pipeline. Safe to call more than once;
// Submit calls racing a Stop fail cleanly instead of panicking on the
// closed queue.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		job.SetStatus(StatusFailed, "shutting_down")
		return fmt.Errorf("pipeline is shutting down")
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.maxQueueSize)
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
