// Package storage implements the in-memory job registry.
package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"grabtube/internal/config"
	"grabtube/internal/entity"
	"grabtube/internal/errs"
	"grabtube/internal/observability"
	"grabtube/pkg/gen"
)

// Storer defines the interface for job registry operations.
type Storer interface {
	// CreateJob allocates a fresh job in state queued and returns it
	// immediately. Safe for concurrent use.
	CreateJob(ctx context.Context, videoURL, formatID, videoTitle, sessionID string) *entity.Job

	GetJobByID(ctx context.Context, id string) *entity.Job
	GetJobs(ctx context.Context) ([]*entity.Job, error)

	// UpdateJobStatus mutates job progress/status. Called exclusively by
	// the owning worker. Updates to a terminal job are rejected and
	// progress never decreases while downloading.
	UpdateJobStatus(ctx context.Context, job *entity.Job, status entity.JobStatus, progress int, message string) error

	// SetJobResult records the retrievable artifact of a finished job.
	SetJobResult(ctx context.Context, job *entity.Job, fileURL, filename string) error

	CleanupExpiredJobs(ctx context.Context, interval time.Duration)
}

type storage struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *observability.Metrics

	mu   sync.RWMutex
	jobs map[string]*entity.Job // job id : job
}

// New creates a new in-memory job registry and starts its cleanup loop.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config, metrics *observability.Metrics) Storer {
	stg := &storage{
		log:     log.With(slog.String("package", "storage")),
		cfg:     cfg,
		metrics: metrics,
		jobs:    make(map[string]*entity.Job),
	}

	go stg.CleanupExpiredJobs(ctx, cfg.Storage.CleanupInterval)

	return stg
}

func (stg *storage) CreateJob(ctx context.Context, videoURL, formatID, videoTitle, sessionID string) *entity.Job {
	now := time.Now()

	job := &entity.Job{
		ID:         gen.JobID(),
		VideoURL:   videoURL,
		FormatID:   formatID,
		VideoTitle: videoTitle,
		SessionID:  sessionID,
		Status:     entity.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(stg.cfg.Storage.TTL),
	}

	stg.mu.Lock()
	stg.jobs[job.ID] = job
	total := len(stg.jobs)
	stg.mu.Unlock()

	if stg.metrics != nil {
		stg.metrics.SetStoredJobs(total)
	}

	stg.log.DebugContext(ctx, "job created", "job", job)

	return job
}

func (stg *storage) GetJobByID(_ context.Context, id string) *entity.Job {
	stg.mu.RLock()
	defer stg.mu.RUnlock()

	return stg.jobs[id]
}

func (stg *storage) GetJobs(_ context.Context) ([]*entity.Job, error) {
	stg.mu.RLock()
	defer stg.mu.RUnlock()

	if len(stg.jobs) == 0 {
		return nil, errs.ErrNoJobs
	}

	jobs := make([]*entity.Job, 0, len(stg.jobs))
	for _, job := range stg.jobs {
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (stg *storage) UpdateJobStatus(ctx context.Context,
	job *entity.Job,
	status entity.JobStatus,
	progress int,
	message string) error {
	if job == nil {
		return errs.ErrJobNil
	}

	stg.mu.Lock()
	defer stg.mu.Unlock()

	// Terminal states are sticky.
	if job.Status.IsTerminal() {
		return errs.ErrJobTerminal
	}

	job.Status = status
	job.UpdatedAt = time.Now()

	// Progress is monotonically non-decreasing until a terminal state.
	if progress > job.Progress {
		job.Progress = progress
	}

	if status == entity.JobStatusFinished {
		job.Progress = 100
	}

	if message != "" {
		job.Message = message
	}

	stg.log.DebugContext(ctx, "job status updated", "job", job)

	return nil
}

func (stg *storage) SetJobResult(_ context.Context, job *entity.Job, fileURL, filename string) error {
	if job == nil {
		return errs.ErrJobNil
	}

	stg.mu.Lock()
	defer stg.mu.Unlock()

	job.Result = &entity.JobResult{
		FileURL:  fileURL,
		Filename: filename,
	}
	job.UpdatedAt = time.Now()

	return nil
}
