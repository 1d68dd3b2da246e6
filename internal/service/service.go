// Package service orchestrates download jobs across the registry, the
// downloader backends and the push channel.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"grabtube/internal/config"
	"grabtube/internal/consts"
	"grabtube/internal/downloader"
	"grabtube/internal/entity"
	"grabtube/internal/errs"
	"grabtube/internal/notifier"
	"grabtube/internal/observability"
	"grabtube/internal/storage"
	"grabtube/internal/summarizer"
	"grabtube/pkg/urls"
)

// Service is the application-facing API over jobs, metadata and summaries.
type Service interface {
	Start(ctx context.Context)

	// Enqueue validates the request, registers a fresh job and queues it.
	// Every call yields a new job; concurrent calls are safe.
	Enqueue(ctx context.Context, videoURL, formatID, videoTitle, sessionID string) (*entity.Job, error)

	GetByID(ctx context.Context, id string) *entity.Job
	GetAll(ctx context.Context) ([]*entity.Job, error)

	// Metadata resolves a URL to full video metadata. Recomputed per call.
	Metadata(ctx context.Context, url string) (*entity.VideoMetadata, error)

	// Summarize produces a summary from a title and description.
	Summarize(ctx context.Context, title, description string) (string, error)
}

type service struct {
	log        *slog.Logger
	cfg        *config.Config
	storage    storage.Storer
	downloader downloader.Downloader
	summarizer summarizer.Summarizer
	notifier   notifier.Publisher
	metrics    *observability.Metrics

	jobQueue chan *entity.Job

	wg        sync.WaitGroup
	closed    atomic.Bool
	startOnce sync.Once
}

var _ Service = (*service)(nil)

// New creates the service. Start must be called before jobs are processed.
func New(log *slog.Logger,
	cfg *config.Config,
	storage storage.Storer,
	dl downloader.Downloader,
	sum summarizer.Summarizer,
	pub notifier.Publisher,
	metrics *observability.Metrics) Service {
	return &service{
		log:        log.With(slog.String("package", "service")),
		cfg:        cfg,
		storage:    storage,
		downloader: dl,
		summarizer: sum,
		notifier:   pub,
		metrics:    metrics,
		jobQueue:   make(chan *entity.Job, cfg.Job.QueueSize),
	}
}

func (svc *service) Start(ctx context.Context) {
	svc.startOnce.Do(func() {
		for i := range svc.cfg.Job.Workers {
			svc.wg.Add(1)
			go svc.worker(ctx, i)
		}
	})
}

func (svc *service) Enqueue(ctx context.Context,
	videoURL, formatID, videoTitle, sessionID string) (*entity.Job, error) {
	if svc.closed.Load() {
		return nil, errs.ErrServiceClosed
	}

	if videoURL == "" {
		return nil, errs.ErrURLRequired
	}

	videoURL = urls.Normalize(videoURL)
	if !urls.IsURLValid(videoURL) {
		return nil, errs.ErrInvalidURL
	}

	job := svc.storage.CreateJob(ctx, videoURL, formatID, videoTitle, sessionID)

	if svc.metrics != nil {
		svc.metrics.RecordJobCreated()
	}

	select {
	case svc.jobQueue <- job:
		return job, nil
	case <-ctx.Done():
		svc.failJob(ctx, job, fmt.Errorf("enqueue canceled: %w", ctx.Err()))

		return nil, fmt.Errorf("enqueue job canceled: %w", ctx.Err())
	default:
		svc.failJob(ctx, job, errs.ErrJobQueueFull)

		return nil, fmt.Errorf("%w: %d/%d", errs.ErrJobQueueFull, len(svc.jobQueue), cap(svc.jobQueue))
	}
}

func (svc *service) worker(ctx context.Context, workerID int) {
	defer svc.wg.Done()

	log := svc.log.With(slog.Int("worker_id", workerID))

	for {
		select {
		case job, ok := <-svc.jobQueue:
			if !ok {
				log.WarnContext(ctx, "job queue closed")

				return
			}

			if job == nil {
				log.WarnContext(ctx, "received nil job")

				continue
			}

			svc.processJob(ctx, job)
		case <-ctx.Done():
			svc.closed.Store(true)
			log.InfoContext(ctx, "got ctx done signal", slog.Any("error", ctx.Err()))

			return
		}
	}
}

func (svc *service) processJob(ctx context.Context, job *entity.Job) {
	log := svc.log.With(slog.String("func", "processJob"), "job", job)

	jobCtx, cancel := context.WithTimeout(ctx, svc.cfg.Job.Timeout)
	defer cancel()

	stopTimer := func() {}
	if svc.metrics != nil {
		stopTimer = svc.metrics.JobTimer()
	}
	defer stopTimer()

	svc.updateStatus(jobCtx, job, entity.JobStatusDownloading, 0, consts.MsgStarting)
	svc.publishProgress(job, consts.MsgStarting, notifier.StatusPreparing)

	progressFn := func(progress int, message string) {
		svc.updateStatus(jobCtx, job, entity.JobStatusDownloading, progress, message)
		svc.publishProgress(job, message, notifier.StatusDownloading)
	}

	result, err := svc.downloadWithRetry(jobCtx, job, progressFn)
	if err != nil {
		log.ErrorContext(ctx, "download failed", slog.Any("error", err))
		svc.failJob(ctx, job, err)

		return
	}

	svc.finishJob(ctx, job, result)

	log.DebugContext(ctx, "job processed", "job", job)
}

// downloadWithRetry runs the download, retrying transient failures up to
// the configured number of extra attempts.
func (svc *service) downloadWithRetry(ctx context.Context,
	job *entity.Job,
	progressFn downloader.ProgressFunc) (*downloader.Result, error) {
	var lastErr error

	attempts := 1 + svc.cfg.Job.Retries

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := svc.downloader.Download(ctx, job, progressFn)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !downloader.IsRetryable(err) || attempt == attempts {
			break
		}

		svc.log.WarnContext(ctx, "retrying download",
			"job", job, slog.Int("attempt", attempt), slog.Any("error", err))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("download canceled: %w", ctx.Err())
		case <-time.After(svc.cfg.Job.RetryBackoff):
		}
	}

	return nil, lastErr
}

func (svc *service) finishJob(ctx context.Context, job *entity.Job, result *downloader.Result) {
	basename := filepath.Base(result.Filename)
	fileURL := consts.DownloadsURLPrefix + basename

	job.Filename = result.Filename

	if err := svc.storage.SetJobResult(ctx, job, fileURL, basename); err != nil {
		svc.log.ErrorContext(ctx, "set job result", slog.Any("error", err))
	}

	svc.updateStatus(ctx, job, entity.JobStatusFinished, 100, consts.MsgComplete)

	if svc.notifier != nil {
		svc.notifier.PublishProgress(job.SessionID, 100, consts.MsgComplete, notifier.StatusFinished)
		svc.notifier.PublishComplete(job.SessionID, basename, fileURL, consts.MsgCompleteFull)
	}

	if svc.metrics != nil {
		svc.metrics.RecordJobCompleted()
	}
}

func (svc *service) failJob(ctx context.Context, job *entity.Job, jobErr error) {
	svc.updateStatus(ctx, job, entity.JobStatusFailed, 0, jobErr.Error())

	if svc.notifier != nil {
		svc.notifier.PublishError(job.SessionID, "Download failed: "+jobErr.Error())
	}

	if svc.metrics != nil {
		svc.metrics.RecordJobFailed()
	}
}

func (svc *service) updateStatus(ctx context.Context,
	job *entity.Job,
	status entity.JobStatus,
	progress int,
	message string) {
	err := svc.storage.UpdateJobStatus(ctx, job, status, progress, message)
	if err != nil && !errors.Is(err, errs.ErrJobTerminal) {
		svc.log.ErrorContext(ctx, "update job status", slog.Any("error", err))
	}
}

func (svc *service) publishProgress(job *entity.Job, message, status string) {
	if svc.notifier == nil {
		return
	}

	svc.notifier.PublishProgress(job.SessionID, job.Progress, message, status)
}

func (svc *service) GetByID(ctx context.Context, id string) *entity.Job {
	return svc.storage.GetJobByID(ctx, id)
}

func (svc *service) GetAll(ctx context.Context) ([]*entity.Job, error) {
	return svc.storage.GetJobs(ctx)
}

func (svc *service) Metadata(ctx context.Context, url string) (*entity.VideoMetadata, error) {
	if url == "" {
		return nil, errs.ErrURLRequired
	}

	url = urls.Normalize(url)
	if !urls.IsURLValid(url) {
		return nil, errs.ErrInvalidURL
	}

	meta, err := svc.downloader.Extract(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}

	return meta, nil
}

func (svc *service) Summarize(ctx context.Context, title, description string) (string, error) {
	summary, err := svc.summarizer.Summarize(ctx, title, description)
	if err != nil {
		return "", err
	}

	if svc.metrics != nil {
		svc.metrics.RecordSummary()
	}

	return summary, nil
}
