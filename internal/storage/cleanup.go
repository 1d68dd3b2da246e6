package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"grabtube/internal/entity"
)

func (stg *storage) CleanupExpiredJobs(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := stg.log.With(slog.String("action", "cleanup_expired_jobs"), slog.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			stg.performCleanup(ctx)
		case <-ctx.Done():
			log.Info("cleanup expired jobs stopped")

			return
		}
	}
}

func (stg *storage) performCleanup(ctx context.Context) {
	log := stg.log
	now := time.Now()

	stg.mu.Lock()
	expiredJobs := stg.getExpiredJobs(now)
	stg.mu.Unlock()

	if len(expiredJobs) == 0 {
		log.DebugContext(ctx, "no expired jobs found to clean up")

		return
	}

	log.InfoContext(ctx, "about to remove expired jobs", slog.Int("count", len(expiredJobs)))

	deletedFiles := 0

	for _, job := range expiredJobs {
		deletedFiles += stg.cleanupJob(ctx, job)
	}

	if stg.metrics != nil {
		stg.metrics.RecordCleanup(len(expiredJobs), deletedFiles)

		stg.mu.RLock()
		stg.metrics.SetStoredJobs(len(stg.jobs))
		stg.mu.RUnlock()
	}
}

func (stg *storage) getExpiredJobs(now time.Time) []*entity.Job {
	var expiredJobs []*entity.Job

	for _, job := range stg.jobs {
		if job.ExpiresAt.Before(now) {
			expiredJobs = append(expiredJobs, job)
		}
	}

	return expiredJobs
}

func (stg *storage) cleanupJob(ctx context.Context, job *entity.Job) (deletedFiles int) {
	if job == nil {
		return 0
	}

	log := stg.log

	if job.Filename != "" {
		if !filepath.IsAbs(job.Filename) {
			log.ErrorContext(ctx, "non-absolute path found", slog.String("filename", job.Filename))
		} else if err := os.Remove(job.Filename); err != nil {
			if !os.IsNotExist(err) {
				log.ErrorContext(ctx, "failed to delete file", slog.String("filename", job.Filename), slog.Any("error", err))
			}
		} else {
			deletedFiles++

			log.DebugContext(ctx, "successfully deleted file", slog.String("filename", job.Filename))
		}
	}

	stg.mu.Lock()
	delete(stg.jobs, job.ID)
	stg.mu.Unlock()

	log.DebugContext(ctx, "job cleaned up",
		slog.String("job_id", job.ID),
		slog.Int("deleted_files", deletedFiles))

	return deletedFiles
}
