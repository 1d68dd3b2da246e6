// Package downloader defines the extraction/download backend interface and
// its implementations.
package downloader

import (
	"context"
	"errors"

	"grabtube/internal/entity"
	"grabtube/internal/errs"
)

// ProgressFunc receives throttled progress updates from a running download.
// Progress is a percentage in [0,100]; message is human-readable status text.
type ProgressFunc func(progress int, message string)

// Result holds the outcome of a completed download.
type Result struct {
	// Filename is the absolute path of the downloaded artifact.
	Filename string
}

// Downloader resolves video metadata and drives downloads.
type Downloader interface {
	// Extract resolves the submitted URL to full video metadata including
	// the list of selectable formats. Recomputed on every call.
	Extract(ctx context.Context, url string) (*entity.VideoMetadata, error)

	// Download streams the format selected in the job to local storage,
	// reporting progress through progressFn on a throttled cadence.
	Download(ctx context.Context, job *entity.Job, progressFn ProgressFunc) (*Result, error)
}

// IsRetryable reports whether a download error is worth another attempt.
// Resolution failures and cancellations are final; everything else is
// treated as transient I/O.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, errs.ErrFormatNotFound), errors.Is(err, errs.ErrVideoUnavailable):
		return false
	default:
		return true
	}
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, errs.ErrFormatNotFound):
		return "format_not_found"
	case errors.Is(err, errs.ErrVideoUnavailable):
		return "video_unavailable"
	default:
		return "process"
	}
}

// heuristicProgress advances progress monotonically when byte totals are
// unknown, capped short of completion.
func heuristicProgress(prev int) int {
	const ceiling = 95

	if prev < ceiling {
		return prev + 1
	}

	return prev
}
