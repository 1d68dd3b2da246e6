package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"grabtube/internal/consts"
	"grabtube/internal/entity"
	"grabtube/internal/errs"
)

type mock struct {
	log          *slog.Logger
	simulateTime time.Duration
	downloadsDir string
}

// NewMock creates a backend that simulates extraction and downloads.
// Used by tests and for running the service without network access.
func NewMock(log *slog.Logger, simulateTime time.Duration, downloadsDir string) Downloader {
	if simulateTime <= 0 {
		simulateTime = consts.DefaultSimulateTime
	}

	return &mock{
		log:          log.With(slog.String("package", "downloader"), slog.String("downloader", consts.DownloaderMock)),
		simulateTime: simulateTime,
		downloadsDir: downloadsDir,
	}
}

func (m *mock) Extract(_ context.Context, url string) (*entity.VideoMetadata, error) {
	return &entity.VideoMetadata{
		Title:       "Mock Video",
		Channel:     "Mock Channel",
		Uploader:    "Mock Channel",
		Duration:    60,
		ViewCount:   1000,
		UploadDate:  "20240101",
		Description: "A simulated video used for local development.",
		WebpageURL:  url,
		OriginalURL: url,
		Formats: []entity.StreamFormat{
			{FormatID: "22", Ext: "mp4", Quality: "hd720", Resolution: "720p", Height: 720, Filesize: 1 << 20, Vcodec: "avc1", Acodec: "mp4a"},
			{FormatID: "18", Ext: "mp4", Quality: "medium", Resolution: "360p", Height: 360, Filesize: 1 << 19, Vcodec: "avc1", Acodec: "mp4a"},
			{FormatID: "140", Ext: "m4a", Quality: "audio", Resolution: entity.ResolutionAudio, Filesize: 1 << 18, Vcodec: entity.CodecNone, Acodec: "mp4a"},
		},
	}, nil
}

func (m *mock) Download(ctx context.Context, job *entity.Job, progressFn ProgressFunc) (*Result, error) {
	if job == nil {
		return nil, errs.ErrJobNil
	}

	log := m.log.With(slog.String("func", "Download"), "job", job)

	if err := simulateDownload(ctx, m.simulateTime, progressFn); err != nil {
		log.ErrorContext(ctx, "simulate download", slog.Any("error", err))

		return nil, err
	}

	filename := filepath.Join(m.downloadsDir, "mock_"+job.ID+".mp4")

	log.InfoContext(ctx, "download finished", slog.String("filename", filename))

	return &Result{Filename: filename}, nil
}

func simulateDownload(ctx context.Context, duration time.Duration, progressFn ProgressFunc) error {
	steps := 10
	step := 0

	ticker := time.NewTicker(duration / time.Duration(steps))
	defer ticker.Stop()

	start := time.Now()

	for step <= steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			progress := step * (100 / steps)
			eta := strconv.FormatFloat(duration.Seconds()-time.Since(start).Seconds(), 'f', 0, 64)
			progressFn(progress, fmt.Sprintf("%s ETA %s seconds", consts.MsgDownloading, eta))
			step++
		}
	}

	return nil
}
