package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"grabtube/internal/config"
	"grabtube/internal/consts"
	"grabtube/internal/entity"
	"grabtube/internal/errs"
	"grabtube/internal/observability"
	"grabtube/pkg/calc"
	"grabtube/pkg/sanitize"
	"grabtube/pkg/urls"

	ytget "github.com/ytget/ytdlp/v2"
	ytgeterrs "github.com/ytget/ytdlp/v2/errs"
	"github.com/ytget/ytdlp/v2/types"
)

// quality labels the player API uses for progressive streams, mapped to
// their nominal heights.
var qualityHeights = map[string]int{
	"tiny":    144,
	"small":   240,
	"medium":  360,
	"large":   480,
	"hd720":   720,
	"hd1080":  1080,
	"hd1440":  1440,
	"hd2160":  2160,
	"highres": 2160,
}

// Native is the pure-Go backend. It talks to the player API directly and
// needs no external binaries, at the cost of a narrower format surface.
type Native struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *observability.Metrics
}

// NewNative creates a new native backend instance.
func NewNative(log *slog.Logger, cfg *config.Config, metrics *observability.Metrics) Downloader {
	return &Native{
		log:     log.With(slog.String("package", "downloader"), slog.String("downloader", consts.DownloaderNative)),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Extract resolves the URL to metadata via the player API.
func (d *Native) Extract(ctx context.Context, url string) (*entity.VideoMetadata, error) {
	log := d.log.With(slog.String("func", "Extract"))

	// The player API only serves youtube; reject other hosts before dialing.
	if !urls.IsYouTubeURL(url) {
		err := fmt.Errorf("%w: not a youtube url", errs.ErrVideoUnavailable)
		if d.metrics != nil {
			d.metrics.RecordExtractError(consts.DownloaderNative, classifyError(err))
		}

		return nil, err
	}

	dl := ytget.New().WithFormat("best", "")

	_, info, err := dl.ResolveURL(ctx, url)
	if err != nil {
		if d.metrics != nil {
			d.metrics.RecordExtractError(consts.DownloaderNative, classifyError(err))
		}

		return nil, mapNativeError(err)
	}

	meta := d.composeNativeMetadata(info, url)

	if d.metrics != nil {
		d.metrics.RecordExtractRequest(consts.DownloaderNative, "ok")
	}

	log.DebugContext(ctx, "metadata extracted", "metadata", meta)

	return meta, nil
}

// Download retrieves the selected itag to the downloads directory.
func (d *Native) Download(ctx context.Context, job *entity.Job, progressFn ProgressFunc) (*Result, error) {
	if job == nil {
		return nil, errs.ErrJobNil
	}

	log := d.log.With(slog.String("func", "Download"), "job", job)

	selector := "best"
	if job.FormatID != "" {
		if _, err := strconv.Atoi(job.FormatID); err != nil {
			return nil, fmt.Errorf("%w: %q is not an itag", errs.ErrFormatNotFound, job.FormatID)
		}

		selector = "itag=" + job.FormatID
	}

	outputPath := d.destPath(job)
	started := time.Now()

	var mu sync.Mutex
	lastProgress := 0
	lastSent := time.Time{}

	dl := ytget.New().
		WithFormat(selector, "").
		WithOutputPath(outputPath).
		WithProgress(func(p ytget.Progress) {
			mu.Lock()
			defer mu.Unlock()

			// throttle to the configured cadence
			if time.Since(lastSent) < d.cfg.Job.ProgressFreq {
				return
			}
			lastSent = time.Now()

			progress := calc.Progress(p.DownloadedSize, p.TotalSize)
			if progress == 0 {
				progress = heuristicProgress(lastProgress)
			}
			lastProgress = progress

			progressFn(progress, nativeProgressMessage(p, started))
		})

	if _, err := dl.Download(ctx, job.VideoURL); err != nil {
		log.ErrorContext(ctx, "native download", slog.Any("error", err))

		return nil, mapNativeError(err)
	}

	log.InfoContext(ctx, "download finished", slog.String("filename", outputPath))

	return &Result{Filename: outputPath}, nil
}

// destPath derives a collision-free output path from the sanitized title,
// a job id suffix and the best-guess extension for the requested itag.
func (d *Native) destPath(job *entity.Job) string {
	suffix := job.ID
	if len(suffix) > jobIDSuffixLen {
		suffix = suffix[:jobIDSuffixLen]
	}

	name := sanitize.Filename(job.VideoTitle) + "_" + suffix + ".mp4"

	return filepath.Join(d.cfg.Dir.Downloads, name)
}

func (d *Native) composeNativeMetadata(info *ytget.VideoInfo, originalURL string) *entity.VideoMetadata {
	meta := &entity.VideoMetadata{
		Title:       info.Title,
		Channel:     info.Author,
		Uploader:    info.Author,
		Duration:    info.Duration,
		Description: info.Description,
		WebpageURL:  originalURL,
		OriginalURL: originalURL,
		Formats:     make([]entity.StreamFormat, 0, len(info.Formats)),
	}

	videoID := info.ID
	if videoID == "" {
		videoID = urls.ExtractVideoID(originalURL)
	}

	if videoID != "" {
		meta.Thumbnail = "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
	}

	seen := make(map[string]struct{}, len(info.Formats))

	for _, f := range info.Formats {
		sf := composeNativeFormat(f)
		if sf == nil {
			continue
		}

		if _, dup := seen[sf.FormatID]; dup {
			continue
		}
		seen[sf.FormatID] = struct{}{}

		meta.Formats = append(meta.Formats, *sf)
	}

	SortFormats(meta.Formats)

	return meta
}

func composeNativeFormat(f types.Format) *entity.StreamFormat {
	if f.URL == "" && f.SignatureCipher == "" {
		return nil
	}

	mime, codecs := splitMime(f.MimeType)
	audioOnly := strings.HasPrefix(mime, "audio/")

	vcodec := entity.CodecNone
	acodec := entity.CodecNone

	switch {
	case audioOnly:
		acodec = codecs
	case codecs != "":
		vcodec = codecs
		// progressive streams mux audio in
		if !strings.Contains(mime, "webm") || strings.Contains(codecs, ",") {
			acodec = codecs
		}
	}

	height := qualityHeights[f.Quality]
	if height == 0 {
		height = parseHeightLabel(f.Quality)
	}

	resolution := entity.ResolutionAudio
	if !audioOnly {
		if height > 0 {
			resolution = strconv.Itoa(height) + "p"
		} else {
			resolution = "N/A"
		}
	}

	quality := f.Quality
	if quality == "" {
		quality = resolution
	}

	sf := &entity.StreamFormat{
		FormatID:   strconv.Itoa(f.Itag),
		Ext:        extFromMime(mime),
		Quality:    quality,
		Resolution: resolution,
		Height:     height,
		Filesize:   f.Size,
		Vcodec:     vcodec,
		Acodec:     acodec,
		URL:        f.URL,
	}

	if !sf.HasAnyCodec() {
		return nil
	}

	return sf
}

// splitMime splits "video/mp4; codecs=\"avc1.64001F, mp4a.40.2\"" into the
// bare mime type and the codec list.
func splitMime(mimeType string) (mime, codecs string) {
	mime, rest, found := strings.Cut(mimeType, ";")
	mime = strings.TrimSpace(mime)

	if !found {
		return mime, ""
	}

	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, "codecs=")
	rest = strings.Trim(rest, `"`)

	return mime, rest
}

func extFromMime(mime string) string {
	switch mime {
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	case "audio/mp4":
		return "m4a"
	case "audio/webm":
		return "webm"
	default:
		if _, sub, ok := strings.Cut(mime, "/"); ok {
			return sub
		}

		return "mp4"
	}
}

// parseHeightLabel extracts a height from labels like "720p" or "1080p60".
func parseHeightLabel(label string) int {
	digits := 0
	for digits < len(label) && label[digits] >= '0' && label[digits] <= '9' {
		digits++
	}

	if digits == 0 {
		return 0
	}

	height, err := strconv.Atoi(label[:digits])
	if err != nil {
		return 0
	}

	return height
}

func nativeProgressMessage(p ytget.Progress, started time.Time) string {
	if p.TotalSize <= 0 {
		if p.DownloadedSize > 0 {
			return fmt.Sprintf("%s Downloaded: %s", consts.MsgDownloading, calc.HumanSize(p.DownloadedSize))
		}

		return consts.MsgDownloading
	}

	msg := fmt.Sprintf("Downloading: %s / %s",
		calc.HumanSize(p.DownloadedSize), calc.HumanSize(p.TotalSize))

	if eta := calc.ETA(p.DownloadedSize, p.TotalSize, started); eta > 0 {
		msg += fmt.Sprintf(" ETA %s", eta.Round(time.Second))
	}

	return msg
}

func mapNativeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ytgeterrs.ErrVideoUnavailable),
		errors.Is(err, ytgeterrs.ErrPrivate),
		errors.Is(err, ytgeterrs.ErrAgeRestricted),
		errors.Is(err, ytgeterrs.ErrGeoBlocked):
		return fmt.Errorf("%w: %s", errs.ErrVideoUnavailable, err)
	case strings.Contains(err.Error(), "no suitable format"):
		return fmt.Errorf("%w: %s", errs.ErrFormatNotFound, err)
	case strings.Contains(err.Error(), "invalid youtube url"),
		strings.Contains(err.Error(), "extract video id failed"):
		return fmt.Errorf("%w: %s", errs.ErrVideoUnavailable, err)
	default:
		return fmt.Errorf("native download: %w", err)
	}
}
