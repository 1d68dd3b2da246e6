package downloader

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"grabtube/internal/config"
	"grabtube/internal/consts"
	"grabtube/internal/depmanager"
	"grabtube/internal/entity"
	"grabtube/internal/errs"
	"grabtube/internal/observability"
	"grabtube/internal/proxy"
	"grabtube/pkg/calc"
	"grabtube/pkg/sanitize"

	"github.com/lrstanley/go-ytdlp"
)

var (
	maxJSONSize = 10 * 1024 * 1024                                       // 10 MiB scanner buffer
	bufSize     = 4096                                                   // 4 KiB buffer size
	reFilepath  = regexp.MustCompile(`(?i)^[^\{\[\n].*\.[a-z0-9]{1,6}$`) // file path

	// changing this may break parseDownloadStdout().
	defaultPrintAfterMove = "after_move:filepath"
)

// jobIDSuffixLen is how much of the job id is appended to the destination
// filename to keep concurrent jobs collision-free.
const jobIDSuffixLen = 8

// YTdlp is the yt-dlp binary backend.
type YTdlp struct {
	log      *slog.Logger
	cfg      *config.Config
	deps     *depmanager.Manager
	proxyMgr *proxy.Manager
	metrics  *observability.Metrics
}

// NewYTdlp creates a new yt-dlp backend instance.
func NewYTdlp(log *slog.Logger,
	cfg *config.Config,
	deps *depmanager.Manager,
	proxyMgr *proxy.Manager,
	metrics *observability.Metrics) Downloader {
	return &YTdlp{
		log:      log.With(slog.String("package", "downloader"), slog.String("downloader", consts.DownloaderYTdlp)),
		cfg:      cfg,
		deps:     deps,
		proxyMgr: proxyMgr,
		metrics:  metrics,
	}
}

// Extract resolves the URL to full metadata without downloading anything.
func (d *YTdlp) Extract(ctx context.Context, url string) (*entity.VideoMetadata, error) {
	log := d.log.With(slog.String("func", "Extract"))

	command := ytdlp.New().
		CacheDir(d.cfg.Dir.Cache).
		NoPlaylist().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON()

	d.setExecutable(command)
	d.setCookies(command)

	res, err := command.Run(ctx, url)
	if err != nil {
		if d.metrics != nil {
			d.metrics.RecordExtractError(consts.DownloaderYTdlp, classifyError(err))
		}

		return nil, d.mapRunError(res, err)
	}

	info, err := ParseInfoJSON([]byte(res.Stdout))
	if err != nil {
		return nil, fmt.Errorf("parse yt-dlp json: %w", err)
	}

	meta := ComposeMetadata(info, url)

	if d.metrics != nil {
		d.metrics.RecordExtractRequest(consts.DownloaderYTdlp, "ok")
	}

	log.DebugContext(ctx, "metadata extracted", "metadata", meta)

	return meta, nil
}

// Download streams the job's selected format to the downloads directory.
func (d *YTdlp) Download(ctx context.Context, job *entity.Job, progressFn ProgressFunc) (*Result, error) {
	if job == nil {
		return nil, errs.ErrJobNil
	}

	log := d.log.With(slog.String("func", "Download"), "job", job)

	lastProgress := 0

	ytdlpProgressFn := func(prog ytdlp.ProgressUpdate) {
		progress := calc.Progress(int64(prog.DownloadedBytes), int64(prog.TotalBytes))
		if progress == 0 {
			progress = heuristicProgress(lastProgress)
		}
		lastProgress = progress

		progressFn(progress, progressMessage(prog))
	}

	command := ytdlp.New().
		CacheDir(d.cfg.Dir.Cache).
		Format(job.FormatID).
		NoPlaylist().
		ProgressFunc(d.cfg.Job.ProgressFreq, ytdlpProgressFn).
		Print(defaultPrintAfterMove).
		Output(d.destTemplate(job))

	d.setExecutable(command)
	d.setCookies(command)

	if d.proxyMgr != nil && d.proxyMgr.Count() > 0 {
		proxyURL, err := d.proxyMgr.GetProxy(ctx)
		if err != nil {
			log.WarnContext(ctx, "failed to get healthy proxy", slog.Any("error", err))
		} else if proxyURL != "" {
			log.InfoContext(ctx, "using proxy for download", slog.String("proxy", proxyURL))
			command = command.Proxy(proxyURL)
		}
	}

	res, err := command.Run(ctx, job.VideoURL)
	if err != nil {
		log.ErrorContext(ctx, "ytdlp run", slog.Any("error", err))

		return nil, d.mapRunError(res, err)
	}

	filename := parseDownloadStdout(res.Stdout)
	if filename == "" {
		return nil, fmt.Errorf("%w: no output file reported", errs.ErrDownloadFailed)
	}

	log.InfoContext(ctx, "download finished", slog.String("filename", filename))

	return &Result{Filename: filename}, nil
}

// destTemplate derives a deterministic, collision-free yt-dlp output
// template for the job: sanitized title plus a job id suffix.
func (d *YTdlp) destTemplate(job *entity.Job) string {
	suffix := job.ID
	if len(suffix) > jobIDSuffixLen {
		suffix = suffix[:jobIDSuffixLen]
	}

	name := sanitize.Filename(job.VideoTitle) + "_" + suffix + ".%(ext)s"

	return filepath.Join(d.cfg.Dir.Downloads, name)
}

func (d *YTdlp) setExecutable(command *ytdlp.Command) {
	if d.deps == nil {
		return
	}

	if path := d.deps.GetInstalledPath(depmanager.BinaryYTdlp); path != "" {
		command.SetExecutable(path)
	}
}

func (d *YTdlp) setCookies(command *ytdlp.Command) {
	if d.cfg.Dir.CookieFile != "" {
		command.Cookies(d.cfg.Dir.CookieFile)
	}
}

// mapRunError maps yt-dlp failures onto the application error taxonomy.
func (d *YTdlp) mapRunError(res *ytdlp.Result, err error) error {
	detail := err.Error()
	if res != nil && res.Stderr != "" {
		detail = res.Stderr
	}

	switch {
	case strings.Contains(detail, "Requested format is not available"):
		return fmt.Errorf("%w: %s", errs.ErrFormatNotFound, firstLine(detail))
	case strings.Contains(detail, "Unsupported URL"),
		strings.Contains(detail, "is not a valid URL"),
		strings.Contains(detail, "Video unavailable"):
		return fmt.Errorf("%w: %s", errs.ErrVideoUnavailable, firstLine(detail))
	default:
		return fmt.Errorf("ytdlp run: %w", err)
	}
}

func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR") || strings.HasPrefix(line, "yt-dlp: error") {
			return line
		}
	}

	if idx := strings.IndexByte(s, '\n'); idx > 0 {
		return strings.TrimSpace(s[:idx])
	}

	return strings.TrimSpace(s)
}

// progressMessage composes the human-readable status text for a progress
// event, degrading gracefully when byte totals are unknown.
func progressMessage(prog ytdlp.ProgressUpdate) string {
	if prog.TotalBytes <= 0 {
		if prog.DownloadedBytes > 0 {
			return fmt.Sprintf("%s Downloaded: %s",
				consts.MsgDownloading, calc.HumanSize(int64(prog.DownloadedBytes)))
		}

		return consts.MsgDownloading
	}

	msg := fmt.Sprintf("Downloading: %s / %s",
		calc.HumanSize(int64(prog.DownloadedBytes)),
		calc.HumanSize(int64(prog.TotalBytes)))

	if !prog.Started.IsZero() {
		elapsed := time.Since(prog.Started).Seconds()
		if elapsed > 0 {
			speed := float64(prog.DownloadedBytes) / elapsed
			msg += fmt.Sprintf(" at %s/s", calc.HumanSize(int64(speed)))
		}

		if eta := calc.ETA(int64(prog.DownloadedBytes), int64(prog.TotalBytes), prog.Started); eta > 0 {
			msg += fmt.Sprintf(" ETA %s", eta.Round(time.Second))
		}
	}

	return msg
}

// parseDownloadStdout scans yt-dlp stdout for the printed destination path.
func parseDownloadStdout(stdout string) string {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, bufSize), maxJSONSize)

	var filename string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if reFilepath.MatchString(line) {
			filename = line
		}
	}

	return filename
}
