// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
	"time"
)

// JobStatus represents the status of a download job.
type JobStatus string

const (
	// JobStatusQueued indicates that the job is accepted and waiting for a worker.
	JobStatusQueued JobStatus = "queued"
	// JobStatusDownloading indicates that the job is in progress.
	JobStatusDownloading JobStatus = "downloading"
	// JobStatusFinished indicates that the job has finished successfully.
	JobStatusFinished JobStatus = "finished"
	// JobStatusFailed indicates that the job has failed.
	JobStatusFailed JobStatus = "failed"
)

// IsTerminal reports whether the status permits no further mutation.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusFinished || s == JobStatusFailed
}

// Job represents one server-tracked download execution.
type Job struct {
	ID         string     `json:"job_id"`
	VideoURL   string     `json:"video_url"`
	FormatID   string     `json:"format_id"`
	VideoTitle string     `json:"video_title"`
	Status     JobStatus  `json:"status"`
	Progress   int        `json:"progress"`
	Message    string     `json:"message,omitempty"`
	Result     *JobResult `json:"result,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExpiresAt  time.Time  `json:"expires_at"`

	// SessionID is the push-channel session that created the job.
	// The job stays retrievable by id after the session is gone.
	SessionID string `json:"-"`

	// Filename is the server-local absolute path of the artifact.
	Filename string `json:"-"`
}

// JobResult holds the retrievable artifact of a finished job.
type JobResult struct {
	FileURL  string `json:"file_url"`
	Filename string `json:"filename"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (j Job) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("job_id", j.ID),
		slog.String("video_url", j.VideoURL),
		slog.String("format_id", j.FormatID),
		slog.String("status", string(j.Status)),
		slog.Int("progress", j.Progress),
		slog.String("message", j.Message),
	)
}

// VideoMetadata describes a resolved video and its selectable formats.
// Immutable once resolved; recomputed on every metadata request.
type VideoMetadata struct {
	Title       string         `json:"title"`
	Channel     string         `json:"channel"`
	Thumbnail   string         `json:"thumbnail"`
	Duration    int            `json:"duration"`
	ViewCount   int64          `json:"view_count"`
	UploadDate  string         `json:"upload_date,omitempty"`
	Description string         `json:"description"`
	Uploader    string         `json:"uploader"`
	WebpageURL  string         `json:"webpage_url"`
	OriginalURL string         `json:"original_url"`
	Formats     []StreamFormat `json:"formats"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (m VideoMetadata) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("title", m.Title),
		slog.String("channel", m.Channel),
		slog.Int("duration", m.Duration),
		slog.Int64("view_count", m.ViewCount),
		slog.String("webpage_url", m.WebpageURL),
		slog.Int("formats", len(m.Formats)),
	)
}

// CodecNone is the literal used by extractors for a missing codec.
const CodecNone = "none"

// ResolutionAudio tags audio-only formats that carry no pixel height.
const ResolutionAudio = "Audio"

// StreamFormat describes one selectable combination of
// resolution/codec/container, identified by an opaque id.
type StreamFormat struct {
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext"`
	Quality    string `json:"quality"`
	Resolution string `json:"resolution"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"` // 0 means absent (audio-only)
	Filesize   int64  `json:"filesize,omitempty"`
	Vcodec     string `json:"vcodec"`
	Acodec     string `json:"acodec"`

	// URL is the upstream media URL the format resolved to.
	// Never exposed to clients.
	URL string `json:"-"`
}

// IsAudioOnly reports whether the format carries no video stream.
func (f StreamFormat) IsAudioOnly() bool {
	return f.Vcodec == CodecNone && f.Acodec != CodecNone && f.Height == 0
}

// HasAnyCodec reports whether at least one codec is present.
// Formats failing this are never presented to the client.
func (f StreamFormat) HasAnyCodec() bool {
	return f.Vcodec != CodecNone || f.Acodec != CodecNone
}
