package notifier

import "encoding/json"

// Event names pushed to clients.
const (
	EventStatusUpdate     = "status_update"
	EventProgressUpdate   = "progress_update"
	EventDownloadComplete = "download_complete"
	EventDownloadError    = "download_error"
)

// EventStartDownload is the only event clients send.
const EventStartDownload = "start_download"

// Progress status values carried in progress_update payloads.
const (
	StatusPreparing   = "preparing"
	StatusDownloading = "downloading"
	StatusFinished    = "finished"
)

// Event is a single push frame on the wire.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// StatusPayload is the data of a status_update event.
type StatusPayload struct {
	Message string `json:"message"`
}

// ProgressPayload is the data of a progress_update event.
type ProgressPayload struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// CompletePayload is the data of a download_complete event.
type CompletePayload struct {
	Filename string `json:"filename"`
	FileURL  string `json:"file_url"`
	Message  string `json:"message"`
}

// ErrorPayload is the data of a download_error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// StartDownloadPayload is the data clients send with start_download.
type StartDownloadPayload struct {
	VideoURL   string `json:"video_url"`
	FormatID   string `json:"format_id"`
	VideoTitle string `json:"video_title"`
}

// inbound is a frame received from a client; data stays raw until the
// event name is known.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
