// Package consts defines application-wide constants.
package consts

import "time"

const (
	// DefaultHandlerTimeout is the default timeout for HTTP handlers.
	DefaultHandlerTimeout = 30 * time.Second
	// DefaultJobTimeout is the default timeout for job processing.
	DefaultJobTimeout = 30 * time.Minute
	// DefaultJobWorkers is the default number of workers for job processing.
	DefaultJobWorkers = 2
	// DefaultQueueSize is the default size of the job queue.
	DefaultQueueSize = 50
	// DefaultSimulateTime is the default time to simulate processing in the mock downloader.
	DefaultSimulateTime = 1 * time.Second
	// DefaultJobTTL is the default time-to-live for stored jobs and files.
	DefaultJobTTL = 7 * 24 * time.Hour
	// DefaultProgressFreq is the default throttle cadence for progress events.
	DefaultProgressFreq = 500 * time.Millisecond
)

// HTTP response messages.
const (
	// RespInvalidRequestBody is returned when the request body is invalid.
	RespInvalidRequestBody = "invalid request body"
	// RespQueryParamMissing is returned when a required query parameter is missing or invalid.
	RespQueryParamMissing = "query param missing or invalid"
	// RespUnprocessableEntity is returned when the request cannot be processed.
	RespUnprocessableEntity = "unprocessable entity"
	// RespVideoInfoFail is returned when metadata extraction fails.
	RespVideoInfoFail = "failed to get video info"
	// RespSummarizeFail is returned when summary generation fails.
	RespSummarizeFail = "failed to summarize video"
	// RespJobNotFound is returned when a job is not found.
	RespJobNotFound = "job not found"
	// RespJobRetrieved is returned when a job is successfully retrieved.
	RespJobRetrieved = "job retrieved"
	// RespJobsRetrieved is returned when jobs are successfully retrieved.
	RespJobsRetrieved = "jobs retrieved"
	// RespNoJobs is returned when there are no jobs available.
	RespNoJobs = "no jobs"
	// RespGetJobsFail is returned when fetching all jobs fails.
	RespGetJobsFail = "get all jobs failed"
	// RespFileNotFound is returned when a file is not found.
	RespFileNotFound = "file not found"
	// RespTooManyRequests is returned when the rate limit is exceeded.
	RespTooManyRequests = "too many requests"
)

// Push-channel messages.
const (
	// MsgConnected is sent on a new push-channel session.
	MsgConnected = "Connected to server!"
	// MsgStarting is sent when a download request is accepted.
	MsgStarting = "Starting download..."
	// MsgDownloading is the fallback progress message when byte totals are unknown.
	MsgDownloading = "Downloading..."
	// MsgComplete is sent when a download finishes.
	MsgComplete = "Download complete!"
	// MsgCompleteFull accompanies the completion event carrying the file URL.
	MsgCompleteFull = "Download completed successfully!"
)

// Downloader backend identifiers.
const (
	// DownloaderYTdlp is the yt-dlp binary backend identifier.
	DownloaderYTdlp = "ytdlp"
	// DownloaderNative is the pure-Go backend identifier.
	DownloaderNative = "native"
	// DownloaderMock is the mock backend identifier for testing.
	DownloaderMock = "mock"
)

// DownloadsURLPrefix is the public path prefix completed artifacts are served under.
const DownloadsURLPrefix = "/downloads/"
