// Package errs defines common error variables used across the application.
package errs

import "errors"

var (
	// ErrServiceClosed indicates that the service is closed and cannot accept new jobs.
	ErrServiceClosed = errors.New("service is closed")
	// ErrInvalidRequestBody indicates that the request body is invalid or cannot be parsed.
	ErrInvalidRequestBody = errors.New("invalid request body")
)

// Request validation errors.
var (
	// ErrURLRequired indicates that the url field is missing.
	ErrURLRequired = errors.New("url is required")
	// ErrInvalidURL indicates that the URL field in the request is invalid.
	ErrInvalidURL = errors.New("invalid url field")
	// ErrNothingToSummarize indicates that neither title nor description was provided.
	ErrNothingToSummarize = errors.New("no video title or description provided for summarization")
)

// Job and registry errors.
var (
	// ErrNoJobs indicates that there are no jobs in the registry.
	ErrNoJobs = errors.New("no jobs")
	// ErrJobNil indicates that the job is nil.
	ErrJobNil = errors.New("job is nil")
	// ErrJobTerminal indicates an update was rejected because the job is in a terminal state.
	ErrJobTerminal = errors.New("job is in a terminal state")
	// ErrJobQueueFull indicates that the job queue is full.
	ErrJobQueueFull = errors.New("job queue is full")
)

// Extraction and download errors.
var (
	// ErrVideoUnavailable indicates that the video cannot be resolved.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrFormatNotFound indicates that the requested format is no longer available.
	ErrFormatNotFound = errors.New("format not found")
	// ErrDownloadFailed indicates that the download failed.
	ErrDownloadFailed = errors.New("download failed")
	// ErrBinaryNotFound indicates that a required binary was not found.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrUnsupportedPlatform indicates that the current platform is not supported.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Proxy errors.
var (
	// ErrNoProxiesAvailable indicates that no proxies are available.
	ErrNoProxiesAvailable = errors.New("no proxies available")
)

// Push channel errors.
var (
	// ErrSessionNotFound indicates that the push session is gone.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBufferFull indicates that the session send buffer overflowed.
	ErrSessionBufferFull = errors.New("session send buffer full")
)
