package downloader

import (
	"errors"
	"strings"
	"testing"

	"grabtube/internal/errs"
)

func TestParseDownloadStdout(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{
			name:   "single filepath line",
			stdout: "/data/downloads/Test_Video_abc123.mp4\n",
			want:   "/data/downloads/Test_Video_abc123.mp4",
		},
		{
			name:   "filepath after json noise",
			stdout: "{\"id\": \"abc\"}\n[download] 100%\n/data/downloads/Test_Video.webm\n",
			want:   "/data/downloads/Test_Video.webm",
		},
		{
			name:   "last path wins",
			stdout: "/data/downloads/part.f137.mp4\n/data/downloads/final.mp4\n",
			want:   "/data/downloads/final.mp4",
		},
		{
			name:   "no filepath",
			stdout: "{\"id\": \"abc\"}\n",
			want:   "",
		},
		{
			name:   "empty",
			stdout: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseDownloadStdout(tt.stdout); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMapRunError(t *testing.T) {
	d := &YTdlp{}

	tests := []struct {
		name   string
		errMsg string
		want   error
	}{
		{
			name:   "format not available",
			errMsg: "ERROR: [youtube] abc: Requested format is not available",
			want:   errs.ErrFormatNotFound,
		},
		{
			name:   "video unavailable",
			errMsg: "ERROR: [youtube] abc: Video unavailable",
			want:   errs.ErrVideoUnavailable,
		},
		{
			name:   "unsupported url",
			errMsg: "ERROR: Unsupported URL: https://example.com",
			want:   errs.ErrVideoUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.mapRunError(nil, errors.New(tt.errMsg))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("unknown error wrapped", func(t *testing.T) {
		err := d.mapRunError(nil, errors.New("exit status 1"))
		if err == nil || !strings.Contains(err.Error(), "exit status 1") {
			t.Errorf("expected wrapped error, got %v", err)
		}
	})
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "picks ERROR line",
			in:   "WARNING: something\nERROR: Video unavailable\nmore",
			want: "ERROR: Video unavailable",
		},
		{
			name: "falls back to first line",
			in:   "first line\nsecond line",
			want: "first line",
		},
		{
			name: "single line",
			in:   "only",
			want: "only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstLine(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
