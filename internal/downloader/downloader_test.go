package downloader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"grabtube/internal/errs"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: fmt.Errorf("run: %w", context.DeadlineExceeded), want: false},
		{name: "format not found", err: fmt.Errorf("x: %w", errs.ErrFormatNotFound), want: false},
		{name: "video unavailable", err: errs.ErrVideoUnavailable, want: false},
		{name: "transient io", err: errors.New("connection reset by peer"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "timeout", err: context.DeadlineExceeded, want: "timeout"},
		{name: "format", err: errs.ErrFormatNotFound, want: "format_not_found"},
		{name: "unavailable", err: errs.ErrVideoUnavailable, want: "video_unavailable"},
		{name: "other", err: errors.New("boom"), want: "process"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHeuristicProgress(t *testing.T) {
	if got := heuristicProgress(0); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := heuristicProgress(50); got != 51 {
		t.Errorf("expected 51, got %d", got)
	}

	// never reaches 100 without a real total
	if got := heuristicProgress(95); got != 95 {
		t.Errorf("expected ceiling 95, got %d", got)
	}
	if got := heuristicProgress(99); got != 99 {
		t.Errorf("expected 99 to hold, got %d", got)
	}
}
