package calc

import (
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name       string
		downloaded int64
		total      int64
		want       int
	}{
		{name: "zero total", downloaded: 100, total: 0, want: 0},
		{name: "negative total", downloaded: 100, total: -1, want: 0},
		{name: "half", downloaded: 50, total: 100, want: 50},
		{name: "complete", downloaded: 100, total: 100, want: 100},
		{name: "rounding", downloaded: 1, total: 3, want: 33},
		{name: "rounds up", downloaded: 2, total: 3, want: 67},
		{name: "overshoot capped", downloaded: 150, total: 100, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.downloaded, tt.total); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestETA(t *testing.T) {
	if got := ETA(0, 100, time.Now()); got != 0 {
		t.Errorf("expected zero ETA without progress, got %v", got)
	}

	if got := ETA(50, 0, time.Now()); got != 0 {
		t.Errorf("expected zero ETA without total, got %v", got)
	}

	started := time.Now().Add(-10 * time.Second)
	got := ETA(50, 100, started)
	if got < 9*time.Second || got > 11*time.Second {
		t.Errorf("expected roughly 10s, got %v", got)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 0, want: "0B"},
		{size: -5, want: "0B"},
		{size: 512, want: "512.0B"},
		{size: 1024, want: "1.0KB"},
		{size: 1536, want: "1.5KB"},
		{size: 1 << 20, want: "1.0MB"},
		{size: 1 << 30, want: "1.0GB"},
	}

	for _, tt := range tests {
		if got := HumanSize(tt.size); got != tt.want {
			t.Errorf("%d: expected %q, got %q", tt.size, tt.want, got)
		}
	}
}
