// Package calc provides progress and size helpers.
package calc

import (
	"fmt"
	"math"
	"time"
)

// Progress calculates the percentage for a given pair of byte counts.
// Returns 0 when the total is unknown. Capped at 100, downloaded bytes can
// overshoot the reported total while fragments are merged.
func Progress(downloaded, total int64) int {
	if total <= 0 {
		return 0
	}

	progress := int(math.Round(float64(downloaded) / float64(total) * 100))
	if progress > 100 {
		progress = 100
	}

	return progress
}

// ETA calculates the estimated time of arrival.
func ETA(downloaded, total int64, started time.Time) time.Duration {
	if total > 0 && downloaded > 0 {
		elapsed := time.Since(started)
		return time.Duration(float64(elapsed) * (float64(total)/float64(downloaded) - 1))
	}
	return 0
}

// HumanSize formats a byte count into a human-readable string.
func HumanSize(size int64) string {
	if size <= 0 {
		return "0B"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}

	value := float64(size)
	idx := 0
	for value >= 1024 && idx < len(units)-1 {
		value /= 1024
		idx++
	}

	return fmt.Sprintf("%.1f%s", value, units[idx])
}
