// Package sanitize derives filesystem-safe names from video titles.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	maxTitleLen     = 100
	fallbackTitle   = "downloaded_video"
	replacementChar = "_"
)

var invalidChars = regexp.MustCompile(`[^\w\s.-]`)

// Filename cleans a video title for use as a filename: invalid
// characters removed, spaces replaced with underscores, length capped.
func Filename(title string) string {
	clean := invalidChars.ReplaceAllString(title, "")
	clean = strings.TrimSpace(clean)
	clean = strings.Join(strings.Fields(clean), replacementChar)

	if clean == "" {
		clean = fallbackTitle
	}

	if len(clean) > maxTitleLen {
		clean = clean[:maxTitleLen]
	}

	return clean
}
