// Package urls provides utility functions for working with video URLs.
package urls

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/v/)([0-9A-Za-z_-]{11})(?:[?&]|$)`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:shorts/)([0-9A-Za-z_-]{11})`),
}

// IsURLValid checks if the given URL is a well-formed http(s) URL.
func IsURLValid(raw string) bool {
	u, err := url.Parse(raw)

	return err == nil && u.Scheme != "" && u.Host != "" && (u.Scheme == schemeHTTP || u.Scheme == schemeHTTPS)
}

// Normalize trims spaces, parses and returns the URL in string format.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	return u.String()
}

// ExtractVideoID extracts a YouTube video id from the common URL shapes.
// Returns an empty string when no id is found.
func ExtractVideoID(raw string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}

	return ""
}

// IsYouTubeURL reports whether the URL points to a known YouTube host
// and carries a video id.
func IsYouTubeURL(raw string) bool {
	if !IsURLValid(raw) {
		return false
	}

	u, _ := url.Parse(raw)

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com", "youtu.be":
		return ExtractVideoID(raw) != ""
	}

	return false
}
