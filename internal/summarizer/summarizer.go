// Package summarizer produces short text summaries of video metadata.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grabtube/internal/config"
	"grabtube/internal/errs"
)

// noDescription is the placeholder some extractors emit instead of an
// empty description.
const noDescription = "No description available."

// Summarizer generates a summary from video title and description.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string) (string, error)
}

type summarizer struct {
	log    *slog.Logger
	maxLen int
}

// New creates a description-based summarizer.
func New(log *slog.Logger, cfg *config.Config) Summarizer {
	return &summarizer{
		log:    log.With(slog.String("package", "summarizer")),
		maxLen: cfg.Summary.MaxDescriptionLen,
	}
}

// Summarize builds a summary from the description, trimmed to the
// configured length, falling back to the title when no usable
// description exists.
func (s *summarizer) Summarize(ctx context.Context, title, description string) (string, error) {
	if title == "" && description == "" {
		return "", errs.ErrNothingToSummarize
	}

	if description != "" && description != noDescription {
		runes := []rune(description)
		trimmed := len(runes) > s.maxLen

		head := description
		if trimmed {
			head = string(runes[:s.maxLen])
		}

		summary := fmt.Sprintf("Summary of '%s': %s...", title, strings.TrimSpace(head))
		if trimmed {
			summary += "\n(Description trimmed for summarization)"
		}

		s.log.DebugContext(ctx, "summary generated", slog.Int("length", len(summary)))

		return summary, nil
	}

	if title != "" {
		return fmt.Sprintf("No detailed description available, but the video is titled '%s'.", title), nil
	}

	return "Could not generate summary.", nil
}
