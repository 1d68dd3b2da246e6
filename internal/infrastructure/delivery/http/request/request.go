package request

import (
	"grabtube/internal/errs"
	"grabtube/pkg/urls"
)

// GetVideoInfo is the body of a metadata extraction request.
type GetVideoInfo struct {
	URL string `json:"url"`
}

func (g *GetVideoInfo) Validate() error {
	if g.URL == "" {
		return errs.ErrURLRequired
	}
	if !urls.IsURLValid(g.URL) {
		return errs.ErrInvalidURL
	}
	return nil
}

// Summarize is the body of a summary request.
type Summarize struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Summarize) Validate() error {
	if s.Title == "" && s.Description == "" {
		return errs.ErrNothingToSummarize
	}
	return nil
}

// Enqueue is the body of a REST download request, mirroring the payload
// clients send over the push channel.
type Enqueue struct {
	VideoURL   string `json:"video_url"`
	FormatID   string `json:"format_id"`
	VideoTitle string `json:"video_title"`
}

func (e *Enqueue) Validate() error {
	if e.VideoURL == "" {
		return errs.ErrURLRequired
	}
	if !urls.IsURLValid(e.VideoURL) {
		return errs.ErrInvalidURL
	}
	return nil
}
