package downloader

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"grabtube/internal/entity"
)

// InfoJSON represents the single-video JSON document yt-dlp prints for a
// metadata extraction run.
type InfoJSON struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Channel     string       `json:"channel"`
	Uploader    string       `json:"uploader"`
	Thumbnail   string       `json:"thumbnail"`
	Duration    float64      `json:"duration"`
	ViewCount   any          `json:"view_count"`
	UploadDate  string       `json:"upload_date"`
	WebpageURL  string       `json:"webpage_url"`
	OriginalURL string       `json:"original_url"`
	Formats     []FormatJSON `json:"formats"`
}

// FormatJSON represents one entry of the formats array in yt-dlp JSON output.
type FormatJSON struct {
	FormatID   string  `json:"format_id"`
	FormatNote string  `json:"format_note"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Filesize   int64   `json:"filesize"`
	FilesizeA  int64   `json:"filesize_approx"`
	Vcodec     string  `json:"vcodec"`
	Acodec     string  `json:"acodec"`
	URL        string  `json:"url"`
	Tbr        float64 `json:"tbr"`
}

// ParseInfoJSON parses a yt-dlp single-video JSON document.
func ParseInfoJSON(data []byte) (*InfoJSON, error) {
	var info InfoJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// ComposeMetadata converts yt-dlp JSON output into client-facing metadata:
// formats without any codec are dropped, audio-only entries are tagged, and
// the list is ordered by height then filesize, both descending.
func ComposeMetadata(info *InfoJSON, originalURL string) *entity.VideoMetadata {
	meta := &entity.VideoMetadata{
		Title:       info.Title,
		Channel:     info.Channel,
		Thumbnail:   info.Thumbnail,
		Duration:    int(math.Round(info.Duration)),
		ViewCount:   coerceCount(info.ViewCount),
		UploadDate:  info.UploadDate,
		Description: info.Description,
		Uploader:    info.Uploader,
		WebpageURL:  info.WebpageURL,
		OriginalURL: originalURL,
		Formats:     make([]entity.StreamFormat, 0, len(info.Formats)),
	}

	if meta.WebpageURL == "" {
		meta.WebpageURL = originalURL
	}

	seen := make(map[string]struct{}, len(info.Formats))

	for _, f := range info.Formats {
		sf := composeFormat(f)
		if sf == nil {
			continue
		}

		// format_id must be unique within a response.
		if _, dup := seen[sf.FormatID]; dup {
			continue
		}
		seen[sf.FormatID] = struct{}{}

		meta.Formats = append(meta.Formats, *sf)
	}

	SortFormats(meta.Formats)

	return meta
}

func composeFormat(f FormatJSON) *entity.StreamFormat {
	if f.URL == "" || f.FormatID == "" {
		return nil
	}

	vcodec := f.Vcodec
	if vcodec == "" {
		vcodec = entity.CodecNone
	}

	acodec := f.Acodec
	if acodec == "" {
		acodec = entity.CodecNone
	}

	resolution := f.Resolution
	switch {
	case f.Height > 0:
		resolution = strconv.Itoa(f.Height) + "p"
	case acodec != entity.CodecNone && vcodec == entity.CodecNone:
		resolution = entity.ResolutionAudio
	case resolution == "":
		resolution = "N/A"
	}

	quality := f.FormatNote
	if quality == "" {
		quality = resolution
	}

	filesize := f.Filesize
	if filesize == 0 {
		filesize = f.FilesizeA
	}

	sf := &entity.StreamFormat{
		FormatID:   f.FormatID,
		Ext:        f.Ext,
		Quality:    quality,
		Resolution: resolution,
		Width:      f.Width,
		Height:     f.Height,
		Filesize:   filesize,
		Vcodec:     vcodec,
		Acodec:     acodec,
		URL:        f.URL,
	}

	// Entries carrying neither stream (subtitles, storyboards) are skipped.
	if !sf.HasAnyCodec() {
		return nil
	}

	return sf
}

// SortFormats orders formats by height descending then filesize descending.
// Audio-only entries sort below any video, unknown entries last.
func SortFormats(formats []entity.StreamFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		hi, hj := sortHeight(formats[i]), sortHeight(formats[j])
		if hi != hj {
			return hi > hj
		}

		return formats[i].Filesize > formats[j].Filesize
	})
}

func sortHeight(f entity.StreamFormat) int {
	if f.Height > 0 {
		return f.Height
	}

	if f.IsAudioOnly() {
		return -1
	}

	return -2
}

// coerceCount converts a loosely-typed JSON count (number, string or null)
// to int64.
func coerceCount(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}

		return parsed
	default:
		return 0
	}
}
