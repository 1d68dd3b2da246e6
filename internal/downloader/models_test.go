package downloader

import (
	"testing"

	"grabtube/internal/entity"
)

func TestParseInfoJSON(t *testing.T) {
	data := []byte(`{
		"id": "abc123def45",
		"title": "Test Video",
		"description": "desc",
		"channel": "Test Channel",
		"uploader": "Test Uploader",
		"duration": 213.4,
		"view_count": 1000,
		"upload_date": "20240101",
		"webpage_url": "https://www.youtube.com/watch?v=abc123def45",
		"formats": [
			{"format_id": "22", "ext": "mp4", "height": 720, "vcodec": "avc1", "acodec": "mp4a", "url": "https://cdn/22"}
		]
	}`)

	info, err := ParseInfoJSON(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if info.Title != "Test Video" {
		t.Errorf("expected title, got %q", info.Title)
	}
	if len(info.Formats) != 1 {
		t.Fatalf("expected one format, got %d", len(info.Formats))
	}
	if info.Formats[0].FormatID != "22" {
		t.Errorf("unexpected format id %q", info.Formats[0].FormatID)
	}

	if _, err := ParseInfoJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestComposeMetadata(t *testing.T) {
	info := &InfoJSON{
		Title:      "Test Video",
		Channel:    "Test Channel",
		Duration:   213.4,
		ViewCount:  float64(1234),
		WebpageURL: "https://www.youtube.com/watch?v=abc123def45",
		Formats: []FormatJSON{
			// storyboard: no codecs at all, must be dropped
			{FormatID: "sb0", Ext: "mhtml", URL: "https://cdn/sb0"},
			// no url, must be dropped
			{FormatID: "18", Ext: "mp4", Height: 360, Vcodec: "avc1", Acodec: "mp4a"},
			// audio only
			{FormatID: "140", Ext: "m4a", Vcodec: "none", Acodec: "mp4a", Filesize: 100, URL: "https://cdn/140"},
			// video formats out of order
			{FormatID: "22", Ext: "mp4", Height: 720, Vcodec: "avc1", Acodec: "mp4a", Filesize: 300, URL: "https://cdn/22"},
			{FormatID: "137", Ext: "mp4", Height: 1080, Vcodec: "avc1", Acodec: "none", FilesizeA: 500, URL: "https://cdn/137"},
			// duplicate id, must be dropped
			{FormatID: "22", Ext: "mp4", Height: 720, Vcodec: "avc1", Acodec: "mp4a", URL: "https://cdn/22-dup"},
		},
	}

	meta := ComposeMetadata(info, "https://youtu.be/abc123def45")

	if meta.Duration != 213 {
		t.Errorf("expected duration 213, got %d", meta.Duration)
	}
	if meta.ViewCount != 1234 {
		t.Errorf("expected view count 1234, got %d", meta.ViewCount)
	}
	if meta.OriginalURL != "https://youtu.be/abc123def45" {
		t.Errorf("unexpected original url %q", meta.OriginalURL)
	}

	if len(meta.Formats) != 3 {
		t.Fatalf("expected 3 formats, got %d: %+v", len(meta.Formats), meta.Formats)
	}

	// sorted by height descending, audio last
	wantOrder := []string{"137", "22", "140"}
	for i, want := range wantOrder {
		if meta.Formats[i].FormatID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, meta.Formats[i].FormatID)
		}
	}

	if meta.Formats[0].Filesize != 500 {
		t.Errorf("expected approx filesize fallback, got %d", meta.Formats[0].Filesize)
	}
	if meta.Formats[0].Resolution != "1080p" {
		t.Errorf("expected 1080p, got %q", meta.Formats[0].Resolution)
	}

	audio := meta.Formats[2]
	if audio.Resolution != entity.ResolutionAudio {
		t.Errorf("expected audio resolution tag, got %q", audio.Resolution)
	}
	if !audio.IsAudioOnly() {
		t.Errorf("expected audio-only format: %+v", audio)
	}

	for _, f := range meta.Formats {
		if !f.HasAnyCodec() {
			t.Errorf("codec-less format leaked through: %+v", f)
		}
	}
}

func TestComposeMetadataWebpageURLFallback(t *testing.T) {
	meta := ComposeMetadata(&InfoJSON{Title: "x"}, "https://example.com/v")

	if meta.WebpageURL != "https://example.com/v" {
		t.Errorf("expected original url fallback, got %q", meta.WebpageURL)
	}
	if meta.Formats == nil || len(meta.Formats) != 0 {
		t.Errorf("expected empty formats slice, got %v", meta.Formats)
	}
}

func TestSortFormatsStable(t *testing.T) {
	formats := []entity.StreamFormat{
		{FormatID: "a", Resolution: "N/A", Vcodec: entity.CodecNone, Acodec: entity.CodecNone},
		{FormatID: "b", Resolution: entity.ResolutionAudio, Vcodec: entity.CodecNone, Acodec: "mp4a", Filesize: 10},
		{FormatID: "c", Resolution: entity.ResolutionAudio, Vcodec: entity.CodecNone, Acodec: "opus", Filesize: 20},
		{FormatID: "d", Height: 360, Vcodec: "avc1", Acodec: "mp4a"},
	}

	SortFormats(formats)

	wantOrder := []string{"d", "c", "b", "a"}
	for i, want := range wantOrder {
		if formats[i].FormatID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, formats[i].FormatID)
		}
	}
}

func TestCoerceCount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{name: "float", in: float64(42), want: 42},
		{name: "int64", in: int64(7), want: 7},
		{name: "string", in: "1000", want: 1000},
		{name: "bad string", in: "many", want: 0},
		{name: "nil", in: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceCount(tt.in); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
