// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	HTTP       HTTP
	App        App
	Job        Job
	Dir        Dir
	Storage    Storage
	RateLimit  RateLimit
	DepManager DepManager
	Proxy      Proxy
	Summary    Summary
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"GRABTUBE_APP_LOG_LEVEL" envDefault:"info"`

	// Downloader selects the extraction backend: ytdlp, native or mock.
	Downloader string `env:"GRABTUBE_APP_DOWNLOADER" envDefault:"ytdlp"`
}

// Job holds job processing configuration.
type Job struct {
	Workers   int           `env:"GRABTUBE_JOB_WORKERS"    envDefault:"2"`
	Timeout   time.Duration `env:"GRABTUBE_JOB_TIMEOUT"    envDefault:"30m"`
	QueueSize int           `env:"GRABTUBE_JOB_QUEUE_SIZE" envDefault:"100"`

	// ProgressFreq throttles how often progress events are emitted.
	ProgressFreq time.Duration `env:"GRABTUBE_JOB_PROGRESS_FREQ" envDefault:"500ms"`

	// Retries is the number of additional download attempts after a
	// transient failure. Zero disables retrying.
	Retries      int           `env:"GRABTUBE_JOB_RETRIES"       envDefault:"0"`
	RetryBackoff time.Duration `env:"GRABTUBE_JOB_RETRY_BACKOFF" envDefault:"2s"`
}

// Storage holds job registry retention configuration.
type Storage struct {
	TTL             time.Duration `env:"GRABTUBE_STORAGE_TTL"              envDefault:"168h"`
	CleanupInterval time.Duration `env:"GRABTUBE_STORAGE_CLEANUP_INTERVAL" envDefault:"1h"`
}

// HTTP holds HTTP server configuration.
type HTTP struct {
	Port            string        `env:"GRABTUBE_HTTP_PORT"             envDefault:":8080"`
	HandlerTimeout  time.Duration `env:"GRABTUBE_HTTP_HANDLER_TIMEOUT"  envDefault:"20s"`
	ShutdownTimeout time.Duration `env:"GRABTUBE_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// RateLimit holds the token bucket settings for the extraction endpoints.
type RateLimit struct {
	RPS   float64 `env:"GRABTUBE_RATELIMIT_RPS"   envDefault:"5"`
	Burst int     `env:"GRABTUBE_RATELIMIT_BURST" envDefault:"10"`
}

// Dir holds directory paths for downloads, cache, and cookie file.
type Dir struct {
	Downloads string `env:"GRABTUBE_DIR_DOWNLOADS" envDefault:"./data/downloads"` // completed artifacts stored here
	Cache     string `env:"GRABTUBE_DIR_CACHE"     envDefault:"./data/cache"`     // yt-dlp cache (meta, sigs)

	// must contain cookies.txt file
	// see: https://github.com/yt-dlp/yt-dlp/wiki/FAQ#how-do-i-pass-cookies-to-yt-dlp
	CookieFile string `env:"GRABTUBE_DIR_COOKIE_FILE" envDefault:""`
}

// SetAbsPaths converts all directory paths to absolute paths.
func (c *Dir) SetAbsPaths() error {
	var err error
	if c.Downloads, err = filepath.Abs(c.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}

	if c.Cache, err = filepath.Abs(c.Cache); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if c.CookieFile != "" {
		if c.CookieFile, err = filepath.Abs(c.CookieFile); err != nil {
			return fmt.Errorf("cookie file: %w", err)
		}
	}

	return nil
}

// DepManager holds binary dependency management configuration.
type DepManager struct {
	// BinsDir is the directory where binaries are stored.
	BinsDir string `env:"GRABTUBE_DEPMANAGER_BINS_DIR" envDefault:"./bins"`
	// UseSystemBinaries indicates whether to use system-installed binaries or download them.
	UseSystemBinaries bool `env:"GRABTUBE_DEPMANAGER_USE_SYSTEM_BINARIES" envDefault:"false"`
	// UpdateInterval is how often to check for binary updates.
	UpdateInterval time.Duration `env:"GRABTUBE_DEPMANAGER_UPDATE_INTERVAL" envDefault:"24h"`

	// ffmpeg binary URLs per platform.
	FFmpegSHA256SumsURL string `env:"GRABTUBE_DEPMANAGER_FFMPEG_SHA256SUMS_URL" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/checksums.sha256"`                        //nolint:lll
	FFmpegLinuxARM64    string `env:"GRABTUBE_DEPMANAGER_FFMPEG_LINUX_ARM64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linuxarm64-gpl.tar.xz"` //nolint:lll
	FFmpegLinuxAMD64    string `env:"GRABTUBE_DEPMANAGER_FFMPEG_LINUX_AMD64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linux64-gpl.tar.xz"`    //nolint:lll

	// yt-dlp binary URLs per platform.
	YTdlpSHA256SumsURL string `env:"GRABTUBE_DEPMANAGER_YTDLP_SHA256SUMS_URL" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/SHA2-256SUMS"`      //nolint:lll
	YTdlpLinuxARM64    string `env:"GRABTUBE_DEPMANAGER_YTDLP_LINUX_ARM64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64"` //nolint:lll
	YTdlpLinuxAMD64    string `env:"GRABTUBE_DEPMANAGER_YTDLP_LINUX_AMD64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux"`         //nolint:lll
}

// SetAbsPaths converts the BinsDir path to an absolute path.
func (d *DepManager) SetAbsPaths() error {
	var err error
	if d.BinsDir, err = filepath.Abs(d.BinsDir); err != nil {
		return fmt.Errorf("bins dir: %w", err)
	}

	return nil
}

// Proxy holds proxy configuration for download requests.
type Proxy struct {
	// List is a comma-separated list of proxy URLs in socks5h or http format.
	List string `env:"GRABTUBE_PROXY_LIST" envDefault:""`
	// HealthCheck enables a TCP dial check before handing out a proxy.
	HealthCheck bool `env:"GRABTUBE_PROXY_HEALTH_CHECK" envDefault:"true"`
	// HealthTimeout bounds a single proxy health check.
	HealthTimeout time.Duration `env:"GRABTUBE_PROXY_HEALTH_TIMEOUT" envDefault:"5s"`

	// Proxies is the parsed list of proxy URLs.
	Proxies []string `env:"-"`
}

// parseList parses the comma-separated proxy list.
func (p *Proxy) parseList() {
	if p.List == "" {
		return
	}

	for proxy := range strings.SplitSeq(p.List, ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy != "" {
			p.Proxies = append(p.Proxies, proxy)
		}
	}
}

// Summary holds summary generation configuration.
type Summary struct {
	// MaxDescriptionLen is how much of the description feeds the summary.
	MaxDescriptionLen int `env:"GRABTUBE_SUMMARY_MAX_DESCRIPTION_LEN" envDefault:"500"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	err = cfg.DepManager.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set dep manager absolute paths: %w", err)
	}

	cfg.Proxy.parseList()

	return cfg, nil
}
