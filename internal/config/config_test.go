package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"grabtube/internal/config"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := config.New()
	if err != nil {
		t.Fatalf("config new: %v", err)
	}

	if cfg.HTTP.Port != ":8080" {
		t.Errorf("expected default port :8080, got %q", cfg.HTTP.Port)
	}
	if cfg.App.Downloader != "ytdlp" {
		t.Errorf("expected default downloader ytdlp, got %q", cfg.App.Downloader)
	}
	if cfg.Job.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Job.Workers)
	}
	if cfg.Job.ProgressFreq != 500*time.Millisecond {
		t.Errorf("expected 500ms progress freq, got %v", cfg.Job.ProgressFreq)
	}
	if cfg.Storage.TTL != 168*time.Hour {
		t.Errorf("expected 168h ttl, got %v", cfg.Storage.TTL)
	}
	if cfg.Summary.MaxDescriptionLen != 500 {
		t.Errorf("expected 500 max description len, got %d", cfg.Summary.MaxDescriptionLen)
	}

	if !filepath.IsAbs(cfg.Dir.Downloads) {
		t.Errorf("expected absolute downloads dir, got %q", cfg.Dir.Downloads)
	}
	if !filepath.IsAbs(cfg.DepManager.BinsDir) {
		t.Errorf("expected absolute bins dir, got %q", cfg.DepManager.BinsDir)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("GRABTUBE_HTTP_PORT", ":9999")
	t.Setenv("GRABTUBE_APP_DOWNLOADER", "native")
	t.Setenv("GRABTUBE_JOB_WORKERS", "8")
	t.Setenv("GRABTUBE_JOB_RETRIES", "3")
	t.Setenv("GRABTUBE_RATELIMIT_RPS", "2.5")

	cfg, err := config.New()
	if err != nil {
		t.Fatalf("config new: %v", err)
	}

	if cfg.HTTP.Port != ":9999" {
		t.Errorf("expected :9999, got %q", cfg.HTTP.Port)
	}
	if cfg.App.Downloader != "native" {
		t.Errorf("expected native, got %q", cfg.App.Downloader)
	}
	if cfg.Job.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Job.Workers)
	}
	if cfg.Job.Retries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Job.Retries)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimit.RPS)
	}
}

func TestProxyListParsing(t *testing.T) {
	t.Setenv("GRABTUBE_PROXY_LIST", "socks5h://127.0.0.1:1080, http://10.0.0.1:8080 ,,")

	cfg, err := config.New()
	if err != nil {
		t.Fatalf("config new: %v", err)
	}

	want := []string{"socks5h://127.0.0.1:1080", "http://10.0.0.1:8080"}
	if len(cfg.Proxy.Proxies) != len(want) {
		t.Fatalf("expected %d proxies, got %v", len(want), cfg.Proxy.Proxies)
	}
	for i, p := range want {
		if cfg.Proxy.Proxies[i] != p {
			t.Errorf("position %d: expected %q, got %q", i, p, cfg.Proxy.Proxies[i])
		}
	}
}
