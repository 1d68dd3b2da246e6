// entry point of the application
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"grabtube/internal/config"
	"grabtube/internal/consts"
	"grabtube/internal/depmanager"
	"grabtube/internal/downloader"
	httprouter "grabtube/internal/infrastructure/delivery/http"
	"grabtube/internal/notifier"
	"grabtube/internal/observability"
	"grabtube/internal/proxy"
	"grabtube/internal/service"
	"grabtube/internal/storage"
	"grabtube/internal/summarizer"
	httpserver "grabtube/pkg/http/server"
	"grabtube/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		slog.Error("config new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
	})
	if err != nil {
		slog.WarnContext(ctx, "logger level invalid; defaulting to info", slog.Any("error", err))
	}

	for _, dir := range []string{cfg.Dir.Downloads, cfg.Dir.Cache} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("create dir", slog.String("dir", dir), slog.Any("error", err))
			stop()
			os.Exit(1)
		}
	}

	metrics := observability.New()

	var proxyMgr *proxy.Manager
	if len(cfg.Proxy.Proxies) > 0 {
		proxyMgr, err = proxy.New(cfg.Proxy.Proxies, cfg.Proxy.HealthCheck, cfg.Proxy.HealthTimeout)
		if err != nil {
			log.Error("proxy manager", slog.Any("error", err))
			stop()
			os.Exit(1)
		}

		log.InfoContext(ctx, "proxy manager initialized", slog.Int("proxy_count", proxyMgr.Count()))
	}

	var dl downloader.Downloader

	switch cfg.App.Downloader {
	case consts.DownloaderNative:
		dl = downloader.NewNative(log, cfg, metrics)
	case consts.DownloaderMock:
		dl = downloader.NewMock(log, consts.DefaultSimulateTime, cfg.Dir.Downloads)
	default:
		depMgr := depmanager.New(log, cfg)

		log.InfoContext(ctx, "checking if yt-dlp and ffmpeg are installed. it may take some time...")

		if err := depMgr.Start(ctx); err != nil {
			log.Error("dep manager start", slog.Any("error", err))
			stop()
			os.Exit(1)
		}

		dl = downloader.NewYTdlp(log, cfg, depMgr, proxyMgr, metrics)
	}

	storer := storage.New(ctx, log, cfg, metrics)
	sum := summarizer.New(log, cfg)
	hub := notifier.New(log, metrics)

	svc := service.New(log, cfg, storer, dl, sum, hub, metrics)

	hub.OnStartDownload(func(ctx context.Context, sessionID, videoURL, formatID, videoTitle string) error {
		_, err := svc.Enqueue(ctx, videoURL, formatID, videoTitle, sessionID)

		return err
	})

	router := httprouter.New(log, cfg, svc, hub, metrics)

	httpSrv := httpserver.New(router, httpserver.Options{
		Addr:            cfg.HTTP.Port,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})

	svc.Start(ctx)

	log.InfoContext(ctx, "grabtube started", slog.String("port", cfg.HTTP.Port))

	select {
	case <-ctx.Done():
	case err := <-httpSrv.Notify():
		log.Error("http server", slog.Any("error", err))
	}

	hub.Shutdown(ctx)

	if err := httpSrv.Shutdown(); err != nil {
		log.Error(err.Error())
	}

	log.InfoContext(ctx, "grabtube shut down gracefully")
}
