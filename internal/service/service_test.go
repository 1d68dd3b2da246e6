package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"grabtube/internal/config"
	"grabtube/internal/downloader"
	"grabtube/internal/entity"
	"grabtube/internal/errs"
	"grabtube/internal/storage"
	"grabtube/internal/summarizer"
)

const (
	testURL     = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	testFormat  = "22"
	testTitle   = "Test Video"
	testSession = "session-1"
)

func newTestCfg() *config.Config {
	return &config.Config{
		Job: config.Job{
			Workers:      2,
			Timeout:      5 * time.Minute,
			QueueSize:    10,
			ProgressFreq: 100 * time.Millisecond,
			RetryBackoff: time.Second,
		},
		Storage: config.Storage{TTL: time.Hour, CleanupInterval: time.Minute},
		Summary: config.Summary{MaxDescriptionLen: 500},
		Dir:     config.Dir{Downloads: "/tmp/downloads"},
	}
}

// captureNotifier records published events for assertions.
type captureNotifier struct {
	mu        sync.Mutex
	progress  []int
	statuses  []string
	completes []string // file urls
	errors    []string
}

func (c *captureNotifier) PublishStatus(string, string) {}

func (c *captureNotifier) PublishProgress(_ string, progress int, _, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, progress)
	c.statuses = append(c.statuses, status)
}

func (c *captureNotifier) PublishComplete(_, _, fileURL, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completes = append(c.completes, fileURL)
}

func (c *captureNotifier) PublishError(_, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, message)
}

// flakyDownloader fails a fixed number of times before succeeding.
type flakyDownloader struct {
	mu       sync.Mutex
	failures int
	failWith error
	calls    int
}

func (f *flakyDownloader) Extract(context.Context, string) (*entity.VideoMetadata, error) {
	return &entity.VideoMetadata{Title: testTitle}, nil
}

func (f *flakyDownloader) Download(_ context.Context, job *entity.Job, _ downloader.ProgressFunc) (*downloader.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.failures {
		return nil, f.failWith
	}

	return &downloader.Result{Filename: "/tmp/downloads/ok_" + job.ID + ".mp4"}, nil
}

func newTestService(cfg *config.Config, dl downloader.Downloader, pub *captureNotifier) (*service, context.CancelFunc, context.Context) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())

	storer := storage.New(ctx, log, cfg, nil)
	sum := summarizer.New(log, cfg)

	var svc *service
	if pub != nil {
		svc = New(log, cfg, storer, dl, sum, pub, nil).(*service)
	} else {
		svc = New(log, cfg, storer, dl, sum, nil, nil).(*service)
	}

	return svc, cancel, ctx
}

func TestNew(t *testing.T) {
	cfg := newTestCfg()
	svc, cancel, _ := newTestService(cfg, &flakyDownloader{}, nil)
	defer cancel()

	if cap(svc.jobQueue) != cfg.Job.QueueSize {
		t.Errorf("expected queue size %d, got %d", cfg.Job.QueueSize, cap(svc.jobQueue))
	}
}

func TestEnqueueValidation(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "empty url", url: "", wantErr: errs.ErrURLRequired},
		{name: "invalid url", url: "not a url", wantErr: errs.ErrInvalidURL},
		{name: "non-http scheme", url: "ftp://example.com/video", wantErr: errs.ErrInvalidURL},
	}

	svc, cancel, ctx := newTestService(newTestCfg(), &flakyDownloader{}, nil)
	defer cancel()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enqueue(ctx, tt.url, testFormat, testTitle, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWorkerFinishesJob(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := newTestCfg()
		log := slog.New(slog.NewTextHandler(os.Stdout, nil))
		pub := &captureNotifier{}

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		storer := storage.New(ctx, log, cfg, nil)
		dl := downloader.NewMock(log, time.Second, cfg.Dir.Downloads)
		svc := New(log, cfg, storer, dl, summarizer.New(log, cfg), pub, nil).(*service)

		svc.Start(ctx)

		job, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, testSession)
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}

		time.Sleep(2 * time.Second)
		synctest.Wait()

		if job.Status != entity.JobStatusFinished {
			t.Errorf("expected status finished, got %v", job.Status)
		}
		if job.Progress != 100 {
			t.Errorf("expected progress 100, got %d", job.Progress)
		}
		if job.Result == nil {
			t.Fatal("expected result to be set")
		}
		if !strings.HasPrefix(job.Result.FileURL, "/downloads/") {
			t.Errorf("expected file url under /downloads/, got %q", job.Result.FileURL)
		}

		pub.mu.Lock()
		defer pub.mu.Unlock()

		if len(pub.completes) != 1 {
			t.Fatalf("expected one complete event, got %d", len(pub.completes))
		}
		if pub.completes[0] != job.Result.FileURL {
			t.Errorf("complete event carries %q, job result %q", pub.completes[0], job.Result.FileURL)
		}
		if len(pub.progress) == 0 {
			t.Error("expected progress events")
		}

		// progress events never go backwards
		last := -1
		for _, p := range pub.progress {
			if p < last {
				t.Errorf("progress went backwards: %v", pub.progress)
				break
			}
			last = p
		}
	})
}

func TestWorkerPermanentFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := newTestCfg()
		cfg.Job.Retries = 3

		pub := &captureNotifier{}
		dl := &flakyDownloader{failures: 10, failWith: fmt.Errorf("resolve: %w", errs.ErrVideoUnavailable)}

		svc, cancel, ctx := newTestService(cfg, dl, pub)
		defer cancel()

		svc.Start(ctx)

		job, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, testSession)
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}

		synctest.Wait()

		if job.Status != entity.JobStatusFailed {
			t.Errorf("expected status failed, got %v", job.Status)
		}

		// non-retryable errors burn a single attempt
		if dl.calls != 1 {
			t.Errorf("expected 1 download attempt, got %d", dl.calls)
		}

		pub.mu.Lock()
		defer pub.mu.Unlock()

		if len(pub.errors) != 1 {
			t.Errorf("expected one error event, got %d", len(pub.errors))
		}
	})
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := newTestCfg()
		cfg.Job.Retries = 2

		dl := &flakyDownloader{failures: 1, failWith: errors.New("connection reset")}

		svc, cancel, ctx := newTestService(cfg, dl, nil)
		defer cancel()

		svc.Start(ctx)

		job, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, "")
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}

		time.Sleep(5 * time.Second)
		synctest.Wait()

		if job.Status != entity.JobStatusFinished {
			t.Errorf("expected status finished after retry, got %v", job.Status)
		}
		if dl.calls != 2 {
			t.Errorf("expected 2 download attempts, got %d", dl.calls)
		}
	})
}

func TestEnqueueQueueFull(t *testing.T) {
	cfg := newTestCfg()
	cfg.Job.QueueSize = 1

	// workers never started, queue fills up
	svc, cancel, ctx := newTestService(cfg, &flakyDownloader{}, nil)
	defer cancel()

	if _, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, ""); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}

	job, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, "")
	if !errors.Is(err, errs.ErrJobQueueFull) {
		t.Errorf("expected ErrJobQueueFull, got %v", err)
	}
	if job != nil {
		t.Errorf("expected nil job on queue full")
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, cancel, ctx := newTestService(newTestCfg(), &flakyDownloader{}, nil)

		svc.Start(ctx)

		cancel()
		synctest.Wait()

		_, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, "")
		if !errors.Is(err, errs.ErrServiceClosed) {
			t.Errorf("expected ErrServiceClosed, got %v", err)
		}
	})
}

func TestConcurrentJobsIndependent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := newTestCfg()

		dl := &flakyDownloader{}

		svc, cancel, ctx := newTestService(cfg, dl, nil)
		defer cancel()

		svc.Start(ctx)

		first, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, "")
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}

		second, err := svc.Enqueue(ctx, testURL, testFormat, testTitle, "")
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}

		if first.ID == second.ID {
			t.Fatal("expected distinct job ids for identical requests")
		}

		synctest.Wait()

		if first.Status != entity.JobStatusFinished || second.Status != entity.JobStatusFinished {
			t.Errorf("expected both jobs finished, got %v and %v", first.Status, second.Status)
		}
	})
}

func TestMetadataValidation(t *testing.T) {
	svc, cancel, ctx := newTestService(newTestCfg(), &flakyDownloader{}, nil)
	defer cancel()

	if _, err := svc.Metadata(ctx, ""); !errors.Is(err, errs.ErrURLRequired) {
		t.Errorf("expected ErrURLRequired, got %v", err)
	}

	if _, err := svc.Metadata(ctx, "nope"); !errors.Is(err, errs.ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}

	meta, err := svc.Metadata(ctx, testURL)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Title != testTitle {
		t.Errorf("expected title %q, got %q", testTitle, meta.Title)
	}
}

func TestSummarize(t *testing.T) {
	svc, cancel, ctx := newTestService(newTestCfg(), &flakyDownloader{}, nil)
	defer cancel()

	summary, err := svc.Summarize(ctx, testTitle, "Some description")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(summary, testTitle) {
		t.Errorf("expected summary to mention the title, got %q", summary)
	}

	if _, err := svc.Summarize(ctx, "", ""); !errors.Is(err, errs.ErrNothingToSummarize) {
		t.Errorf("expected ErrNothingToSummarize, got %v", err)
	}
}
