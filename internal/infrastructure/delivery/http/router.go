// Package httprouter wires HTTP routes to the service layer.
package httprouter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"grabtube/internal/config"
	"grabtube/internal/consts"
	"grabtube/internal/errs"
	"grabtube/internal/infrastructure/delivery/http/middleware"
	"grabtube/internal/infrastructure/delivery/http/request"
	"grabtube/internal/infrastructure/delivery/http/response"
	"grabtube/internal/observability"
	"grabtube/internal/service"

	"golang.org/x/time/rate"
)

type chain []func(http.Handler) http.Handler

func (c chain) thenFunc(h http.HandlerFunc) http.Handler {
	return c.then(h)
}

func (c chain) then(h http.Handler) http.Handler {
	for _, mw := range slices.Backward(c) {
		h = mw(h)
	}
	return h
}

type Router struct {
	*http.ServeMux
	log         *slog.Logger
	cfg         *config.Config
	globalChain []func(http.Handler) http.Handler
	routeChain  []func(http.Handler) http.Handler
	isSubRouter bool
	svc         service.Service
	pushHandler http.Handler
	metrics     *observability.Metrics
	limiter     *rate.Limiter
}

func New(log *slog.Logger,
	cfg *config.Config,
	svc service.Service,
	pushHandler http.Handler,
	metrics *observability.Metrics) *Router {
	r := &Router{
		ServeMux:    http.NewServeMux(),
		log:         log,
		cfg:         cfg,
		svc:         svc,
		pushHandler: pushHandler,
		metrics:     metrics,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
	}

	r.SetGlobalMiddlewares()
	r.SetRoutes()

	return r
}

func (r *Router) Use(middleware ...func(http.Handler) http.Handler) {
	if r.isSubRouter {
		r.routeChain = append(r.routeChain, middleware...)
	} else {
		r.globalChain = append(r.globalChain, middleware...)
	}
}

func (r *Router) Group(fn func(r *Router)) {
	subRouter := &Router{
		isSubRouter: true,
		routeChain:  slices.Clone(r.routeChain),
		ServeMux:    r.ServeMux}

	fn(subRouter)
}

func (r *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	r.Handle(pattern, h)
}

func (r *Router) Handle(pattern string, h http.Handler) {
	for _, middleware := range slices.Backward(r.routeChain) {
		h = middleware(h)
	}
	r.ServeMux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.ServeMux

	for _, middleware := range slices.Backward(r.globalChain) {
		h = middleware(h)
	}

	h.ServeHTTP(w, req)
}

func (r *Router) SetGlobalMiddlewares() {
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.Logger,
		middleware.Metrics(r.metrics),
	)
}

func (r *Router) SetRoutes() {
	r.SetRoutesVideo()
	r.SetRoutesPush()
	r.SetRoutesFiles()
	r.SetRoutesJob()
	r.SetRoutesHealthcheck()
	r.SetRoutesMetrics()
}

// SetRoutesVideo wires the extraction and summary endpoints. Their body
// shapes are fixed by existing clients.
func (r *Router) SetRoutesVideo() {
	limited := chain{middleware.RateLimit(r.limiter)}

	r.Handle("POST /get_video_info", limited.thenFunc(r.GetVideoInfo))
	r.HandleFunc("POST /summarize_video", r.SummarizeVideo)
}

func (r *Router) SetRoutesPush() {
	r.Handle("GET /ws", r.pushHandler)
}

func (r *Router) SetRoutesFiles() {
	r.HandleFunc("GET /downloads/{filename}", r.ServeDownload)
}

func (r *Router) SetRoutesJob() {
	jobRouter := &Router{
		ServeMux: http.NewServeMux(),
		log:      r.log,
		cfg:      r.cfg,
		svc:      r.svc,
	}
	jobRouter.HandleFunc("POST /enqueue", r.Enqueue)
	jobRouter.HandleFunc("GET /", r.GetJobs)
	jobRouter.HandleFunc("GET /{id}", r.GetJob)

	r.Handle("/v1/jobs/", http.StripPrefix("/v1/jobs", jobRouter))
}

func (r *Router) SetRoutesHealthcheck() {
	healthcheckRouter := &Router{
		ServeMux: http.NewServeMux(),
	}
	healthcheckRouter.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/v1/", http.StripPrefix("/v1", healthcheckRouter))
}

func (r *Router) SetRoutesMetrics() {
	r.Handle("GET /metrics", observability.Handler())
}

func (ro *Router) GetVideoInfo(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "GetVideoInfo")

	ctx, cancel := context.WithTimeout(r.Context(), ro.cfg.HTTP.HandlerTimeout)
	defer cancel()

	var in request.GetVideoInfo
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.ErrorContext(ctx, consts.RespInvalidRequestBody, slog.Any("error", err))
		response.RawError(w, http.StatusBadRequest, "URL is required")

		return
	}

	if err := in.Validate(); err != nil {
		log.ErrorContext(ctx, consts.RespUnprocessableEntity, slog.Any("error", err))
		response.RawError(w, http.StatusBadRequest, "URL is required")

		return
	}

	meta, err := ro.svc.Metadata(ctx, in.URL)
	if err != nil {
		log.ErrorContext(ctx, consts.RespVideoInfoFail, slog.Any("error", err))
		response.RawError(w, http.StatusInternalServerError, "Failed to get video info: "+err.Error())

		return
	}

	response.Raw(w, http.StatusOK, meta)
}

func (ro *Router) SummarizeVideo(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "SummarizeVideo")

	ctx, cancel := context.WithTimeout(r.Context(), ro.cfg.HTTP.HandlerTimeout)
	defer cancel()

	var in request.Summarize
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.ErrorContext(ctx, consts.RespInvalidRequestBody, slog.Any("error", err))
		response.RawError(w, http.StatusBadRequest, "No video title or description provided for summarization.")

		return
	}

	summary, err := ro.svc.Summarize(ctx, in.Title, in.Description)
	if errors.Is(err, errs.ErrNothingToSummarize) {
		log.DebugContext(ctx, consts.RespSummarizeFail, slog.Any("error", err))
		response.RawError(w, http.StatusBadRequest, "No video title or description provided for summarization.")

		return
	}
	if err != nil {
		log.ErrorContext(ctx, consts.RespSummarizeFail, slog.Any("error", err))
		response.RawError(w, http.StatusInternalServerError, consts.RespSummarizeFail)

		return
	}

	response.Raw(w, http.StatusOK, map[string]string{"summary": summary})
}

// ServeDownload serves a completed artifact by its basename.
func (ro *Router) ServeDownload(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "ServeDownload")
	ctx := r.Context()

	filename := r.PathValue("filename")
	if filename == "" || filename != filepath.Base(filename) {
		log.WarnContext(ctx, consts.RespFileNotFound, slog.String("filename", filename))
		response.RawError(w, http.StatusNotFound, consts.RespFileNotFound)

		return
	}

	path := filepath.Join(ro.cfg.Dir.Downloads, filename)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.WarnContext(ctx, consts.RespFileNotFound, slog.String("filename", filename))
		response.RawError(w, http.StatusNotFound, consts.RespFileNotFound)

		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

func (ro *Router) Enqueue(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "Enqueue")
	ctx := r.Context()

	var in request.Enqueue
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.ErrorContext(ctx, consts.RespInvalidRequestBody, slog.Any("error", err))
		response.BadRequest(w, consts.RespInvalidRequestBody, errs.ErrInvalidRequestBody)

		return
	}

	if err := in.Validate(); err != nil {
		log.ErrorContext(ctx, consts.RespUnprocessableEntity, slog.Any("error", err))
		response.UnprocessableEntity(w, consts.RespUnprocessableEntity, err)

		return
	}

	job, err := ro.svc.Enqueue(ctx, in.VideoURL, in.FormatID, in.VideoTitle, "")
	if err != nil {
		log.ErrorContext(ctx, "job enqueue failed", slog.Any("error", err))
		response.InternalServerError(w, "job enqueue failed", nil, err)

		return
	}

	log.InfoContext(ctx, "job enqueued", "job", job)

	response.Accepted(w, "job enqueued", job.ID, nil)
}

func (ro *Router) GetJob(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "GetJob")

	ctx, cancel := context.WithTimeout(r.Context(), consts.DefaultHandlerTimeout)
	defer cancel()

	id := r.PathValue("id")
	if id == "" {
		log.ErrorContext(ctx, consts.RespQueryParamMissing)
		response.BadRequest(w, consts.RespQueryParamMissing, nil)

		return
	}

	job := ro.svc.GetByID(ctx, id)
	if job == nil {
		log.DebugContext(ctx, consts.RespJobNotFound, slog.String("id", id))
		response.NoContent(w)

		return
	}

	response.OK(w, consts.RespJobRetrieved, job, nil)
}

func (ro *Router) GetJobs(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "GetJobs")

	ctx, cancel := context.WithTimeout(r.Context(), consts.DefaultHandlerTimeout)
	defer cancel()

	jobs, err := ro.svc.GetAll(ctx)
	if errors.Is(err, errs.ErrNoJobs) {
		log.DebugContext(ctx, consts.RespNoJobs)
		response.NoContent(w)

		return
	}

	if err != nil {
		log.ErrorContext(ctx, consts.RespGetJobsFail, slog.Any("error", err))
		response.InternalServerError(w, consts.RespGetJobsFail, nil, err)

		return
	}

	response.OK(w, consts.RespJobsRetrieved, jobs, nil)
}
