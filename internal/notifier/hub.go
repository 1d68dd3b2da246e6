// Package notifier maintains websocket push sessions and delivers
// per-session download events.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"grabtube/internal/consts"
	"grabtube/internal/errs"
	"grabtube/internal/observability"
	"grabtube/pkg/gen"

	"github.com/gorilla/websocket"
)

// StartFunc handles a start_download request from a connected client.
type StartFunc func(ctx context.Context, sessionID, videoURL, formatID, videoTitle string) error

// Publisher is the push surface the rest of the application uses.
// Delivery is best effort: events to unknown or slow sessions are dropped.
type Publisher interface {
	PublishStatus(sessionID, message string)
	PublishProgress(sessionID string, progress int, message, status string)
	PublishComplete(sessionID, filename, fileURL, message string)
	PublishError(sessionID, message string)
}

// Hub owns all live push sessions.
type Hub struct {
	log     *slog.Logger
	metrics *observability.Metrics

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session

	startFn StartFunc
}

var _ Publisher = (*Hub)(nil)

// New creates an empty hub.
func New(log *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		log:     log.With(slog.String("package", "notifier")),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// same-origin policy is left to the deployment edge
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}
}

// OnStartDownload registers the handler invoked for client start_download
// events. Must be called before the hub starts accepting connections.
func (h *Hub) OnStartDownload(fn StartFunc) {
	h.startFn = fn
}

// ServeHTTP upgrades the request to a websocket session and blocks until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.ErrorContext(r.Context(), "websocket upgrade", slog.Any("error", err))

		return
	}

	session := newSession(gen.SessionID(), h, conn)

	h.register(session)
	defer h.unregister(session)

	h.log.InfoContext(r.Context(), "client connected", slog.String("session_id", session.ID))

	session.enqueue(Event{Event: EventStatusUpdate, Data: StatusPayload{Message: consts.MsgConnected}})

	go session.writePump()
	session.readPump(r.Context())

	h.log.InfoContext(r.Context(), "client disconnected", slog.String("session_id", session.ID))
}

// PublishStatus sends a status_update event to the session.
func (h *Hub) PublishStatus(sessionID, message string) {
	h.publish(sessionID, Event{Event: EventStatusUpdate, Data: StatusPayload{Message: message}})
}

// PublishProgress sends a progress_update event to the session.
func (h *Hub) PublishProgress(sessionID string, progress int, message, status string) {
	h.publish(sessionID, Event{Event: EventProgressUpdate, Data: ProgressPayload{
		Progress: progress,
		Message:  message,
		Status:   status,
	}})
}

// PublishComplete sends a download_complete event to the session.
func (h *Hub) PublishComplete(sessionID, filename, fileURL, message string) {
	h.publish(sessionID, Event{Event: EventDownloadComplete, Data: CompletePayload{
		Filename: filename,
		FileURL:  fileURL,
		Message:  message,
	}})
}

// PublishError sends a download_error event to the session.
func (h *Hub) PublishError(sessionID, message string) {
	h.publish(sessionID, Event{Event: EventDownloadError, Data: ErrorPayload{Message: message}})
}

func (h *Hub) publish(sessionID string, event Event) {
	if sessionID == "" {
		return
	}

	h.mu.RLock()
	session, ok := h.sessions[sessionID]
	h.mu.RUnlock()

	if !ok {
		h.log.Debug("publish to unknown session",
			slog.String("session_id", sessionID), slog.String("event", event.Event))
		h.recordDropped(event.Event)

		return
	}

	if err := session.enqueue(event); err != nil {
		if errors.Is(err, errs.ErrSessionBufferFull) {
			h.log.Warn("session buffer full, dropping event",
				slog.String("session_id", sessionID), slog.String("event", event.Event))
		}
		h.recordDropped(event.Event)

		return
	}

	if h.metrics != nil {
		h.metrics.RecordEventSent(event.Event)
	}
}

func (h *Hub) recordDropped(event string) {
	if h.metrics != nil {
		h.metrics.RecordEventDropped(event)
	}
}

func (h *Hub) register(session *Session) {
	h.mu.Lock()
	h.sessions[session.ID] = session
	count := len(h.sessions)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetSessionsActive(count)
	}
}

func (h *Hub) unregister(session *Session) {
	h.mu.Lock()
	if current, ok := h.sessions[session.ID]; ok && current == session {
		delete(h.sessions, session.ID)
	}
	count := len(h.sessions)
	h.mu.Unlock()

	session.close()

	if h.metrics != nil {
		h.metrics.SetSessionsActive(count)
	}
}

// SessionCount returns the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// Shutdown closes every live session.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}

	h.log.InfoContext(ctx, "notifier shut down", slog.Int("sessions_closed", len(sessions)))
}
