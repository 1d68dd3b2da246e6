package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"grabtube/internal/consts"
	"grabtube/internal/errs"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// Session is one connected push client.
type Session struct {
	ID string

	hub  *Hub
	conn *websocket.Conn

	send chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id string, hub *Hub, conn *websocket.Conn) *Session {
	return &Session{
		ID:   id,
		hub:  hub,
		conn: conn,
		send: make(chan Event, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue queues an event for delivery without blocking.
func (s *Session) enqueue(event Event) error {
	select {
	case <-s.done:
		return errs.ErrSessionNotFound
	default:
	}

	select {
	case s.send <- event:
		return nil
	default:
		return errs.ErrSessionBufferFull
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// writePump drains the send queue to the connection and keeps it alive
// with pings. One per session.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case event := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// readPump consumes client frames until the connection drops, dispatching
// start_download requests to the hub's handler.
func (s *Session) readPump(ctx context.Context) {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	log := s.hub.log.With(slog.String("session_id", s.ID))

	for {
		var msg inbound
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "websocket read", slog.Any("error", err))
			}

			return
		}

		switch msg.Event {
		case EventStartDownload:
			s.handleStartDownload(ctx, log, msg.Data)
		default:
			log.DebugContext(ctx, "unknown client event", slog.String("event", msg.Event))
		}
	}
}

func (s *Session) handleStartDownload(ctx context.Context, log *slog.Logger, data json.RawMessage) {
	var payload StartDownloadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.WarnContext(ctx, "malformed start_download payload", slog.Any("error", err))
		s.hub.PublishError(s.ID, "Invalid download request.")

		return
	}

	log.InfoContext(ctx, "download requested",
		slog.String("video_url", payload.VideoURL), slog.String("format_id", payload.FormatID))

	s.hub.PublishProgress(s.ID, 0, consts.MsgStarting, StatusPreparing)

	if s.hub.startFn == nil {
		s.hub.PublishError(s.ID, "Downloads are not available.")

		return
	}

	if err := s.hub.startFn(ctx, s.ID, payload.VideoURL, payload.FormatID, payload.VideoTitle); err != nil {
		log.WarnContext(ctx, "start download rejected", slog.Any("error", err))
		s.hub.PublishError(s.ID, "Download failed: "+err.Error())
	}
}
