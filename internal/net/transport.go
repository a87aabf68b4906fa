package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
)

const (
	wsMaxPayloadBytes = 1 << 20
	wsMaxExportBytes  = 32 << 20
	wsPongWait        = 60 * time.Second
	wsPingInterval    = 25 * time.Second
	wsWriteWait       = 10 * time.Second
	wsSendBuffer      = 64
)

type wsFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Payload any             `json:"payload,omitempty"`
	Error   *wsError        `json:"error,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *wsError) Error() string { return e.Code + ": " + e.Message }

var errFrameTooLarge = errors.New("frame too large")

// Error codes carried in response frames.
const (
	codeBadRequest    = "bad_request"
	codeUnknownMethod = "unknown_method"
	codeNotFound      = "not_found"
	codeInvalidKind   = "invalid_kind"
	codeExportFailed  = "export_failed"
)

// Session is one browser connection and the private editor it drives.
type Session struct {
	ID        string
	Remote    string
	Connected time.Time

	server   *Server
	conn     *websocket.Conn
	send     chan []byte
	ctx      context.Context
	cancel   context.CancelFunc
	ed       *editor.Editor
	exporter *export.Exporter
	logger   *slog.Logger
}

// SessionManager tracks live browser sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

func (sm *SessionManager) Add(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[s.ID] = s
}

func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, id)
}

func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CloseAll cancels every session, which closes its connection.
func (sm *SessionManager) CloseAll() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, s := range sm.sessions {
		s.cancel()
	}
}

func newSession(srv *Server, conn *websocket.Conn, parent context.Context) *Session {
	settings := srv.Settings()
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	logger := srv.logger.With("session", id)
	return &Session{
		ID:        id,
		Remote:    conn.RemoteAddr().String(),
		Connected: time.Now(),
		server:    srv,
		conn:      conn,
		send:      make(chan []byte, wsSendBuffer),
		ctx:       ctx,
		cancel:    cancel,
		ed: editor.New(editor.Options{
			Policy:  settings.Policy,
			Logger:  logger,
			Metrics: srv.editorMetrics,
			Canvas:  settings.Canvas,
		}),
		exporter: export.New(export.Options{
			Renderer:    settings.Renderer,
			JPEGQuality: settings.JPEGQuality,
			Logger:      logger,
			Metrics:     srv.exportMetrics,
		}),
		logger: logger,
	}
}

func (s *Session) run() {
	s.server.sessions.Add(s)
	s.server.metrics.SessionOpened()
	s.logger.Info("browser connected", "remote", s.Remote, "policy", s.ed.Policy())
	defer func() {
		s.cancel()
		_ = s.conn.Close()
		s.server.sessions.Remove(s.ID)
		s.server.metrics.SessionClosed()
		s.logger.Info("browser disconnected", "remote", s.Remote)
	}()

	go func() {
		<-s.ctx.Done()
		_ = s.conn.Close()
	}()
	go s.writeLoop()
	s.readLoop()
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(wsMaxPayloadBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("read failed", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		frame, err := decodeFrame(data)
		if err != nil {
			s.sendError("", codeBadRequest, err.Error())
			continue
		}
		s.handle(frame)
	}
}

func (s *Session) writeLoop() {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.cancel()
				return
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.cancel()
				return
			}
		}
	}
}

func decodeFrame(raw []byte) (*wsFrame, error) {
	var frame wsFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, err
	}
	if frame.Type == "" {
		frame.Type = "req"
	}
	if frame.Type != "req" {
		return nil, fmt.Errorf("unsupported frame type %q", frame.Type)
	}
	if frame.Method == "" {
		return nil, errors.New("method is required")
	}
	return &frame, nil
}

func (s *Session) sendResponse(id string, payload any) error {
	ok := true
	return s.enqueue(wsFrame{Type: "res", ID: id, OK: &ok, Payload: payload})
}

func (s *Session) sendError(id, code, message string) {
	ok := false
	_ = s.enqueue(wsFrame{Type: "res", ID: id, OK: &ok, Error: &wsError{Code: code, Message: message}})
}

// enqueue hands frame to the write loop. Frames over the server's size
// limit are not sent and return errFrameTooLarge.
func (s *Session) enqueue(frame wsFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("encode frame", "error", err)
		return err
	}
	if len(data) > s.server.maxFrameBytes {
		s.logger.Warn("frame too large", "id", frame.ID, "bytes", len(data), "limit", s.server.maxFrameBytes)
		return fmt.Errorf("%w: %d bytes, limit %d", errFrameTooLarge, len(data), s.server.maxFrameBytes)
	}
	select {
	case s.send <- data:
	case <-s.ctx.Done():
	default:
		s.logger.Warn("send buffer full, closing", "id", frame.ID)
		s.cancel()
	}
	return nil
}
