package net

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	"VectorBoard/internal/observability"
)

//go:embed static/index.html
var indexHTML []byte

// Settings are applied to each new browser session.
type Settings struct {
	Policy      editor.UndoPolicy
	Canvas      export.Canvas
	Renderer    export.Renderer
	JPEGQuality int
}

type Options struct {
	Addr     string
	Settings Settings
	Logger   *slog.Logger
	// ServeMetrics exposes the Prometheus registry on /metrics.
	ServeMetrics bool
	Metrics      *Metrics
	Editor       *editor.Metrics
	Export       *export.Metrics
}

// Server hosts the browser editor: the page on / and one private editor per
// websocket on /ws.
type Server struct {
	addr          string
	logger        *slog.Logger
	settings      atomic.Pointer[Settings]
	sessions      *SessionManager
	maxFrameBytes int
	upgrader      websocket.Upgrader
	serveMetrics  bool
	metrics       *Metrics
	editorMetrics *editor.Metrics
	exportMetrics *export.Metrics
}

func NewServer(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8888"
	}
	s := &Server{
		addr:          opts.Addr,
		logger:        observability.Component(opts.Logger, "server"),
		sessions:      NewSessionManager(),
		maxFrameBytes: wsMaxExportBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		serveMetrics:  opts.ServeMetrics,
		metrics:       opts.Metrics,
		editorMetrics: opts.Editor,
		exportMetrics: opts.Export,
	}
	s.UpdateSettings(opts.Settings)
	return s
}

// UpdateSettings replaces the settings for sessions opened from now on.
// Open sessions keep the settings they started with.
func (s *Server) UpdateSettings(st Settings) {
	if st.Policy == "" {
		st.Policy = editor.PolicyExact
	}
	st.Canvas = st.Canvas.WithDefaults()
	s.settings.Store(&st)
}

func (s *Server) Settings() Settings { return *s.settings.Load() }

func (s *Server) Sessions() int { return s.sessions.Len() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.serveMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	newSession(s, conn, context.Background()).run()
}

// ListenAndServe serves until ctx is done, then shuts down and closes
// every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("browser editor listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.sessions.CloseAll()
	err := srv.Shutdown(shutdownCtx)
	if serr := <-errCh; serr != nil && !errors.Is(serr, http.ErrServerClosed) {
		return serr
	}
	return err
}
