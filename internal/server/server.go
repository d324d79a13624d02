package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/dispatch"
	"github.com/roach88/nestedjson/internal/doc"
)

// Settings tune connection handling.
type Settings struct {
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBufferSize int
	MaxDepth       int
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() *Settings {
	return &Settings{
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
		PingInterval:   50 * time.Second,
		MaxMessageSize: 32 << 20,
		SendBufferSize: 32,
		MaxDepth:       codec.DefaultMaxDepth,
	}
}

// Server answers request frames with the Caller's dispatcher.
type Server struct {
	caller   *dispatch.Caller
	settings *Settings
	logger   *slog.Logger
	upgrader websocket.Upgrader

	conns sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithSettings replaces DefaultSettings.
func WithSettings(settings *Settings) Option {
	return func(s *Server) {
		if settings != nil {
			s.settings = settings
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Server submitting through caller.
func New(caller *dispatch.Caller, opts ...Option) *Server {
	s := &Server{
		caller:   caller,
		settings: DefaultSettings(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// Local tool; any origin may connect.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return s
}

// ServeHTTP upgrades the request and serves frames until the peer leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.conns.Add(1)
	defer s.conns.Done()
	s.serveConn(r.Context(), ws, r.RemoteAddr)
}

// ListenAndServe serves on addr until ctx ends, then shuts down and waits
// for open connections to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.WriteTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("server shutdown", "error", err)
	}
	// Hijacked connections are not tracked by http.Server.
	s.conns.Wait()
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveConn(parent context.Context, ws *websocket.Conn, remote string) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer ws.Close()

	logger := s.logger.With("remote", remote)
	logger.Debug("connection opened")

	send := make(chan []byte, s.settings.SendBufferSize)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		s.writeLoop(ctx, ws, send, logger)
	}()

	// Unblock ReadMessage once the connection is cancelled from elsewhere.
	go func() {
		<-ctx.Done()
		_ = ws.SetReadDeadline(time.Now())
	}()

	var inflight sync.WaitGroup
	ws.SetReadLimit(s.settings.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(s.settings.PongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.settings.PongTimeout))
	})

	for {
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				logger.Info("connection read error", "error", err)
			}
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(s.settings.PongTimeout))

		if messageType != websocket.TextMessage {
			logger.Debug("ignoring non-text frame", "type", messageType)
			continue
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			out, err := json.Marshal(s.handleFrame(ctx, message))
			if err != nil {
				logger.Error("encode response", "error", err)
				return
			}
			select {
			case send <- out:
			case <-ctx.Done():
			}
		}()
	}

	// Let answers already computed go out before closing.
	inflight.Wait()
	close(send)
	<-writerDone
	logger.Debug("connection closed")
}

func (s *Server) writeLoop(ctx context.Context, ws *websocket.Conn, send <-chan []byte, logger *slog.Logger) {
	ping := time.NewTicker(s.settings.PingInterval)
	defer ping.Stop()

	for {
		select {
		case message, ok := <-send:
			if !ok {
				_ = ws.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				// a write deadline cannot be recovered from
				logger.Info("connection write error", "error", err)
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.settings.WriteTimeout)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleFrame decodes one frame, runs it on the worker and returns the
// envelope to send back under the client's correlation id.
func (s *Server) handleFrame(ctx context.Context, frame []byte) dispatch.Response {
	req, err := DecodeRequest(frame, codec.WithMaxDepth(s.settings.MaxDepth))
	if err != nil {
		return errorResponse(req, err)
	}

	resp, err := s.caller.Call(ctx, req.Operation, req.Payload)
	if err != nil {
		return errorResponse(req, err)
	}
	resp.CorrelationID = req.CorrelationID
	return resp
}

func errorResponse(req dispatch.Request, err error) dispatch.Response {
	return dispatch.Response{
		Status:        dispatch.StatusError,
		CorrelationID: req.CorrelationID,
		Operation:     req.Operation,
		Err:           err,
		ErrorMessage:  err.Error(),
		ErrorClass:    doc.Classify(err),
		ErrorCode:     doc.CodeOf(err),
	}
}
