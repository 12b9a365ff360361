package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/shade/internal/wire"
)

// ChannelPath is the HTTP path clients dial.
const ChannelPath = "/channel"

// Server accepts WebSocket clients and hands each connection to the attach
// callback as a wire.Channel.
type Server struct {
	addr     string
	attach   func(wire.Channel)
	logger   *slog.Logger
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, attach func(wire.Channel), logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:   addr,
		attach: attach,
		logger: logger,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc(ChannelPath, s.handleChannel)
	s.srv = &http.Server{Addr: s.addr, Handler: mux}

	ln := s.srv
	go func() {
		if err := ln.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("websocket server failed", "error", err)
		}
	}()

	s.logger.Info("websocket channel listening", "addr", s.addr, "path", ChannelPath)
	return nil
}

// Handler returns the channel upgrade handler, for embedding in an existing
// HTTP server (tests use this with httptest).
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleChannel)
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.logger.Debug("client connected", "remote", r.RemoteAddr)
	s.attach(NewConn(ws, s.logger))
}

// Stop shuts the server down, closing the listener.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
