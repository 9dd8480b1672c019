package socket

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"dutch/internal/app"
)

// DefaultMaxPayload bounds incoming frames; client messages are a few bytes long.
const DefaultMaxPayload = 4096

// Handler receives the traffic of accepted connections. *app.Lobby implements it.
type Handler interface {
	Register(conn app.Conn) (int, error)
	Disconnect(id int)
	Handle(ctx context.Context, id int, payload []byte)
}

// Server accepts raw TCP clients speaking the framed binary protocol.
type Server struct {
	handler    Handler
	log        *zap.Logger
	maxPayload int

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(h Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		handler:    h,
		log:        log,
		maxPayload: DefaultMaxPayload,
		conns:      make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every connection and
// waits for their readers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.closeAll()
				s.wg.Wait()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.closeAll()
			s.wg.Wait()
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, nc)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	if !s.track(nc) {
		nc.Close()
		return
	}
	defer s.untrack(nc)

	log := s.log.With(zap.String("remote", nc.RemoteAddr().String()))
	br := bufio.NewReader(nc)
	if err := handshake(br, nc); err != nil {
		log.Debug("handshake failed", zap.Error(err))
		nc.Close()
		return
	}

	c := newConn(nc, log)
	defer c.Close()

	id, err := s.handler.Register(c)
	if err != nil {
		log.Info("client refused", zap.Error(err))
		return
	}
	log = log.With(zap.Int("client", id))
	log.Debug("client connected")
	defer s.handler.Disconnect(id)

	for {
		first, payload, err := readFrame(br, s.maxPayload)
		if err != nil {
			log.Debug("read ended", zap.Error(err))
			return
		}
		switch first {
		case frameBinary:
			s.handler.Handle(ctx, id, payload)
		case frameClose:
			c.closeFrame()
			return
		default:
			// Text and control frames carry nothing for the game.
		}
	}
}

func (s *Server) track(nc net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[nc] = struct{}{}
	return true
}

func (s *Server) untrack(nc net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, nc)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for nc := range conns {
		nc.Close()
	}
}
