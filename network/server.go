package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// acceptRetryDelay is how long the accept loop backs off after a transient
// accept failure such as fd exhaustion.
const acceptRetryDelay = 50 * time.Millisecond

// Server is a TCP server that serves framed bridge requests.
type Server struct {
	listener net.Listener
	handler  *Handler
	running  bool
	mu       sync.Mutex
	quit     chan struct{}
}

// NewServer creates a new Server around the given handler.
func NewServer(handler *Handler) *Server {
	return &Server{
		handler: handler,
		quit:    make(chan struct{}),
	}
}

// Start starts the server on the specified address. This method blocks
// until the server is stopped or fails.
func (s *Server) Start(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}

	defer s.Stop()
	s.acceptLoop(lis)
	return nil
}

// StartAsync starts the server in a background goroutine.
func (s *Server) StartAsync(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}

	go s.acceptLoop(lis)
	return nil
}

func (s *Server) listen(address string) (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, fmt.Errorf("server is already running")
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s.listener = lis
	s.running = true
	return lis, nil
}

func (s *Server) acceptLoop(lis net.Listener) {
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			time.Sleep(acceptRetryDelay)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Addr returns the listener address, or nil when the server is not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	close(s.quit)
	if s.listener != nil {
		// Best effort close during shutdown.
		_ = s.listener.Close()
	}
}

// handleConnection serves frames from a single client connection until it
// closes.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if m := s.handler.metrics; m != nil {
		m.ConnectionsActive.Inc()
		defer m.ConnectionsActive.Dec()
	}

	for {
		data, err := ReadFrame(conn)
		if err != nil {
			// io.EOF is the normal end of a session.
			return
		}

		response := s.handler.HandleRaw(data)

		if err := WriteFrame(conn, response); err != nil {
			return
		}
	}
}
