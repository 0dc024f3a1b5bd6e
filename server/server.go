package server

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shravanasati/waypoint/router"
)

const maxAcceptDelay = time.Second

type Server struct {
	opts     ServerOpts
	listener net.Listener
	closed   atomic.Bool
	router   *router.Router
	logger   zerolog.Logger
	done     chan struct{}
}

// Close stops accepting connections. Connections already accepted run to
// completion on their own goroutines.
func (s *Server) Close() error {
	s.closed.Store(true)
	err := s.listener.Close()
	<-s.done
	return err
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	defer close(s.done)

	var delay time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}

			// transient failures such as running out of file descriptors
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			s.logger.Error().Err(err).Dur("retry_in", delay).Msg("unable to accept connection")
			time.Sleep(delay)
			continue
		}
		delay = 0

		go s.handle(conn)
	}
}

func newServer(opts ServerOpts, r *router.Router) *Server {
	if opts.Recovery == nil {
		opts.Recovery = defaultRecovery
	}
	if opts.Address == "" {
		opts.Address = ":4221"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Server{
		opts:   opts,
		router: r,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Serve binds opts.Address and starts accepting connections in the
// background. A bind failure is returned before anything is served.
func Serve(opts ServerOpts, r *router.Router) (*Server, error) {
	s := newServer(opts, r)

	listener, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return nil, fmt.Errorf("unable to bind %s: %w", s.opts.Address, err)
	}
	s.listener = listener

	go s.acceptLoop()
	return s, nil
}
