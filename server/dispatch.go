package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/shravanasati/waypoint/internal/logging"
	"github.com/shravanasati/waypoint/request"
	"github.com/shravanasati/waypoint/response"
	"github.com/shravanasati/waypoint/router"
)

const (
	// lingerTimeout bounds how long a closing connection keeps reading
	// what the client sent after the response.
	lingerTimeout = 500 * time.Millisecond
	// maxLingerBytes caps the bytes discarded while lingering.
	maxLingerBytes = 256 << 10
)

type closeWriter interface {
	CloseWrite() error
}

// handle serves exactly one request on conn and closes it.
func (s *Server) handle(conn net.Conn) {
	start := time.Now()
	entry := logging.Entry{Remote: conn.RemoteAddr().String()}

	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug().Err(err).Str("remote", entry.Remote).Msg("unable to close connection")
		}
	}()

	if s.opts.ReadTimeout != 0 {
		s.setDeadline(conn.SetReadDeadline, s.opts.ReadTimeout, entry.Remote)
	}

	resp := s.dispatch(conn, &entry)

	if s.opts.WriteTimeout != 0 {
		s.setDeadline(conn.SetWriteDeadline, s.opts.WriteTimeout, entry.Remote)
	}
	werr := resp.Write(conn)
	if werr != nil {
		s.logger.Warn().Err(werr).Str("remote", entry.Remote).Msg("unable to write response to connection")
	}

	entry.Status = int(resp.StatusCode)
	entry.Duration = time.Since(start)
	logging.Access(s.logger, entry, s.opts.LogColor)

	if werr == nil {
		s.closeWriteAndWait(conn, entry.Remote)
	}
}

func (s *Server) setDeadline(set func(time.Time) error, d time.Duration, remote string) {
	if err := set(time.Now().Add(d)); err != nil {
		s.logger.Debug().Err(err).Str("remote", remote).Msg("unable to set connection deadline")
	}
}

// closeWriteAndWait half-closes conn and discards any request bytes still
// in flight, so the final Close does not reset the connection before the
// client has read the response.
func (s *Server) closeWriteAndWait(conn net.Conn, remote string) {
	cw, ok := conn.(closeWriter)
	if !ok {
		return
	}
	if err := cw.CloseWrite(); err != nil {
		s.logger.Debug().Err(err).Str("remote", remote).Msg("unable to half-close connection")
		return
	}
	s.setDeadline(conn.SetReadDeadline, lingerTimeout, remote)
	io.CopyN(io.Discard, conn, maxLingerBytes)
}

// dispatch parses the request, routes it and runs the handler. It always
// returns a writable response and records what happened in entry.
func (s *Server) dispatch(conn net.Conn, entry *logging.Entry) *response.Response {
	req, err := request.RequestFromReader(conn)
	if err != nil {
		entry.Err = fmt.Errorf("parse request: %w", err)
		return response.InternalServerError()
	}
	entry.Method, entry.Path = req.Method, req.Path

	match, ok := s.router.Resolve(req.Method, req.Path)
	if !ok {
		return response.NotFound()
	}
	req.PathParams = match.Params
	entry.Route = match.Route.Template

	resp, err := s.invoke(match.Route.Handler, req)
	if err != nil {
		entry.Err = err
		if resp == nil {
			resp = response.InternalServerError()
		}
		return resp
	}
	if !resp.StatusCode.Valid() {
		entry.Err = fmt.Errorf("%w: %d", response.ErrUnsupportedStatus, resp.StatusCode)
		return response.InternalServerError()
	}
	return resp
}

// invoke calls h inside a recover boundary so a panicking handler only
// affects its own connection. After a panic the Recovery response is returned
// together with an ErrHandlerPanic error; handler errors come back without a
// response.
func (s *Server) invoke(h router.Handler, req *request.Request) (resp *response.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("method", req.Method).
				Str("path", req.Path).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")

			resp = s.runRecovery(r)
			if resp == nil || !resp.StatusCode.Valid() {
				resp = response.InternalServerError()
			}
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	resp, err = h(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	if resp == nil {
		return nil, ErrNilResponse
	}
	return resp, nil
}

// runRecovery runs the Recovery hook. A panicking hook yields nil so the caller
// falls back to a plain 500.
func (s *Server) runRecovery(v any) (resp *response.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("recovery hook panicked")
			resp = nil
		}
	}()
	return s.opts.Recovery(v)
}
