package response

import (
	"fmt"
	"io"

	"github.com/shravanasati/waypoint/headers"
)

// ResponseWriter writes the parts of a response in wire order and refuses to
// write them out of order.
type ResponseWriter struct {
	conn  io.Writer
	state responseState
}

func NewResponseWriter(conn io.Writer) *ResponseWriter {
	return &ResponseWriter{conn: conn, state: newResponseState()}
}

func (rw *ResponseWriter) WriteStatusLine(statusCode StatusCode) error {
	if rw.state != stateStatusLine {
		return fmt.Errorf("%w: status line in state %s", ErrInvalidWriterState, rw.state)
	}
	if !statusCode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedStatus, statusCode)
	}
	_, err := fmt.Fprintf(rw.conn, "HTTP/1.1 %d %s\r\n", statusCode, GetStatusReason(statusCode))
	if err != nil {
		return err
	}

	rw.state = rw.state.advance()
	return nil
}

// WriteHeaders writes every field in order and terminates the header block.
func (rw *ResponseWriter) WriteHeaders(h *headers.Headers) error {
	if rw.state != stateHeaders {
		return fmt.Errorf("%w: headers in state %s", ErrInvalidWriterState, rw.state)
	}
	for k, v := range h.All() {
		if _, err := fmt.Fprintf(rw.conn, "%s: %s\r\n", k, v); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(rw.conn, "\r\n"); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteBody writes the body followed by the closing CRLF.
func (rw *ResponseWriter) WriteBody(b []byte) error {
	if rw.state != stateBody {
		return fmt.Errorf("%w: body in state %s", ErrInvalidWriterState, rw.state)
	}
	if _, err := rw.conn.Write(b); err != nil {
		return err
	}
	if _, err := io.WriteString(rw.conn, "\r\n"); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}
