package request

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shravanasati/waypoint/headers"
)

// MaxBodyLength is the largest Content-Length accepted.
const MaxBodyLength = 10 << 20

type RequestLine struct {
	Method      string
	Path        string
	HTTPVersion string
}

// Request is parsed once per connection. PathParams stays empty until routing
// has resolved a template.
type Request struct {
	RequestLine
	Headers    *headers.Headers
	PathParams map[string]string

	// nil unless a positive Content-Length was declared and fully read
	Body []byte
}

// Param returns the named path parameter, or "" if it was not captured.
func (r *Request) Param(name string) string {
	return r.PathParams[name]
}

// ContentLength returns the declared body length, 0 when absent.
func (r *Request) ContentLength() (int64, error) {
	cl := r.Headers.Get("Content-Length")
	if cl == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidContentLength, cl)
	}
	return n, nil
}

func parseRequestLine(reqLine []byte) (*RequestLine, error) {
	parts := strings.Fields(string(reqLine))
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: %q", ErrIncorrectRequestLine, reqLine)
	}
	if !strings.HasPrefix(parts[1], "/") {
		return nil, fmt.Errorf("%w: target %q is not a path", ErrIncorrectRequestLine, parts[1])
	}

	rl := &RequestLine{Method: parts[0], Path: parts[1]}
	if len(parts) == 3 {
		rl.HTTPVersion = strings.TrimPrefix(parts[2], "HTTP/")
	}
	return rl, nil
}

// RequestFromReader reads the request line, the header block up to the empty
// line and then exactly Content-Length bytes of body. Bytes after the body are
// never treated as part of the request.
func RequestFromReader(reader io.Reader) (*Request, error) {
	lr := newLineReader(reader)

	line, err := lr.next()
	if err != nil {
		return nil, err
	}
	requestLine, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	req := &Request{
		RequestLine: *requestLine,
		Headers:     headers.NewHeaders(),
		PathParams:  map[string]string{},
	}

	for {
		line, err := lr.next()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			// encountered a double CRLF, headers over
			break
		}
		if err := req.Headers.ParseFieldLine(line); err != nil {
			return nil, err
		}
	}

	n, err := req.ContentLength()
	if err != nil {
		return nil, err
	}
	if n > MaxBodyLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, n)
	}
	if n > 0 {
		req.Body, err = lr.readFull(n)
		if err != nil {
			return nil, err
		}
	}

	return req, nil
}
