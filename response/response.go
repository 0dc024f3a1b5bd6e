package response

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/shravanasati/waypoint/headers"
)

// Response is what a route handler hands back to the dispatcher.
// A response without a body carries neither Content-Type framing nor
// Content-Length on the wire.
type Response struct {
	StatusCode  StatusCode
	ContentType string
	// extra fields, written after Content-Type
	Headers *headers.Headers

	body    []byte
	hasBody bool
}

// New creates a bodiless response with the given status.
func New(code StatusCode) *Response {
	return &Response{StatusCode: code, Headers: headers.NewHeaders()}
}

func NewTextResponse(body string) *Response {
	return New(StatusOK).WithContentType("text/plain").WithBody(body)
}

func NewOctetStream(body []byte) *Response {
	return New(StatusOK).WithContentType("application/octet-stream").WithBodyBytes(body)
}

func NotFound() *Response {
	return New(StatusNotFound)
}

func InternalServerError() *Response {
	return New(StatusInternalServerError)
}

func (r *Response) WithStatusCode(code StatusCode) *Response {
	r.StatusCode = code
	return r
}

func (r *Response) WithContentType(ct string) *Response {
	r.ContentType = ct
	return r
}

func (r *Response) WithBody(body string) *Response {
	r.body = []byte(body)
	r.hasBody = true
	return r
}

func (r *Response) WithBodyBytes(body []byte) *Response {
	r.body = body
	r.hasBody = true
	return r
}

// WithHeader adds an extra header. Content-Type and Content-Length are
// derived from the response itself and cannot be set this way.
func (r *Response) WithHeader(key, value string) *Response {
	if strings.EqualFold(key, "content-type") || strings.EqualFold(key, "content-length") {
		return r
	}
	if r.Headers == nil {
		r.Headers = headers.NewHeaders()
	}
	r.Headers.Add(key, value)
	return r
}

// Body returns the body and whether one was set. An empty body that was set
// explicitly still produces Content-Length: 0.
func (r *Response) Body() ([]byte, bool) {
	return r.body, r.hasBody
}

func (r *Response) wireHeaders() *headers.Headers {
	hs := headers.NewHeaders()
	if r.ContentType != "" {
		hs.Add("Content-Type", r.ContentType)
	}
	if r.Headers != nil {
		for k, v := range r.Headers.All() {
			hs.Add(headers.Canonical(k), v)
		}
	}
	if r.hasBody {
		hs.Add("Content-Length", strconv.Itoa(len(r.body)))
	}
	return hs
}

// Write serializes the response onto w in a single write.
func (r *Response) Write(w io.Writer) error {
	b, err := r.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Bytes returns the full wire form of the response.
func (r *Response) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	rw := NewResponseWriter(&buf)
	if err := rw.WriteStatusLine(r.StatusCode); err != nil {
		return nil, err
	}
	if err := rw.WriteHeaders(r.wireHeaders()); err != nil {
		return nil, err
	}
	if r.hasBody {
		if err := rw.WriteBody(r.body); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
