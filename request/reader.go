package request

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// MaxLineLength bounds the request line and every header line.
const MaxLineLength = 4096

// lineReader hands out CRLF terminated lines from the connection while leaving
// anything after the header block untouched for the body read.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// next returns the line without its terminator. A bare LF is accepted too.
func (lr *lineReader) next() ([]byte, error) {
	line, err := lr.r.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return nil, ErrLineTooLong
	case errors.Is(err, io.EOF):
		// connection closed before the line was terminated
		return nil, ErrIncompleteRequest
	case err != nil:
		return nil, err
	}

	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, nil
}

// readFull reads exactly n bytes following the header block.
func (lr *lineReader) readFull(n int64) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(lr.r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, ErrIncompleteRequest
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}
