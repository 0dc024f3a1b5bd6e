package request

import "errors"

var ErrIncorrectRequestLine = errors.New("incorrect request line")
var ErrIncompleteRequest = errors.New("incomplete request")
var ErrLineTooLong = errors.New("request line or header line too long")
var ErrInvalidContentLength = errors.New("invalid content-length")
var ErrBodyTooLarge = errors.New("request body too large")
