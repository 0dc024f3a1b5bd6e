package server

import "errors"

// ErrNilResponse is recorded when a handler returns neither a response nor an error.
var ErrNilResponse = errors.New("handler returned a nil response")

// ErrHandlerPanic is recorded when a handler panicked.
var ErrHandlerPanic = errors.New("handler panicked")
