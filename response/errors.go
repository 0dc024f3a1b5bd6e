package response

import "errors"

// ErrInvalidWriterState is returned when the response writer state is not what is called.
var ErrInvalidWriterState = errors.New("invalid writer state")

// ErrUnsupportedStatus is returned when writing a status outside the supported set.
var ErrUnsupportedStatus = errors.New("unsupported status code")
