package server

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shravanasati/waypoint/response"
)

type ServerOpts struct {
	// The address for the server to listen on.
	Address string

	// ReadTimeout bounds reading the whole request. Zero means no deadline.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the response. Zero means no deadline.
	WriteTimeout time.Duration

	// Recovery function takes the return value of the recover() call as input and returns a response that is written to the connection. The connection is closed after writing the response.
	Recovery func(any) *response.Response

	// Logger receives accept errors, panics and one access line per connection.
	// Nil discards everything.
	Logger *zerolog.Logger
	// LogColor renders the access log badges with colors.
	LogColor bool
}

var defaultRecovery = func(r any) *response.Response {
	return response.InternalServerError()
}
