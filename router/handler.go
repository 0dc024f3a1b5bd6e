package router

import (
	"github.com/shravanasati/waypoint/request"
	"github.com/shravanasati/waypoint/response"
)

// Handler produces the response for a routed request. A returned error is
// turned into 500 Internal Server Error by the server.
type Handler func(*request.Request) (*response.Response, error)
