// Package handlers holds the routes served by the httpserver binary.
package handlers

import (
	"github.com/shravanasati/waypoint/request"
	"github.com/shravanasati/waypoint/response"
	"github.com/shravanasati/waypoint/router"
)

// Root answers 200 with no body.
func Root(*request.Request) (*response.Response, error) {
	return response.New(response.StatusOK), nil
}

// UserAgent echoes the User-Agent header back as text.
func UserAgent(r *request.Request) (*response.Response, error) {
	if !r.Headers.Has("User-Agent") {
		return response.NotFound(), nil
	}
	return response.NewTextResponse(r.Headers.Get("User-Agent")), nil
}

// Echo returns the captured value parameter, eg. /echo/:value.
func Echo(r *request.Request) (*response.Response, error) {
	return response.NewTextResponse(r.Param("value")), nil
}

// Register installs every route of the httpserver binary on rt. The file
// routes are only installed when a directory is configured.
func Register(rt *router.Router, directory string) {
	rt.Get("/", Root)
	rt.Get("/user-agent", UserAgent)
	rt.Get("/echo/:value", Echo)

	if directory != "" {
		files := NewFiles(directory)
		rt.Get("/files/:filename", files.Get)
		rt.Post("/files/:filename", files.Post)
	}
}
