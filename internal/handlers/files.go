package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shravanasati/waypoint/request"
	"github.com/shravanasati/waypoint/response"
)

// Files serves and stores flat files inside one directory.
type Files struct {
	dir string
}

func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

// safeName flattens the captured parameter to a single file name; the
// capture may contain "/" since it takes the rest of the path.
func safeName(param string) (string, bool) {
	name := strings.ReplaceAll(param, "/", "_")
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '\\') {
		return "", false
	}
	return name, true
}

// find returns the entry named name, or else the first entry whose stem
// (the part before the first ".") equals name.
func (f *Files) find(name string) (string, error) {
	info, err := os.Stat(filepath.Join(f.dir, name))
	if err == nil && info.Mode().IsRegular() {
		return name, nil
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		stem, _, _ := strings.Cut(e.Name(), ".")
		if stem == name {
			return e.Name(), nil
		}
	}
	return "", fs.ErrNotExist
}

// Get serves GET /files/:filename as application/octet-stream, 404 when absent.
func (f *Files) Get(r *request.Request) (*response.Response, error) {
	name, ok := safeName(r.Param("filename"))
	if !ok {
		return response.NotFound(), nil
	}

	found, err := f.find(name)
	if errors.Is(err, fs.ErrNotExist) {
		return response.NotFound(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}

	content, err := os.ReadFile(filepath.Join(f.dir, found))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", found, err)
	}
	return response.NewOctetStream(content), nil
}

// Post stores the request body under POST /files/:filename and answers 201
// with the stored name and its location.
func (f *Files) Post(r *request.Request) (*response.Response, error) {
	name, ok := safeName(r.Param("filename"))
	if !ok {
		return response.NotFound(), nil
	}

	if err := os.WriteFile(filepath.Join(f.dir, name), r.Body, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	return response.New(response.StatusCreated).
		WithContentType("text/plain").
		WithHeader("location", "/files/"+name).
		WithBody(name), nil
}
