package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shravanasati/waypoint/request"
	"github.com/shravanasati/waypoint/response"
	"github.com/shravanasati/waypoint/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (lb *lockedBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.Write(p)
}

func (lb *lockedBuffer) String() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.String()
}

func echoHandler(r *request.Request) (*response.Response, error) {
	return response.NewTextResponse(r.Param("value")), nil
}

func startServer(t *testing.T, r *router.Router, opts ServerOpts) *Server {
	t.Helper()
	opts.Address = "127.0.0.1:0"
	s, err := Serve(opts, r)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// roundTrip writes raw to the server and reads until the server closes.
func roundTrip(t *testing.T, s *Server, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	b, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(b)
}

func TestServeRoutes(t *testing.T) {
	r := router.NewRouter()
	r.Get("/", func(*request.Request) (*response.Response, error) {
		return response.New(response.StatusOK), nil
	})
	r.Get("/echo/:value", echoHandler)
	r.Get("/files/:filename", func(req *request.Request) (*response.Response, error) {
		return response.NewTextResponse(req.Param("filename")), nil
	})
	r.Post("/submit", func(req *request.Request) (*response.Response, error) {
		return response.New(response.StatusCreated).
			WithContentType("text/plain").
			WithBody(fmt.Sprintf("%d:%s", len(req.Body), req.Body)), nil
	})
	s := startServer(t, r, ServerOpts{})

	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "root",
			raw:      "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\n\r\n",
		},
		{
			name:     "greedy capture",
			raw:      "GET /echo/hello/world HTTP/1.1\r\nHost: localhost\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 11\r\n\r\nhello/world\r\n",
		},
		{
			name:     "files capture",
			raw:      "GET /files/a/b.txt HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 7\r\n\r\na/b.txt\r\n",
		},
		{
			name:     "no route",
			raw:      "GET /files/ HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 404 Not Found\r\n\r\n",
		},
		{
			name:     "files without name",
			raw:      "GET /files HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 404 Not Found\r\n\r\n",
		},
		{
			name:     "wrong method",
			raw:      "DELETE /echo/x HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 404 Not Found\r\n\r\n",
		},
		{
			name:     "malformed request line",
			raw:      "GARBAGE\r\n\r\n",
			expected: "HTTP/1.1 500 Internal Server Error\r\n\r\n",
		},
		{
			name:     "malformed header line",
			raw:      "GET /echo/x HTTP/1.1\r\nHost localhost\r\n\r\n",
			expected: "HTTP/1.1 500 Internal Server Error\r\n\r\n",
		},
		{
			name:     "space before header colon",
			raw:      "GET /echo/x HTTP/1.1\r\nHost : localhost\r\n\r\n",
			expected: "HTTP/1.1 500 Internal Server Error\r\n\r\n",
		},
		{
			name:     "body",
			raw:      "POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello",
			expected: "HTTP/1.1 201 Created\r\nContent-Type: text/plain\r\nContent-Length: 7\r\n\r\n5:hello\r\n",
		},
		{
			name:     "zero content length",
			raw:      "POST /submit HTTP/1.1\r\nContent-Length: 0\r\n\r\n",
			expected: "HTTP/1.1 201 Created\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\n0:\r\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, roundTrip(t, s, tc.raw))
		})
	}
}

func TestHandlerFailures(t *testing.T) {
	r := router.NewRouter()
	r.Get("/error", func(*request.Request) (*response.Response, error) {
		return response.NewTextResponse("ignored"), errors.New("disk on fire")
	})
	r.Get("/panic", func(*request.Request) (*response.Response, error) {
		panic("boom")
	})
	r.Get("/nil", func(*request.Request) (*response.Response, error) {
		return nil, nil
	})
	r.Get("/teapot", func(*request.Request) (*response.Response, error) {
		return response.New(response.StatusCode(418)), nil
	})
	r.Get("/ok", func(*request.Request) (*response.Response, error) {
		return response.NewTextResponse("still alive"), nil
	})

	logs := &lockedBuffer{}
	logger := zerolog.New(logs)
	s := startServer(t, r, ServerOpts{Logger: &logger})

	for _, path := range []string{"/error", "/panic", "/nil", "/teapot"} {
		t.Run(path, func(t *testing.T) {
			got := roundTrip(t, s, "GET "+path+" HTTP/1.1\r\n\r\n")
			assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\n\r\n", got)
		})
	}

	got := roundTrip(t, s, "GET /ok HTTP/1.1\r\n\r\n")
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 11\r\n\r\nstill alive\r\n", got)

	out := logs.String()
	assert.Contains(t, out, "disk on fire")
	assert.Contains(t, out, "recovered from panic")
	assert.Contains(t, out, ErrNilResponse.Error())
	assert.Contains(t, out, `"route":"/ok"`)
}

func TestCustomRecovery(t *testing.T) {
	r := router.NewRouter()
	r.Get("/panic", func(*request.Request) (*response.Response, error) {
		panic("boom")
	})
	s := startServer(t, r, ServerOpts{
		Recovery: func(v any) *response.Response {
			return response.InternalServerError().WithContentType("text/plain").WithBody(fmt.Sprint(v))
		},
	})

	got := roundTrip(t, s, "GET /panic HTTP/1.1\r\n\r\n")
	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\nContent-Type: text/plain\r\nContent-Length: 4\r\n\r\nboom\r\n", got)
}

func TestRecoveryHookPanics(t *testing.T) {
	r := router.NewRouter()
	r.Get("/panic", func(*request.Request) (*response.Response, error) {
		panic("boom")
	})
	r.Get("/ok", func(*request.Request) (*response.Response, error) {
		return response.New(response.StatusOK), nil
	})

	logs := &lockedBuffer{}
	logger := zerolog.New(logs)
	s := startServer(t, r, ServerOpts{
		Logger: &logger,
		Recovery: func(any) *response.Response {
			panic("recovery broke too")
		},
	})

	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\n\r\n", roundTrip(t, s, "GET /panic HTTP/1.1\r\n\r\n"))
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", roundTrip(t, s, "GET /ok HTTP/1.1\r\n\r\n"))
	assert.Contains(t, logs.String(), "recovery hook panicked")
}

func TestUnreadRequestBytes(t *testing.T) {
	r := router.NewRouter()
	r.Get("/", func(*request.Request) (*response.Response, error) {
		return response.New(response.StatusOK), nil
	})
	r.Post("/upload", func(req *request.Request) (*response.Response, error) {
		return response.NewTextResponse(string(req.Body)), nil
	})
	s := startServer(t, r, ServerOpts{})

	big := strings.Repeat("a", 64<<10)
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "header line too long",
			raw:      "GET / HTTP/1.1\r\nX-Big: " + big + "\r\n\r\n",
			expected: "HTTP/1.1 500 Internal Server Error\r\n\r\n",
		},
		{
			name:     "body too large",
			raw:      "POST /upload HTTP/1.1\r\nContent-Length: 20000000\r\n\r\n" + big,
			expected: "HTTP/1.1 500 Internal Server Error\r\n\r\n",
		},
		{
			name:     "bytes past content length",
			raw:      "POST /upload HTTP/1.1\r\nContent-Length: 1\r\n\r\n" + big,
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 1\r\n\r\na\r\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for range 5 {
				assert.Equal(t, tc.expected, roundTrip(t, s, tc.raw))
			}
		})
	}
}

func TestSetDeadlineErrorIsLogged(t *testing.T) {
	logs := &lockedBuffer{}
	logger := zerolog.New(logs).Level(zerolog.DebugLevel)
	s := newServer(ServerOpts{Logger: &logger}, router.NewRouter())

	s.setDeadline(func(time.Time) error { return net.ErrClosed }, time.Second, "10.0.0.1:5000")

	out := logs.String()
	assert.Contains(t, out, "unable to set connection deadline")
	assert.Contains(t, out, `"remote":"10.0.0.1:5000"`)
	assert.Contains(t, out, `"level":"debug"`)
}

func TestConcurrentClientsNoCrossTalk(t *testing.T) {
	const k = 32

	r := router.NewRouter()
	for i := range k {
		r.Get(fmt.Sprintf("/echo%d/:value", i), func(req *request.Request) (*response.Response, error) {
			// hold the connection so requests overlap
			time.Sleep(10 * time.Millisecond)
			return response.NewTextResponse(fmt.Sprintf("%d-%s", i, req.Param("value"))), nil
		})
	}
	s := startServer(t, r, ServerOpts{})

	var wg sync.WaitGroup
	results := make([]string, k)
	errs := make([]error, k)
	for i := range k {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := net.Dial("tcp", s.Addr().String())
			if err != nil {
				errs[i] = err
				return
			}
			defer conn.Close()

			fmt.Fprintf(conn, "GET /echo%d/client-%d HTTP/1.1\r\nHost: localhost\r\n\r\n", i, i)
			res, err := http.ReadResponse(bufio.NewReader(conn), nil)
			if err != nil {
				errs[i] = err
				return
			}
			defer res.Body.Close()
			body, err := io.ReadAll(res.Body)
			errs[i] = err
			results[i] = string(body)
		}()
	}
	wg.Wait()

	for i := range k {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("%d-client-%d", i, i), results[i])
	}
}

func TestSlowHandlerDoesNotBlockAccept(t *testing.T) {
	release := make(chan struct{})
	r := router.NewRouter()
	r.Get("/slow", func(*request.Request) (*response.Response, error) {
		<-release
		return response.New(response.StatusOK), nil
	})
	r.Get("/fast", func(*request.Request) (*response.Response, error) {
		return response.New(response.StatusOK), nil
	})
	s := startServer(t, r, ServerOpts{})

	slow, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer slow.Close()
	_, err = io.WriteString(slow, "GET /slow HTTP/1.1\r\n\r\n")
	require.NoError(t, err)

	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", roundTrip(t, s, "GET /fast HTTP/1.1\r\n\r\n"))

	close(release)
	b, err := io.ReadAll(slow)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", string(b))
}

func TestReadTimeout(t *testing.T) {
	r := router.NewRouter()
	r.Get("/", func(*request.Request) (*response.Response, error) {
		return response.New(response.StatusOK), nil
	})
	s := startServer(t, r, ServerOpts{ReadTimeout: 50 * time.Millisecond})

	// a client that never finishes its header block
	got := roundTrip(t, s, "GET / HTTP/1.1\r\nHost: local")
	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\n\r\n", got)
}

func TestBindFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, err = Serve(ServerOpts{Address: l.Addr().String()}, router.NewRouter())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unable to bind"))
}

func TestCloseStopsAccepting(t *testing.T) {
	s, err := Serve(ServerOpts{Address: "127.0.0.1:0"}, router.NewRouter())
	require.NoError(t, err)
	addr := s.Addr().String()

	require.NoError(t, s.Close())
	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}

func TestLateRegistration(t *testing.T) {
	r := router.NewRouter()
	s := startServer(t, r, ServerOpts{})

	assert.Equal(t, "HTTP/1.1 404 Not Found\r\n\r\n", roundTrip(t, s, "GET /late HTTP/1.1\r\n\r\n"))

	r.Get("/late", func(*request.Request) (*response.Response, error) {
		return response.NewTextResponse("here"), nil
	})
	assert.Equal(t,
		"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 4\r\n\r\nhere\r\n",
		roundTrip(t, s, "GET /late HTTP/1.1\r\n\r\n"))
}
