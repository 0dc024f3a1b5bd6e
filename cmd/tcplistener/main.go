// tcplistener prints every request it receives in parsed form and answers 404.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/shravanasati/waypoint/internal/logging"
	"github.com/shravanasati/waypoint/request"
	"github.com/shravanasati/waypoint/response"
)

func main() {
	addr := flag.String("addr", ":42069", "address to listen on")
	flag.Parse()

	logger := logging.New(logging.Options{Color: true})

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to listen")
	}
	defer listener.Close()
	logger.Info().Str("addr", listener.Addr().String()).Msg("listening for connections")

	for {
		conn, err := listener.Accept()
		if err != nil {
			logger.Error().Err(err).Msg("unable to accept connection")
			continue
		}
		logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("a connection has been accepted")

		req, err := request.RequestFromReader(conn)
		if err != nil {
			logger.Error().Err(err).Msg("unable to parse request")
			response.InternalServerError().Write(conn)
			conn.Close()
			continue
		}

		fmt.Fprintln(os.Stdout, "Request line:")
		fmt.Fprintf(os.Stdout, "- Method: %s\n", req.Method)
		fmt.Fprintf(os.Stdout, "- Path: %s\n", req.Path)
		fmt.Fprintf(os.Stdout, "- Version: %s\n", req.HTTPVersion)
		fmt.Fprintln(os.Stdout, "Headers:")
		for name, value := range req.Headers.All() {
			fmt.Fprintf(os.Stdout, "- %s: %s\n", name, value)
		}
		fmt.Fprintln(os.Stdout, "Body:")
		fmt.Fprintln(os.Stdout, string(req.Body))

		response.NotFound().Write(conn)
		conn.Close()
		logger.Info().Msg("a connection has been closed")
	}
}
