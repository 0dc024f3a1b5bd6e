package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shravanasati/waypoint/internal/config"
	"github.com/shravanasati/waypoint/internal/handlers"
	"github.com/shravanasati/waypoint/internal/logging"
	"github.com/shravanasati/waypoint/router"
	"github.com/shravanasati/waypoint/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Color: cfg.Color})

	app := router.NewRouter()
	handlers.Register(app, cfg.Directory)
	for _, route := range app.Routes() {
		logger.Debug().Str("method", route.Method).Str("template", route.Template).Msg("route registered")
	}
	if cfg.Directory == "" {
		logger.Warn().Msg("no --directory given, /files routes are disabled")
	}

	srv, err := server.Serve(server.ServerOpts{
		Address:      cfg.Address,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       &logger,
		LogColor:     cfg.Color,
	}, app)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting server")
	}
	logger.Info().Str("addr", srv.Addr().String()).Msg("server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing listener")
	}
	logger.Info().Msg("server gracefully stopped")
}
