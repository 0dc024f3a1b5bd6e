package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type Options struct {
	// Level is a zerolog level name; unknown names fall back to info.
	Level string
	// Color enables ANSI colors in the console output and the access log badges.
	Color bool
	// Out defaults to stderr.
	Out io.Writer
}

// New builds the console logger used by the server binaries.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	cw := zerolog.ConsoleWriter{Out: out, NoColor: !opts.Color, TimeFormat: time.TimeOnly}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// Entry describes one served connection.
type Entry struct {
	Remote string
	Method string
	Path   string
	// Template of the matched route, empty when nothing matched
	Route    string
	Status   int
	Duration time.Duration
	Err      error
}

var methodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)

// Access writes the access log line for e. 5xx entries are logged at error
// level, everything else at info.
func Access(logger zerolog.Logger, e Entry, color bool) {
	event := logger.Info()
	if e.Status >= 500 {
		event = logger.Error()
	}

	event = event.
		Str("remote", e.Remote).
		Str("method", e.Method).
		Str("path", e.Path).
		Int("status", e.Status).
		Dur("duration", e.Duration)
	if e.Route != "" {
		event = event.Str("route", e.Route)
	}
	if e.Err != nil {
		event = event.Err(e.Err)
	}

	method, status := e.Method, fmt.Sprintf("%d", e.Status)
	if color {
		method = methodStyle.Render(e.Method)
		status = statusCodeStyle(e.Status).Render(status)
	}
	event.Msgf("%s %s %s in %s", method, e.Path, status, e.Duration)
}

// statusCodeStyle returns a lipgloss style for HTTP status codes
func statusCodeStyle(statusCode int) lipgloss.Style {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	case statusCode >= 300 && statusCode < 400:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	case statusCode >= 400 && statusCode < 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	case statusCode >= 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	}
}
