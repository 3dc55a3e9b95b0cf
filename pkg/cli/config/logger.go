package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output io.Writer
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("PULLHOOK_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (text, json, console)",
			Value:       "text",
			Destination: &c.Format,
			Sources:     cli.EnvVars("PULLHOOK_LOG_FORMAT"),
		},
	}
}

// Configure configures and returns a logger. Values of struct fields tagged
// `masq:"secret"` are redacted in every format.
func (c *Logger) Configure() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("invalid log level", goerr.V("level", c.Level))
	}

	out := c.Output
	if out == nil {
		out = os.Stdout
	}

	redact := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: redact})
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: redact})
	case "console":
		handler = clog.New(
			clog.WithWriter(out),
			clog.WithLevel(level),
			clog.WithColor(true),
			clog.WithReplaceAttr(redact),
		)
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", c.Format))
	}

	return slog.New(handler), nil
}
