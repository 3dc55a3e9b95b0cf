package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled if empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("PULLHOOK_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Destination: &c.Environment,
			Sources:     cli.EnvVars("PULLHOOK_SENTRY_ENV"),
		},
	}
}

// ApplyFile fills values not given by flag or environment from the config file
func (c *Sentry) ApplyFile(cmd *cli.Command, f *File) {
	if !cmd.IsSet("sentry-dsn") && f.Sentry.DSN != "" {
		c.DSN = f.Sentry.DSN
	}
	if !cmd.IsSet("sentry-env") && f.Sentry.Environment != "" {
		c.Environment = f.Sentry.Environment
	}
}

// Configure initializes the global Sentry client. The returned function
// flushes buffered events and must be called before exit.
func (c *Sentry) Configure() (func(), error) {
	if c.DSN == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     types.ServiceName + "@" + types.Version,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}
