package config

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sync holds configuration of the repository sync
type Sync struct {
	ProjectDir string
	Branches   []string
	Timeout    time.Duration
	GitBinary  string
	Remote     string
}

// Flags returns CLI flags for sync configuration
func (c *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project-dir",
			Usage:       "Working directory of the repository to sync",
			Destination: &c.ProjectDir,
			Sources:     cli.EnvVars("PULLHOOK_PROJECT_DIR"),
		},
		&cli.StringSliceFlag{
			Name:        "branch",
			Usage:       "Branch whose pushes trigger a sync (repeatable)",
			Value:       []string{"main"},
			Destination: &c.Branches,
			Sources:     cli.EnvVars("PULLHOOK_BRANCHES"),
		},
		&cli.DurationFlag{
			Name:        "sync-timeout",
			Usage:       "Maximum duration of one sync command",
			Value:       60 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("PULLHOOK_SYNC_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "git-binary",
			Usage:       "git executable",
			Value:       "git",
			Destination: &c.GitBinary,
			Sources:     cli.EnvVars("PULLHOOK_GIT_BINARY"),
		},
		&cli.StringFlag{
			Name:        "remote",
			Usage:       "Remote to pull from",
			Value:       "origin",
			Destination: &c.Remote,
			Sources:     cli.EnvVars("PULLHOOK_REMOTE"),
		},
	}
}

// ApplyFile fills values not given by flag or environment from the config file
func (c *Sync) ApplyFile(cmd *cli.Command, f *File) error {
	if !cmd.IsSet("project-dir") && f.Sync.ProjectDir != "" {
		c.ProjectDir = f.Sync.ProjectDir
	}
	if !cmd.IsSet("branch") && len(f.Sync.Branches) > 0 {
		c.Branches = f.Sync.Branches
	}
	if !cmd.IsSet("sync-timeout") && f.Sync.Timeout != "" {
		d, err := time.ParseDuration(f.Sync.Timeout)
		if err != nil {
			return goerr.Wrap(err, "invalid sync timeout in config file", goerr.V("timeout", f.Sync.Timeout))
		}
		c.Timeout = d
	}
	if !cmd.IsSet("git-binary") && f.Sync.GitBinary != "" {
		c.GitBinary = f.Sync.GitBinary
	}
	if !cmd.IsSet("remote") && f.Sync.Remote != "" {
		c.Remote = f.Sync.Remote
	}
	return nil
}

// Validate checks that the sync settings are usable
func (c *Sync) Validate() error {
	if c.ProjectDir == "" {
		return goerr.New("project directory is required; set --project-dir")
	}
	if c.Timeout <= 0 {
		return goerr.New("sync timeout must be positive", goerr.V("timeout", c.Timeout.String()))
	}
	if len(c.Branches) == 0 {
		return goerr.New("at least one trigger branch is required")
	}
	for _, b := range c.Branches {
		if strings.TrimSpace(b) == "" {
			return goerr.New("trigger branch must not be empty", goerr.V("branches", c.Branches))
		}
	}
	return nil
}
