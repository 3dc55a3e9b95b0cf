package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// File is the optional configuration file. Flags and environment variables
// take precedence over values read from it.
type File struct {
	Addr string `toml:"addr" yaml:"addr"`

	Webhook struct {
		Secret   string `toml:"secret" yaml:"secret" masq:"secret"`
		Insecure *bool  `toml:"insecure" yaml:"insecure"`
	} `toml:"webhook" yaml:"webhook"`

	Sync struct {
		ProjectDir string   `toml:"project_dir" yaml:"project_dir"`
		Branches   []string `toml:"branches" yaml:"branches"`
		Timeout    string   `toml:"timeout" yaml:"timeout"`
		GitBinary  string   `toml:"git_binary" yaml:"git_binary"`
		Remote     string   `toml:"remote" yaml:"remote"`
	} `toml:"sync" yaml:"sync"`

	Sentry struct {
		DSN         string `toml:"dsn" yaml:"dsn" masq:"secret"`
		Environment string `toml:"environment" yaml:"environment"`
	} `toml:"sentry" yaml:"sentry"`

	Slack struct {
		WebhookURL   string `toml:"webhook_url" yaml:"webhook_url" masq:"secret"`
		FailuresOnly *bool  `toml:"failures_only" yaml:"failures_only"`
	} `toml:"slack" yaml:"slack"`
}

// ConfigFile holds the path flag of the configuration file
type ConfigFile struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *ConfigFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML or YAML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("PULLHOOK_CONFIG"),
		},
	}
}

// Load reads the configuration file. It returns an empty File when no path is set.
func (c *ConfigFile) Load() (*File, error) {
	if c.Path == "" {
		return &File{}, nil
	}
	return LoadFile(c.Path)
}

// LoadFile parses path as TOML (.toml) or YAML (.yaml, .yml)
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML config file", goerr.V("path", path))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, goerr.Wrap(err, "failed to parse YAML config file", goerr.V("path", path))
		}
	default:
		return nil, goerr.New("unsupported config file extension", goerr.V("path", path), goerr.V("ext", ext))
	}

	return &f, nil
}
