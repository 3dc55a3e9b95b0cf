package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Webhook holds webhook authentication configuration
type Webhook struct {
	Secret   string `masq:"secret"`
	Insecure bool
}

// Flags returns CLI flags for webhook configuration
func (c *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "Shared secret used to verify X-Hub-Signature-256",
			Destination: &c.Secret,
			Sources:     cli.EnvVars("PULLHOOK_WEBHOOK_SECRET"),
		},
		&cli.BoolFlag{
			Name:        "insecure",
			Usage:       "Accept unsigned requests when no webhook secret is set",
			Destination: &c.Insecure,
			Sources:     cli.EnvVars("PULLHOOK_INSECURE"),
		},
	}
}

// ApplyFile fills values not given by flag or environment from the config file
func (c *Webhook) ApplyFile(cmd *cli.Command, f *File) {
	if !cmd.IsSet("webhook-secret") && f.Webhook.Secret != "" {
		c.Secret = f.Webhook.Secret
	}
	if !cmd.IsSet("insecure") && f.Webhook.Insecure != nil {
		c.Insecure = *f.Webhook.Insecure
	}
}

// Validate rejects a missing secret unless insecure mode was asked for
func (c *Webhook) Validate() error {
	if c.Secret == "" && !c.Insecure {
		return goerr.New("webhook secret is required; set --webhook-secret or enable --insecure")
	}
	return nil
}
