package config

import (
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds sync notification configuration
type Slack struct {
	WebhookURL   string `masq:"secret"`
	FailuresOnly bool
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for sync notifications (disabled if empty)",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("PULLHOOK_SLACK_WEBHOOK_URL"),
		},
		&cli.BoolFlag{
			Name:        "slack-failures-only",
			Usage:       "Notify Slack only when a sync fails",
			Destination: &c.FailuresOnly,
			Sources:     cli.EnvVars("PULLHOOK_SLACK_FAILURES_ONLY"),
		},
	}
}

// ApplyFile fills values not given by flag or environment from the config file
func (c *Slack) ApplyFile(cmd *cli.Command, f *File) {
	if !cmd.IsSet("slack-webhook-url") && f.Slack.WebhookURL != "" {
		c.WebhookURL = f.Slack.WebhookURL
	}
	if !cmd.IsSet("slack-failures-only") && f.Slack.FailuresOnly != nil {
		c.FailuresOnly = *f.Slack.FailuresOnly
	}
}

// Notifier returns a Slack notifier, or nil when no URL is configured
func (c *Slack) Notifier() interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(c.WebhookURL, slack.WithFailuresOnly(c.FailuresOnly))
}
