package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxOutputLen caps how much command output goes into one message
const maxOutputLen = 1500

type notifier struct {
	webhookURL string
	httpClient *http.Client
	onlyFail   bool
}

// Option is a functional option for the notifier
type Option func(*notifier)

// WithHTTPClient sets the HTTP client used to post messages
func WithHTTPClient(c *http.Client) Option {
	return func(n *notifier) {
		n.httpClient = c
	}
}

// WithFailuresOnly suppresses notifications for successful syncs
func WithFailuresOnly(v bool) Option {
	return func(n *notifier) {
		n.onlyFail = v
	}
}

// NewNotifier creates a Notifier posting to a Slack incoming webhook URL
func NewNotifier(webhookURL string, opts ...Option) interfaces.Notifier {
	n := &notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifySync posts the outcome of a sync run
func (n *notifier) NotifySync(ctx context.Context, payload *model.EventPayload, result *model.SyncResult) error {
	if result == nil || (n.onlyFail && result.Succeeded()) {
		return nil
	}

	msg := BuildMessage(payload, result)
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("run_id", result.RunID),
		)
	}
	return nil
}

// BuildMessage renders a sync result as a Slack message
func BuildMessage(payload *model.EventPayload, result *model.SyncResult) *slack.WebhookMessage {
	repo := ""
	if payload != nil {
		repo = payload.Repository
	}

	var color, title, output string
	switch result.Status {
	case model.SyncSucceeded:
		color, title, output = "good", "Sync succeeded", result.Stdout
	case model.SyncTimedOut:
		color, title, output = "warning", "Sync timed out", result.Stderr
	default:
		color, title, output = "danger", "Sync failed", result.Stderr
	}

	fields := []slack.AttachmentField{
		{Title: "Repository", Value: repo, Short: true},
		{Title: "Branch", Value: result.Branch, Short: true},
		{Title: "Directory", Value: result.Dir, Short: true},
		{Title: "Duration", Value: result.Duration.String(), Short: true},
	}
	if result.Changed() {
		fields = append(fields, slack.AttachmentField{
			Title: "Revision",
			Value: fmt.Sprintf("%s → %s", shortRev(result.Before), shortRev(result.After)),
		})
	}

	if payload != nil && payload.Pusher != "" {
		fields = append(fields, slack.AttachmentField{Title: "Pushed by", Value: payload.Pusher, Short: true})
	}

	att := slack.Attachment{
		Color:  color,
		Title:  title,
		Fields: fields,
		Footer: "run " + result.RunID,
	}
	if out := strings.TrimSpace(output); out != "" {
		att.Text = "```" + truncate(out, maxOutputLen) + "```"
	}

	return &slack.WebhookMessage{
		Text:        fmt.Sprintf("%s: %s@%s", title, repo, result.Branch),
		Attachments: []slack.Attachment{att},
	}
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
