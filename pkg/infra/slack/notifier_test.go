package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/infra/slack"
)

func TestBuildMessage(t *testing.T) {
	payload := &model.EventPayload{Repository: "analytics"}

	t.Run("success with revision change", func(t *testing.T) {
		msg := slack.BuildMessage(payload, &model.SyncResult{
			RunID:    "run-1",
			Branch:   "main",
			Status:   model.SyncSucceeded,
			Stdout:   "Fast-forward\n",
			Duration: time.Second,
			Before:   "1111111aaaa",
			After:    "2222222bbbb",
		})

		gt.Equal(t, msg.Text, "Sync succeeded: analytics@main")
		gt.Equal(t, len(msg.Attachments), 1)
		gt.Equal(t, msg.Attachments[0].Color, "good")
		gt.String(t, msg.Attachments[0].Text).Contains("Fast-forward")
		gt.Equal(t, len(msg.Attachments[0].Fields), 5)
		gt.Equal(t, msg.Attachments[0].Fields[4].Value, "1111111 → 2222222")
	})

	t.Run("failure shows stderr", func(t *testing.T) {
		msg := slack.BuildMessage(payload, &model.SyncResult{
			Branch: "main",
			Status: model.SyncFailed,
			Stderr: "CONFLICT (content)",
		})
		gt.Equal(t, msg.Attachments[0].Color, "danger")
		gt.String(t, msg.Attachments[0].Text).Contains("CONFLICT")
	})

	t.Run("pusher is shown when known", func(t *testing.T) {
		msg := slack.BuildMessage(&model.EventPayload{Repository: "analytics", Pusher: "octocat"}, &model.SyncResult{
			Branch: "main",
			Status: model.SyncSucceeded,
		})
		fields := msg.Attachments[0].Fields
		gt.Equal(t, fields[len(fields)-1].Title, "Pushed by")
		gt.Equal(t, fields[len(fields)-1].Value, "octocat")
	})

	t.Run("long output is truncated", func(t *testing.T) {
		msg := slack.BuildMessage(payload, &model.SyncResult{
			Status: model.SyncFailed,
			Stderr: strings.Repeat("x", 5000),
		})
		gt.True(t, len(msg.Attachments[0].Text) < 2000)
	})
}

func TestNotifier_NotifySync(t *testing.T) {
	var received []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received = append(received, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()
	payload := &model.EventPayload{Repository: "analytics"}

	t.Run("posts every outcome by default", func(t *testing.T) {
		received = nil
		n := slack.NewNotifier(srv.URL, slack.WithHTTPClient(srv.Client()))

		gt.NoError(t, n.NotifySync(ctx, payload, &model.SyncResult{Branch: "main", Status: model.SyncSucceeded}))
		gt.NoError(t, n.NotifySync(ctx, payload, &model.SyncResult{Branch: "main", Status: model.SyncFailed}))
		gt.Equal(t, len(received), 2)
		gt.Equal(t, received[0]["text"], any("Sync succeeded: analytics@main"))
	})

	t.Run("failures only", func(t *testing.T) {
		received = nil
		n := slack.NewNotifier(srv.URL, slack.WithHTTPClient(srv.Client()), slack.WithFailuresOnly(true))

		gt.NoError(t, n.NotifySync(ctx, payload, &model.SyncResult{Status: model.SyncSucceeded}))
		gt.NoError(t, n.NotifySync(ctx, payload, &model.SyncResult{Status: model.SyncTimedOut}))
		gt.Equal(t, len(received), 1)
	})

	t.Run("server error is returned", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer failing.Close()

		n := slack.NewNotifier(failing.URL, slack.WithHTTPClient(failing.Client()))
		gt.Error(t, n.NotifySync(ctx, payload, &model.SyncResult{Status: model.SyncFailed}))
	})
}
