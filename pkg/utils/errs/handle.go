package errs

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err with every goerr value attached along the chain and sends
// it to Sentry when a Sentry client has been initialized.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	attrs := []any{slog.Any("error", err)}
	if ge := goerr.Unwrap(err); ge != nil {
		for k, v := range ge.Values() {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	ctxlog.From(ctx).Error("unhandled error", attrs...)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	evID := hub.CaptureException(err)
	if evID != nil {
		ctxlog.From(ctx).Info("error reported to sentry", "event_id", *evID)
	}
}
