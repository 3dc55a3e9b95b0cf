package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
	"github.com/m-mizutani/pullhook/pkg/utils/errs"
)

const msgInternalError = "internal server error"

// statusOf maps an error kind to its HTTP status code
func statusOf(kind types.ErrorKind) int {
	switch kind {
	case types.KindAuthentication:
		return http.StatusUnauthorized
	case types.KindPayload:
		return http.StatusBadRequest
	case types.KindConfiguration, types.KindExecution, types.KindTimeout:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the single place where a failed request becomes a
// response. Unexpected errors are reported and hidden from the caller.
func errorResponse(ctx context.Context, err error) (int, *model.Response) {
	kind := types.KindOf(err)
	status := statusOf(kind)
	logger := ctxlog.From(ctx)

	switch kind {
	case types.KindUnexpected:
		errs.Handle(ctx, err)
		return status, &model.Response{Status: model.StatusError, Message: msgInternalError}
	case types.KindAuthentication, types.KindPayload:
		logger.Warn("Webhook request rejected", "kind", kind.String(), "error", err)
	default:
		logger.Error("Webhook request failed", "kind", kind.String(), "error", err)
	}

	return status, &model.Response{Status: model.StatusError, Message: err.Error()}
}

// isBodyTooLarge reports whether err came from http.MaxBytesReader
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
