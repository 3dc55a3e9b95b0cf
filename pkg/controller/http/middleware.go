package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/utils/errs"
)

// LoggingMiddleware returns a middleware that logs HTTP requests and puts a
// request scoped logger into the request context
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(ctxlog.With(r.Context(), logger))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
					"remote_addr", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RecoveryMiddleware converts a panic into a generic 500 response
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := goerr.New(fmt.Sprintf("panic: %v", rec), goerr.V("stack", string(debug.Stack())))
				errs.Handle(r.Context(), err)
				writeJSON(r.Context(), w, http.StatusInternalServerError, &model.Response{
					Status:  model.StatusError,
					Message: msgInternalError,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes body as a JSON response with status
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}
