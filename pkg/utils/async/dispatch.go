package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a handler function asynchronously with a detached context and panic recovery
//
// Parameters:
//   - ctx: Original context (values will be preserved, but cancellation won't affect the async handler)
//   - handler: Function to execute asynchronously
//
// Behavior:
//   - Executes handler in a new goroutine with Detach(ctx)
//   - Recovers from panics and logs them
//   - Logs errors returned by handler
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := Detach(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(newCtx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger := ctxlog.From(newCtx)
			logger.Error("error in async handler", "error", err)
		}
	}()
}

// Detach returns a context that keeps the values of ctx (logger, request
// scoped data) but is never cancelled when ctx is. Work that must finish even
// after the client went away runs on it.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
