package middleware

import (
	"context"
	"time"

	"github.com/kuechlerm/arkstruct/message"
)

// TimeOutMiddleware bounds a call by timeout. The deadline is also placed on the context,
// which aborts the underlying HTTP request.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *message.Call) message.Result[any] {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan message.Result[any], 1)
			go func() {
				done <- next(ctx, call)
			}()

			select {
			case result := <-done:
				return result
			case <-ctx.Done():
				return message.Fail[any]("request timed out")
			}
		}
	}
}
