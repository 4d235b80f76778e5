package middleware

import (
	"context"

	"github.com/kuechlerm/arkstruct/message"
)

// HandlerFunc is one step of the client call pipeline. The innermost HandlerFunc is the
// HTTP transport.
type HandlerFunc func(ctx context.Context, call *message.Call) message.Result[any]

type Middleware func(next HandlerFunc) HandlerFunc

// Chain 将多个中间件组合成一个中间件
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
