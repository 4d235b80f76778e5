package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/kuechlerm/arkstruct/message"
)

// RateLimitMiddleware 创建一个基于令牌桶算法的限流中间件
// Calls over the limit fail immediately and are never sent.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *message.Call) message.Result[any] {
			if !limiter.Allow() {
				return message.Fail[any]("rate limit exceeded")
			}
			return next(ctx, call)
		}
	}
}
