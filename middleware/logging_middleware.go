package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kuechlerm/arkstruct/message"
)

// LoggingMiddleware logs every call at debug level. Each call gets a request id that is
// also attached to the context logger, so transport log lines can be correlated.
func LoggingMiddleware(log zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *message.Call) message.Result[any] {
			reqLog := log.With().Str("request_id", uuid.NewString()).Str("path", call.Path).Logger()
			ctx = reqLog.WithContext(ctx)

			start := time.Now()
			result := next(ctx, call)
			duration := time.Since(start)

			evt := reqLog.Debug().Dur("duration", duration)
			if !result.OK() {
				evt = evt.Str("error", result.Error)
			}
			evt.Msg("rpc call")
			return result
		}
	}
}
