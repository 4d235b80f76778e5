package middleware

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kuechlerm/arkstruct/message"
)

// 模拟一个简单的 handler：直接返回成功响应
func echoHandler(ctx context.Context, call *message.Call) message.Result[any] {
	return message.Ok[any](call.Args)
}

// 模拟一个慢 handler：睡 200ms
func slowHandler(ctx context.Context, call *message.Call) message.Result[any] {
	time.Sleep(200 * time.Millisecond)
	return message.Ok[any]("ok")
}

func failingHandler(ctx context.Context, call *message.Call) message.Result[any] {
	return message.Fail[any]("Fetch error: 500 Internal Server Error")
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	handler := LoggingMiddleware(log)(echoHandler)
	result := handler(context.Background(), &message.Call{Path: "/zwei", Args: "ok"})

	if !result.OK() || result.Value != "ok" {
		t.Fatalf("expect echoed value, got %+v", result)
	}
	out := buf.String()
	if !strings.Contains(out, `"path":"/zwei"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("missing fields in log line: %s", out)
	}

	buf.Reset()
	LoggingMiddleware(log)(failingHandler)(context.Background(), &message.Call{Path: "/eins"})
	if !strings.Contains(buf.String(), "500 Internal Server Error") {
		t.Fatalf("expect error in log line, got: %s", buf.String())
	}
}

func TestLoggingPutsLoggerOnContext(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	inner := func(ctx context.Context, call *message.Call) message.Result[any] {
		zerolog.Ctx(ctx).Info().Msg("inner")
		return message.Ok[any](nil)
	}
	LoggingMiddleware(log)(inner)(context.Background(), &message.Call{Path: "/listen"})

	if !strings.Contains(buf.String(), `"message":"inner"`) || !strings.Contains(buf.String(), `"path":"/listen"`) {
		t.Fatalf("context logger not propagated: %s", buf.String())
	}
}

func TestTimeoutPass(t *testing.T) {
	// 超时 500ms，handler 很快，应该正常返回
	handler := TimeOutMiddleware(500 * time.Millisecond)(echoHandler)

	result := handler(context.Background(), &message.Call{Path: "/zwei"})

	if !result.OK() {
		t.Fatalf("expect no error, got '%s'", result.Error)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	// 超时 50ms，handler 需要 200ms，应该超时
	handler := TimeOutMiddleware(50 * time.Millisecond)(slowHandler)

	result := handler(context.Background(), &message.Call{Path: "/zwei"})

	if result.Error != "request timed out" {
		t.Fatalf("expect timeout error, got '%s'", result.Error)
	}
}

func TestRateLimit(t *testing.T) {
	// rate=1 per second, burst=2 → 前 2 个立刻放行，第 3 个被拒
	handler := RateLimitMiddleware(1, 2)(echoHandler)
	call := &message.Call{Path: "/a_name"}

	for i := 0; i < 2; i++ {
		result := handler(context.Background(), call)
		if !result.OK() {
			t.Fatalf("request %d should pass, got error: %s", i, result.Error)
		}
	}

	result := handler(context.Background(), call)
	if result.Error != "rate limit exceeded" {
		t.Fatalf("request 3 should be rate limited, got: '%s'", result.Error)
	}
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *message.Call) message.Result[any] {
				order = append(order, name+".before")
				result := next(ctx, call)
				order = append(order, name+".after")
				return result
			}
		}
	}

	chained := Chain(mark("A"), mark("B"), TimeOutMiddleware(500*time.Millisecond))
	result := chained(echoHandler)(context.Background(), &message.Call{Path: "/zwei", Args: 1})

	if !result.OK() {
		t.Fatalf("expect no error, got '%s'", result.Error)
	}
	want := "A.before,B.before,B.after,A.after"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expect onion order %s, got %s", want, got)
	}
}
