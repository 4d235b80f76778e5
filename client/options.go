package client

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kuechlerm/arkstruct/codec"
	"github.com/kuechlerm/arkstruct/message"
	"github.com/kuechlerm/arkstruct/middleware"
	"github.com/kuechlerm/arkstruct/transport"
)

// OverrideFunc replaces the network exchange. It receives the operation path and the
// caller's argument and returns the result the client hands back.
type OverrideFunc func(ctx context.Context, path string, args any) message.Result[any]

// Option configures a Client.
type Option func(*Client)

// WithOverrideCall routes every call to fn instead of the network. Middleware,
// validation and logging are skipped for overridden calls.
func WithOverrideCall(fn OverrideFunc) Option {
	return func(c *Client) {
		c.override = fn
	}
}

// WithErrorHandler installs a hook that observes every non-2xx response.
func WithErrorHandler(fn transport.ErrorHandler) Option {
	return func(c *Client) {
		c.transport.OnError = fn
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport.Client = hc
	}
}

func WithCodec(cdc codec.Codec) Option {
	return func(c *Client) {
		c.transport.Codec = cdc
	}
}

func WithErrorPolicy(p transport.ErrorPolicy) Option {
	return func(c *Client) {
		c.transport.Policy = p
	}
}

// WithoutContentType stops the client from declaring a Content-Type on requests.
func WithoutContentType() Option {
	return func(c *Client) {
		c.transport.OmitContentType = true
	}
}

// WithMiddleware appends middleware to the call pipeline. The first one given is the
// outermost.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// WithResolver replaces the static base address, e.g. with a loadbalance.Resolver.
func WithResolver(r transport.Resolver) Option {
	return func(c *Client) {
		c.transport.Resolver = r
	}
}

// WithRequestValidation checks arguments against the operation's request shape before
// anything is sent.
func WithRequestValidation() Option {
	return func(c *Client) {
		c.validateRequests = true
	}
}

// WithResponseValidation checks successful responses against the operation's response
// shape. A mismatch turns the result into a failure.
func WithResponseValidation() Option {
	return func(c *Client) {
		c.validateResponses = true
	}
}
