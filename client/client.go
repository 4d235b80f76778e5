// Package client is the typed RPC client for the operations in the catalog.
//
// Every operation method forwards to one dispatch routine:
//
//	Eins(ctx, args) ──► override set? ──yes──► override(ctx, "/eins", args)
//	                          │no
//	                          ▼
//	            request validation (opt-in)
//	                          ▼
//	      middleware chain ──► transport.HTTPTransport.Execute
//	                          ▼
//	            response validation (opt-in)
//	                          ▼
//	              message.Result[EinsResponse]
//
// Failures never surface as Go errors; they end up in Result.Error.
package client

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"

	"github.com/kuechlerm/arkstruct/catalog"
	"github.com/kuechlerm/arkstruct/message"
	"github.com/kuechlerm/arkstruct/middleware"
	"github.com/kuechlerm/arkstruct/transport"
)

// Client holds only configuration fixed at construction, so one Client can serve any
// number of concurrent calls.
type Client struct {
	transport         transport.HTTPTransport
	override          OverrideFunc
	middlewares       []middleware.Middleware
	validateRequests  bool
	validateResponses bool
	log               zerolog.Logger

	handler middleware.HandlerFunc
}

// New creates a client whose operation paths are resolved against baseURL. An invalid
// base address is reported by every call, not here.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		transport: transport.HTTPTransport{Resolver: transport.StaticBase(baseURL)},
		log:       zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transport.Log = c.log

	chain := append([]middleware.Middleware{middleware.LoggingMiddleware(c.log)}, c.middlewares...)
	c.handler = middleware.Chain(chain...)(c.transport.Execute)
	return c
}

func (c *Client) AName(ctx context.Context, args catalog.ANameRequest) message.Result[catalog.ANameResponse] {
	return call[catalog.ANameResponse](ctx, c, catalog.AName, args)
}

func (c *Client) Eins(ctx context.Context, args catalog.EinsRequest) message.Result[catalog.EinsResponse] {
	return call[catalog.EinsResponse](ctx, c, catalog.Eins, args)
}

func (c *Client) Listen(ctx context.Context, args catalog.ListenRequest) message.Result[catalog.ListenResponse] {
	return call[catalog.ListenResponse](ctx, c, catalog.Listen, args)
}

func (c *Client) Zwei(ctx context.Context, args catalog.ZweiRequest) message.Result[catalog.ZweiResponse] {
	return call[catalog.ZweiResponse](ctx, c, catalog.Zwei, args)
}

// Call invokes an operation by path without static types. Paths outside the catalog are
// sent as well, but are never validated.
func (c *Client) Call(ctx context.Context, path string, args any) message.Result[json.RawMessage] {
	op, ok := catalog.Lookup(path)
	if !ok || op.Path != path {
		return message.Convert[json.RawMessage](c.dispatch(ctx, nil, path, args))
	}
	return message.Convert[json.RawMessage](c.dispatch(ctx, &op, path, args))
}

func call[Resp any](ctx context.Context, c *Client, op catalog.Operation, args any) message.Result[Resp] {
	return message.Convert[Resp](c.dispatch(ctx, &op, op.Path, args))
}

func (c *Client) dispatch(ctx context.Context, op *catalog.Operation, path string, args any) message.Result[any] {
	if c.override != nil {
		return c.override(ctx, path, args)
	}

	if c.validateRequests && op != nil {
		if err := op.Request.ValidateValue(args); err != nil {
			return message.FailErr[any](err)
		}
	}

	result := c.handler(ctx, &message.Call{Path: path, Args: args})

	if c.validateResponses && op != nil && result.OK() {
		if err := op.Response.ValidateValue(result.Value); err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("response does not match its shape")
			return message.FailErr[any](err)
		}
	}
	return result
}
