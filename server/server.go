// Package server hosts catalog operations over HTTP, with service registration,
// a middleware chain, request validation and graceful shutdown.
//
// Request processing pipeline:
//
//	POST /eins → ServeHTTP (method check, route lookup, read body)
//	  → Middleware Chain → businessHandler
//	    → validate against the request shape → json.Unmarshal → reflect.Call → json.Marshal
//	  → 200 + response JSON, or <status> + {"message": "..."}
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kuechlerm/arkstruct/message"
	"github.com/kuechlerm/arkstruct/middleware"
	"github.com/kuechlerm/arkstruct/registry"
)

// MaxBodyBytes bounds the size of a request body.
const MaxBodyBytes = 1 << 20

// Server registers services and answers operation requests.
type Server struct {
	serviceMap    map[string]*service     // Registered services: "Stub" → *service
	routes        map[string]*route       // Operation path → handling service
	mu            sync.Mutex              // Guards httpServer, registry and advertiseAddr
	httpServer    *http.Server            // Set by Serve
	shutdown      atomic.Bool             // Set to true during shutdown to suppress Serve errors
	middlewares   []middleware.Middleware // Registered middlewares (applied in order)
	handler       middleware.HandlerFunc  // The final handler chain: middleware(middleware(...(businessHandler)))
	once          sync.Once
	registry      registry.Registry // Service registry (etcd), nil if not using discovery
	advertiseAddr string            // Address registered in etcd (e.g., "127.0.0.1:8080")
	// Different from listen address (":8080") because etcd needs a routable IP
	log zerolog.Logger
}

type route struct {
	svc    *service
	method *methodType
}

// NewServer creates a new server with an empty service map.
func NewServer(log zerolog.Logger) *Server {
	return &Server{
		serviceMap: make(map[string]*service),
		routes:     make(map[string]*route),
		log:        log,
	}
}

// Register registers a service receiver (e.g., &Stub{}) under its type name.
// Its methods named after catalog operations become reachable at the operation paths.
func (svr *Server) Register(rcvr any) error {
	return svr.RegisterName("", rcvr)
}

// RegisterName is Register with an explicit service name, which is also the name used in
// the registry.
func (svr *Server) RegisterName(name string, rcvr any) error {
	svc, err := NewService(name, rcvr)
	if err != nil {
		return err
	}
	if _, dup := svr.serviceMap[svc.name]; dup {
		return fmt.Errorf("rpc: service %s already registered", svc.name)
	}
	for path := range svc.method {
		if other, dup := svr.routes[path]; dup {
			return fmt.Errorf("rpc: operation %s already served by %s", path, other.svc.name)
		}
	}
	svr.serviceMap[svc.name] = svc
	for path, mt := range svc.method {
		svr.routes[path] = &route{svc: svc, method: mt}
	}
	return nil
}

// Use registers a middleware. Middlewares are applied in the order they are added and
// must be registered before the first request is handled.
func (svr *Server) Use(mw middleware.Middleware) {
	svr.middlewares = append(svr.middlewares, mw)
}

// Handler returns the HTTP handler serving all registered operations.
func (svr *Server) Handler() http.Handler {
	svr.buildHandler()
	return svr
}

// Build the middleware chain once (not per-request)
// Chain wraps middlewares in reverse order to create the onion model:
//
//	Chain(A, B, C)(handler) → A(B(C(handler)))
func (svr *Server) buildHandler() {
	svr.once.Do(func() {
		chain := append([]middleware.Middleware{middleware.LoggingMiddleware(svr.log)}, svr.middlewares...)
		svr.handler = middleware.Chain(chain...)(svr.businessHandler)
	})
}

// Serve listens on the given address, optionally registers with the registry, and serves
// HTTP until Shutdown.
//
// Parameters:
//   - advertiseAddr: the address to register (e.g., "127.0.0.1:8080").
//     This differs from the listen address because ":8080" resolves to "[::]:8080" locally.
//   - reg: the registry implementation. Pass nil to skip service discovery.
func (svr *Server) Serve(network, address string, advertiseAddr string, reg registry.Registry) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	return svr.ServeListener(listener, advertiseAddr, reg)
}

// ServeListener is Serve on an existing listener.
func (svr *Server) ServeListener(listener net.Listener, advertiseAddr string, reg registry.Registry) error {
	svr.buildHandler()
	httpServer := &http.Server{
		Handler:           svr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if advertiseAddr == "" {
		advertiseAddr = listener.Addr().String()
	}
	svr.mu.Lock()
	if svr.shutdown.Load() {
		svr.mu.Unlock()
		listener.Close()
		return nil
	}
	svr.httpServer = httpServer
	svr.advertiseAddr = advertiseAddr
	svr.registry = reg
	svr.mu.Unlock()

	// Register all services (if registry is provided)
	if reg != nil {
		for serviceName := range svr.serviceMap {
			err := reg.Register(context.Background(), serviceName, registry.ServiceInstance{
				Addr: advertiseAddr,
			}, 10) // TTL = 10 seconds, KeepAlive renews automatically
			if err != nil {
				listener.Close()
				return fmt.Errorf("registering %s: %w", serviceName, err)
			}
		}
	}

	svr.log.Info().Str("addr", listener.Addr().String()).Str("advertise", advertiseAddr).Msg("serving")
	err := httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) && svr.shutdown.Load() {
		return nil
	}
	return err
}

// Shutdown performs graceful shutdown:
//  1. Deregister all services (clients stop routing to this server)
//  2. Set shutdown flag (so the Serve error is recognized as intentional)
//  3. Stop accepting connections and wait for in-flight requests (with timeout)
func (svr *Server) Shutdown(timeout time.Duration) error {
	svr.mu.Lock()
	reg, advertiseAddr := svr.registry, svr.advertiseAddr
	svr.mu.Unlock()

	// Step 1: Deregister first so clients stop sending new requests
	if reg != nil {
		for serviceName := range svr.serviceMap {
			if err := reg.Deregister(context.Background(), serviceName, advertiseAddr); err != nil {
				svr.log.Warn().Err(err).Str("service", serviceName).Msg("deregister failed")
			}
		}
	}

	// Step 2: Set shutdown flag BEFORE closing the server
	svr.mu.Lock()
	svr.shutdown.Store(true)
	httpServer := svr.httpServer
	svr.mu.Unlock()
	if httpServer == nil {
		return nil
	}

	// Step 3: Wait for in-flight requests with timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timeout waiting for ongoing requests to finish")
		}
		return err
	}
	return nil
}

type statusKey struct{}

// ServeHTTP handles one operation request.
func (svr *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svr.buildHandler()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		svr.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := svr.routes[r.URL.Path]; !ok {
		svr.writeError(w, r, http.StatusNotFound, "unknown operation "+r.URL.Path)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		svr.writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	// The business handler records the status of its failures here; failures produced by
	// middleware keep the default.
	status := new(atomic.Int32)
	status.Store(http.StatusServiceUnavailable)
	ctx := context.WithValue(r.Context(), statusKey{}, status)
	result := svr.handler(ctx, &message.Call{Path: r.URL.Path, Args: json.RawMessage(body)})
	if !result.OK() {
		svr.writeError(w, r, int(status.Load()), result.Error)
		return
	}

	reply, err := json.Marshal(result.Value)
	if err != nil {
		svr.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(reply)
}

// businessHandler dispatches a request to the registered method for its path.
// It is wrapped by the middleware chain and has the HandlerFunc signature.
//
// Flow: find route → validate payload against the request shape → reflect.New(args) →
// json.Unmarshal(payload, args) → reflect.Call → return the reply
func (svr *Server) businessHandler(ctx context.Context, call *message.Call) message.Result[any] {
	fail := func(code int, msg string) message.Result[any] {
		// Anything but a client or server error status would read as success or
		// break the response.
		if code < 400 || code > 599 {
			code = http.StatusInternalServerError
		}
		if status, ok := ctx.Value(statusKey{}).(*atomic.Int32); ok {
			status.Store(int32(code))
		}
		return message.Fail[any](msg)
	}

	rt, ok := svr.routes[call.Path]
	if !ok {
		return fail(http.StatusNotFound, "unknown operation "+call.Path)
	}
	payload, _ := call.Args.(json.RawMessage)

	if err := rt.method.op.Request.ValidateJSON(payload); err != nil {
		return fail(http.StatusBadRequest, err.Error())
	}

	// Create new instances of args and reply types via reflection
	argv := reflect.New(rt.method.ArgType)     // e.g., reflect.New(EinsRequest) → *EinsRequest
	replyv := reflect.New(rt.method.ReplyType) // e.g., reflect.New(EinsResponse) → *EinsResponse
	if err := json.Unmarshal(payload, argv.Interface()); err != nil {
		return fail(http.StatusBadRequest, err.Error())
	}

	// Invoke the method via reflection: receiver.Method(ctx, args, reply)
	if err := rt.svc.Call(ctx, rt.method, argv, replyv); err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return fail(rpcErr.Status, rpcErr.Message)
		}
		return fail(http.StatusInternalServerError, err.Error())
	}

	// Empty lists go out as [] since the response shapes require arrays
	fillNilSlices(replyv)
	if err := rt.method.op.Response.ValidateValue(replyv.Interface()); err != nil {
		return fail(http.StatusInternalServerError, "invalid response: "+err.Error())
	}
	return message.Ok[any](replyv.Interface())
}

func (svr *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	evt := svr.log.Warn()
	if status >= http.StatusInternalServerError {
		evt = svr.log.Error()
	}
	evt.Str("path", r.URL.Path).Int("status", status).Str("error", msg).Msg("request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// fillNilSlices replaces nil slices reachable from v with empty ones.
func fillNilSlices(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			fillNilSlices(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				fillNilSlices(v.Field(i))
			}
		}
	case reflect.Slice:
		if v.IsNil() {
			if v.CanSet() {
				v.Set(reflect.MakeSlice(v.Type(), 0, 0))
			}
			return
		}
		for i := 0; i < v.Len(); i++ {
			fillNilSlices(v.Index(i))
		}
	}
}
