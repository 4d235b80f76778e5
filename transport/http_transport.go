// Package transport implements the HTTP request/response exchange behind every RPC call.
//
// HTTPTransport.Execute is the dispatch routine: one POST per call, no retries.
//
//	Call{Path, Args} ──resolve base──► POST base+path, JSON body
//	                                   │
//	              2xx ◄────────────────┴────────────────► non-2xx
//	   Result{Value: parsed body}            error hook → Result{Error: policy text}
//
// Every failure, including a panic in the error hook, ends up in Result.Error. Nothing
// is returned to the caller as a Go error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/kuechlerm/arkstruct/codec"
	"github.com/kuechlerm/arkstruct/message"
)

// ErrorPolicy selects how a non-2xx response is turned into an error message.
type ErrorPolicy int

const (
	// MessagePolicy reads the "message" field of a JSON error body and falls back to
	// message.UnknownError.
	MessagePolicy ErrorPolicy = iota
	// StatusPolicy ignores the body and reports "Fetch error: <code> <status text>".
	StatusPolicy
)

func (p ErrorPolicy) String() string {
	if p == StatusPolicy {
		return "status"
	}
	return "message"
}

// ParseErrorPolicy parses "message" or "status". The empty string means MessagePolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "message":
		return MessagePolicy, nil
	case "status":
		return StatusPolicy, nil
	default:
		return MessagePolicy, fmt.Errorf("unknown error policy %q", s)
	}
}

// ErrorHandler observes every non-2xx response. The body has already been read, as far
// as it could be, and is replayed, so the handler may read it again.
type ErrorHandler func(resp *http.Response)

// HTTPTransport holds the immutable configuration of the dispatch routine. It is safe
// for concurrent use.
type HTTPTransport struct {
	Resolver        Resolver
	Client          *http.Client // nil uses http.DefaultClient
	Codec           codec.Codec  // nil uses codec.Default
	Policy          ErrorPolicy
	OmitContentType bool
	OnError         ErrorHandler
	Log             zerolog.Logger
}

// Execute performs a single request/response exchange for call.
func (t *HTTPTransport) Execute(ctx context.Context, call *message.Call) (result message.Result[any]) {
	defer func() {
		if p := recover(); p != nil {
			err, ok := p.(error)
			if !ok {
				err = fmt.Errorf("%v", p)
			}
			t.logException(ctx, call, err)
			result = message.FailErr[any](err)
		}
	}()

	value, failure, err := t.roundTrip(ctx, call)
	switch {
	case err != nil:
		t.logException(ctx, call, err)
		return message.FailErr[any](err)
	case failure != "":
		return message.Fail[any](failure)
	default:
		return message.Ok[any](value)
	}
}

// roundTrip returns the parsed body on success, the policy message on a non-2xx
// response, or an error for everything that went wrong along the way.
func (t *HTTPTransport) roundTrip(ctx context.Context, call *message.Call) (json.RawMessage, string, error) {
	cdc := t.Codec
	if cdc == nil {
		cdc = codec.Default
	}
	resolver := t.Resolver
	if resolver == nil {
		return nil, "", fmt.Errorf("no base address configured")
	}

	base, err := resolver.Resolve(ctx, call.Path)
	if err != nil {
		return nil, "", err
	}
	target, err := ResolveURL(base, call.Path)
	if err != nil {
		return nil, "", err
	}

	payload, err := cdc.Encode(call.Args)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	if !t.OmitContentType {
		req.Header.Set("Content-Type", cdc.ContentType())
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		readErr = fmt.Errorf("reading response body: %w", readErr)
	}

	// The hook sees every non-2xx response, even one whose body broke off.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger(ctx).Error().
			Str("path", call.Path).
			Int("status", resp.StatusCode).
			Msgf("Fetch error: %d %s for %s", resp.StatusCode, statusText(resp), call.Path)
		if t.OnError != nil {
			resp.Body = io.NopCloser(bytes.NewReader(data))
			t.OnError(resp)
		}
		if readErr != nil {
			return nil, "", readErr
		}
		return nil, t.errorText(resp, data), nil
	}
	if readErr != nil {
		return nil, "", readErr
	}

	var raw json.RawMessage
	if err := cdc.Decode(data, &raw); err != nil {
		return nil, "", err
	}
	return raw, "", nil
}

func (t *HTTPTransport) errorText(resp *http.Response, body []byte) string {
	if t.Policy == StatusPolicy {
		return fmt.Sprintf("Fetch error: %d %s", resp.StatusCode, statusText(resp))
	}
	if !gjson.ValidBytes(body) {
		return message.UnknownError
	}
	msg := gjson.GetBytes(body, "message")
	if !msg.Exists() || msg.Type == gjson.Null || msg.String() == "" {
		return message.UnknownError
	}
	return msg.String()
}

func (t *HTTPTransport) logException(ctx context.Context, call *message.Call, err error) {
	args, merr := json.Marshal(call.Args)
	if merr != nil {
		args = []byte(fmt.Sprintf("%+v", call.Args))
	}
	t.logger(ctx).Error().Err(err).Str("path", call.Path).RawJSON("args", jsonOrString(args)).Msg("RPC client error")
}

// logger prefers a logger carried by ctx (set by the logging middleware) over Log.
func (t *HTTPTransport) logger(ctx context.Context) *zerolog.Logger {
	if ctxLog := zerolog.Ctx(ctx); ctxLog != nil && ctxLog.GetLevel() != zerolog.Disabled {
		return ctxLog
	}
	return &t.Log
}

// statusText extracts the reason phrase, e.g. "Not Found" from "404 Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func jsonOrString(b []byte) []byte {
	if json.Valid(b) {
		return b
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
