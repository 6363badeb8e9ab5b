// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// RequestGuard extracts and validates a value from the live request
// before the body is read: headers, cookies, managed state. It runs once
// per candidate route, in declaration order, and its outcome drives the
// dispatch loop:
//
//   - Success binds the value under Name for the handler.
//   - Failure rejects the request with a status; the loop records it and
//     still tries the remaining candidates.
//   - Forward declines the route; the loop moves to the next candidate.
//
// Name doubles as the guard's request-local cache tag: two routes
// declaring the same named guard share one evaluation per request.
type RequestGuard interface {
	Name() string
	FromRequest(ctx context.Context, req *Request) Outcome[any]
}

// DataGuard consumes the request body. A route declares at most one, and
// it runs only after every request and parameter guard has succeeded.
type DataGuard interface {
	Name() string
	FromData(ctx context.Context, req *Request, data *Data) Outcome[any]
}

// ParamGuard converts one bound path or query segment value into a typed
// value. found is false when a declared query segment had no live pair;
// the guard decides whether that means a default or a Forward.
type ParamGuard interface {
	Name() string
	FromParam(ctx context.Context, raw string, found bool) Outcome[any]
}

// GuardFunc adapts a function into a RequestGuard.
func GuardFunc(name string, fn func(ctx context.Context, req *Request) Outcome[any]) RequestGuard {
	return requestGuardFunc{name: name, fn: fn}
}

type requestGuardFunc struct {
	name string
	fn   func(context.Context, *Request) Outcome[any]
}

func (g requestGuardFunc) Name() string { return g.name }

func (g requestGuardFunc) FromRequest(ctx context.Context, req *Request) Outcome[any] {
	return g.fn(ctx, req)
}

// DataGuardFunc adapts a function into a DataGuard.
func DataGuardFunc(name string, fn func(ctx context.Context, req *Request, data *Data) Outcome[any]) DataGuard {
	return dataGuardFunc{name: name, fn: fn}
}

type dataGuardFunc struct {
	name string
	fn   func(context.Context, *Request, *Data) Outcome[any]
}

func (g dataGuardFunc) Name() string { return g.name }

func (g dataGuardFunc) FromData(ctx context.Context, req *Request, data *Data) Outcome[any] {
	return g.fn(ctx, req, data)
}

// ParamGuardFunc adapts a function into a ParamGuard.
func ParamGuardFunc(name string, fn func(ctx context.Context, raw string, found bool) Outcome[any]) ParamGuard {
	return paramGuardFunc{name: name, fn: fn}
}

type paramGuardFunc struct {
	name string
	fn   func(context.Context, string, bool) Outcome[any]
}

func (g paramGuardFunc) Name() string { return g.name }

func (g paramGuardFunc) FromParam(ctx context.Context, raw string, found bool) Outcome[any] {
	return g.fn(ctx, raw, found)
}

// Built-in parameter guards. Each forwards on a missing or unparseable
// value rather than failing, so a less specific sibling route can still
// claim the request.
var (
	// Str percent-decodes the raw segment value.
	Str ParamGuard = ParamGuardFunc("str", func(_ context.Context, raw string, found bool) Outcome[any] {
		if !found {
			return Forward[any](nil)
		}
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return Forward[any](nil)
		}
		return Success[any](decoded)
	})

	// Int parses the segment value as an int.
	Int ParamGuard = ParamGuardFunc("int", func(_ context.Context, raw string, found bool) Outcome[any] {
		if !found {
			return Forward[any](nil)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Forward[any](nil)
		}
		return Success[any](n)
	})

	// Bool parses the segment value as a bool.
	Bool ParamGuard = ParamGuardFunc("bool", func(_ context.Context, raw string, found bool) Outcome[any] {
		if !found {
			return Forward[any](nil)
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Forward[any](nil)
		}
		return Success[any](b)
	})
)

// Handler produces the response for a fully matched and guarded route.
// Its outcome is threaded through the same tri-state as guards: a handler
// may itself forward, sending the dispatch loop on to the next candidate.
type Handler interface {
	Handle(ctx context.Context, req *Request, data *Data) Outcome[*Response]
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc func(ctx context.Context, req *Request, data *Data) Outcome[*Response]

// Handle calls fn.
func (fn HandlerFunc) Handle(ctx context.Context, req *Request, data *Data) Outcome[*Response] {
	return fn(ctx, req, data)
}

// Responder converts an arbitrary handler result into a response outcome.
// It is the bridge for handlers that naturally produce a value-or-error
// rather than a Response.
type Responder interface {
	Respond(req *Request) Outcome[*Response]
}

// Respond adapts a Responder-producing function into a Handler.
func Respond(fn func(ctx context.Context, req *Request, data *Data) Responder) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request, data *Data) Outcome[*Response] {
		r := fn(ctx, req, data)
		if r == nil {
			return Failure[*Response](http.StatusInternalServerError, ErrNilHandler)
		}
		return r.Respond(req)
	})
}
