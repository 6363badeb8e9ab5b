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
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"rivaas.dev/dispatch/media"
	"rivaas.dev/dispatch/uri"
)

// Route is one registered endpoint: a method, a path/query pattern, an
// optional format and rank, the guards its handler depends on, and the
// handler itself. Routes are built at mount time and immutable for the
// life of the engine; there is no hot reload of the route table.
type Route struct {
	method  string
	pattern string
	name    string
	base    string

	pathSegs  []uri.Segment
	querySegs []uri.Segment

	format       media.Type
	hasFormat    bool
	rank         int
	explicitRank bool

	guards      []RequestGuard
	paramGuards []paramBinding
	dataGuard   DataGuard
	handler     Handler

	// index is the declaration/mount order, the stable second dimension
	// of iteration within a rank bucket.
	index int
}

// paramBinding ties a ParamGuard to the declared segment it reads.
type paramBinding struct {
	segment string
	guard   ParamGuard
}

// RouteOption configures a route under construction.
type RouteOption func(*Route)

// WithRank sets an explicit rank, overriding the auto-computed one.
// Lower ranks are tried earlier.
func WithRank(rank int) RouteOption {
	return func(r *Route) {
		r.rank = rank
		r.explicitRank = true
	}
}

// WithFormat declares the route's media type. For payload-bearing
// methods it is matched against the request's Content-Type; otherwise
// against Accept. Declared formats must be concrete.
func WithFormat(t media.Type) RouteOption {
	return func(r *Route) {
		r.format = t
		r.hasFormat = true
	}
}

// WithName names the route for introspection and logs. Unnamed routes
// default to their handler's function name.
func WithName(name string) RouteOption {
	return func(r *Route) {
		r.name = name
	}
}

// WithGuards appends request guards, evaluated in the given order before
// any parameter or data guard.
func WithGuards(guards ...RequestGuard) RouteOption {
	return func(r *Route) {
		r.guards = append(r.guards, guards...)
	}
}

// WithParam attaches a typed guard to a declared dynamic segment. Param
// guards run after request guards, in attachment order.
func WithParam(segment string, guard ParamGuard) RouteOption {
	return func(r *Route) {
		r.paramGuards = append(r.paramGuards, paramBinding{segment: segment, guard: guard})
	}
}

// WithData declares the route's single data guard, which consumes the
// request body after every other guard has succeeded.
func WithData(guard DataGuard) RouteOption {
	return func(r *Route) {
		r.dataGuard = guard
	}
}

// NewRoute builds a route from a method, a pattern such as
// "/users/<id>?<limit>", and a handler. The pattern's path and query
// halves are parsed into segments immediately; a malformed pattern
// surfaces when the route is mounted, never at request time.
//
// Example:
//
//	dispatch.NewRoute(http.MethodGet, "/users/<id>", handler,
//	    dispatch.WithParam("id", dispatch.Int),
//	    dispatch.WithFormat(media.JSON),
//	)
func NewRoute(method, pattern string, handler Handler, opts ...RouteOption) *Route {
	r := &Route{
		method:  strings.ToUpper(method),
		pattern: pattern,
		handler: handler,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// finalize parses the pattern under its mount base and computes the
// effective rank. Called exactly once, by Engine.Mount.
func (r *Route) finalize(base string, index int) error {
	if r.handler == nil {
		return fmt.Errorf("%w: route %q", ErrNilHandler, r.pattern)
	}
	if r.hasFormat && !r.format.IsConcrete() {
		return fmt.Errorf("%w: route %q declares %s", ErrFormatNotConcrete, r.pattern, r.format)
	}

	r.base = normalizeBase(base)
	r.index = index

	pathText, queryText, _ := strings.Cut(r.pattern, "?")
	full := joinBase(r.base, pathText)

	pathSegs, err := uri.ParsePattern(full, uri.PartPath)
	if err != nil {
		return fmt.Errorf("%w: route %q path: %w", ErrPatternInvalid, r.pattern, err)
	}
	querySegs, err := uri.ParsePattern(queryText, uri.PartQuery)
	if err != nil {
		return fmt.Errorf("%w: route %q query: %w", ErrPatternInvalid, r.pattern, err)
	}
	r.pathSegs = pathSegs
	r.querySegs = querySegs

	if !r.explicitRank {
		r.rank = autoRank(pathSegs, querySegs, r.hasFormat)
	}
	if r.name == "" {
		r.name = handlerName(r.handler)
	}
	return nil
}

// autoRank derives the default rank from pattern shape so that more
// specific routes are tried first: every dynamic path segment adds 2, a
// trailing segment adds 4, any dynamic query segment adds 1, and a
// declared format subtracts 1. Fully static, format-declaring routes
// therefore rank lowest (earliest).
func autoRank(pathSegs, querySegs []uri.Segment, hasFormat bool) int {
	rank := 2 * uri.DynamicCount(pathSegs)
	if uri.HasTrailing(pathSegs) {
		rank += 4
	}
	if uri.DynamicCount(querySegs) > 0 {
		rank++
	}
	if hasFormat {
		rank--
	}
	return rank
}

// Rank returns the route's effective rank.
func (r *Route) Rank() int { return r.rank }

// Name returns the route's name.
func (r *Route) Name() string { return r.name }

// Method returns the route's HTTP method.
func (r *Route) Method() string { return r.method }

// Pattern returns the declared pattern text, without the mount base.
func (r *Route) Pattern() string { return r.pattern }

// normalizeBase canonicalizes a mount base: leading slash, no trailing
// slash, "/" for the root.
func normalizeBase(base string) string {
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return "/"
	}
	if base[0] != '/' {
		base = "/" + base
	}
	return base
}

// joinBase prepends the mount base to a route's path pattern.
func joinBase(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if base == "/" {
		return path
	}
	if path == "/" {
		return base
	}
	return base + path
}

// handlerName derives a human-readable name from a handler for logs and
// introspection listings.
func handlerName(h Handler) string {
	if h == nil {
		return "nil"
	}
	v := reflect.ValueOf(h)
	if v.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			name := fn.Name()
			if i := strings.LastIndexByte(name, '/'); i >= 0 {
				name = name[i+1:]
			}
			return name
		}
	}
	return reflect.TypeOf(h).String()
}

// RouteInfo is the read-only introspection record for one registered
// route, exposed so launch tooling can print diagnostics or abort
// startup.
type RouteInfo struct {
	Method   string
	Base     string
	Pattern  string
	Name     string
	Rank     int
	AutoRank bool
	Format   string
}

// info builds the introspection record.
func (r *Route) info() RouteInfo {
	format := ""
	if r.hasFormat {
		format = r.format.String()
	}
	return RouteInfo{
		Method:   r.method,
		Base:     r.base,
		Pattern:  r.pattern,
		Name:     r.name,
		Rank:     r.rank,
		AutoRank: !r.explicitRank,
		Format:   format,
	}
}
