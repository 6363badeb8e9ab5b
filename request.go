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
	"net/http"
	"strings"

	"rivaas.dev/dispatch/media"
	"rivaas.dev/dispatch/uri"
)

// Request is the engine's abstract view of an incoming request: method,
// normalized path, ordered query pairs, and the negotiation headers. The
// transport layer that produced it is irrelevant to dispatch.
//
// Method and Path are exported so Request-kind fairings can rewrite them
// before matching. Path components and query values stay percent-encoded;
// decoding is a guard's job.
type Request struct {
	Method string
	Path   string
	Query  []uri.Pair
	Header http.Header

	state *State
	local *Local

	// Per-candidate match results, overwritten as the dispatch loop moves
	// between routes.
	params      uri.Bindings
	guardValues map[string]any

	// Lazily parsed negotiation headers.
	contentType       media.Type
	contentTypeParsed bool
	contentTypeOK     bool
}

// RequestOption configures a Request under construction.
type RequestOption func(*Request)

// WithHeader adds one header value.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Header.Add(key, value)
	}
}

// WithHeaders merges a header map.
func WithHeaders(h http.Header) RequestOption {
	return func(r *Request) {
		for key, values := range h {
			for _, v := range values {
				r.Header.Add(key, v)
			}
		}
	}
}

// NewRequest builds a Request from a method and a request target such as
// "/users/5?limit=10". The query string is split into ordered key/value
// pairs, preserving duplicates exactly as sent.
func NewRequest(method, target string, opts ...RequestOption) *Request {
	path, rawQuery, _ := strings.Cut(target, "?")
	r := &Request{
		Method: method,
		Path:   path,
		Query:  splitQuery(rawQuery),
		Header: make(http.Header),
		local:  newLocal(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// splitQuery splits a raw query string into ordered pairs. A member with
// no "=" becomes a pair with an empty value.
func splitQuery(raw string) []uri.Pair {
	if raw == "" {
		return nil
	}
	members := strings.Split(raw, "&")
	pairs := make([]uri.Pair, 0, len(members))
	for _, m := range members {
		if m == "" {
			continue
		}
		key, value, _ := strings.Cut(m, "=")
		pairs = append(pairs, uri.Pair{Key: key, Value: value})
	}
	return pairs
}

// ContentType returns the parsed Content-Type header. The parse result is
// cached for the request's lifetime.
func (r *Request) ContentType() (media.Type, bool) {
	if !r.contentTypeParsed {
		r.contentTypeParsed = true
		if raw := r.Header.Get("Content-Type"); raw != "" {
			if t, err := media.Parse(raw); err == nil {
				r.contentType = t
				r.contentTypeOK = true
			}
		}
	}
	return r.contentType, r.contentTypeOK
}

// Accept returns the raw Accept header value.
func (r *Request) Accept() string {
	return r.Header.Get("Accept")
}

// Param returns the raw bound value of a dynamic path or query segment
// for the route currently being evaluated.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.params[name]
	return v.Raw, ok
}

// ParamParts returns the individual components bound by a trailing
// segment, in original order.
func (r *Request) ParamParts(name string) ([]string, bool) {
	v, ok := r.params[name]
	if !ok || !v.Trailing {
		return nil, false
	}
	return v.Parts, true
}

// GuardValue returns the Success value a named guard produced for the
// route currently being evaluated.
func (r *Request) GuardValue(name string) (any, bool) {
	v, ok := r.guardValues[name]
	return v, ok
}

// Guarded returns a guard's Success value typed as T. It is the typed
// companion of Request.GuardValue.
func Guarded[T any](r *Request, name string) (T, bool) {
	var zero T
	v, ok := r.guardValues[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Local returns the request-scoped cache. Entries persist for the
// request's lifetime, across every candidate route the dispatch loop
// tries.
func (r *Request) Local() *Local {
	return r.local
}

// setCandidate installs one candidate route's bindings before its guards
// run. guardValues starts fresh per candidate: bound values belong to the
// route that bound them, unlike Local entries which persist.
func (r *Request) setCandidate(params uri.Bindings) {
	r.params = params
	r.guardValues = nil
}

// setGuardValue records a guard's Success value for handler access.
func (r *Request) setGuardValue(name string, value any) {
	if r.guardValues == nil {
		r.guardValues = make(map[string]any, 4)
	}
	r.guardValues[name] = value
}
