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
	"fmt"
	"net/http"
	"sort"
	"time"

	"rivaas.dev/dispatch/media"
	"rivaas.dev/dispatch/uri"
)

// Dispatch routes one request to a handler and returns its response, or
// the catcher-produced response on terminal failure. It panics if called
// before Ignite: dispatching against an unvalidated route table is a
// build-tier programming error, not a request-tier condition.
//
// A nil return means the request's context was cancelled mid-dispatch
// (the transport dropped the connection): the remaining pipeline,
// including response fairings and catchers, is abandoned.
//
// Dispatch is safe for concurrent use; distinct requests share only the
// immutable route table and managed state.
func (e *Engine) Dispatch(ctx context.Context, req *Request, data *Data) *Response {
	if !e.ignited.Load() {
		panic(ErrNotIgnited)
	}
	if data == nil {
		data = NewData(nil)
	}
	req.state = e.state
	if req.local == nil {
		req.local = newLocal()
	}

	start := time.Now()
	if e.observability != nil {
		ctx = e.observability.StartRequest(ctx, req)
	}

	e.fairings.onRequest(ctx, req, data)
	if ctx.Err() != nil {
		return nil
	}

	result := e.route(ctx, req, data)
	if result.cancelled || ctx.Err() != nil {
		return nil
	}

	resp := result.response
	if resp == nil {
		switch result.status {
		case http.StatusNotFound:
			e.emit(DiagUnmatchedRoute, ErrNoMatchingRoute.Error(), map[string]any{
				"method": req.Method, "path": req.Path,
			})
		case http.StatusMethodNotAllowed:
			e.emit(DiagUnmatchedRoute, ErrMethodNotAllowed.Error(), map[string]any{
				"method": req.Method, "path": req.Path,
			})
		}
		resp = e.catch(ctx, result.status, req)
	}

	// HEAD responses carry headers only, even when served by a GET route.
	if req.Method == http.MethodHead {
		resp.Body = nil
	}

	// Unread body bytes must never be left for the next request on a
	// reused connection.
	_ = data.Drain()

	e.fairings.onResponse(ctx, req, resp)

	if e.observability != nil {
		e.observability.EndRequest(ctx, req, result.routeName, resp.Status, time.Since(start))
	}
	return resp
}

// routeResult is the terminal state of the candidate iteration.
type routeResult struct {
	response  *Response // non-nil on Dispatched
	status    int       // terminal failure status when response is nil
	routeName string    // matched route, for observability
	cancelled bool
}

// candidate is one route eligible for the current request at the rank
// bucket under iteration.
type candidate struct {
	route       *Route
	params      uri.Bindings
	weight      float64
	exactMethod bool
}

// route drives the dispatch state machine: rank buckets in ascending
// order, candidates within a bucket ordered by client format preference
// and then declaration order, short-circuiting on the first Success.
// Failure is recorded and iteration continues; Forward moves strictly
// forward through the candidate list. The loop never backtracks.
func (e *Engine) route(ctx context.Context, req *Request, data *Data) routeResult {
	components := uri.SplitPath(req.Path)

	lastFailure := 0
	otherMethod := false

	for i := 0; i < len(e.sorted); {
		rank := e.sorted[i].rank
		j := i
		var cands []candidate

		for ; j < len(e.sorted) && e.sorted[j].rank == rank; j++ {
			rt := e.sorted[j]

			pathBound, ok := uri.MatchPath(rt.pathSegs, components)
			if !ok {
				continue
			}
			queryBound, ok := uri.MatchQuery(rt.querySegs, req.Query)
			if !ok {
				continue
			}

			exact := rt.method == req.Method
			fallback := req.Method == http.MethodHead && rt.method == http.MethodGet
			if !exact && !fallback {
				otherMethod = true
				continue
			}
			if !e.formatMatches(rt, req) {
				continue
			}

			cands = append(cands, candidate{
				route:       rt,
				params:      mergeBindings(pathBound, queryBound),
				weight:      formatWeight(rt, req),
				exactMethod: exact,
			})
		}

		// Same-rank ordering: descending client preference for the
		// route's format, exact-method matches before HEAD->GET
		// fallbacks, then declaration order (via stable sort).
		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].weight != cands[b].weight {
				return cands[a].weight > cands[b].weight
			}
			return cands[a].exactMethod && !cands[b].exactMethod
		})

		for _, c := range cands {
			if ctx.Err() != nil {
				return routeResult{cancelled: true}
			}

			req.setCandidate(c.params)
			out := e.tryCandidate(ctx, c.route, req, data)
			switch {
			case out.IsSuccess():
				return routeResult{response: out.Value(), routeName: c.route.name}
			case out.IsFailure():
				lastFailure = out.Status()
			default:
				// Declined. If the guard carried leftover body bytes,
				// the next candidate picks up from where it stopped.
				if fd := out.ForwardedData(); fd != nil {
					data = fd.reopen()
				}
			}
		}
		i = j
	}

	// Exhausted. Guard failures outrank pure non-matches; a path that
	// matched only under another method is 405; otherwise 404.
	switch {
	case lastFailure != 0:
		return routeResult{status: lastFailure}
	case otherMethod:
		return routeResult{status: http.StatusMethodNotAllowed}
	default:
		return routeResult{status: http.StatusNotFound}
	}
}

// payloadMethod reports whether the method carries a request body for
// content negotiation purposes.
func payloadMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// formatMatches applies the negotiation rule for one route. Payload
// methods compare the route's declared format against Content-Type;
// request-side wildcards are honored, and a request that sent no
// Content-Type is treated as unconstrained. Other methods require the
// Accept header to weigh the declared format above zero. A route with no
// declared format matches everything.
func (e *Engine) formatMatches(rt *Route, req *Request) bool {
	if !rt.hasFormat {
		return true
	}
	if payloadMethod(req.Method) {
		ct, ok := req.ContentType()
		if !ok {
			return true
		}
		return ct.Accepts(rt.format)
	}
	return media.Preference(req.Accept(), rt.format) > 0
}

// formatWeight is the same-rank ordering key: the client's preference for
// the route's declared format. Formatless routes weigh zero, so a
// declared, acceptable format always sorts first within its rank.
func formatWeight(rt *Route, req *Request) float64 {
	if !rt.hasFormat || payloadMethod(req.Method) {
		return 0
	}
	return media.Preference(req.Accept(), rt.format)
}

// mergeBindings combines path and query bindings into one map. Path
// names win on conflict; patterns that reuse a name across parts are
// registration-time smells but must not corrupt the match.
func mergeBindings(path, query uri.Bindings) uri.Bindings {
	if len(query) == 0 {
		return path
	}
	if len(path) == 0 {
		return query
	}
	merged := make(uri.Bindings, len(path)+len(query))
	for k, v := range query {
		merged[k] = v
	}
	for k, v := range path {
		merged[k] = v
	}
	return merged
}

// tryCandidate evaluates one candidate route: request guards, then param
// guards, then the data guard, strictly in declaration order, then the
// handler. A panic anywhere inside converts to a 500-class Failure at
// this boundary so one request can never take down its siblings.
func (e *Engine) tryCandidate(ctx context.Context, rt *Route, req *Request, data *Data) (out Outcome[*Response]) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: %v", ErrHandlerPanicked, rec)
			e.log.Error("panic during dispatch", "route", rt.name, "panic", rec)
			e.emit(DiagPanicRecovered, "panic during dispatch", map[string]any{
				"route": rt.name, "panic": fmt.Sprint(rec),
			})
			out = Failure[*Response](http.StatusInternalServerError, err)
		}
	}()

	for _, g := range rt.guards {
		o := e.evalRequestGuard(ctx, g, req)
		e.observeGuard(ctx, rt.name, g.Name(), o)
		switch {
		case o.IsForward():
			return Forward[*Response](data)
		case o.IsFailure():
			return Failure[*Response](o.Status(), o.Err())
		}
		req.setGuardValue(g.Name(), o.Value())
	}

	for _, pb := range rt.paramGuards {
		raw, found := req.Param(pb.segment)
		o := pb.guard.FromParam(ctx, raw, found)
		e.observeGuard(ctx, rt.name, pb.guard.Name(), o)
		switch {
		case o.IsForward():
			return Forward[*Response](data)
		case o.IsFailure():
			return Failure[*Response](o.Status(), o.Err())
		}
		req.setGuardValue(pb.segment, o.Value())
	}

	if rt.dataGuard != nil {
		o := rt.dataGuard.FromData(ctx, req, data)
		e.observeGuard(ctx, rt.name, rt.dataGuard.Name(), o)
		switch {
		case o.IsForward():
			if fd := o.ForwardedData(); fd != nil {
				return Forward[*Response](fd)
			}
			return Forward[*Response](data)
		case o.IsFailure():
			// The guard may have read part of the body before rejecting;
			// discard the rest so a reused connection stays clean.
			_ = data.Drain()
			return Failure[*Response](o.Status(), o.Err())
		}
		req.setGuardValue(rt.dataGuard.Name(), o.Value())
	}

	return rt.handler.Handle(ctx, req, data)
}

// evalRequestGuard runs a request guard through the request-local cache:
// a guard name is computed at most once per request, no matter how many
// candidate routes declare it. The cached tri-state outcome is replayed
// for every later candidate, side effects and all already committed.
func (e *Engine) evalRequestGuard(ctx context.Context, g RequestGuard, req *Request) Outcome[any] {
	v := req.local.GetOrCompute("guard:"+g.Name(), func() any {
		return g.FromRequest(ctx, req)
	})
	o, ok := v.(Outcome[any])
	if !ok {
		return Failure[any](http.StatusInternalServerError,
			fmt.Errorf("guard %q: cache entry has unexpected type %T", g.Name(), v))
	}
	return o
}

// observeGuard forwards guard outcomes to the recorder when it cares.
func (e *Engine) observeGuard(ctx context.Context, route, guard string, o Outcome[any]) {
	if g, ok := e.observability.(GuardObserver); ok && g != nil {
		g.RecordGuard(ctx, route, guard, o.String())
	}
}

// catch runs the catcher stage for a terminal status: eligible catchers
// in specificity order, falling back to the built-in default when every
// registered one declines or fails. Catcher panics convert to a fallback,
// never a crash.
func (e *Engine) catch(ctx context.Context, status int, req *Request) *Response {
	for _, c := range selectCatchers(e.catchers, status, req.Path) {
		out := e.tryCatcher(ctx, c, status, req)
		if out.IsSuccess() {
			return out.Value()
		}
		e.emit(DiagCatcherFellBack, "catcher did not produce a response", map[string]any{
			"catcher": c.name, "base": c.base, "status": status,
		})
	}
	return defaultCatch(status, req)
}

// tryCatcher invokes one catcher inside the same panic boundary handlers
// get.
func (e *Engine) tryCatcher(ctx context.Context, c *Catcher, status int, req *Request) (out Outcome[*Response]) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("panic inside catcher", "catcher", c.name, "panic", rec)
			e.emit(DiagPanicRecovered, "panic inside catcher", map[string]any{
				"catcher": c.name, "panic": fmt.Sprint(rec),
			})
			out = Failure[*Response](http.StatusInternalServerError, fmt.Errorf("%w: %v", ErrHandlerPanicked, rec))
		}
	}()
	return c.handler.Catch(ctx, status, req)
}
