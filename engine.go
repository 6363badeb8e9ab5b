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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// noopLogger is a singleton no-op logger used when none is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Engine is the request-routing and dispatch engine. It holds the
// immutable route and catcher tables, the fairing pipeline, and the
// managed state, and turns an abstract Request into a Response.
//
// Lifecycle: build with New, register with Mount, Register, Attach, and
// Manage, then Ignite exactly once. Ignite parses nothing new (patterns
// were parsed at registration) but it runs collision analysis, sorts the
// route table, and runs ignite fairings. Registration errors are fatal:
// there is no partial-startup mode. After Ignite the engine is immutable
// and safe for concurrent dispatch without locking.
//
// Example:
//
//	engine := dispatch.MustNew()
//	engine.Mount("/api", dispatch.NewRoute(http.MethodGet, "/users/<id>", handler))
//	engine.Register("/", dispatch.NewCatcher(404, notFound))
//	if err := engine.Ignite(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	resp := engine.Dispatch(ctx, req, data)
type Engine struct {
	log           *slog.Logger
	diagnostics   DiagnosticHandler
	observability ObservabilityRecorder

	mu       sync.Mutex // guards registration before ignite
	routes   []*Route   // declaration order
	sorted   []*Route   // (rank, declaration) order, built at ignite
	catchers []*Catcher
	fairings fairingSet
	state    *State
	buildErr []error

	ignited atomic.Bool
}

// Option defines functional options for engine configuration.
type Option func(*Engine)

// WithLogger sets the engine's structured logger. Registration and build
// events are logged; the default is a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithDiagnostics sets a diagnostic event handler.
func WithDiagnostics(h DiagnosticHandler) Option {
	return func(e *Engine) {
		e.diagnostics = h
	}
}

// WithObservability sets the observability recorder invoked around every
// dispatch. Pass nil to disable.
func WithObservability(r ObservabilityRecorder) Option {
	return func(e *Engine) {
		e.observability = r
	}
}

// New creates an engine with optional configuration. The returned engine
// accepts registrations until Ignite.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:   noopLogger,
		state: newState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MustNew is New. It exists for symmetry with the rest of the API and for
// future options whose validation can fail.
func MustNew(opts ...Option) *Engine {
	return New(opts...)
}

// emit sends a diagnostic event if a handler is configured.
func (e *Engine) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if e.diagnostics != nil {
		e.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: message, Fields: fields})
	}
}

// Mount registers routes under a base path. Patterns are parsed here, so
// a malformed pattern is reported immediately; the error is also retained
// and re-surfaced by Ignite, which keeps "mount everything, then ignite"
// call sites honest without checking every Mount.
func (e *Engine) Mount(base string, routes ...*Route) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ignited.Load() {
		return fmt.Errorf("%w: cannot mount", ErrIgnited)
	}

	var errs []error
	for _, rt := range routes {
		if err := rt.finalize(base, len(e.routes)); err != nil {
			errs = append(errs, err)
			e.buildErr = append(e.buildErr, err)
			continue
		}
		e.routes = append(e.routes, rt)
		e.log.Debug("route registered",
			"method", rt.method, "base", rt.base, "pattern", rt.pattern,
			"name", rt.name, "rank", rt.rank)
		e.emit(DiagRouteRegistered, "route registered", map[string]any{
			"method": rt.method, "pattern": rt.pattern, "rank": rt.rank,
		})
	}
	return errors.Join(errs...)
}

// Register registers catchers under a base path.
func (e *Engine) Register(base string, catchers ...*Catcher) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ignited.Load() {
		return fmt.Errorf("%w: cannot register catchers", ErrIgnited)
	}

	var errs []error
	for _, c := range catchers {
		if err := c.finalize(base, len(e.catchers)); err != nil {
			errs = append(errs, err)
			e.buildErr = append(e.buildErr, err)
			continue
		}
		e.catchers = append(e.catchers, c)
		e.log.Debug("catcher registered", "base", c.base, "status", c.status, "name", c.name)
		e.emit(DiagCatcherRegistered, "catcher registered", map[string]any{
			"base": c.base, "status": c.status,
		})
	}
	return errors.Join(errs...)
}

// Attach adds a fairing to the pipeline. Attachment order is execution
// order in every phase.
func (e *Engine) Attach(f Fairing) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ignited.Load() {
		return fmt.Errorf("%w: cannot attach fairing", ErrIgnited)
	}
	if err := e.fairings.attach(f); err != nil {
		e.buildErr = append(e.buildErr, err)
		return err
	}
	e.log.Debug("fairing attached", "name", f.Info().Name, "kind", f.Info().Kind.String())
	return nil
}

// Ignite finalizes the engine: it re-surfaces any registration error,
// runs collision analysis over routes and catchers, orders the route
// table, and runs ignite fairings. Any failure aborts startup; a
// successfully ignited engine is immutable.
//
// Ignite fairings run after the engine is marked ignited and outside the
// registration lock, so a fairing that tries to mutate the engine gets
// ErrIgnited rather than deadlocking.
func (e *Engine) Ignite(ctx context.Context) error {
	if err := e.seal(); err != nil {
		return err
	}

	if err := e.fairings.onIgnite(ctx, e); err != nil {
		e.ignited.Store(false)
		return err
	}

	e.log.Info("engine ignited", "routes", len(e.routes), "catchers", len(e.catchers))
	return nil
}

// seal validates registrations, orders the route table, and marks the
// engine ignited, all under the registration lock.
func (e *Engine) seal() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ignited.Load() {
		return ErrIgnited
	}

	if len(e.buildErr) > 0 {
		return fmt.Errorf("registration failed: %w", errors.Join(e.buildErr...))
	}

	collisions := append(analyzeRoutes(e.routes), analyzeCatchers(e.catchers)...)
	if len(collisions) > 0 {
		errs := make([]error, 0, len(collisions))
		for _, c := range collisions {
			e.log.Error("collision detected", "first", c.First, "second", c.Second, "reason", c.Reason)
			e.emit(DiagCollisionDetected, c.String(), map[string]any{"kind": c.Kind})
			kindErr := ErrRouteCollision
			if c.Kind == "catcher" {
				kindErr = ErrCatcherCollision
			}
			errs = append(errs, fmt.Errorf("%w: %s", kindErr, c))
		}
		return errors.Join(errs...)
	}

	e.sorted = make([]*Route, len(e.routes))
	copy(e.sorted, e.routes)
	sort.SliceStable(e.sorted, func(i, j int) bool {
		if e.sorted[i].rank != e.sorted[j].rank {
			return e.sorted[i].rank < e.sorted[j].rank
		}
		return e.sorted[i].index < e.sorted[j].index
	})

	e.ignited.Store(true)
	return nil
}

// Liftoff runs liftoff fairings. Call it once, after Ignite, when the
// surrounding transport starts accepting requests.
func (e *Engine) Liftoff(ctx context.Context) {
	e.fairings.onLiftoff(ctx, e)
}

// Shutdown runs shutdown fairings.
func (e *Engine) Shutdown(ctx context.Context) {
	e.fairings.onShutdown(ctx)
}

// Routes returns the introspection records for every registered route,
// with computed ranks, in declaration order. Launch tooling uses this to
// print diagnostics.
func (e *Engine) Routes() []RouteInfo {
	infos := make([]RouteInfo, len(e.routes))
	for i, rt := range e.routes {
		infos[i] = rt.info()
	}
	return infos
}

// Catchers returns the introspection records for every registered
// catcher, in declaration order.
func (e *Engine) Catchers() []CatcherInfo {
	infos := make([]CatcherInfo, len(e.catchers))
	for i, c := range e.catchers {
		infos[i] = c.info()
	}
	return infos
}

// Collisions runs collision analysis on demand and returns the result
// without failing. It lets launch tooling report would-be collisions
// before Ignite aborts on them.
func (e *Engine) Collisions() []Collision {
	return append(analyzeRoutes(e.routes), analyzeCatchers(e.catchers)...)
}
