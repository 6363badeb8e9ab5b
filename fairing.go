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
	"reflect"
	"strings"
)

// Kind is the bitset of lifecycle phases a fairing participates in.
type Kind uint8

const (
	// KindIgnite fairings run once, during Ignite, and may abort startup.
	KindIgnite Kind = 1 << iota

	// KindRequest fairings run before route matching on every dispatch
	// and may mutate the request, including its method and path.
	KindRequest

	// KindResponse fairings run after a response is produced, whether by
	// a handler or a catcher, and may mutate headers and body.
	KindResponse

	// KindLiftoff fairings run once when the engine lifts off, outside
	// any request scope.
	KindLiftoff

	// KindShutdown fairings run once at shutdown.
	KindShutdown

	// KindSingleton marks a fairing type of which at most one instance
	// may be attached; a duplicate is a build-time error.
	KindSingleton
)

// Has reports whether k includes every bit of other.
func (k Kind) Has(other Kind) bool {
	return k&other == other
}

// String renders the kind set for logs.
func (k Kind) String() string {
	var parts []string
	for _, p := range []struct {
		bit  Kind
		name string
	}{
		{KindIgnite, "ignite"},
		{KindRequest, "request"},
		{KindResponse, "response"},
		{KindLiftoff, "liftoff"},
		{KindShutdown, "shutdown"},
		{KindSingleton, "singleton"},
	} {
		if k.Has(p.bit) {
			parts = append(parts, p.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// FairingInfo identifies a fairing and declares its phases.
type FairingInfo struct {
	Name string
	Kind Kind
}

// Fairing is a lifecycle interceptor attached to the engine. Every
// fairing implements Info; each declared Kind bit requires the matching
// phase interface below. Fairings operate strictly outside the dispatch
// loop's candidate iteration: they never observe guard-level Forwards.
type Fairing interface {
	Info() FairingInfo
}

// IgniteFairing runs at build time and may veto startup.
type IgniteFairing interface {
	Fairing
	OnIgnite(ctx context.Context, e *Engine) error
}

// RequestFairing runs before route matching on every dispatch.
type RequestFairing interface {
	Fairing
	OnRequest(ctx context.Context, req *Request, data *Data)
}

// ResponseFairing runs after every dispatch, including catcher responses.
type ResponseFairing interface {
	Fairing
	OnResponse(ctx context.Context, req *Request, resp *Response)
}

// LiftoffFairing runs once when the engine lifts off.
type LiftoffFairing interface {
	Fairing
	OnLiftoff(ctx context.Context, e *Engine)
}

// ShutdownFairing runs once at shutdown.
type ShutdownFairing interface {
	Fairing
	OnShutdown(ctx context.Context)
}

// validateFairing checks that the fairing's type implements every phase
// its declared kinds name.
func validateFairing(f Fairing) error {
	info := f.Info()
	checks := []struct {
		bit Kind
		ok  bool
	}{
		{KindIgnite, implementsIgnite(f)},
		{KindRequest, implementsRequest(f)},
		{KindResponse, implementsResponse(f)},
		{KindLiftoff, implementsLiftoff(f)},
		{KindShutdown, implementsShutdown(f)},
	}
	for _, c := range checks {
		if info.Kind.Has(c.bit) && !c.ok {
			return fmt.Errorf("%w: fairing %q declares %s", ErrFairingKindUnhandled, info.Name, c.bit)
		}
	}
	return nil
}

func implementsIgnite(f Fairing) bool   { _, ok := f.(IgniteFairing); return ok }
func implementsRequest(f Fairing) bool  { _, ok := f.(RequestFairing); return ok }
func implementsResponse(f Fairing) bool { _, ok := f.(ResponseFairing); return ok }
func implementsLiftoff(f Fairing) bool  { _, ok := f.(LiftoffFairing); return ok }
func implementsShutdown(f Fairing) bool { _, ok := f.(ShutdownFairing); return ok }

// fairingSet holds attached fairings in attachment order, which is also
// their execution order in every phase.
type fairingSet struct {
	all        []Fairing
	singletons map[reflect.Type]bool
}

// attach validates and appends a fairing, enforcing the singleton rule.
func (s *fairingSet) attach(f Fairing) error {
	if err := validateFairing(f); err != nil {
		return err
	}
	if f.Info().Kind.Has(KindSingleton) {
		t := reflect.TypeOf(f)
		if s.singletons == nil {
			s.singletons = make(map[reflect.Type]bool)
		}
		if s.singletons[t] {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateSingleton, f.Info().Name, t)
		}
		s.singletons[t] = true
	}
	s.all = append(s.all, f)
	return nil
}

// onIgnite runs every ignite fairing in attachment order, stopping at the
// first error.
func (s *fairingSet) onIgnite(ctx context.Context, e *Engine) error {
	for _, f := range s.all {
		if !f.Info().Kind.Has(KindIgnite) {
			continue
		}
		if err := f.(IgniteFairing).OnIgnite(ctx, e); err != nil {
			return fmt.Errorf("ignite fairing %q: %w", f.Info().Name, err)
		}
	}
	return nil
}

// onRequest runs every request fairing in attachment order.
func (s *fairingSet) onRequest(ctx context.Context, req *Request, data *Data) {
	for _, f := range s.all {
		if f.Info().Kind.Has(KindRequest) {
			f.(RequestFairing).OnRequest(ctx, req, data)
		}
	}
}

// onResponse runs every response fairing in attachment order.
func (s *fairingSet) onResponse(ctx context.Context, req *Request, resp *Response) {
	for _, f := range s.all {
		if f.Info().Kind.Has(KindResponse) {
			f.(ResponseFairing).OnResponse(ctx, req, resp)
		}
	}
}

// onLiftoff runs every liftoff fairing in attachment order.
func (s *fairingSet) onLiftoff(ctx context.Context, e *Engine) {
	for _, f := range s.all {
		if f.Info().Kind.Has(KindLiftoff) {
			f.(LiftoffFairing).OnLiftoff(ctx, e)
		}
	}
}

// onShutdown runs every shutdown fairing in attachment order.
func (s *fairingSet) onShutdown(ctx context.Context) {
	for _, f := range s.all {
		if f.Info().Kind.Has(KindShutdown) {
			f.(ShutdownFairing).OnShutdown(ctx)
		}
	}
}
