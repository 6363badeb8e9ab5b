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

import "errors"

var (
	// ErrRouteCollision indicates two routes with the same method and
	// effective rank whose patterns are satisfiable by a common request.
	ErrRouteCollision = errors.New("route collision")

	// ErrCatcherCollision indicates two catchers registered for the same
	// base and status (or two defaults at the same base).
	ErrCatcherCollision = errors.New("catcher collision")

	// ErrPatternInvalid indicates a route or catcher pattern that failed
	// to parse at registration time.
	ErrPatternInvalid = errors.New("invalid pattern")

	// ErrFormatNotConcrete indicates a route declared with a wildcard
	// format. Declared formats must be concrete; wildcards are only valid
	// in client-supplied headers.
	ErrFormatNotConcrete = errors.New("route format must be concrete")

	// ErrNilHandler indicates a route or catcher registered without a
	// handler.
	ErrNilHandler = errors.New("handler is nil")

	// ErrIgnited indicates mutation of an engine after Ignite.
	ErrIgnited = errors.New("engine already ignited")

	// ErrNotIgnited indicates dispatch on an engine before Ignite.
	ErrNotIgnited = errors.New("engine not ignited")

	// ErrDuplicateSingleton indicates a second attachment of a fairing
	// type declared Singleton.
	ErrDuplicateSingleton = errors.New("duplicate singleton fairing")

	// ErrFairingKindUnhandled indicates a fairing whose declared kinds
	// include a phase its type does not implement.
	ErrFairingKindUnhandled = errors.New("fairing kind not implemented by type")

	// ErrStateDuplicate indicates managed state of a type that is already
	// managed.
	ErrStateDuplicate = errors.New("state type already managed")

	// ErrDataConsumed indicates a second attempt to open a request body.
	ErrDataConsumed = errors.New("request data already consumed")

	// ErrHandlerPanicked wraps the value recovered from a panicking
	// guard, handler, or catcher.
	ErrHandlerPanicked = errors.New("handler panicked")

	// ErrNoMatchingRoute is the cause recorded when no route matched the
	// request at all.
	ErrNoMatchingRoute = errors.New("no matching route")

	// ErrMethodNotAllowed is the cause recorded when the path matched
	// only under a different method.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
