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
)

// State is the process-wide, type-keyed singleton store shared by every
// guard and handler. Values are added during the build phase and frozen
// at Ignite; from then on the store is read-only and safe to share across
// concurrently dispatching requests without locking. Synchronization of
// anything mutable inside a stored value is that value's own concern.
type State struct {
	entries map[reflect.Type]any
}

// newState returns an empty store.
func newState() *State {
	return &State{entries: make(map[reflect.Type]any)}
}

// Manage stores value in the engine's managed state, keyed by its static
// type. At most one value per type may be managed, and only before
// Ignite.
//
// Example:
//
//	dispatch.Manage(engine, &UserDB{...})
//	// later, inside a guard or handler:
//	db, ok := dispatch.StateOf[*UserDB](req)
func Manage[T any](e *Engine, value T) error {
	if e.ignited.Load() {
		return fmt.Errorf("%w: cannot manage state", ErrIgnited)
	}
	key := reflect.TypeOf((*T)(nil)).Elem()
	if _, exists := e.state.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrStateDuplicate, key)
	}
	e.state.entries[key] = value
	return nil
}

// StateOf retrieves the managed value of type T visible to the request.
func StateOf[T any](r *Request) (T, bool) {
	var zero T
	if r.state == nil {
		return zero, false
	}
	key := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := r.state.entries[key]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
