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

// DiagnosticEvent represents an engine diagnostic or anomaly. These are
// informational: the engine behaves identically whether they are
// collected or not. They give launch tooling and observability systems
// visibility into registration and dispatch edge cases.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// Registration diagnostics
	DiagRouteRegistered   DiagnosticKind = "route_registered"
	DiagCatcherRegistered DiagnosticKind = "catcher_registered"
	DiagCollisionDetected DiagnosticKind = "collision_detected"

	// Dispatch diagnostics
	DiagPanicRecovered  DiagnosticKind = "panic_recovered"
	DiagUnmatchedRoute  DiagnosticKind = "unmatched_route"
	DiagCatcherFellBack DiagnosticKind = "catcher_fell_back"
)

// DiagnosticHandler receives diagnostic events from the engine.
// Implementations may log, emit metrics, or ignore them. If none is
// configured, events are silently dropped.
//
// Example with logging:
//
//	handler := dispatch.DiagnosticHandlerFunc(func(e dispatch.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	engine := dispatch.MustNew(dispatch.WithDiagnostics(handler))
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}
