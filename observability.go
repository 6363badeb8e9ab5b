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
	"time"
)

// ObservabilityRecorder observes every dispatch. StartRequest may derive
// a new context (to carry a span); EndRequest receives the matched route
// name (empty when dispatch fell through to a catcher), the final status,
// and the elapsed time. Implementations must be safe for concurrent use.
//
// The engine works identically with or without a recorder; recording sits
// strictly outside the dispatch loop's candidate iteration.
type ObservabilityRecorder interface {
	StartRequest(ctx context.Context, req *Request) context.Context
	EndRequest(ctx context.Context, req *Request, route string, status int, elapsed time.Duration)
}

// GuardObserver is an optional extension of ObservabilityRecorder for
// recorders that also want per-guard outcomes ("success", "failure(N)",
// "forward").
type GuardObserver interface {
	RecordGuard(ctx context.Context, route, guard, outcome string)
}
