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

import "sync"

// Local is the request-scoped, append-only cache keyed by stable string
// tags (guard names, by convention). It exists so a guard evaluated
// repeatedly during one request, once per candidate route the dispatch
// loop retries, runs its side effects at most once. Entries live until
// the request completes and are never shared between requests.
type Local struct {
	mu      sync.Mutex
	entries map[string]any
}

// newLocal returns an empty cache.
func newLocal() *Local {
	return &Local{}
}

// Get returns the cached entry for key, if present.
func (l *Local) Get(key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.entries[key]
	return v, ok
}

// Set stores an entry. Later Sets for the same key overwrite; guard
// memoization goes through GetOrCompute instead, which never recomputes.
func (l *Local) Set(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries == nil {
		l.entries = make(map[string]any, 4)
	}
	l.entries[key] = value
}

// GetOrCompute returns the cached entry for key, computing and storing it
// on first use. compute runs at most once per key per request, even when
// the dispatch loop retries the same guard against several candidate
// routes.
func (l *Local) GetOrCompute(key string, compute func() any) any {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.entries[key]; ok {
		return v
	}
	if l.entries == nil {
		l.entries = make(map[string]any, 4)
	}
	v := compute()
	l.entries[key] = v
	return v
}
