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

	"rivaas.dev/dispatch/uri"
)

// Collision describes one pair of registered routes or catchers whose
// match-spaces overlap at equal priority. Collisions are build-time
// errors; they are surfaced by Ignite and through Collisions for launch
// diagnostics.
type Collision struct {
	Kind   string // "route" or "catcher"
	First  string
	Second string
	Reason string
}

// String renders the collision for diagnostics.
func (c Collision) String() string {
	return fmt.Sprintf("%s collision: %s / %s (%s)", c.Kind, c.First, c.Second, c.Reason)
}

// collide reports whether two routes could both match some concrete
// request with equal priority. That requires the same method, the same
// effective rank, jointly satisfiable path and query patterns, and
// non-disjoint formats. Two routes declaring different concrete formats
// can never match one request and are exempt.
func collide(a, b *Route) bool {
	if a.method != b.method || a.rank != b.rank {
		return false
	}
	if a.hasFormat && b.hasFormat && !a.format.Equal(b.format) {
		return false
	}
	return uri.PathsCompatible(a.pathSegs, b.pathSegs) &&
		uri.QueriesCompatible(a.querySegs, b.querySegs)
}

// analyzeRoutes runs the pairwise collision check over every registered
// route. It runs once, at Ignite, never per request. O(n²) over routes
// sharing a method, which is the registration-time cost of guaranteeing
// that rank ties can never be ambiguous at request time.
func analyzeRoutes(routes []*Route) []Collision {
	var collisions []Collision
	for i := range routes {
		for j := i + 1; j < len(routes); j++ {
			if collide(routes[i], routes[j]) {
				collisions = append(collisions, Collision{
					Kind:   "route",
					First:  describeRoute(routes[i]),
					Second: describeRoute(routes[j]),
					Reason: fmt.Sprintf("same method, same rank %d, overlapping patterns", routes[i].rank),
				})
			}
		}
	}
	return collisions
}

// analyzeCatchers runs the analogous check over catchers, keyed on
// (base, status) instead of (method, segments, rank): at most one catcher
// per concrete status per base, and at most one default per base.
func analyzeCatchers(catchers []*Catcher) []Collision {
	var collisions []Collision
	for i := range catchers {
		for j := i + 1; j < len(catchers); j++ {
			a, b := catchers[i], catchers[j]
			if a.base != b.base || a.status != b.status {
				continue
			}
			collisions = append(collisions, Collision{
				Kind:   "catcher",
				First:  describeCatcher(a),
				Second: describeCatcher(b),
				Reason: "same base and status",
			})
		}
	}
	return collisions
}

// describeRoute renders a route for collision diagnostics.
func describeRoute(r *Route) string {
	return fmt.Sprintf("%s %s (base %s, name %q, rank %d)", r.method, r.pattern, r.base, r.name, r.rank)
}

// describeCatcher renders a catcher for collision diagnostics.
func describeCatcher(c *Catcher) string {
	status := "default"
	if c.status != 0 {
		status = fmt.Sprintf("%d", c.status)
	}
	return fmt.Sprintf("catch %s at %s (name %q)", status, c.base, c.name)
}
