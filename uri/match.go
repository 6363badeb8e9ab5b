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

package uri

import "strings"

// Value is one bound segment value produced by a successful match.
// For trailing segments, Parts holds every consumed component in original
// order and Raw is their "/"-joined form.
type Value struct {
	Raw      string
	Parts    []string
	Trailing bool
}

// Bindings maps segment names to their bound values for one candidate
// route. Values are raw: percent-decoding is deferred to guards.
type Bindings map[string]Value

// Pair is one live query key/value pair. Order and duplicates are
// preserved exactly as they appeared on the request line.
type Pair struct {
	Key   string
	Value string
}

// MatchPath matches declared path segments against live path components.
// It returns the bound values and true on a match, or nil and false.
//
// Static segments require exact equality. A dynamic segment consumes
// exactly one component; a trailing segment consumes every remaining
// component, possibly none. Without a trailing segment the component count
// must equal the segment count exactly; with one, the live path may have
// any count >= len(segments)-1.
func MatchPath(segments []Segment, components []string) (Bindings, bool) {
	if !arityOK(segments, len(components)) {
		return nil, false
	}

	var bound Bindings
	bind := func(name string, v Value) {
		if bound == nil {
			bound = make(Bindings, DynamicCount(segments))
		}
		bound[name] = v
	}

	for i, seg := range segments {
		if seg.IsTrailing() {
			rest := components[i:]
			if seg.Kind == DynamicTrailing {
				bind(seg.Text, Value{
					Raw:      strings.Join(rest, "/"),
					Parts:    rest,
					Trailing: true,
				})
			}
			return bound, true
		}

		switch seg.Kind {
		case Static:
			if components[i] != seg.Text {
				return nil, false
			}
		case Dynamic:
			bind(seg.Text, Value{Raw: components[i]})
		case Ignored:
			// Consumed, never bound.
		}
	}

	return bound, true
}

// arityOK checks the component-count rule before walking segments.
func arityOK(segments []Segment, live int) bool {
	if HasTrailing(segments) {
		return live >= len(segments)-1
	}
	return live == len(segments)
}

// MatchQuery matches declared query segments against live query pairs.
// Query matching is order-independent. A static "key=value" segment
// requires an identical live pair. A dynamic segment claims the first
// unclaimed pair whose key equals its name; an ignored segment consumes
// one arbitrary unclaimed pair; a trailing segment claims all pairs not
// claimed by another segment. A dynamic segment with no corresponding
// live pair does NOT fail the match here: its absence is deferred to the
// guard, which may treat a missing value as a default or fail the route.
func MatchQuery(segments []Segment, pairs []Pair) (Bindings, bool) {
	if len(segments) == 0 {
		return nil, true
	}

	claimed := make([]bool, len(pairs))
	var bound Bindings
	bind := func(name string, v Value) {
		if bound == nil {
			bound = make(Bindings, DynamicCount(segments))
		}
		bound[name] = v
	}

	var trailing *Segment
	for i := range segments {
		seg := segments[i]
		switch seg.Kind {
		case Static:
			key, want, _ := strings.Cut(seg.Text, "=")
			if !claimStatic(pairs, claimed, key, want) {
				return nil, false
			}
		case Dynamic:
			if raw, ok := claimByKey(pairs, claimed, seg.Text); ok {
				bind(seg.Text, Value{Raw: raw})
			}
		case Ignored:
			// Consumes one arbitrary unclaimed pair when present. Absence
			// is not a failure, mirroring dynamic query segments.
			claimAny(pairs, claimed)
		case DynamicTrailing, IgnoredTrailing:
			// Trailing claims leftovers after every keyed segment has run.
			trailing = &segments[i]
		}
	}

	if trailing != nil && trailing.Kind == DynamicTrailing {
		var parts []string
		for i, p := range pairs {
			if claimed[i] {
				continue
			}
			claimed[i] = true
			if p.Value == "" {
				parts = append(parts, p.Key)
			} else {
				parts = append(parts, p.Key+"="+p.Value)
			}
		}
		bind(trailing.Text, Value{
			Raw:      strings.Join(parts, "&"),
			Parts:    parts,
			Trailing: true,
		})
	}

	return bound, true
}

// claimStatic marks the first unclaimed pair equal to key=want as claimed.
func claimStatic(pairs []Pair, claimed []bool, key, want string) bool {
	for i, p := range pairs {
		if !claimed[i] && p.Key == key && p.Value == want {
			claimed[i] = true
			return true
		}
	}
	return false
}

// claimAny marks the first unclaimed pair, if any, as claimed.
func claimAny(pairs []Pair, claimed []bool) {
	for i := range pairs {
		if !claimed[i] {
			claimed[i] = true
			return
		}
	}
}

// claimByKey marks the first unclaimed pair with the given key as claimed
// and returns its value.
func claimByKey(pairs []Pair, claimed []bool, key string) (string, bool) {
	for i, p := range pairs {
		if !claimed[i] && p.Key == key {
			claimed[i] = true
			return p.Value, true
		}
	}
	return "", false
}

// PathsCompatible reports whether two declared path segment lists could
// both match some concrete request path. A static segment in one pattern
// and a differing static segment at the same position in the other make
// the patterns disjoint regardless of every other position; otherwise, if
// every aligned position is compatible (static-equal, or at least one side
// dynamic), the patterns overlap.
func PathsCompatible(a, b []Segment) bool {
	if !lengthsCompatible(a, b) {
		return false
	}

	longest := max(len(a), len(b))
	for i := range longest {
		sa, oka := segmentAt(a, i)
		sb, okb := segmentAt(b, i)
		if !oka || !okb {
			// One side ran out; the other must have been trailing, which
			// lengthsCompatible already guaranteed.
			return true
		}
		if sa.IsTrailing() || sb.IsTrailing() {
			return true
		}
		if sa.Kind == Static && sb.Kind == Static && sa.Text != sb.Text {
			return false
		}
	}
	return true
}

// lengthsCompatible checks that some concrete path length satisfies both
// patterns' arity rules.
func lengthsCompatible(a, b []Segment) bool {
	switch {
	case HasTrailing(a) && HasTrailing(b):
		return true
	case HasTrailing(a):
		return len(b) >= len(a)-1
	case HasTrailing(b):
		return len(a) >= len(b)-1
	default:
		return len(a) == len(b)
	}
}

// segmentAt returns the i-th segment, or false past the end.
func segmentAt(segments []Segment, i int) (Segment, bool) {
	if i < len(segments) {
		return segments[i], true
	}
	return Segment{}, false
}

// QueriesCompatible reports whether two declared query segment lists could
// be satisfied by one concrete query string. Only conflicting static
// "key=value" requirements make queries disjoint: every dynamic or
// trailing segment is satisfiable by the same request.
func QueriesCompatible(a, b []Segment) bool {
	want := make(map[string]string)
	for _, seg := range a {
		if seg.Kind == Static {
			key, value, _ := strings.Cut(seg.Text, "=")
			want[key] = value
		}
	}
	for _, seg := range b {
		if seg.Kind != Static {
			continue
		}
		key, value, _ := strings.Cut(seg.Text, "=")
		if other, ok := want[key]; ok && other != value {
			return false
		}
	}
	return true
}
