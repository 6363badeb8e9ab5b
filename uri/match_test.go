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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string, part Part) []Segment {
	t.Helper()
	segs, err := ParsePattern(text, part)
	require.NoError(t, err)
	return segs
}

func TestMatchPath_Static(t *testing.T) {
	segs := mustParse(t, "/users/all", PartPath)

	bound, ok := MatchPath(segs, []string{"users", "all"})
	require.True(t, ok)
	assert.Empty(t, bound)

	_, ok = MatchPath(segs, []string{"users", "some"})
	assert.False(t, ok)
}

func TestMatchPath_ArityExact(t *testing.T) {
	segs := mustParse(t, "/users/<id>", PartPath)

	_, ok := MatchPath(segs, []string{"users"})
	assert.False(t, ok, "too few components")

	_, ok = MatchPath(segs, []string{"users", "5", "extra"})
	assert.False(t, ok, "too many components")
}

func TestMatchPath_DynamicBindsRaw(t *testing.T) {
	segs := mustParse(t, "/users/<id>", PartPath)

	bound, ok := MatchPath(segs, []string{"users", "a%20b"})
	require.True(t, ok)
	// Percent-decoding is deferred to guards.
	assert.Equal(t, "a%20b", bound["id"].Raw)
}

func TestMatchPath_TrailingConsumesRemainder(t *testing.T) {
	segs := mustParse(t, "/static/<path..>", PartPath)

	bound, ok := MatchPath(segs, []string{"static", "css", "site.css"})
	require.True(t, ok)
	assert.Equal(t, []string{"css", "site.css"}, bound["path"].Parts)
	assert.Equal(t, "css/site.css", bound["path"].Raw)

	// Trailing may consume zero components.
	bound, ok = MatchPath(segs, []string{"static"})
	require.True(t, ok)
	assert.Empty(t, bound["path"].Parts)
}

// Round-trip property: for a pattern with one trailing segment and a live
// path with N >= (segments-1) components, the trailing binding holds
// exactly the last N-segments+1 components in original order.
func TestMatchPath_TrailingRoundTrip(t *testing.T) {
	segs := mustParse(t, "/a/<b>/<rest..>", PartPath)

	for n := 2; n <= 6; n++ {
		live := []string{"a", "bee"}
		for i := 2; i < n; i++ {
			live = append(live, fmt.Sprintf("c%d", i))
		}
		bound, ok := MatchPath(segs, live)
		require.True(t, ok, "n=%d", n)
		assert.Equal(t, live[2:], bound["rest"].Parts, "n=%d", n)
	}
}

func TestMatchPath_IgnoredConsumesWithoutBinding(t *testing.T) {
	segs := mustParse(t, "/a/<_>/c", PartPath)

	bound, ok := MatchPath(segs, []string{"a", "anything", "c"})
	require.True(t, ok)
	assert.Empty(t, bound)

	_, ok = MatchPath(segs, []string{"a", "x", "y"})
	assert.False(t, ok, "static tail must still match")
}

func TestMatchQuery_OrderIndependent(t *testing.T) {
	segs := mustParse(t, "<a>&<b>", PartQuery)

	bound, ok := MatchQuery(segs, []Pair{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}})
	require.True(t, ok)
	assert.Equal(t, "1", bound["a"].Raw)
	assert.Equal(t, "2", bound["b"].Raw)
}

// A declared dynamic query segment with no live pair is not a hard
// failure: absence is deferred to the guard.
func TestMatchQuery_MissingDynamicDefersToGuard(t *testing.T) {
	segs := mustParse(t, "<page>", PartQuery)

	bound, ok := MatchQuery(segs, nil)
	require.True(t, ok)
	_, present := bound["page"]
	assert.False(t, present)
}

func TestMatchQuery_StaticPairRequired(t *testing.T) {
	segs := mustParse(t, "kind=user", PartQuery)

	_, ok := MatchQuery(segs, []Pair{{Key: "kind", Value: "user"}})
	assert.True(t, ok)

	_, ok = MatchQuery(segs, []Pair{{Key: "kind", Value: "admin"}})
	assert.False(t, ok)

	_, ok = MatchQuery(segs, nil)
	assert.False(t, ok)
}

func TestMatchQuery_TrailingClaimsUnclaimed(t *testing.T) {
	segs := mustParse(t, "<id>&<rest..>", PartQuery)

	bound, ok := MatchQuery(segs, []Pair{
		{Key: "x", Value: "1"},
		{Key: "id", Value: "42"},
		{Key: "y", Value: "2"},
	})
	require.True(t, ok)
	assert.Equal(t, "42", bound["id"].Raw)
	assert.Equal(t, []string{"x=1", "y=2"}, bound["rest"].Parts)
}

// An ignored query segment consumes one arbitrary unclaimed pair, not a
// pair literally keyed "_", and its absence never fails the match.
func TestMatchQuery_IgnoredConsumesOneUnclaimed(t *testing.T) {
	segs := mustParse(t, "<_>&<rest..>", PartQuery)

	bound, ok := MatchQuery(segs, []Pair{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"b=2"}, bound["rest"].Parts)

	bound, ok = MatchQuery(segs, nil)
	require.True(t, ok)
	assert.Empty(t, bound["rest"].Parts)
}

func TestMatchQuery_DuplicateKeysPreserved(t *testing.T) {
	segs := mustParse(t, "<tag>&<rest..>", PartQuery)

	bound, ok := MatchQuery(segs, []Pair{
		{Key: "tag", Value: "a"},
		{Key: "tag", Value: "b"},
	})
	require.True(t, ok)
	// First pair claimed by the keyed segment, duplicate left for trailing.
	assert.Equal(t, "a", bound["tag"].Raw)
	assert.Equal(t, []string{"tag=b"}, bound["rest"].Parts)
}

func TestPathsCompatible(t *testing.T) {
	tests := []struct {
		name       string
		a, b       string
		compatible bool
	}{
		{"identical statics", "/a/b", "/a/b", true},
		{"differing statics", "/a/b", "/a/c", false},
		{"dynamic vs static", "/a/<x>", "/a/b", true},
		{"dynamic vs dynamic", "/<x>/<y>", "/a/<z>", true},
		{"different lengths", "/a/b", "/a", false},
		{"trailing absorbs longer", "/a/<r..>", "/a/b/c", true},
		{"trailing vs short", "/a/b/<r..>", "/a", false},
		{"disjoint before trailing", "/a/<r..>", "/b/c", false},
		{"both trailing", "/<r..>", "/a/<s..>", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustParse(t, tt.a, PartPath)
			b := mustParse(t, tt.b, PartPath)
			assert.Equal(t, tt.compatible, PathsCompatible(a, b))
			assert.Equal(t, tt.compatible, PathsCompatible(b, a), "must be symmetric")
		})
	}
}

func TestQueriesCompatible(t *testing.T) {
	a := mustParse(t, "kind=user&<page>", PartQuery)
	b := mustParse(t, "kind=admin", PartQuery)
	c := mustParse(t, "kind=user", PartQuery)

	assert.False(t, QueriesCompatible(a, b), "conflicting static pairs")
	assert.True(t, QueriesCompatible(a, c))
	assert.True(t, QueriesCompatible(nil, b))
}
